// raft/raft_core.go
package raft

import (
	"time"

	"raftkv/storage"
)

// Role is the FOLLOWER / CANDIDATE / LEADER automaton state.
type Role int

const (
	Follower Role = iota
	Candidate
	Leader
)

func (s Role) String() string {
	switch s {
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// Sender is the replica's only collaborator with the outside world: a
// framed, JSON-speaking datagram endpoint. The socket wrapper that
// implements this (package transport) is deliberately kept outside the
// consensus core.
type Sender interface {
	// Send emits one message. Delivery is not guaranteed.
	Send(msg Message) error
	// Recv blocks for up to timeout for one inbound message. ok is false
	// on timeout; a non-nil err is a fatal transport failure.
	Recv(timeout time.Duration) (msg Message, ok bool, err error)
}

// pendingPut is an entry appended by the leader but not yet known to be on
// a majority of replicas.
type pendingPut struct {
	Index int64
	Msg   Message
}

// Replica is a single participant in the consensus protocol. It is driven
// entirely by Run; nothing outside of Run mutates its fields, so it needs
// no locking (§5).
type Replica struct {
	id     string
	others []string
	sender Sender
	logger *Logger

	role          Role
	term          int64
	votedThisTerm bool
	log           []LogEntry // log[i] is 1-based index i+1; index 0 is the implicit empty prefix
	knownLeader   string

	timer *Timer

	// Leader-only tables. Present (non-nil / populated) iff role == Leader,
	// re-initialized on every election and discarded on step-down.
	nextIndices map[string]int64
	unacked     []pendingPut

	// Candidate-only vote tally. Reset on every new candidacy.
	votes map[string]bool

	// Deferred client requests received while Candidate, drained once the
	// role settles.
	deferred []Message

	cache *storage.Cache
}

// NewReplica constructs a replica in the initial FOLLOWER state at term 0.
func NewReplica(id string, others []string, sender Sender, logger *Logger) *Replica {
	return &Replica{
		id:     id,
		others: append([]string(nil), others...),
		sender: sender,
		logger: logger,
		role:   Follower,
		timer:  NewTimer(),
		cache:  storage.NewCache(),
	}
}

// GetState reports the current term and whether this replica believes
// itself to be the leader. Safe to call only from within Run's goroutine;
// exposed mainly for tests.
func (r *Replica) GetState() (int64, bool) {
	return r.term, r.role == Leader
}

func (r *Replica) lastLogIndex() int64 {
	return int64(len(r.log))
}

func (r *Replica) lastLogTerm() int64 {
	if len(r.log) == 0 {
		return 0
	}
	return r.log[len(r.log)-1].Term
}

// termAt returns the term stored at 1-based index n, or 0 for the
// sentinel empty prefix at index 0.
func (r *Replica) termAt(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return r.log[n-1].Term
}

// invariantf reports a violated internal invariant. Per §7 these indicate
// a bug, not an external failure, so the process aborts.
func (r *Replica) invariantf(format string, args ...interface{}) {
	r.logger.Error("FATAL invariant violation: "+format, args...)
	panic(r.id + ": invariant violated")
}
