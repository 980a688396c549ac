// raft/election_test.go
package raft

import (
	"testing"
	"time"
)

// fakeSender is an in-memory Sender test double: it never touches the
// network, just records every outbound message so tests can assert on
// exactly what a replica sent. These tests drive replica handlers
// directly rather than through Run, so Recv is never exercised.
type fakeSender struct {
	sent []Message
}

func (f *fakeSender) Send(msg Message) error {
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeSender) Recv(time.Duration) (Message, bool, error) {
	return Message{}, false, nil
}

func newTestReplica(id string, others []string) (*Replica, *fakeSender) {
	fs := &fakeSender{}
	r := NewReplica(id, others, fs, NewLogger(id, ERROR))
	return r, fs
}

func (f *fakeSender) last() Message {
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) sentTo(dst string) []Message {
	var out []Message
	for _, m := range f.sent {
		if m.Dst == dst {
			out = append(out, m)
		}
	}
	return out
}

func TestInitialState(t *testing.T) {
	r, _ := newTestReplica("n1", []string{"n2", "n3"})

	term, isLeader := r.GetState()
	if term != 0 {
		t.Errorf("expected term 0, got %d", term)
	}
	if isLeader {
		t.Error("new replica should not be leader")
	}
	if r.role != Follower {
		t.Errorf("expected Follower, got %s", r.role)
	}
}

func TestSingleReplicaClusterElectsSelfImmediately(t *testing.T) {
	r, _ := newTestReplica("n1", nil)

	r.onElectionTimeout()

	if r.role != Leader {
		t.Fatalf("expected Leader with no peers, got %s", r.role)
	}
	if r.term != 1 {
		t.Errorf("expected term 1, got %d", r.term)
	}
}

func TestElectionRequestsVoteFromEveryPeer(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2", "n3"})

	r.onElectionTimeout()

	if r.role != Candidate {
		t.Fatalf("expected Candidate with 2 peers and 1 self-vote, got %s", r.role)
	}
	if len(fs.sentTo("n2")) != 1 || fs.sentTo("n2")[0].Type != TypeReqVote {
		t.Error("expected a ReqVote sent to n2")
	}
	if len(fs.sentTo("n3")) != 1 || fs.sentTo("n3")[0].Type != TypeReqVote {
		t.Error("expected a ReqVote sent to n3")
	}
}

func TestCandidateBecomesLeaderOnMajorityVotes(t *testing.T) {
	// 5-replica cluster: floor(len(others)/2)+1 = floor(4/2)+1 = 3 votes.
	r, _ := newTestReplica("n1", []string{"n2", "n3", "n4", "n5"})
	r.onElectionTimeout()

	r.handleAckVote(Message{Src: "n2"})
	if r.role != Candidate {
		t.Fatalf("2 of 5 votes (self+n2) should not yet be a majority, got %s", r.role)
	}

	r.handleAckVote(Message{Src: "n3"})
	if r.role != Leader {
		t.Fatalf("3 of 5 votes should be a majority, got %s", r.role)
	}
}

func TestOneVotePerTerm(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2", "n3"})

	r.handleReqVote(Message{Src: "n2", Term: 1, Entry: []int64{0, 0}})
	if fs.last().Type != TypeAckVote {
		t.Fatalf("expected first vote granted, got %s", fs.last().Type)
	}

	r.handleReqVote(Message{Src: "n3", Term: 1, Entry: []int64{0, 0}})
	for _, m := range fs.sentTo("n3") {
		if m.Type == TypeAckVote {
			t.Error("should not grant a second vote in the same term")
		}
	}
}

func TestVoteRefusedForOutdatedCandidateLog(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2"})
	r.log = append(r.log, LogEntry{Term: 5, Key: "k", Value: "v"})
	r.term = 5

	// Candidate log is as long as ours (1 entry) but its last term (3) is
	// older than ours (5).
	r.handleReqVote(Message{Src: "n2", Term: 6, Entry: []int64{1, 3}})

	for _, m := range fs.sentTo("n2") {
		if m.Type == TypeAckVote {
			t.Error("should not grant vote to a candidate with an outdated log")
		}
	}
}

func TestHigherTermReqVoteStepsDownLeader(t *testing.T) {
	r, _ := newTestReplica("n1", nil)
	r.onElectionTimeout() // becomes leader at term 1 (no peers)

	r.handleReqVote(Message{Src: "n2", Term: 5, Entry: []int64{0, 0}})

	if r.role != Follower {
		t.Fatalf("expected step-down to Follower, got %s", r.role)
	}
	if r.term != 5 {
		t.Errorf("expected term to adopt 5, got %d", r.term)
	}
}

func TestAppendRPCAcceptsMatchingPrefix(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"leader"})

	r.handleAppendRPC(Message{
		Src: "leader", Term: 1, Entry: []int64{0, 0},
		Logs: []LogEntry{{Term: 1, Key: "a", Value: "1"}},
	})

	if len(r.log) != 1 {
		t.Fatalf("expected log to grow to 1 entry, got %d", len(r.log))
	}
	if fs.last().Type != TypeSuccess || fs.last().NextIdx != 1 {
		t.Errorf("expected success with next_idx=1, got %+v", fs.last())
	}
}

func TestAppendRPCRejectsOnPrefixMismatch(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"leader"})
	r.log = append(r.log, LogEntry{Term: 1, Key: "a", Value: "1"})
	r.term = 1

	// Leader thinks our prefix ends at term 2, but it's actually term 1.
	r.handleAppendRPC(Message{
		Src: "leader", Term: 1, Entry: []int64{1, 2},
		Logs: []LogEntry{{Term: 1, Key: "b", Value: "2"}},
	})

	if fs.last().Type != TypeBlunder {
		t.Errorf("expected blunder on prefix mismatch, got %s", fs.last().Type)
	}
	if len(r.log) != 1 {
		t.Errorf("log should be unchanged on rejection, got %d entries", len(r.log))
	}
}

func TestLeaderIgnoresSameTermAppendRPC(t *testing.T) {
	r, _ := newTestReplica("n1", nil)
	r.onElectionTimeout() // leader at term 1

	r.handleAppendRPC(Message{Src: "n2", Term: 1})

	if r.role != Leader {
		t.Errorf("same-term AppendRPC must not depose a leader, got %s", r.role)
	}
}

func TestHandleBlunderWalksNextIndexBackAndFloorsAtZero(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2", "n3"})
	r.onElectionTimeout()
	r.handleAckVote(Message{Src: "n2"}) // leader, nextIndices["n2"] = 0

	r.handleBlunder(Message{Src: "n2"})

	if got := r.nextIndices["n2"]; got != 0 {
		t.Errorf("next index should floor at 0, got %d", got)
	}
	// Leader must still retry the append after a blunder.
	if fs.last().Type != TypeAppendRPC {
		t.Errorf("expected a retried AppendRPC, got %s", fs.last().Type)
	}
}

func TestQuorumCommitAnswersClientAndUpdatesCache(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2", "n3"})
	r.onElectionTimeout()
	r.handleAckVote(Message{Src: "n2"})
	if r.role != Leader {
		t.Fatalf("setup: expected leader")
	}

	r.onClientPut(Message{Src: "client", MID: "m1", Key: "x", Value: "1"})

	// Before any follower acks, nothing is committed yet.
	if v, ok := r.cache.Get("x"); ok {
		t.Errorf("should not be committed yet, got %q", v)
	}

	r.handleSuccess(Message{Src: "n2", NextIdx: 1})

	v, ok := r.cache.Get("x")
	if !ok || v != "1" {
		t.Errorf("expected committed value 1, got %q ok=%v", v, ok)
	}
	acks := fs.sentTo("client")
	if len(acks) != 1 || acks[0].Type != TypeOk || acks[0].MID != "m1" {
		t.Errorf("expected a single ok reply to client, got %+v", acks)
	}
}

func TestFollowerRedirectsClientPut(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2"})
	r.knownLeader = "n2"

	r.handleClientRequest(Message{Src: "client", MID: "m1", Type: TypePut, Key: "x", Value: "1"})

	last := fs.last()
	if last.Type != TypeRedirect || last.Leader != "n2" {
		t.Errorf("expected redirect to n2, got %+v", last)
	}
}

func TestCandidateDefersClientRequests(t *testing.T) {
	r, fs := newTestReplica("n1", []string{"n2", "n3"})
	r.onElectionTimeout() // candidate

	r.handleClientRequest(Message{Src: "client", MID: "m1", Type: TypeGet, Key: "x"})

	if len(r.deferred) != 1 {
		t.Fatalf("expected request deferred, got %d deferred", len(r.deferred))
	}
	for _, m := range fs.sent {
		if m.Dst == "client" {
			t.Errorf("candidate must not reply to a deferred request yet, got %+v", m)
		}
	}
}

func TestSingleReplicaClusterCommitsPutImmediately(t *testing.T) {
	r, fs := newTestReplica("n1", nil)
	r.onElectionTimeout() // sole leader: quorum of zero followers is trivially met

	r.onClientPut(Message{Src: "client", MID: "m1", Key: "x", Value: "1"})

	acks := fs.sentTo("client")
	if len(acks) != 1 || acks[0].Type != TypeOk || acks[0].MID != "m1" {
		t.Fatalf("expected an immediate ok for a sole-replica cluster, got %+v", acks)
	}

	r.onClientGet(Message{Src: "client", MID: "m2", Key: "x"})
	if last := fs.last(); last.Type != TypeOk || last.Value != "1" {
		t.Errorf("expected committed value 1, got %+v", last)
	}
}
