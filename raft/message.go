// raft/message.go
package raft

// Broadcast is the reserved replica id meaning "no specific destination /
// no known leader".
const Broadcast = "FFFF"

// Message types. These strings are part of the wire contract and must
// match across the cluster.
const (
	TypeHello     = "hello"
	TypePut       = "put"
	TypeGet       = "get"
	TypeOk        = "ok"
	TypeRedirect  = "redirect"
	TypeReqVote   = "ReqVote"
	TypeAckVote   = "AckVote"
	TypeAppendRPC = "AppendRPC"
	TypeSuccess   = "success"
	TypeBlunder   = "blunder"
)

// NumBuffer bounds how many log entries an AppendRPC carries in one
// datagram.
const NumBuffer = 114

// LogEntry is a single replicated command.
type LogEntry struct {
	Term  int64  `json:"term"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Message is the tagged envelope every replica and client exchanges.
// Every message shares src/dst/leader/type; the remaining fields are the
// per-type payload and are left zero-valued (and omitted on the wire) when
// the type doesn't use them.
type Message struct {
	Src    string `json:"src"`
	Dst    string `json:"dst"`
	Leader string `json:"leader"`
	Type   string `json:"type"`

	MID   string `json:"MID,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	Term int64 `json:"term,omitempty"`

	// Entry is the consistency-check point. For ReqVote it carries
	// [candidate_log_length, candidate_last_log_term]. For AppendRPC it
	// carries [prev_index, prev_term], or is nil/empty for a heartbeat.
	Entry []int64 `json:"entry,omitempty"`

	Logs []LogEntry `json:"logs,omitempty"`

	NextIdx int64 `json:"next_idx,omitempty"`
}

func (r *Replica) hello() Message {
	return Message{Src: r.id, Dst: Broadcast, Leader: Broadcast, Type: TypeHello}
}
