// raft/timer.go
package raft

import (
	"time"
)

// Election and heartbeat bounds; part of the wire contract (§5, §6).
const (
	electionTimeoutMin = 200 * time.Millisecond
	electionTimeoutMax = 300 * time.Millisecond
	heartbeatInterval  = 170 * time.Millisecond
)

// Timer is a single advisory deadline tracker. It is checked at the top of
// every event-loop iteration rather than delivered as a channel event, so
// that an expired timer always wins over a pending message on that
// iteration (§5).
type Timer struct {
	deadline time.Time
}

// NewTimer returns a timer with no deadline set (already expired).
func NewTimer() *Timer {
	return &Timer{}
}

// Reset arms the timer to fire duration from now.
func (t *Timer) Reset(d time.Duration) {
	t.deadline = time.Now().Add(d)
}

// Expired reports whether wall-clock now is at or past the deadline.
func (t *Timer) Expired() bool {
	return !time.Now().Before(t.deadline)
}

// Remaining returns how long until the timer expires, floored at 0.
func (t *Timer) Remaining() time.Duration {
	d := time.Until(t.deadline)
	if d < 0 {
		return 0
	}
	return d
}

// randomElectionTimeout draws uniformly from [200ms, 300ms), as required
// by §4.1. Randomness is mandatory to break symmetric candidacies.
func randomElectionTimeout() time.Duration {
	return time.Duration(randomInt(int(electionTimeoutMin), int(electionTimeoutMax)))
}
