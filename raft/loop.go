// raft/loop.go
package raft

import "time"

// pollInterval bounds how long a single Recv call blocks before the event
// loop re-checks the timer and the deferred queue. It must be well under
// the heartbeat interval so a leader never misses its deadline.
const pollInterval = 20 * time.Millisecond

// send stamps the shared envelope fields and hands the message to the
// transport. Send failures are logged and otherwise ignored: message loss
// is expected and handled by the protocol's own retries (§5, §7).
func (r *Replica) send(msg Message) {
	msg.Src = r.id
	msg.Leader = r.knownLeader
	if err := r.sender.Send(msg); err != nil {
		r.logger.Warn("send to %s failed: %v", msg.Dst, err)
	}
}

// Start announces this replica to the transport and arms the initial
// election timer (§6). It does not block; call Run to drive the loop.
func (r *Replica) Start() {
	r.send(r.hello())
	r.timer.Reset(randomElectionTimeout())
}

// Run is the single-threaded event loop (§4, §5). It never returns unless
// the transport reports a fatal error. Ordering per iteration:
//  1. the timer is checked before any message processing, so an expired
//     timer always wins over a pending message on that iteration;
//  2. while CANDIDATE, the deferred queue is left untouched — draining it
//     happens once the replica settles into a new role (§4.3), not on
//     every tick it's still collecting votes, since a deferred put/get
//     just re-defers itself and would otherwise spin the loop forever
//     without ever reaching the socket read below;
//  3. any deferred client request takes priority over the socket;
//  4. otherwise, block (bounded by pollInterval) for the next datagram.
func (r *Replica) Run() error {
	for {
		if r.timer.Expired() {
			r.onTimerExpired()
			continue
		}

		if r.role != Candidate && len(r.deferred) > 0 {
			msg := r.deferred[0]
			r.deferred = r.deferred[1:]
			r.handleMessage(msg)
			continue
		}

		wait := minDuration(pollInterval, r.timer.Remaining())
		msg, ok, err := r.sender.Recv(wait)
		if err != nil {
			return err
		}
		if !ok {
			continue // timeout: malformed datagrams are also reported as !ok (§7)
		}
		r.handleMessage(msg)
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// onTimerExpired fires the role-dependent timer discipline (§4.1, §4.4).
func (r *Replica) onTimerExpired() {
	switch r.role {
	case Leader:
		r.timer.Reset(heartbeatInterval)
		r.broadcastHeartbeat()
	default: // Follower or Candidate: election timeout
		r.onElectionTimeout()
	}
}

// handleMessage dispatches one inbound message by type. Unknown types are
// ignored (§7).
func (r *Replica) handleMessage(msg Message) {
	switch msg.Type {
	case TypePut, TypeGet:
		r.handleClientRequest(msg)
	case TypeReqVote:
		r.handleReqVote(msg)
	case TypeAckVote:
		r.handleAckVote(msg)
	case TypeAppendRPC:
		r.handleAppendRPC(msg)
	case TypeSuccess:
		r.handleSuccess(msg)
	case TypeBlunder:
		r.handleBlunder(msg)
	case TypeHello:
		// Startup announcements carry no protocol meaning for peers.
	default:
		r.logger.Debug("ignoring unknown message type %q from %s", msg.Type, msg.Src)
	}
}
