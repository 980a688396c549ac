// raft/replication.go
package raft

// broadcastHeartbeat sends an AppendRPC with empty entry/logs to every
// other replica (§4.4). Heartbeats suppress follower elections and
// reassert leadership; they never mutate a follower's log.
func (r *Replica) broadcastHeartbeat() {
	if r.role != Leader {
		return
	}
	r.logger.LogHeartbeatSent(r.term, len(r.others))
	for _, peer := range r.others {
		r.send(Message{Dst: peer, Type: TypeAppendRPC, Term: r.term})
	}
}

// sendAppendRPC sends the leader's current view of peer's consistency
// point and the batch of entries beyond it, capped at NumBuffer (§4.4).
func (r *Replica) sendAppendRPC(peer string) {
	n := r.nextIndices[peer]
	entry := []int64{n, r.termAt(n)}

	end := minInt64(n+NumBuffer, int64(len(r.log)))
	var logs []LogEntry
	if n < end {
		logs = append(logs, r.log[n:end]...)
	}

	r.send(Message{Dst: peer, Type: TypeAppendRPC, Term: r.term, Entry: entry, Logs: logs})
}

// onClientPut is the LEADER-side put path (§4.4, §4.6): append to the log,
// track it as unacked, and fan out AppendRPC to every follower.
func (r *Replica) onClientPut(msg Message) {
	r.log = append(r.log, LogEntry{Term: r.term, Key: msg.Key, Value: msg.Value})
	index := r.lastLogIndex()
	r.unacked = append(r.unacked, pendingPut{Index: index, Msg: msg})

	for _, peer := range r.others {
		r.sendAppendRPC(peer)
	}
	// A cluster with no other replicas has quorum on its own log already;
	// nothing will ever call handleSuccess to trigger this otherwise.
	r.drainCommitted()
}

// handleAppendRPC is the FOLLOWER-side receive path (§4.5).
func (r *Replica) handleAppendRPC(msg Message) {
	if msg.Term < r.term {
		r.send(Message{Dst: msg.Src, Type: TypeBlunder})
		return
	}

	if r.role == Leader && msg.Term == r.term {
		// Two leaders in the same term would violate the one-leader-per-term
		// invariant; ignore rather than step down on a same-term message.
		return
	}

	r.becomeFollowerOnLeaderMessage(msg)

	if len(msg.Logs) == 0 {
		r.logger.LogHeartbeatReceived(msg.Src, msg.Term)
		return
	}

	n := msg.Entry[0]
	t := msg.Entry[1]
	r.logger.LogAppendRPC(msg.Src, msg.Term, n, len(msg.Logs))

	accept := n == 0 || (n <= r.lastLogIndex() && r.termAt(n) == t)
	if !accept {
		r.send(Message{Dst: msg.Src, Type: TypeBlunder})
		return
	}

	r.log = append(append([]LogEntry(nil), r.log[:n]...), msg.Logs...)
	r.cache.InvalidateFrom(n + 1)

	r.send(Message{Dst: msg.Src, Type: TypeSuccess, NextIdx: r.lastLogIndex()})
}

// becomeFollowerOnLeaderMessage is the shared prefix of §4.3's
// CANDIDATE→FOLLOWER rule (b) and §4.5's unconditional leader adoption: any
// AppendRPC with term >= current term means its sender is the leader.
func (r *Replica) becomeFollowerOnLeaderMessage(msg Message) {
	r.becomeFollower(msg.Term, msg.Src)
	r.votedThisTerm = true // a leader in this term obviates any candidacy
	r.timer.Reset(randomElectionTimeout())
}

// handleSuccess is the LEADER-side reply path for a successful append
// (§4.4).
func (r *Replica) handleSuccess(msg Message) {
	if r.role != Leader {
		return
	}
	r.nextIndices[msg.Src] = maxInt64(r.nextIndices[msg.Src], msg.NextIdx)
	if msg.NextIdx < r.lastLogIndex() {
		r.sendAppendRPC(msg.Src)
	}
	r.drainCommitted()
}

// handleBlunder is the LEADER-side reply path for a rejected append
// (§4.4). It walks next_indices backward until a common prefix is found;
// index 0 (the empty prefix) always matches, so the walk is bounded there.
func (r *Replica) handleBlunder(msg Message) {
	if r.role != Leader {
		return
	}
	r.nextIndices[msg.Src] = maxInt64(r.nextIndices[msg.Src]-1, 0)
	r.logger.LogBlunder(msg.Src, r.nextIndices[msg.Src])
	r.sendAppendRPC(msg.Src)
}

// drainCommitted pops every unacked put whose index is now on a majority
// of replicas (the leader counts implicitly) and answers its client (§4.4,
// invariant 5).
func (r *Replica) drainCommitted() {
	for len(r.unacked) > 0 {
		head := r.unacked[0]
		if !r.hasQuorum(head.Index) {
			return
		}
		r.unacked = r.unacked[1:]
		entry := r.log[head.Index-1]
		r.cache.Observe(head.Index, entry.Key, entry.Value)
		r.logger.LogCommit(head.Index, entry)
		r.send(Message{Dst: head.Msg.Src, Type: TypeOk, MID: head.Msg.MID})
	}
}

// hasQuorum reports whether index is satisfied by a majority of followers
// (leader implicit): acked whose next_indices[peer] has caught up to index
// is ≥ floor(len(others)/2) (the leader's own entry counts implicitly).
// A follower sitting at exactly index has it, so the comparison is >=;
// the floor(len(others)/2) coefficient itself is kept exactly as written
// even though it is only exact for odd cluster sizes (§9).
func (r *Replica) hasQuorum(index int64) bool {
	acked := 0
	for _, peer := range r.others {
		if r.nextIndices[peer] >= index {
			acked++
		}
	}
	return acked >= len(r.others)/2
}
