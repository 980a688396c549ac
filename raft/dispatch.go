// raft/dispatch.go
package raft

// handleClientRequest implements the role-dependent put/get rules of §4.6.
func (r *Replica) handleClientRequest(msg Message) {
	switch r.role {
	case Follower:
		r.logger.LogRedirect(msg.MID, r.knownLeader)
		r.send(Message{Dst: msg.Src, Type: TypeRedirect, MID: msg.MID, Leader: r.knownLeader})

	case Candidate:
		r.deferred = append(r.deferred, msg)

	case Leader:
		if r.knownLeader != r.id {
			r.invariantf("leader %s has known_leader=%s", r.id, r.knownLeader)
		}
		switch msg.Type {
		case TypePut:
			r.onClientPut(msg)
		case TypeGet:
			r.onClientGet(msg)
		}
	}
}

// onClientGet answers a get from the leader's committed log prefix: the
// most recent entry at an index strictly below the head of unacked_puts
// whose key matches, or the empty string if absent (§4.6). This is a
// leader-local, non-linearizable read.
func (r *Replica) onClientGet(msg Message) {
	upper := r.committedUpperBound()

	if v, ok := r.cache.Get(msg.Key); ok && r.cache.LastFolded() >= upper {
		r.send(Message{Dst: msg.Src, Type: TypeOk, MID: msg.MID, Key: msg.Key, Value: v})
		return
	}

	value := ""
	for i := upper; i >= 1; i-- {
		if r.log[i-1].Key == msg.Key {
			value = r.log[i-1].Value
			break
		}
	}
	r.send(Message{Dst: msg.Src, Type: TypeOk, MID: msg.MID, Key: msg.Key, Value: value})
}

// committedUpperBound is the highest log index this leader currently
// considers committed: everything strictly below the head of
// unacked_puts, or the whole log if nothing is outstanding.
func (r *Replica) committedUpperBound() int64 {
	if len(r.unacked) == 0 {
		return r.lastLogIndex()
	}
	return r.unacked[0].Index - 1
}
