// raft/election.go
package raft

// onElectionTimeout handles the FOLLOWER → CANDIDATE and the CANDIDATE
// retry transitions (§4.3). Both start a fresh candidacy at a new term.
func (r *Replica) onElectionTimeout() {
	oldRole := r.role
	r.role = Candidate
	r.term++
	r.votedThisTerm = true // vote for self
	r.votes = map[string]bool{r.id: true}
	r.knownLeader = Broadcast

	r.logger.LogStateChange(oldRole, Candidate, r.term)
	r.logger.LogElectionStart(r.term)
	r.logger.LogElectionTimeout()

	r.timer.Reset(randomElectionTimeout())

	entry := []int64{r.lastLogIndex(), r.lastLogTerm()}
	for _, peer := range r.others {
		r.send(Message{
			Dst:   peer,
			Type:  TypeReqVote,
			Term:  r.term,
			Entry: entry,
		})
	}

	r.maybeBecomeLeader()
}

// maybeBecomeLeader checks whether the current candidacy already holds
// quorum (the single-node-cluster case: a candidate with no peers wins
// immediately on its own vote).
func (r *Replica) maybeBecomeLeader() {
	if r.role != Candidate {
		return
	}
	// floor(len(others)/2)+1: correct for odd cluster sizes (matches a
	// 5-node cluster requiring 3 votes); even sizes are an open question
	// this core does not target (§9).
	needed := len(r.others)/2 + 1
	if len(r.votes) >= needed {
		r.logger.LogElectionWon(r.term, len(r.votes), needed)
		r.becomeLeader()
	}
}

// becomeLeader performs the CANDIDATE → LEADER transition (§4.3).
func (r *Replica) becomeLeader() {
	oldRole := r.role
	r.role = Leader
	r.knownLeader = r.id
	r.logger.LogStateChange(oldRole, Leader, r.term)

	r.nextIndices = make(map[string]int64, len(r.others))
	for _, peer := range r.others {
		r.nextIndices[peer] = r.lastLogIndex()
	}
	r.unacked = nil
	r.votes = nil

	r.timer.Reset(heartbeatInterval)
	r.broadcastHeartbeat()
}

// becomeFollower performs a term-bump or leader-discovery transition into
// FOLLOWER, from any role (§4.3).
func (r *Replica) becomeFollower(term int64, leader string) {
	oldRole := r.role
	oldTerm := r.term

	if term > r.term {
		r.term = term
		r.votedThisTerm = false
	}

	r.role = Follower
	r.nextIndices = nil
	r.votes = nil
	if leader != "" {
		r.knownLeader = leader
	} else {
		r.knownLeader = Broadcast
	}

	if oldRole == Leader && len(r.unacked) > 0 {
		r.failPendingWrites()
	}

	if oldRole != Follower {
		r.logger.LogStateChange(oldRole, Follower, r.term)
	}
	if term > oldTerm {
		r.logger.LogStepDown(oldTerm, term)
	}

	r.timer.Reset(randomElectionTimeout())
}

// failPendingWrites answers every outstanding unacked put with a redirect,
// never an ok (§4.6, §7), when a leader steps down.
func (r *Replica) failPendingWrites() {
	for _, p := range r.unacked {
		r.send(Message{
			Dst:    p.Msg.Src,
			Type:   TypeRedirect,
			MID:    p.Msg.MID,
			Leader: r.knownLeader,
		})
	}
	r.unacked = nil
}

// handleReqVote implements §4.7.
func (r *Replica) handleReqVote(msg Message) {
	if msg.Term > r.term {
		r.becomeFollower(msg.Term, "")
	}

	if msg.Term < r.term {
		return // stale candidate: silently refuse (§7)
	}

	if r.role != Follower {
		return
	}
	if r.votedThisTerm {
		r.logger.LogVoteDenied(msg.Src, msg.Term, "already voted this term")
		return
	}

	candidateLen := msg.Entry[0]
	candidateLastTerm := msg.Entry[1]

	if len(r.log) > 0 {
		// Literal §4.7 step 2: reject iff cand_len < len(log) OR
		// cand_last_term < log[-1].term. Granting requires failing both
		// disqualifiers, not the usual term-then-length comparison.
		notUpToDate := candidateLen < r.lastLogIndex() || candidateLastTerm < r.lastLogTerm()
		if notUpToDate {
			r.logger.LogVoteDenied(msg.Src, msg.Term, "candidate log not up to date")
			return
		}
	}

	r.votedThisTerm = true
	r.timer.Reset(randomElectionTimeout())
	r.logger.LogVoteGranted(msg.Src, msg.Term)
	r.send(Message{Dst: msg.Src, Type: TypeAckVote})
}

// handleAckVote counts a vote while CANDIDATE; ignored otherwise (§7).
func (r *Replica) handleAckVote(msg Message) {
	if r.role != Candidate {
		return
	}
	r.votes[msg.Src] = true
	r.maybeBecomeLeader()
}
