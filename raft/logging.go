// raft/logging.go
package raft

import (
	"fmt"
	"log"
	"time"
)

// LogLevel represents the logging level.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// Logger provides structured logging for a replica.
type Logger struct {
	replicaID string
	level     LogLevel
}

// NewLogger creates a new logger for a replica.
func NewLogger(replicaID string, level LogLevel) *Logger {
	return &Logger{
		replicaID: replicaID,
		level:     level,
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level <= DEBUG {
		l.log("DEBUG", format, args...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l.level <= INFO {
		l.log("INFO", format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level <= WARN {
		l.log("WARN", format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l.level <= ERROR {
		l.log("ERROR", format, args...)
	}
}

func (l *Logger) log(level, format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	prefix := fmt.Sprintf("[%s] [%s] [%s] ", timestamp, l.replicaID, level)
	log.Printf(prefix+format, args...)
}

// Specialized log call sites for raft events, mirroring the emoji-tagged
// style the teacher uses for its own event log.

func (l *Logger) LogStateChange(oldRole, newRole Role, term int64) {
	emoji := map[Role]string{
		Follower:  "👤",
		Candidate: "🗳️",
		Leader:    "👑",
	}
	l.Info("%s %s → %s %s (term=%d)", emoji[oldRole], oldRole, emoji[newRole], newRole, term)
}

func (l *Logger) LogElectionStart(term int64) {
	l.Info("🗳️  starting election for term %d", term)
}

func (l *Logger) LogElectionWon(term int64, votes, needed int) {
	l.Info("👑 won election for term %d (votes=%d/%d)", term, votes, needed)
}

func (l *Logger) LogVoteGranted(candidateID string, term int64) {
	l.Info("✅ granted vote to %s for term %d", candidateID, term)
}

func (l *Logger) LogVoteDenied(candidateID string, term int64, reason string) {
	l.Debug("❌ denied vote to %s for term %d: %s", candidateID, term, reason)
}

func (l *Logger) LogHeartbeatSent(term int64, peerCount int) {
	l.Debug("💓 sent heartbeat to %d peers (term=%d)", peerCount, term)
}

func (l *Logger) LogHeartbeatReceived(leaderID string, term int64) {
	l.Debug("💓 received heartbeat from %s (term=%d)", leaderID, term)
}

func (l *Logger) LogAppendRPC(leaderID string, term int64, prevIndex int64, entryCount int) {
	l.Debug("📥 AppendRPC from %s (term=%d, prevIndex=%d, entries=%d)", leaderID, term, prevIndex, entryCount)
}

func (l *Logger) LogBlunder(peerID string, nextIndex int64) {
	l.Debug("💢 blunder from %s, walking next_index back to %d", peerID, nextIndex)
}

func (l *Logger) LogCommit(index int64, entry LogEntry) {
	l.Info("✅ committed %s", FormatLogEntry(index, entry))
}

func (l *Logger) LogStepDown(oldTerm, newTerm int64) {
	l.Info("⬇️  stepping down: term %d → %d", oldTerm, newTerm)
}

func (l *Logger) LogElectionTimeout() {
	l.Debug("⏰ election timeout - becoming candidate")
}

func (l *Logger) LogRedirect(mid, leader string) {
	l.Debug("↪️  redirecting %s to leader=%s", mid, leader)
}
