// raft/util.go
package raft

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// minInt64 returns the minimum of two int64 values.
func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

// maxInt64 returns the maximum of two int64 values.
func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// randomInt returns a random integer in [min, max).
func randomInt(min, max int) int {
	if min >= max {
		return min
	}

	var n uint32
	binary.Read(rand.Reader, binary.BigEndian, &n)
	return min + int(n)%(max-min)
}

// FormatTerm formats a term for logging.
func FormatTerm(term int64) string {
	return fmt.Sprintf("T%d", term)
}

// FormatIndex formats a 1-based log index for logging.
func FormatIndex(index int64) string {
	return fmt.Sprintf("I%d", index)
}

// FormatLogEntry formats a log entry for logging.
func FormatLogEntry(index int64, entry LogEntry) string {
	return fmt.Sprintf("%s:%s(%s=%s)", FormatTerm(entry.Term), FormatIndex(index), entry.Key, entry.Value)
}
