// Package storage holds the replica's applied-state cache: an in-memory,
// map-backed materialization of the committed prefix of a raft log.
//
// The consensus engine's defined semantics for a client get (see the raft
// package's dispatch logic) is to scan the committed prefix of the log
// backward for the most recent entry with a matching key. That scan is
// correct but linear in the committed log length. Cache folds each newly
// committed entry into a map as it crosses the commit boundary, so the
// common-case get is O(1) while remaining numerically identical to the
// backward scan it replaces.
//
// This is deliberately not the teacher's on-disk LSM engine: the
// consensus core is in-memory only (durability is majority replication,
// not disk persistence), so there is no WAL, no SSTable, and no
// compaction here — see DESIGN.md for why those were dropped rather than
// adapted.
package storage

// Cache is the materialized view of every log entry known to be
// committed so far.
type Cache struct {
	data       map[string]string
	lastFolded int64 // highest 1-based log index already folded in
}

// NewCache returns an empty cache with nothing folded in yet.
func NewCache() *Cache {
	return &Cache{data: make(map[string]string)}
}

// Observe folds a single newly committed entry (1-based index) into the
// cache. Entries must be observed in increasing index order so that a
// later write to the same key always overwrites an earlier one.
func (c *Cache) Observe(index int64, key, value string) {
	if index <= c.lastFolded {
		return
	}
	c.data[key] = value
	c.lastFolded = index
}

// InvalidateFrom handles a log truncation (follower conflict resolution)
// starting at a 1-based index: if index is at or below the highest folded
// index, the whole cache is cleared and lastFolded reset to 0; otherwise it
// is a no-op. The cache only ever holds committed entries, which by
// invariant 4 cannot be truncated on a leader, but a follower's own log
// can be rewritten by a conflicting AppendRPC; this keeps Cache honest in
// that case. Entries folded before the reset are not re-folded; the cache
// refills only from later Observe calls.
func (c *Cache) InvalidateFrom(index int64) {
	if index <= c.lastFolded {
		c.data = make(map[string]string)
		c.lastFolded = 0
	}
}

// Get returns the most recently committed value for key, and whether any
// committed write ever touched that key.
func (c *Cache) Get(key string) (string, bool) {
	v, ok := c.data[key]
	return v, ok
}

// LastFolded reports the highest log index folded into the cache so far.
func (c *Cache) LastFolded() int64 {
	return c.lastFolded
}
