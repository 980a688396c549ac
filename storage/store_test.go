package storage

import "testing"

func TestCache_ObserveThenGet(t *testing.T) {
	c := NewCache()

	c.Observe(1, "a", "1")
	c.Observe(2, "b", "2")

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("expected a=1, got %q ok=%v", v, ok)
	}
	if v, ok := c.Get("b"); !ok || v != "2" {
		t.Errorf("expected b=2, got %q ok=%v", v, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Error("unobserved key should not be found")
	}
	if c.LastFolded() != 2 {
		t.Errorf("expected lastFolded=2, got %d", c.LastFolded())
	}
}

func TestCache_LaterWriteOverwritesEarlierForSameKey(t *testing.T) {
	c := NewCache()

	c.Observe(1, "a", "1")
	c.Observe(2, "a", "2")

	if v, _ := c.Get("a"); v != "2" {
		t.Errorf("expected the later write to win, got %q", v)
	}
}

func TestCache_ObserveIgnoresOutOfOrderIndex(t *testing.T) {
	c := NewCache()

	c.Observe(5, "a", "5")
	c.Observe(3, "a", "3") // stale relative to lastFolded, must be ignored

	if v, _ := c.Get("a"); v != "5" {
		t.Errorf("stale observe should not overwrite, got %q", v)
	}
	if c.LastFolded() != 5 {
		t.Errorf("expected lastFolded to stay at 5, got %d", c.LastFolded())
	}
}

func TestCache_InvalidateFromDropsKnowledgeOnTruncation(t *testing.T) {
	c := NewCache()
	c.Observe(1, "a", "1")
	c.Observe(2, "b", "2")

	c.InvalidateFrom(2)

	if _, ok := c.Get("a"); ok {
		t.Error("cache should be empty after an invalidation covering its folded range")
	}
	if c.LastFolded() != 0 {
		t.Errorf("expected lastFolded reset to 0, got %d", c.LastFolded())
	}
}

func TestCache_InvalidateFromAboveLastFoldedIsNoop(t *testing.T) {
	c := NewCache()
	c.Observe(1, "a", "1")

	c.InvalidateFrom(5) // nothing folded that high yet

	if v, ok := c.Get("a"); !ok || v != "1" {
		t.Errorf("invalidation past lastFolded should not touch existing state, got %q ok=%v", v, ok)
	}
}
