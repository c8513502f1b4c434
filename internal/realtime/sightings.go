package realtime

import (
	"sync"
	"time"
)

// SightingCache records which trip ids were observed in recent feed
// snapshots, per stop, inside a sliding time window. A trip can drop out
// of a single snapshot (network hiccup, upstream republish) without
// having been cancelled; only absence spanning the full window counts as
// evidence the trip is gone.
//
// Shared by all concurrent requests. Single-process only: a multi-instance
// deployment would need a shared store here or accept duplicate
// missing-trip false negatives across instances.
type SightingCache struct {
	mu     sync.Mutex
	window time.Duration
	byStop map[string][]sighting
	now    func() time.Time
}

type sighting struct {
	tripID string
	seenAt time.Time
}

// NewSightingCache creates a cache with the given sliding window.
func NewSightingCache(window time.Duration) *SightingCache {
	return &SightingCache{
		window: window,
		byStop: make(map[string][]sighting),
		now:    time.Now,
	}
}

// Observe records that tripID was present in the current snapshot for
// stopID. Observe-if-absent and refresh are atomic per stop.
func (c *SightingCache) Observe(stopID, tripID string) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(stopID, now)

	for i, s := range c.byStop[stopID] {
		if s.tripID == tripID {
			c.byStop[stopID][i].seenAt = now
			return
		}
	}
	c.byStop[stopID] = append(c.byStop[stopID], sighting{tripID: tripID, seenAt: now})
}

// SeenRecently reports whether tripID was observed for stopID within the
// window.
func (c *SightingCache) SeenRecently(stopID, tripID string) bool {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked(stopID, now)

	for _, s := range c.byStop[stopID] {
		if s.tripID == tripID {
			return true
		}
	}
	return false
}

// pruneLocked drops sightings older than the window. Caller holds mu.
func (c *SightingCache) pruneLocked(stopID string, now time.Time) {
	entries := c.byStop[stopID]
	if len(entries) == 0 {
		return
	}

	kept := entries[:0]
	for _, s := range entries {
		if now.Sub(s.seenAt) <= c.window {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		delete(c.byStop, stopID)
		return
	}
	c.byStop[stopID] = kept
}
