package ingest

import (
	"sync"
	"time"
)

// Guard collapses concurrent duplicate ingestion triggers for the same
// logical target within one process lifetime. It is best-effort coalescing:
// the loser of TryAcquire does not join the winner's result, it simply
// declines to start.
type Guard struct {
	mu      sync.Mutex
	entries map[string]*guardEntry
}

type guardEntry struct {
	running         bool
	startedAt       time.Time
	lastCompletedAt *time.Time
	lastFailedAt    *time.Time
}

func NewGuard() *Guard {
	return &Guard{entries: make(map[string]*guardEntry)}
}

// TryAcquire registers an in-flight run for key. Returns false when a live
// run already exists.
func (g *Guard) TryAcquire(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry := g.entries[key]
	if entry != nil && entry.running {
		return false
	}
	if entry == nil {
		entry = &guardEntry{}
		g.entries[key] = entry
	}
	entry.running = true
	entry.startedAt = time.Now()
	return true
}

// Release clears the in-flight mark and records the outcome timestamp. It
// must run regardless of how the ingestion body ended.
func (g *Guard) Release(key string, succeeded bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry := g.entries[key]
	if entry == nil {
		return
	}
	entry.running = false
	now := time.Now()
	if succeeded {
		entry.lastCompletedAt = &now
	} else {
		entry.lastFailedAt = &now
	}
}

// Running reports whether a live run exists for key.
func (g *Guard) Running(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry := g.entries[key]
	return entry != nil && entry.running
}

// LastCompleted returns the completion timestamp of the most recent
// successful run, or nil.
func (g *Guard) LastCompleted(key string) *time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry := g.entries[key]
	if entry == nil {
		return nil
	}
	return entry.lastCompletedAt
}
