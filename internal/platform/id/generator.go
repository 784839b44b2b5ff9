package id

import (
	"sync"
	"time"
)

// Generator creates round identifiers.
type Generator interface {
	NewID() int64
}

// ClockGenerator issues wall-clock milliseconds, bumped when needed so that
// every id is strictly greater than the previous one.
type ClockGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClockGenerator() *ClockGenerator {
	return &ClockGenerator{now: time.Now}
}

func NewClockGeneratorWithNow(now func() time.Time) *ClockGenerator {
	if now == nil {
		now = time.Now
	}
	return &ClockGenerator{now: now}
}

func (g *ClockGenerator) NewID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	next := g.now().UnixMilli()
	if next <= g.last {
		next = g.last + 1
	}
	g.last = next
	return next
}

// Observe moves the floor up so ids issued afterwards never collide with existing ones.
func (g *ClockGenerator) Observe(existing int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing > g.last {
		g.last = existing
	}
}
