// Package fixtures provides deterministic time and id sources for tests.
package fixtures

import (
	"fmt"
	"sync"
	"time"
)

// ReferenceTime is the instant every Clock starts from unless told otherwise.
func ReferenceTime() time.Time {
	return time.Date(2025, time.January, 27, 9, 0, 0, 0, time.UTC)
}

// Clock provides a controllable time source.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward and returns the new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	return c.current
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// IDGenerator yields prefix-1, prefix-2, ...
type IDGenerator struct {
	mu      sync.Mutex
	prefix  string
	counter uint64
}

func NewIDGenerator(prefix string) *IDGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &IDGenerator{prefix: prefix}
}

func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
