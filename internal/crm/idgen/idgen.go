// Package idgen supplies identifiers for new domain records.
package idgen

import (
	"sync"
	"time"
)

// Supplier hands out identifiers unique within the process lifetime.
type Supplier interface {
	Next() int64
}

// Clock issues millisecond-epoch ids, bumping forward on collision so a
// burst of creates (such as bulk logging) never repeats a value.
type Clock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClock returns a Clock backed by time.Now.
func NewClock() *Clock {
	return &Clock{now: time.Now}
}

func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.now().UnixMilli()
	if id <= c.last {
		id = c.last + 1
	}
	c.last = id
	return id
}

// Sequential issues 1, 2, 3, ... for deterministic tests.
type Sequential struct {
	mu   sync.Mutex
	next int64
}

func (s *Sequential) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return s.next
}
