package server

import (
	"sync"
	"time"
)

// clientClock follows a client's audio clock between requests: every
// request carrying a time resets it, and in between it runs on wall time.
type clientClock struct {
	mu   sync.Mutex
	wall func() time.Time
	at   time.Time
	now  float64
}

func newClientClock(wall func() time.Time) *clientClock {
	return &clientClock{wall: wall, at: wall()}
}

func (c *clientClock) observe(now float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at, c.now = c.wall(), now
}

func (c *clientClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now + c.wall().Sub(c.at).Seconds()
}
