package network

import (
	"net"
	"sync"
	"time"
)

// ConnectionLimiter decides whether a freshly accepted connection may
// be served. Implementations must be safe for concurrent use by every
// accept loop.
type ConnectionLimiter interface {
	Allow(addr net.Addr) bool
}

type AlwaysAllowConnection struct{}

func (limiter AlwaysAllowConnection) Allow(addr net.Addr) bool {
	return true
}

// NewRateLimiter allows at most limit connections per cooldown window,
// counted across all clients. Connections over the limit are refused
// until the window rolls over.
func NewRateLimiter(limit int, cooldown time.Duration) ConnectionLimiter {
	return &rateLimiter{
		limit:     limit,
		cooldown:  cooldown,
		startTime: time.Now(),
	}
}

type rateLimiter struct {
	limit    int
	cooldown time.Duration

	mu        sync.Mutex
	counter   int
	startTime time.Time
}

func (limiter *rateLimiter) Allow(addr net.Addr) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	if time.Since(limiter.startTime) >= limiter.cooldown {
		limiter.counter = 0
		limiter.startTime = time.Now()
	}
	if limiter.counter < limiter.limit {
		limiter.counter++
		return true
	}
	return false
}
