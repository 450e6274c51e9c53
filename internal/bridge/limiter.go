package bridge

import (
	"net"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// ConnLimiter tracks a token-bucket rate limiter per client IP, evicting
// each entry ten minutes after it is created (lookups do not extend
// that) so long-running gateways don't accumulate one limiter per
// address forever. Adapted from the teacher's IPRateLimiter,
// which guards AIM login attempts the same way.
type ConnLimiter struct {
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
}

// NewConnLimiter returns a limiter allowing rps sustained new
// connections per second per IP, with the given burst allowance.
func NewConnLimiter(rps float64, burst int) *ConnLimiter {
	return &ConnLimiter{
		limiters: cache.New(10*time.Minute, 15*time.Minute),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a new connection from addr should be accepted.
func (c *ConnLimiter) Allow(addr net.Addr) bool {
	ip := hostOf(addr)
	return c.limiterFor(ip).Allow()
}

func (c *ConnLimiter) limiterFor(ip string) *rate.Limiter {
	if v, ok := c.limiters.Get(ip); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(c.rps, c.burst)
	c.limiters.SetDefault(ip, l)
	return l
}

func hostOf(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// ConnCounter caps simultaneous connections per IP, independent of the
// rate at which they arrive. Acquire/Release are called concurrently
// from one goroutine per accepted connection, so access to counts is
// guarded by a mutex.
type ConnCounter struct {
	max    int
	mu     sync.Mutex
	counts map[string]int
}

// NewConnCounter returns a counter allowing at most max simultaneous
// connections from any one IP.
func NewConnCounter(max int) *ConnCounter {
	return &ConnCounter{max: max, counts: make(map[string]int)}
}

// Acquire reports whether one more connection from addr fits under the
// per-IP ceiling, and if so reserves a slot for it.
func (c *ConnCounter) Acquire(addr net.Addr) bool {
	ip := hostOf(addr)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[ip] >= c.max {
		return false
	}
	c.counts[ip]++
	return true
}

// Release frees the slot reserved by a prior Acquire.
func (c *ConnCounter) Release(addr net.Addr) {
	ip := hostOf(addr)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.counts[ip] > 0 {
		c.counts[ip]--
	}
	if c.counts[ip] == 0 {
		delete(c.counts, ip)
	}
}
