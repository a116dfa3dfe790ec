package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type client struct {
	lim *rate.Limiter
}

// RateLimiter gives each client a token bucket holding limit requests that
// refills over window. A limit of zero disables it.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*client
	now     func() time.Time
}

// NewRateLimiter allows limit requests per window for each client.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

func (l *RateLimiter) every() rate.Limit {
	return rate.Every(l.window / time.Duration(l.limit))
}

// SetLimit changes the limit for existing and future clients.
func (l *RateLimiter) SetLimit(limit int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limit = limit
	if limit <= 0 {
		return
	}
	now := l.now()
	for _, c := range l.clients {
		c.lim.SetLimitAt(now, l.every())
		c.lim.SetBurstAt(now, limit)
	}
}

// Limit returns the current limit.
func (l *RateLimiter) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.limit
}

// Allow takes a token for key. It returns whether the request may proceed,
// how many requests remain and when the next one would be admitted.
func (l *RateLimiter) Allow(key string) (bool, int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.limit <= 0 {
		return true, 0, now
	}
	c, ok := l.clients[key]
	if !ok {
		c = &client{lim: rate.NewLimiter(l.every(), l.limit)}
		l.clients[key] = c
	}
	if !c.lim.AllowN(now, 1) {
		missing := 1 - c.lim.TokensAt(now)
		wait := time.Duration(missing / float64(c.lim.Limit()) * float64(time.Second))
		return false, 0, now.Add(wait)
	}
	return true, int(c.lim.TokensAt(now)), now
}

// Cleanup drops clients whose bucket has refilled and returns how many went.
func (l *RateLimiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	removed := 0
	for k, c := range l.clients {
		if c.lim.TokensAt(now) >= float64(c.lim.Burst()) {
			delete(l.clients, k)
			removed++
		}
	}
	return removed
}

// Middleware rejects clients over the limit with 429. Clients are keyed by
// gin's ClientIP, which only honours forwarding headers from trusted proxies.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining, next := l.Allow(c.ClientIP())
		limit := l.Limit()
		if limit <= 0 {
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		if !ok {
			retry := int(math.Ceil(next.Sub(l.now()).Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(retry))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
