package http

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultWritesPerMinute = 60
	// heavyWriteCost is charged for writes that replace or mirror the
	// whole document: JSON import and the sheets endpoints.
	heavyWriteCost = 10
	bucketIdleTTL  = 10 * time.Minute
)

// writeLimiter is a per-client token bucket over mutating requests. Each
// bucket holds up to perMinute tokens and refills at perMinute per minute.
type writeLimiter struct {
	perMinute int
	now       func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	done     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newWriteLimiter(perMinute int) *writeLimiter {
	wl := &writeLimiter{
		perMinute: perMinute,
		now:       time.Now,
		buckets:   make(map[string]*bucket),
		done:      make(chan struct{}),
	}
	go wl.sweepLoop()
	return wl
}

// writeCost returns the tokens a request spends; reads are free.
func writeCost(r *http.Request) int {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return 0
	}
	if r.URL.Path == "/api/import" || strings.Contains(r.URL.Path, "/sheets/") {
		return heavyWriteCost
	}
	return 1
}

// take spends cost tokens of client's bucket and reports whether it had
// enough. A refused request spends nothing.
func (wl *writeLimiter) take(client string, cost int, metrics *securityMetrics) bool {
	if cost <= 0 {
		return true
	}
	wl.mu.Lock()
	defer wl.mu.Unlock()

	now := wl.now()
	limit := float64(wl.perMinute)
	b, ok := wl.buckets[client]
	if !ok {
		b = &bucket{tokens: limit, seen: now}
		wl.buckets[client] = b
	}
	b.tokens = min(limit, b.tokens+now.Sub(b.seen).Minutes()*limit)
	b.seen = now

	if b.tokens < float64(cost) {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	b.tokens -= float64(cost)
	return true
}

func (wl *writeLimiter) sweepLoop() {
	ticker := time.NewTicker(bucketIdleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			wl.sweep()
		case <-wl.done:
			return
		}
	}
}

// sweep drops buckets idle long enough to have refilled completely.
func (wl *writeLimiter) sweep() {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	cutoff := wl.now().Add(-bucketIdleTTL)
	for client, b := range wl.buckets {
		if b.seen.Before(cutoff) {
			delete(wl.buckets, client)
		}
	}
}

func (wl *writeLimiter) stop() {
	wl.stopOnce.Do(func() { close(wl.done) })
}
