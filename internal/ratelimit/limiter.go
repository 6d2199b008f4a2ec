// SPDX-License-Identifier: MIT

// Package ratelimit implements upload admission control: a global token
// bucket plus per-client-IP buckets, both golang.org/x/time/rate.
package ratelimit

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"
)

var rateLimitExceeded = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "sparkledex",
		Name:      "ratelimit_exceeded_total",
		Help:      "Total upload admission rejections",
	},
	[]string{"limit_type"}, // limit_type=global|per_ip
)

// Config holds admission limiting configuration.
type Config struct {
	// Global limits
	GlobalRate  rate.Limit // tokens per second across all clients
	GlobalBurst int

	// Per-IP limits
	PerIPRate  rate.Limit
	PerIPBurst int

	// Cleanup interval for per-IP limiters
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		GlobalRate:      50,
		GlobalBurst:     100,
		PerIPRate:       5,
		PerIPBurst:      10,
		CleanupInterval: 5 * time.Minute,
	}
}

// Limiter gates upload requests before any body bytes are read.
type Limiter struct {
	mu     sync.Mutex
	config Config
	global *rate.Limiter
	perIP  map[string]*rate.Limiter

	lastCleanup time.Time
}

// New creates a new admission limiter with the given config.
func New(config Config) *Limiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	return &Limiter{
		config:      config,
		global:      rate.NewLimiter(config.GlobalRate, config.GlobalBurst),
		perIP:       make(map[string]*rate.Limiter),
		lastCleanup: time.Now(),
	}
}

// Allow reports whether one upload from clientIP is admitted. Global budget
// is checked first so a single IP cannot observe per-IP headroom that the
// whole instance no longer has.
func (l *Limiter) Allow(clientIP string) bool {
	if !l.globalLimiter().Allow() {
		rateLimitExceeded.WithLabelValues("global").Inc()
		return false
	}

	if !l.ipLimiter(clientIP).Allow() {
		rateLimitExceeded.WithLabelValues("per_ip").Inc()
		return false
	}

	l.maybeCleanup()
	return true
}

// Update swaps the limits at runtime (config hot reload). Existing per-IP
// buckets are discarded so new limits take effect immediately.
func (l *Limiter) Update(config Config) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if config.CleanupInterval <= 0 {
		config.CleanupInterval = l.config.CleanupInterval
	}
	l.config = config
	l.global = rate.NewLimiter(config.GlobalRate, config.GlobalBurst)
	l.perIP = make(map[string]*rate.Limiter)
	l.lastCleanup = time.Now()
}

// globalLimiter snapshots the global bucket under the lock; Update replaces
// it concurrently on config reload.
func (l *Limiter) globalLimiter() *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.global
}

func (l *Limiter) ipLimiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.perIP[ip]
	if !exists {
		limiter = rate.NewLimiter(l.config.PerIPRate, l.config.PerIPBurst)
		l.perIP[ip] = limiter
	}
	return limiter
}

// maybeCleanup drops all per-IP limiters once the cleanup interval has
// passed. Dropping everything is coarse but bounds the map without tracking
// per-entry access times.
func (l *Limiter) maybeCleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if time.Since(l.lastCleanup) < l.config.CleanupInterval {
		return
	}
	l.perIP = make(map[string]*rate.Limiter)
	l.lastCleanup = time.Now()
}
