// Package ratelimit throttles abusive clients on the authentication
// endpoints. A memory limiter covers single-instance deployments; a
// Redis limiter covers multi-instance ones.
package ratelimit

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ErrRateLimited is returned when a key has exhausted its window.
var ErrRateLimited = errors.New("ratelimit: rate limit exceeded")

// Limiter decides whether a keyed request may proceed.
type Limiter interface {
	// Allow reports whether one request is allowed for the key.
	Allow(ctx context.Context, key string) (bool, error)

	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error

	// Close releases any resources held by the limiter.
	Close() error
}

// Config holds middleware configuration.
type Config struct {
	// Rate is the number of requests allowed per window.
	Rate int

	// Window is the time window for the rate limit.
	Window time.Duration

	// KeyFunc extracts the rate limit key from a request. Defaults to
	// the client IP.
	KeyFunc func(r *http.Request) string

	// OnLimited writes the response for a throttled request. Defaults
	// to a JSON 429.
	OnLimited func(w http.ResponseWriter, r *http.Request)
}

// DefaultConfig suits the login and signup endpoints: 20 attempts per
// minute per client IP.
func DefaultConfig() *Config {
	return &Config{
		Rate:   20,
		Window: time.Minute,
	}
}

// GetClientIP extracts the client IP, preferring proxy headers.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	addr := r.RemoteAddr
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i]
		}
		if addr[i] == ']' {
			break
		}
	}
	return addr
}

type entry struct {
	count    int
	windowAt time.Time
}

// MemoryLimiter is an in-memory fixed-window limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	rate    int
	window  time.Duration
	done    chan struct{}

	now func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter creates an in-memory limiter and starts its cleanup
// goroutine.
func NewMemoryLimiter(rate int, window time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		entries: make(map[string]*entry),
		rate:    rate,
		window:  window,
		done:    make(chan struct{}),
		now:     time.Now,
	}
	go m.cleanup()
	return m
}

// Allow reports whether one request is allowed for the key.
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	e, ok := m.entries[key]
	if !ok || now.After(e.windowAt) {
		m.entries[key] = &entry{count: 1, windowAt: now.Add(m.window)}
		return m.rate >= 1, nil
	}

	if e.count+1 > m.rate {
		return false, nil
	}
	e.count++
	return true, nil
}

// Reset clears the counter for the key.
func (m *MemoryLimiter) Reset(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close stops the cleanup goroutine.
func (m *MemoryLimiter) Close() error {
	close(m.done)
	return nil
}

func (m *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(m.window)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *MemoryLimiter) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if now.After(e.windowAt) {
			delete(m.entries, key)
		}
	}
}

// Middleware applies rate limiting in front of a handler. Limiter
// errors fail open: the request proceeds and the error is logged.
func Middleware(limiter Limiter, cfg *Config) func(http.Handler) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = GetClientIP
	}
	onLimited := cfg.OnLimited
	if onLimited == nil {
		onLimited = func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"message": "Too many requests, please try again later",
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Printf("ratelimit: check for key %s failed: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				onLimited(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
