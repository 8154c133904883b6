package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rewardbase/internal/caching"
)

// Default rate-limit policy: 30 requests per fixed 60-second window,
// refilled in whole-window increments.
const (
	DefaultRateLimit  = 30
	DefaultRateWindow = 60 * time.Second
)

// RateLimitStore counts requests per key within the current window. The
// counting logic is decoupled from storage: the in-memory store serves
// single-process deployments, the Redis-backed one multi-process.
type RateLimitStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

type windowCount struct {
	start time.Time
	count int64
}

type memoryRateLimitStore struct {
	mu        sync.Mutex
	counts    map[string]*windowCount
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryRateLimitStore() RateLimitStore {
	return NewMemoryRateLimitStoreWithClock(time.Now)
}

// NewMemoryRateLimitStoreWithClock takes the clock as a parameter so window
// rollover is testable.
func NewMemoryRateLimitStoreWithClock(now func() time.Time) RateLimitStore {
	return &memoryRateLimitStore{
		counts: make(map[string]*windowCount),
		now:    now,
	}
}

func (s *memoryRateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now, window)

	wc, ok := s.counts[key]
	if !ok || now.Sub(wc.start) >= window {
		wc = &windowCount{start: now.Truncate(window)}
		s.counts[key] = wc
	}
	wc.count++
	return wc.count, nil
}

// sweep drops expired windows at most once per window so one-off caller keys
// do not accumulate. Callers must hold s.mu.
func (s *memoryRateLimitStore) sweep(now time.Time, window time.Duration) {
	if now.Sub(s.lastSweep) < window {
		return
	}
	s.lastSweep = now
	for key, wc := range s.counts {
		if now.Sub(wc.start) >= window {
			delete(s.counts, key)
		}
	}
}

type redisRateLimitStore struct {
	cacheSvc caching.CacheService
}

func NewRedisRateLimitStore(cacheSvc caching.CacheService) RateLimitStore {
	return &redisRateLimitStore{cacheSvc: cacheSvc}
}

func (s *redisRateLimitStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return s.cacheSvc.IncrWindow(ctx, fmt.Sprintf("ratelimit:%s", key), window)
}

// RateLimiter applies a fixed-window limit per caller key.
type RateLimiter struct {
	store  RateLimitStore
	limit  int64
	window time.Duration
}

func NewRateLimiter(store RateLimitStore, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		store:  store,
		limit:  int64(limit),
		window: window,
	}
}

// Allow counts the request and reports whether it fits the current window.
// A store fault denies the request; access control fails closed.
func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return false, err
	}
	return count <= l.limit, nil
}
