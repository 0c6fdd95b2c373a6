// Package ratelimit counts messages per Telegram user in fixed one-minute
// windows.
package ratelimit

import (
	"sync"
	"time"
)

const (
	window   = time.Minute
	staleAge = 10 * time.Minute
)

// Limiter provides rate limiting functionality
type Limiter struct {
	mu           sync.Mutex
	users        map[int64]*userInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time

	// Configuration
	messagesPerMinute int
	cleanupInterval   time.Duration
}

type userInfo struct {
	windowStart time.Time
	lastSeen    time.Time
	messages    int
}

// Config holds rate limiter configuration
type Config struct {
	MessagesPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MessagesPerMinute: 30,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a limiter and starts its cleanup goroutine; call Stop
// when done.
func NewLimiter(config Config) *Limiter {
	return newLimiter(config, time.Now)
}

func newLimiter(config Config, now func() time.Time) *Limiter {
	defaults := DefaultConfig()
	if config.MessagesPerMinute <= 0 {
		config.MessagesPerMinute = defaults.MessagesPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}

	rl := &Limiter{
		users:             make(map[int64]*userInfo),
		stopCleanup:       make(chan struct{}),
		now:               now,
		messagesPerMinute: config.MessagesPerMinute,
		cleanupInterval:   config.CleanupInterval,
	}
	go rl.startCleanup()
	return rl
}

// Allow reports whether userID may send another message in the current window.
func (rl *Limiter) Allow(userID int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	u, exists := rl.users[userID]
	if !exists || now.Sub(u.windowStart) >= window {
		rl.users[userID] = &userInfo{windowStart: now, lastSeen: now, messages: 1}
		return true
	}

	u.messages++
	u.lastSeen = now
	return u.messages <= rl.messagesPerMinute
}

func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries forgets users idle for longer than staleAge.
func (rl *Limiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-staleAge)
	for id, u := range rl.users {
		if u.lastSeen.Before(cutoff) {
			delete(rl.users, id)
		}
	}
}

// ActiveUsers returns the number of currently tracked users
func (rl *Limiter) ActiveUsers() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.users)
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}
