package handlers

import (
	"sync"
	"time"
)

// Register and login share one budget per client address.
const (
	AuthAttempts = 5
	AuthWindow   = 15 * time.Minute
)

// RateLimiter allows at most limit attempts per client within each window.
type RateLimiter struct {
	attempts map[string]int
	limit    int
	mutex    sync.Mutex
	window   time.Duration
	done     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		attempts: make(map[string]int),
		limit:    limit,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if rl.attempts[ip] >= rl.limit {
		return false
	}
	rl.attempts[ip]++
	return true
}

// Stop ends the cleanup goroutine.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mutex.Lock()
			rl.attempts = make(map[string]int)
			rl.mutex.Unlock()
		}
	}
}
