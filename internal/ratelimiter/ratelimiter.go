package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateFunc returns the minimal interval between two calls for a key.
type RateFunc func(key string) time.Duration

// RateLimiter spaces out calls sharing the same key (a host, a chat).
type RateLimiter struct {
	rate     RateFunc
	lastSent map[string]time.Time
	mu       sync.Mutex
	log      *slog.Logger
}

func New(rate RateFunc, log *slog.Logger) *RateLimiter {
	return &RateLimiter{
		rate:     rate,
		lastSent: make(map[string]time.Time),
		log:      log,
	}
}

func Fixed(interval time.Duration) RateFunc {
	return func(string) time.Duration {
		return interval
	}
}

// Wait blocks until a call for key is allowed and reserves the slot.
func (rl *RateLimiter) Wait(ctx context.Context, key string) error {
	if rl == nil {
		return nil
	}

	for {
		rl.mu.Lock()
		lastSent, exists := rl.lastSent[key]
		delay := time.Duration(0)
		if exists {
			delay = getDelay(rl.rate(key), lastSent, time.Now())
		}
		if delay == 0 {
			rl.lastSent[key] = time.Now()
			rl.mu.Unlock()

			return nil
		}
		rl.mu.Unlock()

		rl.log.DebugContext(ctx, "Rate limiting call",
			"key", key,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func getDelay(
	rate time.Duration,
	lastSent time.Time,
	now time.Time,
) time.Duration {
	elapsed := now.Sub(lastSent)

	return max(rate-elapsed, 0)
}
