package session

import (
	"errors"
	"sync"
	"time"
)

// MinSendInterval is the minimum spacing between admitted sends.
const MinSendInterval = time.Second

// ErrRateLimited indicates a send was attempted too soon after the
// previous one.
var ErrRateLimited = errors.New("you are sending messages too quickly, please wait a moment")

// Limiter enforces a minimum spacing between outgoing requests. It holds
// the timestamp of the last admitted request. Allow must be called only
// after validation has succeeded and before any store mutation, so a
// rate-limited attempt never shows up as a partial update.
type Limiter struct {
	mu          sync.Mutex
	minInterval time.Duration
	last        time.Time
	now         func() time.Time
}

// NewLimiter creates a limiter with the given minimum spacing.
func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Allow admits the request and records its timestamp, or fails with
// ErrRateLimited if the previously admitted request was less than the
// minimum interval ago.
func (l *Limiter) Allow() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.last.IsZero() && now.Sub(l.last) < l.minInterval {
		return ErrRateLimited
	}
	l.last = now
	return nil
}
