package session

import (
	"errors"
	"testing"
	"time"
)

func TestLimiter_Allow(t *testing.T) {
	current := time.UnixMilli(1700000000000)
	l := NewLimiter(time.Second)
	l.now = func() time.Time { return current }

	if err := l.Allow(); err != nil {
		t.Fatalf("first Allow() error = %v", err)
	}

	current = current.Add(200 * time.Millisecond)
	if err := l.Allow(); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("Allow() after 200ms error = %v, want ErrRateLimited", err)
	}

	// A rejected attempt must not reset the window.
	current = current.Add(850 * time.Millisecond)
	if err := l.Allow(); err != nil {
		t.Errorf("Allow() 1050ms after the admitted send error = %v", err)
	}
}

func TestLimiter_ExactInterval(t *testing.T) {
	current := time.UnixMilli(1700000000000)
	l := NewLimiter(time.Second)
	l.now = func() time.Time { return current }

	if err := l.Allow(); err != nil {
		t.Fatalf("first Allow() error = %v", err)
	}
	current = current.Add(time.Second)
	if err := l.Allow(); err != nil {
		t.Errorf("Allow() at exactly the minimum interval error = %v", err)
	}
}

func TestLimiter_FirstSendAlwaysAllowed(t *testing.T) {
	l := NewLimiter(time.Hour)
	l.now = func() time.Time { return time.UnixMilli(1) }

	if err := l.Allow(); err != nil {
		t.Errorf("Allow() with no prior send error = %v", err)
	}
}
