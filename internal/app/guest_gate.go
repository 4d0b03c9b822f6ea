package app

import (
	"context"
	"log"

	"nursing-quiz-service/internal/domain"
)

// DefaultGuestLimit is the number of quizzes a guest may submit before
// authenticating.
const DefaultGuestLimit = 5

// GuestQuota stores per-guest submission counters (in-memory, Redis, etc).
type GuestQuota interface {
	Count(ctx context.Context, guestID string) (int, error)
	// Increment adds one and returns the new value.
	Increment(ctx context.Context, guestID string) (int, error)
	Decrement(ctx context.Context, guestID string) error
	Reset(ctx context.Context, guestID string) error
}

// GuestGate decides whether a guest submission may proceed.
type GuestGate struct {
	quota    GuestQuota
	limit    int
	failOpen bool
}

// NewGuestGate builds a gate. failOpen selects what happens when the quota
// store is unreachable: allow the submission, or block it.
func NewGuestGate(quota GuestQuota, limit int, failOpen bool) *GuestGate {
	if limit <= 0 {
		limit = DefaultGuestLimit
	}
	return &GuestGate{quota: quota, limit: limit, failOpen: failOpen}
}

func (g *GuestGate) Limit() int { return g.limit }

// CheckAndIncrement consumes one attempt for guestID if any are left.
func (g *GuestGate) CheckAndIncrement(ctx context.Context, guestID string) domain.GuestAllowance {
	count, err := g.quota.Increment(ctx, guestID)
	if err != nil {
		log.Printf("guest quota increment %s: %v", guestID, err)
		return g.unavailable()
	}
	if count > g.limit {
		// roll back so the stored counter never passes the limit
		if err := g.quota.Decrement(ctx, guestID); err != nil {
			log.Printf("guest quota rollback %s: %v", guestID, err)
		}
		return domain.GuestAllowance{Allowed: false, Remaining: 0}
	}
	return domain.GuestAllowance{Allowed: true, Remaining: g.limit - count}
}

// Peek reports the allowance without consuming an attempt.
func (g *GuestGate) Peek(ctx context.Context, guestID string) domain.GuestAllowance {
	count, err := g.quota.Count(ctx, guestID)
	if err != nil {
		log.Printf("guest quota read %s: %v", guestID, err)
		return g.unavailable()
	}
	remaining := g.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return domain.GuestAllowance{Allowed: remaining > 0, Remaining: remaining}
}

// Reset clears the counter, used once a guest authenticates.
func (g *GuestGate) Reset(ctx context.Context, guestID string) error {
	return g.quota.Reset(ctx, guestID)
}

func (g *GuestGate) unavailable() domain.GuestAllowance {
	if g.failOpen {
		return domain.GuestAllowance{Allowed: true, Remaining: g.limit}
	}
	return domain.GuestAllowance{Allowed: false, Remaining: 0}
}
