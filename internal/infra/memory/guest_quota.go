package memory

import (
	"context"
	"sync"
)

// GuestQuota keeps guest submission counters in process memory.
type GuestQuota struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewGuestQuota() *GuestQuota {
	return &GuestQuota{counts: make(map[string]int)}
}

func (q *GuestQuota) Count(_ context.Context, guestID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts[guestID], nil
}

func (q *GuestQuota) Increment(_ context.Context, guestID string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts[guestID]++
	return q.counts[guestID], nil
}

func (q *GuestQuota) Decrement(_ context.Context, guestID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.counts[guestID] > 0 {
		q.counts[guestID]--
	}
	return nil
}

func (q *GuestQuota) Reset(_ context.Context, guestID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.counts, guestID)
	return nil
}

// Set seeds a counter, mirroring a value already held by the client.
func (q *GuestQuota) Set(guestID string, count int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.counts[guestID] = count
}
