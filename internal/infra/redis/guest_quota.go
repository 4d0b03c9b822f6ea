package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// GuestQuota stores guest submission counters as plain integers:
// guestQuizCount:{guestID} -> n. INCR keeps concurrent submissions from the
// same guest from racing. Counters persist until Reset.
type GuestQuota struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGuestQuota builds the quota. Counters never expire when ttl is zero; a
// positive ttl is only meant for throwaway environments.
func NewGuestQuota(client *redis.Client, ttl time.Duration) *GuestQuota {
	return &GuestQuota{client: client, ttl: ttl}
}

func (q *GuestQuota) Count(ctx context.Context, guestID string) (int, error) {
	n, err := q.client.Get(ctx, q.key(guestID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (q *GuestQuota) Increment(ctx context.Context, guestID string) (int, error) {
	key := q.key(guestID)
	pipe := q.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if q.ttl > 0 {
		pipe.Expire(ctx, key, q.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

// decrementFloor never takes a counter below zero, nor recreates a missing one.
var decrementFloor = redis.NewScript(`
local n = tonumber(redis.call("GET", KEYS[1]) or "0")
if n > 0 then
	return redis.call("DECR", KEYS[1])
end
return 0
`)

func (q *GuestQuota) Decrement(ctx context.Context, guestID string) error {
	return decrementFloor.Run(ctx, q.client, []string{q.key(guestID)}).Err()
}

func (q *GuestQuota) Reset(ctx context.Context, guestID string) error {
	return q.client.Del(ctx, q.key(guestID)).Err()
}

func (q *GuestQuota) key(guestID string) string {
	return "guestQuizCount:" + guestID
}
