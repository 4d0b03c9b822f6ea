package memory

import (
	"context"
	"sync"
	"time"

	"nursing-quiz-service/internal/domain"
)

// ResultReader loads results from durable storage.
type ResultReader interface {
	Get(ctx context.Context, resultID string) (domain.Result, error)
}

// ResultStore keeps submitted results for the results view. Entries expire
// after ttl; a zero ttl keeps them until the process exits. Misses are served
// from the fallback reader when one is set.
type ResultStore struct {
	ttl      time.Duration
	clock    func() time.Time
	fallback ResultReader

	mu      sync.RWMutex
	results map[string]storedResult
}

type storedResult struct {
	result    domain.Result
	expiresAt time.Time
}

func NewResultStore(ttl time.Duration) *ResultStore {
	return &ResultStore{
		ttl:     ttl,
		clock:   time.Now,
		results: make(map[string]storedResult),
	}
}

// WithFallback sets the reader consulted for results not held in memory.
func (s *ResultStore) WithFallback(r ResultReader) *ResultStore {
	s.fallback = r
	return s
}

func (s *ResultStore) Save(_ context.Context, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	s.evictLocked(now)
	entry := storedResult{result: result}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}
	s.results[result.ID] = entry
	return nil
}

func (s *ResultStore) Get(ctx context.Context, resultID string) (domain.Result, error) {
	s.mu.RLock()
	entry, ok := s.results[resultID]
	hit := ok && !s.expired(entry, s.clock())
	s.mu.RUnlock()
	if hit {
		return entry.result, nil
	}
	if s.fallback == nil {
		return domain.Result{}, domain.ErrResultNotFound
	}
	result, err := s.fallback.Get(ctx, resultID)
	if err != nil {
		return domain.Result{}, err
	}
	_ = s.Save(ctx, result)
	return result, nil
}

// Record lets the store double as a result recorder.
func (s *ResultStore) Record(ctx context.Context, result domain.Result) error {
	return s.Save(ctx, result)
}

func (s *ResultStore) expired(entry storedResult, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !entry.expiresAt.After(now)
}

func (s *ResultStore) evictLocked(now time.Time) {
	for id, entry := range s.results {
		if s.expired(entry, now) {
			delete(s.results, id)
		}
	}
}
