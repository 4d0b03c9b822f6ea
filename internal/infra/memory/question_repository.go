package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"nursing-quiz-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches questions from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error)
}

// QuestionRepository caches question lists per query with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedQuestions
}

type cachedQuestions struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuestions),
	}
}

// FetchQuestions returns a copy of the cached list so callers may shuffle it.
func (r *QuestionRepository) FetchQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	key := query.CacheKey()
	if questions, ok := r.lookup(key); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(key, func() (interface{}, error) {
		if questions, ok := r.lookup(key); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx, query)
		if err != nil {
			return nil, err
		}

		if r.ttl > 0 {
			r.mu.Lock()
			r.cache[key] = cachedQuestions{
				questions: questions,
				expiresAt: r.clock().Add(r.ttlWithJitter()),
			}
			r.mu.Unlock()
		}
		return copyQuestions(questions), nil
	})
	if err != nil {
		return nil, err
	}
	return copyQuestions(result.([]domain.Question)), nil
}

func (r *QuestionRepository) lookup(key string) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[key]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return copyQuestions(entry.questions), true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

func copyQuestions(in []domain.Question) []domain.Question {
	return append([]domain.Question(nil), in...)
}

// StaticQuestionLoader filters an in-memory question bank (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	out := make([]domain.Question, 0, query.Limit)
	for _, q := range l.questions {
		if q.ExamType != query.ExamType {
			continue
		}
		if query.Difficulty != "" && q.Difficulty != query.Difficulty {
			continue
		}
		if query.Category != "" && q.Category != query.Category {
			continue
		}
		out = append(out, q)
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}
