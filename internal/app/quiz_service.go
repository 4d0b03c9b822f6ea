package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"nursing-quiz-service/internal/domain"

	"github.com/google/uuid"
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// QuestionSource returns scorable questions for a query.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error)
}

// ResultRecorder is the best-effort sink for submitted results.
type ResultRecorder interface {
	Record(ctx context.Context, result domain.Result) error
}

// ResultStore keeps full results so a results view can fetch the breakdown.
type ResultStore interface {
	Save(ctx context.Context, result domain.Result) error
	Get(ctx context.Context, resultID string) (domain.Result, error)
}

// Options tunes the quiz service.
type Options struct {
	DefaultCount int
	MaxCount     int
	// Tick is the timer interval; zero disables the background timer.
	Tick          time.Duration
	RecordTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.DefaultCount <= 0 {
		o.DefaultCount = 10
	}
	if o.MaxCount <= 0 {
		o.MaxCount = 100
	}
	if o.RecordTimeout <= 0 {
		o.RecordTimeout = 5 * time.Second
	}
	return o
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionSource
	results   ResultStore
	recorder  ResultRecorder
	gate      *GuestGate
	opts      Options

	now     func() time.Time
	newID   func() string
	shuffle func([]domain.Question)

	mu       sync.Mutex
	timers   map[string]context.CancelFunc
	inflight sync.WaitGroup
}

// NewQuizService wires the service. recorder may be nil.
func NewQuizService(sessions SessionRepository, questions QuestionSource, results ResultStore, gate *GuestGate, recorder ResultRecorder, opts Options) *QuizService {
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	var rndMu sync.Mutex
	return &QuizService{
		sessions:  sessions,
		questions: questions,
		results:   results,
		recorder:  recorder,
		gate:      gate,
		opts:      opts.withDefaults(),
		now:       time.Now,
		newID:     uuid.NewString,
		shuffle: func(qs []domain.Question) {
			rndMu.Lock()
			defer rndMu.Unlock()
			rnd.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
		},
		timers: make(map[string]context.CancelFunc),
	}
}

// WithClock replaces the time source; used by tests.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// WithShuffle replaces the question shuffle; used by tests to keep order.
func (s *QuizService) WithShuffle(shuffle func([]domain.Question)) *QuizService {
	s.shuffle = shuffle
	return s
}

// NormalizeQuery applies defaults and bounds to a question query.
func (s *QuizService) NormalizeQuery(q domain.QuestionQuery) (domain.QuestionQuery, error) {
	q.ExamType = strings.TrimSpace(q.ExamType)
	q.Category = strings.TrimSpace(q.Category)
	if q.ExamType == "" {
		return q, fmt.Errorf("%w: examType is required", domain.ErrInvalidQuery)
	}
	if q.Difficulty == "" {
		q.Difficulty = domain.DifficultyIntermediate
	}
	if !q.Difficulty.Valid() {
		return q, fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidQuery, q.Difficulty)
	}
	if q.Limit <= 0 {
		q.Limit = s.opts.DefaultCount
	}
	if q.Limit > s.opts.MaxCount {
		q.Limit = s.opts.MaxCount
	}
	return q, nil
}

// Questions serves the question source contract directly.
func (s *QuizService) Questions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	query, err := s.NormalizeQuery(query)
	if err != nil {
		return nil, err
	}
	questions, err := s.questions.FetchQuestions(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(questions) > query.Limit {
		questions = questions[:query.Limit]
	}
	return questions, nil
}

// Start fetches questions and opens a session. A fetch failure is treated as
// an empty question list.
func (s *QuizService) Start(ctx context.Context, learner domain.Learner, query domain.QuestionQuery) (domain.SessionView, error) {
	query, err := s.NormalizeQuery(query)
	if err != nil {
		return domain.SessionView{}, err
	}
	if learner.IsGuest() && learner.GuestID == "" {
		learner.GuestID = s.newID()
	}

	session := NewSessionWithClock(s.newID(), query.ExamType, learner, s.now)

	questions, err := s.questions.FetchQuestions(ctx, query)
	if err != nil {
		log.Printf("fetch questions for %s: %v", query.ExamType, err)
		questions = nil
	}
	// The caller may have gone away while the fetch was in flight.
	if err := ctx.Err(); err != nil {
		return domain.SessionView{}, err
	}
	if len(questions) > query.Limit {
		questions = questions[:query.Limit]
	}
	questions = append([]domain.Question(nil), questions...)
	s.shuffle(questions)

	view := session.Load(questions)
	if view.Phase != domain.PhaseActive {
		return view, nil
	}
	s.sessions.Put(session)
	s.startTimer(session)
	return view, nil
}

// Session returns the current snapshot of a live session.
func (s *QuizService) Session(_ context.Context, caller domain.Learner, sessionID string) (domain.SessionView, error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.View(), nil
}

// SelectAnswer records an answer for the current question.
func (s *QuizService) SelectAnswer(_ context.Context, caller domain.Learner, sessionID, answer string) (domain.SessionView, error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.Select(answer)
}

// Next advances the session. Moving past the final question submits it, in
// which case the outcome is returned.
func (s *QuizService) Next(ctx context.Context, caller domain.Learner, sessionID string) (domain.SessionView, *domain.SubmitOutcome, error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return domain.SessionView{}, nil, err
	}
	view, submit, err := session.Next()
	if err != nil || !submit {
		return view, nil, err
	}
	outcome, err := s.submit(ctx, caller, session)
	if err != nil {
		return view, nil, err
	}
	return session.View(), &outcome, nil
}

// Previous moves the session back one question.
func (s *QuizService) Previous(_ context.Context, caller domain.Learner, sessionID string) (domain.SessionView, error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.Previous()
}

// ToggleBookmark flips the bookmark on the current question.
func (s *QuizService) ToggleBookmark(_ context.Context, caller domain.Learner, sessionID string) (domain.SessionView, error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return domain.SessionView{}, err
	}
	return session.ToggleBookmark()
}

// Submit finalizes the session. Guests past their limit get AuthRequired and
// the session stays active.
func (s *QuizService) Submit(ctx context.Context, caller domain.Learner, sessionID string) (domain.SubmitOutcome, error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	return s.submit(ctx, caller, session)
}

func (s *QuizService) submit(ctx context.Context, caller domain.Learner, session *Session) (domain.SubmitOutcome, error) {
	// A guest who signed in after starting submits as that learner.
	if !caller.IsGuest() {
		session.Adopt(caller.UserID)
	}
	learner := session.Learner()
	gated := learner.IsGuest() && s.gate != nil

	var allowance domain.GuestAllowance
	attempt, admitted, err := session.Freeze(func() bool {
		if !gated {
			return true
		}
		allowance = s.gate.CheckAndIncrement(ctx, learner.GuestID)
		return allowance.Allowed
	})
	if err != nil {
		return domain.SubmitOutcome{}, err
	}
	if !admitted {
		return domain.SubmitOutcome{AuthRequired: true, Remaining: allowance.Remaining}, nil
	}
	outcome := domain.SubmitOutcome{}
	if gated {
		outcome.Remaining = allowance.Remaining
	}

	s.stopTimer(session.ID())

	result := ComputeResult(attempt)
	result.ID = s.newID()
	result.SessionID = session.ID()
	result.LearnerID = learner.UserID
	result.Guest = learner.IsGuest()
	result.SubmittedAt = s.now().UTC()

	if s.results != nil {
		if err := s.results.Save(ctx, result); err != nil {
			log.Printf("store result %s: %v", result.ID, err)
		}
	}
	s.record(result)

	session.Terminate()
	s.sessions.Delete(session.ID())

	outcome.Result = &result
	return outcome, nil
}

// Abandon drops a session without producing a result.
func (s *QuizService) Abandon(_ context.Context, caller domain.Learner, sessionID string) error {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return err
	}
	s.stopTimer(sessionID)
	session.Terminate()
	s.sessions.Delete(sessionID)
	return nil
}

// Subscribe returns a channel of session snapshots.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, caller domain.Learner, sessionID string) (<-chan domain.SessionView, func(), error) {
	session, err := s.lookup(caller, sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// lookup returns the session if caller owns it. Sessions of other learners
// are reported as missing.
func (s *QuizService) lookup(caller domain.Learner, sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok || !session.OwnedBy(caller) {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Result returns a stored result with its per-question breakdown.
func (s *QuizService) Result(ctx context.Context, resultID string) (domain.Result, error) {
	if s.results == nil {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return s.results.Get(ctx, resultID)
}

// RecordResult persists a result posted by a client.
func (s *QuizService) RecordResult(ctx context.Context, result domain.Result) (domain.Result, error) {
	if result.ID == "" {
		result.ID = s.newID()
	}
	if result.SubmittedAt.IsZero() {
		result.SubmittedAt = s.now().UTC()
	}
	if s.results != nil {
		if err := s.results.Save(ctx, result); err != nil {
			return domain.Result{}, err
		}
	}
	if s.recorder != nil {
		if err := s.recorder.Record(ctx, result); err != nil {
			return domain.Result{}, err
		}
	}
	return result, nil
}

// GuestAllowance reports the remaining guest attempts without consuming one.
func (s *QuizService) GuestAllowance(ctx context.Context, guestID string) domain.GuestAllowance {
	if s.gate == nil {
		return domain.GuestAllowance{Allowed: true, Remaining: DefaultGuestLimit}
	}
	return s.gate.Peek(ctx, guestID)
}

// ClaimGuest resets a guest's counter after the learner authenticated.
func (s *QuizService) ClaimGuest(ctx context.Context, learner domain.Learner, guestID string) error {
	if learner.IsGuest() {
		return domain.ErrUnauthorized
	}
	if s.gate == nil || guestID == "" {
		return nil
	}
	return s.gate.Reset(ctx, guestID)
}

// Close stops all timers and waits for pending result writes.
func (s *QuizService) Close() {
	s.mu.Lock()
	for id, cancel := range s.timers {
		cancel()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.Wait()
}

// Wait blocks until in-flight result writes finish.
func (s *QuizService) Wait() {
	s.inflight.Wait()
}

func (s *QuizService) record(result domain.Result) {
	if s.recorder == nil {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.RecordTimeout)
		defer cancel()
		if err := s.recorder.Record(ctx, result); err != nil {
			log.Printf("record result %s: %v", result.ID, err)
		}
	}()
}

func (s *QuizService) startTimer(session *Session) {
	if s.opts.Tick <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.timers[session.ID()] = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.opts.Tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				session.Tick()
			}
		}
	}()
}

func (s *QuizService) stopTimer(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.timers[sessionID]; ok {
		cancel()
		delete(s.timers, sessionID)
	}
}
