package app

import (
	"sort"
	"sync"
	"time"

	"nursing-quiz-service/internal/domain"
)

// Session is the in-memory state machine of one quiz attempt.
type Session struct {
	id        string
	examID    string
	learner   domain.Learner
	createdAt time.Time
	now       func() time.Time

	mu          sync.RWMutex
	phase       domain.Phase
	questions   []domain.Question
	index       int
	answers     map[int]string
	bookmarks   map[int]struct{}
	elapsed     int
	explanation bool
	subscribers map[chan domain.SessionView]struct{}
}

// NewSession creates a session in the loading phase.
func NewSession(id, examID string, learner domain.Learner) *Session {
	return NewSessionWithClock(id, examID, learner, time.Now)
}

// NewSessionWithClock allows deterministic timestamps in tests.
func NewSessionWithClock(id, examID string, learner domain.Learner, now func() time.Time) *Session {
	return &Session{
		id:          id,
		examID:      examID,
		learner:     learner,
		createdAt:   now(),
		now:         now,
		phase:       domain.PhaseLoading,
		answers:     make(map[int]string),
		bookmarks:   make(map[int]struct{}),
		subscribers: make(map[chan domain.SessionView]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Learner returns who drives the session.
func (s *Session) Learner() domain.Learner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.learner
}

// OwnedBy reports whether caller may act on the session. Sessions of an
// authenticated learner answer only to that learner; guest sessions answer to
// the same guest id, signed in or not.
func (s *Session) OwnedBy(caller domain.Learner) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.learner.IsGuest() {
		return caller.UserID == s.learner.UserID
	}
	return s.learner.GuestID != "" && caller.GuestID == s.learner.GuestID
}

// Adopt credits a guest session to a learner who signed in mid-attempt.
func (s *Session) Adopt(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.learner.IsGuest() && userID != "" {
		s.learner.UserID = userID
	}
}

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Phase returns the current lifecycle phase.
func (s *Session) Phase() domain.Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase
}

// Load hands the fetched questions to the session. An empty list ends the
// session in the no-questions phase.
func (s *Session) Load(questions []domain.Question) domain.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseLoading {
		return s.snapshotLocked()
	}
	if len(questions) == 0 {
		s.phase = domain.PhaseNoQuestions
		return s.broadcastLocked()
	}
	s.questions = append([]domain.Question(nil), questions...)
	s.index = 0
	s.phase = domain.PhaseActive
	return s.broadcastLocked()
}

// Select records answer for the current question. The first answer for a
// question is final.
func (s *Session) Select(answer string) (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return domain.SessionView{}, err
	}
	if _, ok := s.answers[s.index]; ok {
		return domain.SessionView{}, domain.ErrAnswerLocked
	}
	if !s.questions[s.index].HasOption(answer) {
		return domain.SessionView{}, domain.ErrOptionNotFound
	}
	s.answers[s.index] = answer
	s.explanation = true
	return s.broadcastLocked(), nil
}

// Next moves to the following question. On the last question the index stays
// put and submitRequested is true.
func (s *Session) Next() (view domain.SessionView, submitRequested bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return domain.SessionView{}, false, err
	}
	if s.index >= len(s.questions)-1 {
		return s.snapshotLocked(), true, nil
	}
	s.moveLocked(s.index + 1)
	return s.broadcastLocked(), false, nil
}

// Previous moves back one question; it is a no-op on the first question.
func (s *Session) Previous() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return domain.SessionView{}, err
	}
	if s.index > 0 {
		s.moveLocked(s.index - 1)
	}
	return s.broadcastLocked(), nil
}

// ToggleBookmark flips the bookmark flag of the current question.
func (s *Session) ToggleBookmark() (domain.SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return domain.SessionView{}, err
	}
	if _, ok := s.bookmarks[s.index]; ok {
		delete(s.bookmarks, s.index)
	} else {
		s.bookmarks[s.index] = struct{}{}
	}
	return s.broadcastLocked(), nil
}

// Tick advances the clock by one second while the session is active.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != domain.PhaseActive {
		return
	}
	s.elapsed++
	s.broadcastLocked()
}

// Freeze moves an active session into submitting and returns its scorable
// state. admit runs under the session lock while the session is still active;
// when it refuses, nothing changes and admitted is false.
func (s *Session) Freeze(admit func() bool) (attempt Attempt, admitted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.activeLocked(); err != nil {
		return Attempt{}, false, err
	}
	if admit != nil && !admit() {
		return Attempt{}, false, nil
	}
	s.phase = domain.PhaseSubmitting
	answers := make(map[int]string, len(s.answers))
	for i, a := range s.answers {
		answers[i] = a
	}
	s.broadcastLocked()
	return Attempt{
		ExamID:         s.examID,
		Questions:      append([]domain.Question(nil), s.questions...),
		Answers:        answers,
		ElapsedSeconds: s.elapsed,
	}, true, nil
}

// Terminate ends the session and closes all subscriptions.
func (s *Session) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == domain.PhaseTerminated {
		return
	}
	s.phase = domain.PhaseTerminated
	s.broadcastLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// View returns a snapshot without notifying subscribers.
func (s *Session) View() domain.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel of snapshots. The caller must invoke cancel.
func (s *Session) Subscribe() (<-chan domain.SessionView, func()) {
	ch := make(chan domain.SessionView, 8)

	s.mu.Lock()
	if s.phase == domain.PhaseTerminated {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) activeLocked() error {
	switch s.phase {
	case domain.PhaseActive:
		return nil
	case domain.PhaseNoQuestions:
		return domain.ErrNoQuestions
	default:
		return domain.ErrSessionClosed
	}
}

func (s *Session) moveLocked(index int) {
	s.index = index
	_, answered := s.answers[index]
	s.explanation = answered
}

func (s *Session) broadcastLocked() domain.SessionView {
	view := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// slow reader: replace the stale snapshot with the latest one
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
	return view
}

func (s *Session) snapshotLocked() domain.SessionView {
	answers := make(map[int]string, len(s.answers))
	for i, a := range s.answers {
		answers[i] = a
	}
	bookmarks := make([]int, 0, len(s.bookmarks))
	for i := range s.bookmarks {
		bookmarks = append(bookmarks, i)
	}
	sort.Ints(bookmarks)

	view := domain.SessionView{
		ID:                 s.id,
		ExamID:             s.examID,
		Phase:              s.phase,
		Index:              s.index,
		Total:              len(s.questions),
		Answers:            answers,
		Bookmarks:          bookmarks,
		ElapsedSeconds:     s.elapsed,
		Clock:              domain.FormatElapsed(s.elapsed),
		ExplanationShowing: s.explanation,
		Answered:           len(s.answers),
		UpdatedAt:          s.now(),
	}
	if s.learner.IsGuest() {
		view.GuestID = s.learner.GuestID
	}
	if len(s.questions) > 0 {
		q := s.questions[s.index]
		qv := &domain.QuestionView{
			ID:         q.ID,
			Question:   q.Question,
			Options:    append([]string(nil), q.Options...),
			Difficulty: q.Difficulty,
			Category:   q.Category,
		}
		if _, answered := s.answers[s.index]; answered {
			qv.CorrectAnswer = q.CorrectAnswer
			qv.Explanation = q.Explanation
		}
		view.Question = qv
	}
	return view
}
