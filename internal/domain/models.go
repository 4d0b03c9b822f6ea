package domain

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// Difficulty is the coarse level a question is tagged with.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// Question is a single scorable multiple-choice item. CorrectAnswer holds the
// text of one of Options.
type Question struct {
	ID            string     `json:"id" yaml:"id"`
	ExamType      string     `json:"examType,omitempty" yaml:"examType"`
	Question      string     `json:"question" yaml:"question"`
	Options       []string   `json:"options" yaml:"options"`
	CorrectAnswer string     `json:"correctAnswer" yaml:"correctAnswer"`
	Explanation   string     `json:"explanation" yaml:"explanation"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty"`
	Category      string     `json:"category" yaml:"category"`
}

// HasOption reports whether answer is one of the question's options.
func (q Question) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}

// QuestionQuery selects questions for a new session.
type QuestionQuery struct {
	ExamType   string     `json:"examType"`
	Difficulty Difficulty `json:"difficulty"`
	Category   string     `json:"category,omitempty"`
	Limit      int        `json:"limit"`
}

// CacheKey is a stable identity for the query, used by caching repositories.
func (q QuestionQuery) CacheKey() string {
	return fmt.Sprintf("%s:%s:%s:%d", q.ExamType, q.Difficulty, q.Category, q.Limit)
}

// Phase is the lifecycle state of a quiz session.
type Phase string

const (
	PhaseLoading     Phase = "loading"
	PhaseActive      Phase = "active"
	PhaseNoQuestions Phase = "no_questions"
	PhaseSubmitting  Phase = "submitting"
	PhaseTerminated  Phase = "terminated"
)

// QuestionView is what a learner sees of a question. The answer key and
// explanation are only filled once the question has been answered.
type QuestionView struct {
	ID            string     `json:"id"`
	Question      string     `json:"question"`
	Options       []string   `json:"options"`
	Difficulty    Difficulty `json:"difficulty"`
	Category      string     `json:"category"`
	CorrectAnswer string     `json:"correctAnswer,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`
}

// SessionView is a point-in-time snapshot of a session for clients.
type SessionView struct {
	ID                 string         `json:"id"`
	ExamID             string         `json:"examId"`
	GuestID            string         `json:"guestId,omitempty"`
	Phase              Phase          `json:"phase"`
	Index              int            `json:"index"`
	Total              int            `json:"total"`
	Question           *QuestionView  `json:"question,omitempty"`
	Answers            map[int]string `json:"answers"`
	Bookmarks          []int          `json:"bookmarks"`
	ElapsedSeconds     int            `json:"elapsedSeconds"`
	Clock              string         `json:"clock"`
	ExplanationShowing bool           `json:"explanationShowing"`
	Answered           int            `json:"answered"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

// AnswerRecord is the per-question breakdown entry of a Result.
type AnswerRecord struct {
	QuestionID     string  `json:"questionId"`
	SelectedAnswer *string `json:"selectedAnswer"`
	Correct        bool    `json:"correct"`
}

// Result is the finalized scoring output of a submitted session.
type Result struct {
	ID                     string         `json:"id"`
	SessionID              string         `json:"sessionId,omitempty"`
	ExamID                 string         `json:"examId"`
	LearnerID              string         `json:"learnerId,omitempty"`
	Guest                  bool           `json:"guest"`
	TotalQuestions         int            `json:"totalQuestions"`
	CorrectAnswers         int            `json:"correctAnswers"`
	IncorrectAnswers       int            `json:"incorrectAnswers"`
	Score                  int            `json:"score"`
	TimeSpent              int            `json:"timeSpent"`
	AverageTimePerQuestion float64        `json:"averageTimePerQuestion"`
	Answers                []AnswerRecord `json:"answers"`
	SubmittedAt            time.Time      `json:"submittedAt"`
}

// QueryParams is the reduced hand-off to a results page: only four scalars
// plus the exam travel in the URL.
func (r Result) QueryParams() url.Values {
	v := url.Values{}
	v.Set("examId", r.ExamID)
	v.Set("score", strconv.Itoa(r.Score))
	v.Set("correct", strconv.Itoa(r.CorrectAnswers))
	v.Set("total", strconv.Itoa(r.TotalQuestions))
	v.Set("time", strconv.Itoa(r.TimeSpent))
	return v
}

// GuestAllowance is the answer of the guest attempt gate.
type GuestAllowance struct {
	Allowed   bool `json:"allowed"`
	Remaining int  `json:"remaining"`
}

// SubmitOutcome is returned by a submit request. When AuthRequired is set the
// session stays active and Result is nil.
type SubmitOutcome struct {
	Result       *Result `json:"result,omitempty"`
	AuthRequired bool    `json:"authRequired"`
	Remaining    int     `json:"remaining"`
}

// Learner identifies who drives a session. An empty UserID means guest.
type Learner struct {
	UserID  string
	GuestID string
}

// IsGuest reports whether no authenticated identity is present.
func (l Learner) IsGuest() bool { return l.UserID == "" }

// FormatElapsed renders whole seconds as m:ss.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
