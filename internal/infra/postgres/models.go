package postgres

import (
	"math"
	"time"

	"nursing-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

// QuestionRow maps the questions table.
type QuestionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string   `bun:"id,pk"`
	ExamType      string   `bun:"exam_type,notnull"`
	Question      string   `bun:"question,notnull"`
	Options       []string `bun:"options,array"`
	CorrectAnswer string   `bun:"correct_answer,notnull"`
	Explanation   string   `bun:"explanation,notnull"`
	Difficulty    string   `bun:"difficulty,notnull"`
	Category      string   `bun:"category,notnull"`
}

func questionRow(q domain.Question) QuestionRow {
	return QuestionRow{
		ID:            q.ID,
		ExamType:      q.ExamType,
		Question:      q.Question,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		Explanation:   q.Explanation,
		Difficulty:    string(q.Difficulty),
		Category:      q.Category,
	}
}

// ResultRow maps the quiz_results table. The per-question breakdown is kept as JSONB.
type ResultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID               string                `bun:"id,pk"`
	SessionID        string                `bun:"session_id,nullzero"`
	ExamID           string                `bun:"exam_id,notnull"`
	LearnerID        string                `bun:"learner_id,nullzero"`
	Guest            bool                  `bun:"guest,notnull"`
	TotalQuestions   int                   `bun:"total_questions,notnull"`
	CorrectAnswers   int                   `bun:"correct_answers,notnull"`
	IncorrectAnswers int                   `bun:"incorrect_answers,notnull"`
	Score            int                   `bun:"score,notnull"`
	TimeSpent        int                   `bun:"time_spent,notnull"`
	Answers          []domain.AnswerRecord `bun:"answers,type:jsonb"`
	SubmittedAt      time.Time             `bun:"submitted_at,notnull"`
}

func resultRow(r domain.Result) ResultRow {
	return ResultRow{
		ID:               r.ID,
		SessionID:        r.SessionID,
		ExamID:           r.ExamID,
		LearnerID:        r.LearnerID,
		Guest:            r.Guest,
		TotalQuestions:   r.TotalQuestions,
		CorrectAnswers:   r.CorrectAnswers,
		IncorrectAnswers: r.IncorrectAnswers,
		Score:            r.Score,
		TimeSpent:        r.TimeSpent,
		Answers:          r.Answers,
		SubmittedAt:      r.SubmittedAt,
	}
}

func (r ResultRow) toDomain() domain.Result {
	res := domain.Result{
		ID:               r.ID,
		SessionID:        r.SessionID,
		ExamID:           r.ExamID,
		LearnerID:        r.LearnerID,
		Guest:            r.Guest,
		TotalQuestions:   r.TotalQuestions,
		CorrectAnswers:   r.CorrectAnswers,
		IncorrectAnswers: r.IncorrectAnswers,
		Score:            r.Score,
		TimeSpent:        r.TimeSpent,
		Answers:          r.Answers,
		SubmittedAt:      r.SubmittedAt,
	}
	if r.TotalQuestions > 0 {
		res.AverageTimePerQuestion = math.Round(float64(r.TimeSpent)/float64(r.TotalQuestions)*10) / 10
	}
	return res
}
