package postgres

import (
	"context"
	"fmt"

	"nursing-quiz-service/internal/domain"

	"github.com/jackc/pgx/v4/pgxpool"
)

// QuestionLoader loads questions from the questions table.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

const selectQuestions = `
SELECT id, exam_type, question, options, correct_answer, explanation, difficulty, category
FROM questions
WHERE exam_type = $1
  AND ($2 = '' OR difficulty = $2)
  AND ($3 = '' OR category = $3)
ORDER BY id
LIMIT $4`

func (l *QuestionLoader) LoadQuestions(ctx context.Context, query domain.QuestionQuery) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, selectQuestions, query.ExamType, string(query.Difficulty), query.Category, query.Limit)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0, query.Limit)
	for rows.Next() {
		var (
			q          domain.Question
			difficulty string
		)
		if err := rows.Scan(&q.ID, &q.ExamType, &q.Question, &q.Options, &q.CorrectAnswer, &q.Explanation, &difficulty, &q.Category); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Difficulty = domain.Difficulty(difficulty)
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}
