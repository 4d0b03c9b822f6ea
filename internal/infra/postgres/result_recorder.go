package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nursing-quiz-service/internal/domain"

	"github.com/uptrace/bun"
)

// ResultRecorder writes submitted results to quiz_results through bun.
type ResultRecorder struct {
	db *bun.DB
}

func NewResultRecorder(db *bun.DB) *ResultRecorder {
	return &ResultRecorder{db: db}
}

// Record inserts the result; re-recording the same id is a no-op.
func (r *ResultRecorder) Record(ctx context.Context, result domain.Result) error {
	row := resultRow(result)
	if _, err := r.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// Get loads a recorded result.
func (r *ResultRecorder) Get(ctx context.Context, resultID string) (domain.Result, error) {
	var row ResultRow
	err := r.db.NewSelect().Model(&row).Where("id = ?", resultID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("select result: %w", err)
	}
	return row.toDomain(), nil
}

// SeedQuestions upserts a question bank.
func SeedQuestions(ctx context.Context, db *bun.DB, questions []domain.Question) (int, error) {
	if len(questions) == 0 {
		return 0, nil
	}
	rows := make([]QuestionRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, questionRow(q))
	}
	_, err := db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("exam_type = EXCLUDED.exam_type").
		Set("question = EXCLUDED.question").
		Set("options = EXCLUDED.options").
		Set("correct_answer = EXCLUDED.correct_answer").
		Set("explanation = EXCLUDED.explanation").
		Set("difficulty = EXCLUDED.difficulty").
		Set("category = EXCLUDED.category").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("seed questions: %w", err)
	}
	return len(rows), nil
}
