package app

import (
	"math"

	"nursing-quiz-service/internal/domain"
)

// Attempt is the frozen, scorable state of a session.
type Attempt struct {
	ExamID         string
	Questions      []domain.Question
	Answers        map[int]string
	ElapsedSeconds int
}

// ComputeResult scores an attempt. Unanswered questions count as incorrect.
// Identity and timestamp are left for the caller so equal attempts always
// produce equal results.
func ComputeResult(a Attempt) domain.Result {
	total := len(a.Questions)
	records := make([]domain.AnswerRecord, 0, total)
	correct := 0
	for i, q := range a.Questions {
		record := domain.AnswerRecord{QuestionID: q.ID}
		if selected, ok := a.Answers[i]; ok {
			selected := selected
			record.SelectedAnswer = &selected
			record.Correct = selected == q.CorrectAnswer
		}
		if record.Correct {
			correct++
		}
		records = append(records, record)
	}

	result := domain.Result{
		ExamID:           a.ExamID,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		IncorrectAnswers: total - correct,
		TimeSpent:        a.ElapsedSeconds,
		Answers:          records,
	}
	if total > 0 {
		result.Score = int(math.Round(float64(correct) / float64(total) * 100))
		result.AverageTimePerQuestion = math.Round(float64(a.ElapsedSeconds)/float64(total)*10) / 10
	}
	return result
}
