package app_test

import (
	"reflect"
	"testing"

	"nursing-quiz-service/internal/app"
	"nursing-quiz-service/internal/domain"
)

func TestComputeResultUnansweredCountsIncorrect(t *testing.T) {
	attempt := app.Attempt{
		ExamID:         "nclex-rn",
		Questions:      testQuestions(2),
		Answers:        map[int]string{0: "B"},
		ElapsedSeconds: 40,
	}

	result := app.ComputeResult(attempt)
	if result.TotalQuestions != 2 || result.CorrectAnswers != 1 || result.IncorrectAnswers != 1 || result.Score != 50 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Answers[1].SelectedAnswer != nil || result.Answers[1].Correct {
		t.Fatalf("expected unanswered question marked incorrect with no answer, got %+v", result.Answers[1])
	}
	if result.Answers[0].SelectedAnswer == nil || *result.Answers[0].SelectedAnswer != "B" || !result.Answers[0].Correct {
		t.Fatalf("expected first answer correct, got %+v", result.Answers[0])
	}
	if result.AverageTimePerQuestion != 20 {
		t.Fatalf("expected 20s average, got %v", result.AverageTimePerQuestion)
	}
}

func TestComputeResultIsDeterministic(t *testing.T) {
	attempt := app.Attempt{
		ExamID:         "nclex-rn",
		Questions:      testQuestions(3),
		Answers:        map[int]string{0: "B", 2: "C"},
		ElapsedSeconds: 10,
	}
	if !reflect.DeepEqual(app.ComputeResult(attempt), app.ComputeResult(attempt)) {
		t.Fatalf("expected identical results")
	}
}

func TestComputeResultRoundsScore(t *testing.T) {
	attempt := app.Attempt{
		Questions: testQuestions(3),
		Answers:   map[int]string{0: "B", 1: "B"},
	}
	if got := app.ComputeResult(attempt).Score; got != 67 {
		t.Fatalf("expected 2/3 rounded to 67, got %d", got)
	}
}

func TestResultQueryParams(t *testing.T) {
	r := domain.Result{ExamID: "nclex-rn", Score: 50, CorrectAnswers: 1, TotalQuestions: 2, TimeSpent: 125}
	got := r.QueryParams().Encode()
	want := "correct=1&examId=nclex-rn&score=50&time=125&total=2"
	if got != want {
		t.Fatalf("want %s, got %s", want, got)
	}
}
