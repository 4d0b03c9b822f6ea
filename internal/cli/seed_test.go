package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadQuestionBank(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bank.yaml")
	bank := `questions:
  - id: rn-100
    examType: nclex-rn
    question: Which vaccine is contraindicated in pregnancy?
    options: [Influenza inactivated, MMR, Tdap, Hepatitis B]
    correctAnswer: MMR
    explanation: Live vaccines are avoided during pregnancy.
    category: Health Promotion
`
	if err := os.WriteFile(path, []byte(bank), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}

	questions, err := loadQuestionBank(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 1 || questions[0].CorrectAnswer != "MMR" || len(questions[0].Options) != 4 {
		t.Fatalf("unexpected questions %+v", questions)
	}
	if questions[0].Difficulty != "intermediate" {
		t.Fatalf("expected default difficulty, got %q", questions[0].Difficulty)
	}
}

func TestLoadQuestionBankRejectsUnknownAnswer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.yaml")
	bank := `questions:
  - id: rn-101
    examType: nclex-rn
    question: Pick one
    options: [A, B]
    correctAnswer: C
`
	if err := os.WriteFile(path, []byte(bank), 0o600); err != nil {
		t.Fatalf("write bank: %v", err)
	}
	if _, err := loadQuestionBank(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSampleQuestionsAreScorable(t *testing.T) {
	seen := map[string]bool{}
	for _, q := range sampleQuestions() {
		if seen[q.ID] {
			t.Fatalf("duplicate id %s", q.ID)
		}
		seen[q.ID] = true
		if !q.HasOption(q.CorrectAnswer) || !q.Difficulty.Valid() {
			t.Fatalf("question %s is not scorable", q.ID)
		}
	}
}
