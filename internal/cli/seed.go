package cli

import (
	"fmt"
	"log"
	"os"

	"nursing-quiz-service/internal/config"
	"nursing-quiz-service/internal/domain"
	"nursing-quiz-service/internal/infra/postgres"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type questionBank struct {
	Questions []domain.Question `yaml:"questions"`
}

// NewSeedCmd loads a YAML question bank into postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert questions from a YAML question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			questions := sampleQuestions()
			if file != "" {
				questions, err = loadQuestionBank(file)
				if err != nil {
					return err
				}
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			db := postgres.OpenBun(cfg.Postgres.URL)
			defer db.Close()
			n, err := postgres.SeedQuestions(cmd.Context(), db, questions)
			if err != nil {
				return err
			}
			log.Printf("seeded %d questions", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "YAML question bank (defaults to the built-in samples)")
	return cmd
}

func loadQuestionBank(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bank questionBank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for i, q := range bank.Questions {
		if q.ID == "" || q.ExamType == "" {
			return nil, fmt.Errorf("question %d: id and examType are required", i)
		}
		if !q.HasOption(q.CorrectAnswer) {
			return nil, fmt.Errorf("question %s: correct answer is not one of its options", q.ID)
		}
		if q.Difficulty == "" {
			bank.Questions[i].Difficulty = domain.DifficultyIntermediate
		} else if !q.Difficulty.Valid() {
			return nil, fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
		}
	}
	return bank.Questions, nil
}
