package cli

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hardcore-quiz-service/internal/domain"
)

//go:embed sample_quizzes.yaml
var sampleQuizzesYAML []byte

type quizFile struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// parseQuizzes decodes a quiz file and rejects any quiz that does not have
// the hardcore layout.
func parseQuizzes(data []byte) ([]domain.Quiz, error) {
	var file quizFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode quiz file: %w", err)
	}
	if len(file.Quizzes) == 0 {
		return nil, fmt.Errorf("quiz file contains no quizzes")
	}
	for _, quiz := range file.Quizzes {
		if err := quiz.ValidateHardcore(); err != nil {
			return nil, err
		}
	}
	return file.Quizzes, nil
}

func readQuizFile(path string) ([]domain.Quiz, error) {
	if path == "" {
		return parseQuizzes(sampleQuizzesYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseQuizzes(data)
}

// sampleQuizzes backs the in-memory catalog when no database is configured.
func sampleQuizzes() (map[string]domain.Quiz, error) {
	quizzes, err := parseQuizzes(sampleQuizzesYAML)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]domain.Quiz, len(quizzes))
	for _, quiz := range quizzes {
		byID[quiz.ID] = quiz
	}
	return byID, nil
}
