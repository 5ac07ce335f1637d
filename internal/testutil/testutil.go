package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/infra/memory"
)

// HardcoreQuiz builds a published eight-question quiz in the generated
// difficulty order. Question qN's correct answer is "answer-N".
func HardcoreQuiz(id string) domain.Quiz {
	quiz := domain.Quiz{
		ID:      id,
		ComicID: "comic-" + id,
		Title:   "Hardcore " + id,
		Status:  domain.QuizPublished,
	}
	for i, difficulty := range domain.HardcoreDifficultyOrder {
		n := i + 1
		answer := fmt.Sprintf("answer-%d", n)
		options := []string{
			fmt.Sprintf("wrong-%d-a", n),
			fmt.Sprintf("wrong-%d-b", n),
			answer,
			fmt.Sprintf("wrong-%d-c", n),
			fmt.Sprintf("wrong-%d-d", n),
			fmt.Sprintf("wrong-%d-e", n),
		}
		quiz.Questions = append(quiz.Questions, domain.Question{
			ID:          fmt.Sprintf("q%d", n),
			Prompt:      fmt.Sprintf("Question %d?", n),
			Options:     options,
			Answer:      answer,
			Difficulty:  difficulty,
			Explanation: fmt.Sprintf("Because %d.", n),
			Hint:        fmt.Sprintf("Think about %d.", n),
		})
	}
	return quiz
}

// Env is an engine over in-memory infrastructure.
type Env struct {
	Engine *app.Engine
	Store  *memory.Store
	Feed   *app.Feed
	Now    time.Time
}

// NewEnv wires an engine with memory store, locker and quiz repository
// serving the given quizzes. IDs are sequential and the clock is fixed.
func NewEnv(t *testing.T, quizzes ...domain.Quiz) *Env {
	t.Helper()
	byID := make(map[string]domain.Quiz, len(quizzes))
	for _, quiz := range quizzes {
		byID[quiz.ID] = quiz
	}
	env := &Env{
		Store: memory.NewStore(),
		Feed:  app.NewFeed(),
		Now:   time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}
	var seq atomic.Int64
	env.Engine = app.NewEngine(
		memory.NewQuizRepository(memory.NewStaticQuizLoader(byID), time.Minute),
		env.Store,
		memory.NewLocker(),
		app.WithFeed(env.Feed),
		app.WithClock(func() time.Time { return env.Now }),
		app.WithIDGenerator(func() string { return fmt.Sprintf("sub-%d", seq.Add(1)) }),
	)
	return env
}
