package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"hardcore-quiz-service/internal/domain"
	"hardcore-quiz-service/internal/logger"
)

// Engine contains the hardcore quiz use cases: attempts, power cards and
// question unlocks. Every operation touching a (user, quiz) pair runs under
// the pair's lock and inside a single store transaction.
type Engine struct {
	quizzes     QuizRepository
	store       Store
	locker      Locker
	feed        *Feed
	log         *logger.Logger
	rng         domain.Rand
	now         func() time.Time
	newID       func() string
	maxAttempts int
}

// Option customizes an Engine.
type Option func(*Engine)

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock is used by tests for deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRandSource makes power-card effects reproducible.
func WithRandSource(src rand.Source) Option {
	return func(e *Engine) { e.rng = &lockedRand{r: rand.New(src)} }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// WithMaxAttempts overrides the lifetime cap of finished attempts.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithFeed(feed *Feed) Option {
	return func(e *Engine) { e.feed = feed }
}

func NewEngine(quizzes QuizRepository, store Store, locker Locker, opts ...Option) *Engine {
	e := &Engine{
		quizzes:     quizzes,
		store:       store,
		locker:      locker,
		feed:        NewFeed(),
		log:         logger.Nop(),
		rng:         &lockedRand{r: rand.New(rand.NewSource(time.Now().UnixNano()))},
		now:         time.Now,
		newID:       uuid.NewString,
		maxAttempts: domain.MaxFinishedAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subscribe returns a channel of attempt events for one user and quiz.
// The caller must invoke the returned cancel function to avoid leaks.
func (e *Engine) Subscribe(_ context.Context, userID, quizID string) (<-chan domain.AttemptEvent, func(), error) {
	if userID == "" {
		return nil, nil, domain.Errorf(domain.KindUnauthorized, "missing user")
	}
	ch, cancel := e.feed.Subscribe(userID, quizID)
	return ch, cancel, nil
}

func (e *Engine) requestLog(ctx context.Context) *logger.Logger {
	return logger.FromContext(ctx, e.log)
}

func (e *Engine) loadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	if quizID == "" {
		return domain.Quiz{}, domain.Errorf(domain.KindInvalidRequest, "quiz id is required")
	}
	quiz, err := e.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !quiz.Playable() {
		return domain.Quiz{}, domain.Errorf(domain.KindNotFound, "quiz %s is not published", quizID)
	}
	return quiz, nil
}

func loadQuestion(quiz domain.Quiz, questionID string) (domain.Question, error) {
	question, ok := quiz.Question(questionID)
	if !ok {
		return domain.Question{}, domain.Errorf(domain.KindNotFound, "question %s not found in quiz %s", questionID, quiz.ID)
	}
	return question, nil
}

func requireUser(userID string) error {
	if userID == "" {
		return domain.Errorf(domain.KindUnauthorized, "missing user")
	}
	return nil
}

// withUserQuiz runs fn under the (user, quiz) lock inside one transaction.
func (e *Engine) withUserQuiz(ctx context.Context, userID, quizID string, fn func(ctx context.Context, tx Tx) error) error {
	unlock, err := e.locker.Lock(ctx, LockKey(userID, quizID))
	if err != nil {
		return domain.Wrap(domain.KindInternal, err, "acquire attempt lock")
	}
	defer unlock()
	return e.store.RunInTx(ctx, fn)
}

// LockKey names the mutual-exclusion scope of one user's play on one quiz.
func LockKey(userID, quizID string) string {
	return "hardcore:" + userID + ":" + quizID
}

func (e *Engine) publish(eventType, userID, quizID string, payload any) {
	e.feed.Publish(domain.AttemptEvent{
		Type:    eventType,
		UserID:  userID,
		QuizID:  quizID,
		Payload: payload,
		At:      e.now(),
	})
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}
