package app

import (
	"context"

	"hardcore-quiz-service/internal/domain"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// Store persists submissions, wallets and unlocks. RunInTx executes fn as one
// atomic unit: if fn returns an error none of its writes become visible.
type Store interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of reads and writes available inside a Store transaction.
// Wallet mutations are guarded increments; they fail with InsufficientFunds
// instead of driving a balance negative and with UserNotFound when the
// user has no wallet (Credit creates one).
type Tx interface {
	ListSubmissions(ctx context.Context, userID, quizID string) ([]domain.Submission, error)
	InsertSubmission(ctx context.Context, sub domain.Submission) error
	UpdateSubmission(ctx context.Context, sub domain.Submission) error

	GetWallet(ctx context.Context, userID string) (domain.Wallet, error)
	Credit(ctx context.Context, userID string, reward domain.Reward) (domain.Wallet, error)
	DebitCoins(ctx context.Context, userID string, amount int64) (domain.Wallet, error)
	DebitGems(ctx context.Context, userID string, amount int64) (domain.Wallet, error)
	AdjustPowerCards(ctx context.Context, userID string, card domain.PowerCardType, delta int) (domain.Wallet, error)

	ListUnlocks(ctx context.Context, userID, quizID string) ([]domain.QuestionUnlock, error)
	InsertUnlock(ctx context.Context, unlock domain.QuestionUnlock) error
}

// Locker serializes operations on one key across goroutines (and, for
// distributed implementations, across service instances).
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
