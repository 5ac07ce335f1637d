package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/domain"
)

const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// Store is the Postgres implementation of app.Store. Every transaction runs
// at SERIALIZABLE isolation and is retried on serialization failures.
type Store struct {
	db         *bun.DB
	maxRetries int
	backoff    time.Duration
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db, maxRetries: 5, backoff: 10 * time.Millisecond}
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	opts := &sql.TxOptions{Isolation: sql.LevelSerializable}
	return retryTx(ctx, s.maxRetries, s.backoff, func() error {
		return s.db.RunInTx(ctx, opts, func(ctx context.Context, btx bun.Tx) error {
			return fn(ctx, &tx{tx: btx})
		})
	})
}

// retryTx reruns run while it fails with a serialization failure or
// deadlock, up to maxRetries extra times with linear backoff.
func retryTx(ctx context.Context, maxRetries int, backoff time.Duration, run func() error) error {
	for attempt := 0; ; attempt++ {
		err := run()
		if err == nil || !retryable(err) || attempt >= maxRetries {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(attempt+1)):
		}
	}
}

// SeedWallet creates or overwrites a wallet balance. Used by the seed command and tests.
func (s *Store) SeedWallet(ctx context.Context, userID string, coins, exp int64) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO wallets (user_id, coins, exp) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET coins = EXCLUDED.coins, exp = EXCLUDED.exp, updated_at = now()`,
		userID, coins, exp)
	if err != nil {
		return fmt.Errorf("seed wallet %s: %w", userID, err)
	}
	return nil
}

// fieldError is satisfied by pgdriver.Error.
type fieldError interface {
	error
	Field(k byte) string
}

var _ fieldError = pgdriver.Error{}

func pgCode(err error) string {
	var pgErr fieldError
	if errors.As(err, &pgErr) {
		return pgErr.Field('C')
	}
	return ""
}

func retryable(err error) bool {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	}
	return false
}

type submissionRow struct {
	bun.BaseModel `bun:"table:submissions"`

	ID                string                `bun:"id,pk"`
	UserID            string                `bun:"user_id,notnull"`
	QuizID            string                `bun:"quiz_id,notnull"`
	AttemptNumber     int                   `bun:"attempt_number,notnull"`
	Answers           []domain.AnswerRecord `bun:"answers,type:jsonb,notnull"`
	Score             int                   `bun:"score,notnull"`
	CoinsEarned       int64                 `bun:"coins_earned,notnull"`
	ExpEarned         int64                 `bun:"exp_earned,notnull"`
	Multiplier        int64                 `bun:"multiplier,notnull"`
	IsActive          bool                  `bun:"is_active,notnull"`
	IsFinished        bool                  `bun:"is_finished,notnull"`
	HasMergedToWallet bool                  `bun:"has_merged_to_wallet,notnull"`
	CreatedAt         time.Time             `bun:"created_at,notnull"`
	UpdatedAt         time.Time             `bun:"updated_at,notnull"`
	FinishedAt        *time.Time            `bun:"finished_at,nullzero"`
}

func toSubmissionRow(sub domain.Submission) submissionRow {
	answers := sub.Answers
	if answers == nil {
		answers = []domain.AnswerRecord{}
	}
	return submissionRow{
		ID:                sub.ID,
		UserID:            sub.UserID,
		QuizID:            sub.QuizID,
		AttemptNumber:     sub.AttemptNumber,
		Answers:           answers,
		Score:             sub.Score,
		CoinsEarned:       sub.CoinsEarned,
		ExpEarned:         sub.ExpEarned,
		Multiplier:        sub.Multiplier,
		IsActive:          sub.IsActive,
		IsFinished:        sub.IsFinished,
		HasMergedToWallet: sub.HasMergedToWallet,
		CreatedAt:         sub.CreatedAt,
		UpdatedAt:         sub.UpdatedAt,
		FinishedAt:        sub.FinishedAt,
	}
}

func (r submissionRow) toDomain() domain.Submission {
	return domain.Submission{
		ID:                r.ID,
		UserID:            r.UserID,
		QuizID:            r.QuizID,
		AttemptNumber:     r.AttemptNumber,
		Answers:           r.Answers,
		Score:             r.Score,
		CoinsEarned:       r.CoinsEarned,
		ExpEarned:         r.ExpEarned,
		Multiplier:        r.Multiplier,
		IsActive:          r.IsActive,
		IsFinished:        r.IsFinished,
		HasMergedToWallet: r.HasMergedToWallet,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
		FinishedAt:        r.FinishedAt,
	}
}

type walletRow struct {
	bun.BaseModel `bun:"table:wallets"`

	UserID string `bun:"user_id,pk"`
	Coins  int64  `bun:"coins,notnull"`
	Exp    int64  `bun:"exp,notnull"`
}

type powerCardRow struct {
	bun.BaseModel `bun:"table:power_card_inventory"`

	UserID   string `bun:"user_id,pk"`
	CardType string `bun:"card_type,pk"`
	Quantity int    `bun:"quantity,notnull"`
}

type unlockRow struct {
	bun.BaseModel `bun:"table:question_unlocks"`

	UserID        string    `bun:"user_id,pk"`
	QuizID        string    `bun:"quiz_id,pk"`
	QuestionID    string    `bun:"question_id,pk"`
	GemsPaid      int64     `bun:"gems_paid,notnull"`
	AttemptNumber int       `bun:"attempt_number,notnull"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
}

type tx struct {
	tx bun.Tx
}

func (t *tx) ListSubmissions(ctx context.Context, userID, quizID string) ([]domain.Submission, error) {
	var rows []submissionRow
	err := t.tx.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Order("attempt_number ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	out := make([]domain.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (t *tx) InsertSubmission(ctx context.Context, sub domain.Submission) error {
	row := toSubmissionRow(sub)
	_, err := t.tx.NewInsert().Model(&row).Exec(ctx)
	return submissionInsertErr(err, sub)
}

func submissionInsertErr(err error, sub domain.Submission) error {
	switch {
	case err == nil:
		return nil
	case pgCode(err) == codeUniqueViolation:
		return domain.Wrap(domain.KindInternal, err, fmt.Sprintf("user %s already has an active attempt on %s", sub.UserID, sub.QuizID))
	default:
		return fmt.Errorf("insert submission: %w", err)
	}
}

func (t *tx) UpdateSubmission(ctx context.Context, sub domain.Submission) error {
	row := toSubmissionRow(sub)
	res, err := t.tx.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Errorf(domain.KindNotFound, "submission %s not found", sub.ID)
	}
	return nil
}

func (t *tx) GetWallet(ctx context.Context, userID string) (domain.Wallet, error) {
	var row walletRow
	err := t.tx.NewSelect().Model(&row).Where("user_id = ?", userID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Wallet{}, domain.Errorf(domain.KindUserNotFound, "no wallet for user %s", userID)
	}
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("get wallet: %w", err)
	}

	var cards []powerCardRow
	err = t.tx.NewSelect().Model(&cards).Where("user_id = ?", userID).Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return domain.Wallet{}, fmt.Errorf("get power cards: %w", err)
	}

	w := domain.NewWallet(userID)
	w.Credit(row.Coins, row.Exp)
	for _, card := range cards {
		w.PowerCards[domain.PowerCardType(card.CardType)] = card.Quantity
	}
	return w, nil
}

func (t *tx) Credit(ctx context.Context, userID string, reward domain.Reward) (domain.Wallet, error) {
	_, err := t.tx.ExecContext(ctx, `
INSERT INTO wallets (user_id, coins, exp) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE
SET coins = wallets.coins + EXCLUDED.coins, exp = wallets.exp + EXCLUDED.exp, updated_at = now()`,
		userID, reward.Coins, reward.Exp)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("credit wallet: %w", err)
	}
	return t.GetWallet(ctx, userID)
}

func (t *tx) DebitCoins(ctx context.Context, userID string, amount int64) (domain.Wallet, error) {
	if amount < 0 {
		return domain.Wallet{}, domain.Errorf(domain.KindInvalidRequest, "negative debit %d", amount)
	}
	return t.guardedDebit(ctx, userID, amount, func(w domain.Wallet) error {
		return domain.Errorf(domain.KindInsufficientFunds, "need %d coins, have %d", amount, w.Coins)
	})
}

// DebitGems burns the coin equivalent; coins >= amount*CoinsPerGem is the
// same condition as floor(coins/CoinsPerGem) >= amount.
func (t *tx) DebitGems(ctx context.Context, userID string, amount int64) (domain.Wallet, error) {
	if amount < 0 {
		return domain.Wallet{}, domain.Errorf(domain.KindInvalidRequest, "negative debit %d", amount)
	}
	return t.guardedDebit(ctx, userID, amount*domain.CoinsPerGem, func(w domain.Wallet) error {
		return domain.Errorf(domain.KindInsufficientFunds, "need %d gems, have %d", amount, w.Gems)
	})
}

func (t *tx) guardedDebit(ctx context.Context, userID string, coins int64, short func(domain.Wallet) error) (domain.Wallet, error) {
	res, err := t.tx.ExecContext(ctx, `
UPDATE wallets SET coins = coins - ?, updated_at = now()
WHERE user_id = ? AND coins >= ?`, coins, userID, coins)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("debit wallet: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		w, err := t.GetWallet(ctx, userID)
		if err != nil {
			return domain.Wallet{}, err
		}
		return domain.Wallet{}, short(w)
	}
	return t.GetWallet(ctx, userID)
}

func (t *tx) AdjustPowerCards(ctx context.Context, userID string, card domain.PowerCardType, delta int) (domain.Wallet, error) {
	if _, err := t.GetWallet(ctx, userID); err != nil {
		return domain.Wallet{}, err
	}
	switch {
	case delta > 0:
		_, err := t.tx.ExecContext(ctx, `
INSERT INTO power_card_inventory (user_id, card_type, quantity) VALUES (?, ?, ?)
ON CONFLICT (user_id, card_type) DO UPDATE
SET quantity = power_card_inventory.quantity + EXCLUDED.quantity`,
			userID, string(card), delta)
		if err != nil {
			return domain.Wallet{}, fmt.Errorf("add power cards: %w", err)
		}
	case delta < 0:
		res, err := t.tx.ExecContext(ctx, `
UPDATE power_card_inventory SET quantity = quantity - ?
WHERE user_id = ? AND card_type = ? AND quantity >= ?`,
			-delta, userID, string(card), -delta)
		if err != nil {
			return domain.Wallet{}, fmt.Errorf("consume power cards: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.Wallet{}, domain.Errorf(domain.KindInsufficientFunds, "no %s cards left", card)
		}
	}
	return t.GetWallet(ctx, userID)
}

func (t *tx) ListUnlocks(ctx context.Context, userID, quizID string) ([]domain.QuestionUnlock, error) {
	var rows []unlockRow
	err := t.tx.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("quiz_id = ?", quizID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list unlocks: %w", err)
	}
	out := make([]domain.QuestionUnlock, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuestionUnlock{
			UserID:        row.UserID,
			QuizID:        row.QuizID,
			QuestionID:    row.QuestionID,
			GemsPaid:      row.GemsPaid,
			AttemptNumber: row.AttemptNumber,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}

func (t *tx) InsertUnlock(ctx context.Context, unlock domain.QuestionUnlock) error {
	row := unlockRow{
		UserID:        unlock.UserID,
		QuizID:        unlock.QuizID,
		QuestionID:    unlock.QuestionID,
		GemsPaid:      unlock.GemsPaid,
		AttemptNumber: unlock.AttemptNumber,
		CreatedAt:     unlock.CreatedAt,
	}
	_, err := t.tx.NewInsert().Model(&row).Exec(ctx)
	return unlockInsertErr(err, unlock.QuestionID)
}

func unlockInsertErr(err error, questionID string) error {
	switch {
	case err == nil:
		return nil
	case pgCode(err) == codeUniqueViolation:
		return domain.Errorf(domain.KindAlreadyUnlocked, "question %s is already unlocked", questionID)
	default:
		return fmt.Errorf("insert unlock: %w", err)
	}
}
