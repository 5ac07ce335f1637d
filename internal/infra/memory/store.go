package memory

import (
	"context"
	"sort"
	"sync"

	"hardcore-quiz-service/internal/app"
	"hardcore-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.Store. Transactions are
// serialized and work on a private copy of the state that replaces the
// shared state only when the callback succeeds.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	submissions map[string]domain.Submission // by submission id
	wallets     map[string]domain.Wallet
	unlocks     map[unlockKey]domain.QuestionUnlock
}

type unlockKey struct {
	userID, quizID, questionID string
}

func NewStore() *Store {
	return &Store{state: &state{
		submissions: make(map[string]domain.Submission),
		wallets:     make(map[string]domain.Wallet),
		unlocks:     make(map[unlockKey]domain.QuestionUnlock),
	}}
}

// SeedWallet creates or replaces a wallet; gems are derived from coins.
func (s *Store) SeedWallet(userID string, coins, exp int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := domain.NewWallet(userID)
	w.Credit(coins, exp)
	s.state.wallets[userID] = w
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx app.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.state.clone()
	if err := fn(ctx, &tx{st: working}); err != nil {
		return err
	}
	s.state = working
	return nil
}

func (st *state) clone() *state {
	out := &state{
		submissions: make(map[string]domain.Submission, len(st.submissions)),
		wallets:     make(map[string]domain.Wallet, len(st.wallets)),
		unlocks:     make(map[unlockKey]domain.QuestionUnlock, len(st.unlocks)),
	}
	for k, v := range st.submissions {
		out.submissions[k] = v.Clone()
	}
	for k, v := range st.wallets {
		out.wallets[k] = v.Clone()
	}
	for k, v := range st.unlocks {
		out.unlocks[k] = v
	}
	return out
}

type tx struct {
	st *state
}

func (t *tx) ListSubmissions(_ context.Context, userID, quizID string) ([]domain.Submission, error) {
	out := []domain.Submission{}
	for _, sub := range t.st.submissions {
		if sub.UserID == userID && sub.QuizID == quizID {
			out = append(out, sub.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (t *tx) InsertSubmission(_ context.Context, sub domain.Submission) error {
	if _, exists := t.st.submissions[sub.ID]; exists {
		return domain.Errorf(domain.KindInternal, "submission %s already exists", sub.ID)
	}
	if sub.IsActive {
		for _, other := range t.st.submissions {
			if other.UserID == sub.UserID && other.QuizID == sub.QuizID && other.IsActive {
				return domain.Errorf(domain.KindInternal, "user %s already has an active attempt on %s", sub.UserID, sub.QuizID)
			}
		}
	}
	t.st.submissions[sub.ID] = sub.Clone()
	return nil
}

func (t *tx) UpdateSubmission(_ context.Context, sub domain.Submission) error {
	if _, exists := t.st.submissions[sub.ID]; !exists {
		return domain.Errorf(domain.KindNotFound, "submission %s not found", sub.ID)
	}
	t.st.submissions[sub.ID] = sub.Clone()
	return nil
}

func (t *tx) GetWallet(_ context.Context, userID string) (domain.Wallet, error) {
	w, ok := t.st.wallets[userID]
	if !ok {
		return domain.Wallet{}, domain.Errorf(domain.KindUserNotFound, "no wallet for user %s", userID)
	}
	return w.Clone(), nil
}

func (t *tx) Credit(_ context.Context, userID string, reward domain.Reward) (domain.Wallet, error) {
	w, ok := t.st.wallets[userID]
	if !ok {
		w = domain.NewWallet(userID)
	}
	w.Credit(reward.Coins, reward.Exp)
	t.st.wallets[userID] = w
	return w.Clone(), nil
}

func (t *tx) DebitCoins(_ context.Context, userID string, amount int64) (domain.Wallet, error) {
	return t.mutate(userID, func(w *domain.Wallet) error { return w.DebitCoins(amount) })
}

func (t *tx) DebitGems(_ context.Context, userID string, amount int64) (domain.Wallet, error) {
	return t.mutate(userID, func(w *domain.Wallet) error { return w.DebitGems(amount) })
}

func (t *tx) AdjustPowerCards(_ context.Context, userID string, card domain.PowerCardType, delta int) (domain.Wallet, error) {
	return t.mutate(userID, func(w *domain.Wallet) error { return w.AdjustPowerCards(card, delta) })
}

func (t *tx) mutate(userID string, fn func(w *domain.Wallet) error) (domain.Wallet, error) {
	w, ok := t.st.wallets[userID]
	if !ok {
		return domain.Wallet{}, domain.Errorf(domain.KindUserNotFound, "no wallet for user %s", userID)
	}
	w = w.Clone()
	if err := fn(&w); err != nil {
		return domain.Wallet{}, err
	}
	t.st.wallets[userID] = w
	return w.Clone(), nil
}

func (t *tx) ListUnlocks(_ context.Context, userID, quizID string) ([]domain.QuestionUnlock, error) {
	out := []domain.QuestionUnlock{}
	for k, u := range t.st.unlocks {
		if k.userID == userID && k.quizID == quizID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *tx) InsertUnlock(_ context.Context, unlock domain.QuestionUnlock) error {
	key := unlockKey{unlock.UserID, unlock.QuizID, unlock.QuestionID}
	if _, exists := t.st.unlocks[key]; exists {
		return domain.Errorf(domain.KindAlreadyUnlocked, "question %s is already unlocked", unlock.QuestionID)
	}
	t.st.unlocks[key] = unlock
	return nil
}
