package domain

import (
	"errors"
	"math/rand"
	"testing"
)

func TestWalletCreditRecomputesGems(t *testing.T) {
	w := NewWallet("u1")
	w.Credit(3599, 10)
	if w.Gems != 1 {
		t.Fatalf("expected 1 gem, got %d", w.Gems)
	}
	w.Credit(1, 0)
	if w.Gems != 2 || w.Exp != 10 {
		t.Fatalf("expected 2 gems and 10 exp, got %+v", w)
	}
}

func TestWalletDebitCoinsLowersGems(t *testing.T) {
	w := NewWallet("u1")
	w.Credit(1900, 0)
	if err := w.DebitCoins(200); err != nil {
		t.Fatalf("debit: %v", err)
	}
	if w.Coins != 1700 || w.Gems != 0 {
		t.Fatalf("unexpected wallet %+v", w)
	}
	if err := w.DebitCoins(5000); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if w.Coins != 1700 {
		t.Fatalf("failed debit must not change balance")
	}
}

func TestWalletDebitGemsBurnsCoins(t *testing.T) {
	w := NewWallet("u1")
	w.Credit(2*CoinsPerGem+100, 0)
	if err := w.DebitGems(3); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if w.Gems != 2 {
		t.Fatalf("gems changed on failed debit: %d", w.Gems)
	}
	if err := w.DebitGems(1); err != nil {
		t.Fatalf("debit gems: %v", err)
	}
	if w.Coins != CoinsPerGem+100 || w.Gems != 1 {
		t.Fatalf("unexpected wallet %+v", w)
	}
	if w.Gems != GemsFor(w.Coins) {
		t.Fatalf("gems diverged from coins")
	}
}

func TestAdjustPowerCardsNeverNegative(t *testing.T) {
	w := NewWallet("u1")
	if err := w.AdjustPowerCards(PowerCardHint, -1); err == nil {
		t.Fatalf("expected error on empty inventory")
	}
	if err := w.AdjustPowerCards(PowerCardHint, 2); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if w.PowerCards[PowerCardHint] != 2 {
		t.Fatalf("expected 2 hint cards")
	}
}

func TestApplyPowerCardEffects(t *testing.T) {
	quiz := Quiz{ID: "quiz-1", Questions: []Question{
		{ID: "q1", Prompt: "p1", Options: []string{"a", "b", "c", "d", "e", "f"}, Answer: "c", Difficulty: Easy, Hint: "third letter"},
		{ID: "q2", Prompt: "p2", Options: []string{"x", "y"}, Answer: "y", Difficulty: Medium},
	}}
	rng := rand.New(rand.NewSource(7))
	q1 := quiz.Questions[0]

	hint, err := ApplyPowerCard(PowerCardHint, quiz, q1, rng)
	if err != nil || hint.Hint != "third letter" {
		t.Fatalf("hint: %+v %v", hint, err)
	}

	extend, err := ApplyPowerCard(PowerCardTimeExtend, quiz, q1, rng)
	if err != nil || extend.ExtraSeconds != TimeExtendSeconds {
		t.Fatalf("time extend: %+v %v", extend, err)
	}

	for i := 0; i < 20; i++ {
		reduced, err := ApplyPowerCard(PowerCardReduceOptions, quiz, q1, rng)
		if err != nil {
			t.Fatalf("reduce: %v", err)
		}
		if len(reduced.Options) != 2 {
			t.Fatalf("expected two options, got %v", reduced.Options)
		}
		hasAnswer := reduced.Options[0] == "c" || reduced.Options[1] == "c"
		if !hasAnswer || reduced.Options[0] == reduced.Options[1] {
			t.Fatalf("bad reduced options %v", reduced.Options)
		}
	}

	swap, err := ApplyPowerCard(PowerCardChangeQuestion, quiz, q1, rng)
	if err != nil || swap.Substitute == nil || swap.Substitute.ID != "q2" {
		t.Fatalf("change question: %+v %v", swap, err)
	}

	if _, err := ApplyPowerCard(PowerCardType("teleport"), quiz, q1, rng); !errors.Is(err, ErrInvalidPowerCardType) {
		t.Fatalf("expected invalid card, got %v", err)
	}
}

func TestValidateHardcore(t *testing.T) {
	quiz := Quiz{ID: "quiz-1"}
	for i, d := range HardcoreDifficultyOrder {
		quiz.Questions = append(quiz.Questions, Question{
			ID:         string(rune('a' + i)),
			Options:    []string{"1", "2", "3", "4", "5", "6"},
			Answer:     "4",
			Difficulty: d,
		})
	}
	if err := quiz.ValidateHardcore(); err != nil {
		t.Fatalf("valid quiz rejected: %v", err)
	}
	quiz.Questions[1].Difficulty = Hard
	if err := quiz.ValidateHardcore(); err == nil {
		t.Fatalf("expected order violation")
	}
	quiz.Questions[1].Difficulty = Medium
	quiz.Questions[2].Options = []string{"4", "4", "1", "2", "3", "5"}
	if err := quiz.Validate(); err == nil {
		t.Fatalf("expected duplicate correct option to fail")
	}
}
