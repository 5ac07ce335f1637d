package app

import (
	"context"

	"hardcore-quiz-service/internal/domain"
)

// maxPowerCardPurchase bounds a single purchase so cost arithmetic stays small.
const maxPowerCardPurchase = 100

// Wallet returns the user's balances and power-card inventory.
func (e *Engine) Wallet(ctx context.Context, userID string) (domain.Wallet, error) {
	if err := requireUser(userID); err != nil {
		return domain.Wallet{}, err
	}
	var wallet domain.Wallet
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		wallet, err = tx.GetWallet(ctx, userID)
		return err
	})
	return wallet, err
}

// PowerCardCatalog lists every card type with its price and the user's stock.
func (e *Engine) PowerCardCatalog(ctx context.Context, userID string) ([]domain.PowerCardOffer, error) {
	wallet, err := e.Wallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	offers := make([]domain.PowerCardOffer, 0, len(domain.PowerCardTypes))
	for _, card := range domain.PowerCardTypes {
		offers = append(offers, domain.PowerCardOffer{
			Type:  card,
			Cost:  card.Cost(),
			Owned: wallet.PowerCards[card],
		})
	}
	return offers, nil
}

// PurchasePowerCards buys quantity cards of one type with coins.
func (e *Engine) PurchasePowerCards(ctx context.Context, userID, cardType string, quantity int) (domain.Wallet, error) {
	if err := requireUser(userID); err != nil {
		return domain.Wallet{}, err
	}
	card, err := domain.ParsePowerCardType(cardType)
	if err != nil {
		return domain.Wallet{}, err
	}
	if quantity < 1 || quantity > maxPowerCardPurchase {
		return domain.Wallet{}, domain.Errorf(domain.KindInvalidRequest, "quantity must be between 1 and %d", maxPowerCardPurchase)
	}
	cost := card.Cost() * int64(quantity)

	var wallet domain.Wallet
	err = e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.DebitCoins(ctx, userID, cost); err != nil {
			return err
		}
		wallet, err = tx.AdjustPowerCards(ctx, userID, card, quantity)
		return err
	})
	if err != nil {
		return domain.Wallet{}, err
	}

	e.requestLog(ctx).Info("power cards purchased", "user_id", userID, "card", card, "quantity", quantity, "coins", cost)
	return wallet, nil
}

// UsePowerCard plays one card against a question. An owned card is consumed;
// without one, exactly one card is bought with coins on the spot.
func (e *Engine) UsePowerCard(ctx context.Context, userID, quizID, questionID, cardType string) (domain.PowerCardUse, error) {
	if err := requireUser(userID); err != nil {
		return domain.PowerCardUse{}, err
	}
	card, err := domain.ParsePowerCardType(cardType)
	if err != nil {
		return domain.PowerCardUse{}, err
	}
	quiz, err := e.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.PowerCardUse{}, err
	}
	question, err := loadQuestion(quiz, questionID)
	if err != nil {
		return domain.PowerCardUse{}, err
	}
	effect, err := domain.ApplyPowerCard(card, quiz, question, e.rng)
	if err != nil {
		return domain.PowerCardUse{}, err
	}

	use := domain.PowerCardUse{Effect: effect}
	err = e.withUserQuiz(ctx, userID, quizID, func(ctx context.Context, tx Tx) error {
		// the store may rerun this body after a serialization failure
		use.AutoPurchased = false
		use.Wallet = domain.Wallet{}

		subs, err := tx.ListSubmissions(ctx, userID, quizID)
		if err != nil {
			return err
		}
		if domain.NewHistory(subs).Answered(question.ID) {
			return domain.Errorf(domain.KindQuestionAlreadyAnswered, "question %s was already answered", question.ID)
		}

		wallet, err := tx.GetWallet(ctx, userID)
		if err != nil {
			return err
		}
		if wallet.PowerCards[card] > 0 {
			use.Wallet, err = tx.AdjustPowerCards(ctx, userID, card, -1)
			return err
		}
		use.AutoPurchased = true
		use.Wallet, err = tx.DebitCoins(ctx, userID, card.Cost())
		return err
	})
	if err != nil {
		return domain.PowerCardUse{}, err
	}

	e.requestLog(ctx).Info("power card used",
		"user_id", userID,
		"quiz_id", quizID,
		"question_id", question.ID,
		"card", card,
		"auto_purchased", use.AutoPurchased,
	)
	e.publish("powerCard", userID, quizID, use.Effect)
	return use, nil
}
