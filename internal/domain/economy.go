package domain

// CoinsPerGem is the conversion rate between the two currencies.
// Gems are always floor(coins / CoinsPerGem); they are never stored independently.
const CoinsPerGem = 1800

// MaxFinishedAttempts is the lifetime cap of finished attempts per user and quiz.
const MaxFinishedAttempts = 2

// TimeExtendSeconds is the advisory grant reported by the timeExtend card.
const TimeExtendSeconds = 10

// Reward is a (coins, exp) pair.
type Reward struct {
	Coins int64 `json:"coins"`
	Exp   int64 `json:"exp"`
}

// Times scales a reward by the multiplier chain.
func (r Reward) Times(multiplier int64) Reward {
	return Reward{Coins: r.Coins * multiplier, Exp: r.Exp * multiplier}
}

var baseRewards = map[Difficulty]Reward{
	Easy:    {Coins: 30, Exp: 15},
	Medium:  {Coins: 50, Exp: 20},
	Hard:    {Coins: 80, Exp: 30},
	Extreme: {Coins: 120, Exp: 50},
}

// BaseReward is the reward of a correct answer before the multiplier.
func BaseReward(d Difficulty) Reward {
	return baseRewards[d]
}

var unlockCosts = map[Difficulty]int64{
	Easy:    1,
	Medium:  2,
	Hard:    3,
	Extreme: 4,
}

// UnlockCost is the gem price of revealing a question of the given difficulty.
func UnlockCost(d Difficulty) int64 {
	return unlockCosts[d]
}

// GemsFor derives the gem balance from a coin balance.
func GemsFor(coins int64) int64 {
	if coins <= 0 {
		return 0
	}
	return coins / CoinsPerGem
}

// NewWallet returns an empty wallet for userID.
func NewWallet(userID string) Wallet {
	return Wallet{UserID: userID, PowerCards: make(map[PowerCardType]int)}
}

// Credit adds coins and exp and recomputes gems.
func (w *Wallet) Credit(coins, exp int64) {
	w.Coins += coins
	w.Exp += exp
	w.Gems = GemsFor(w.Coins)
}

// DebitCoins spends coins, failing without side effects when the balance is short.
func (w *Wallet) DebitCoins(amount int64) error {
	if amount < 0 {
		return Errorf(KindInvalidRequest, "negative debit %d", amount)
	}
	if w.Coins < amount {
		return Errorf(KindInsufficientFunds, "need %d coins, have %d", amount, w.Coins)
	}
	w.Coins -= amount
	w.Gems = GemsFor(w.Coins)
	return nil
}

// DebitGems spends gems by burning their coin equivalent, which keeps the
// gems == floor(coins / CoinsPerGem) relation intact.
func (w *Wallet) DebitGems(amount int64) error {
	if amount < 0 {
		return Errorf(KindInvalidRequest, "negative debit %d", amount)
	}
	if w.Gems < amount {
		return Errorf(KindInsufficientFunds, "need %d gems, have %d", amount, w.Gems)
	}
	w.Coins -= amount * CoinsPerGem
	w.Gems = GemsFor(w.Coins)
	return nil
}

// AdjustPowerCards changes the inventory of one card type; counts never go negative.
func (w *Wallet) AdjustPowerCards(card PowerCardType, delta int) error {
	if w.PowerCards == nil {
		w.PowerCards = make(map[PowerCardType]int)
	}
	next := w.PowerCards[card] + delta
	if next < 0 {
		return Errorf(KindInsufficientFunds, "no %s cards left", card)
	}
	w.PowerCards[card] = next
	return nil
}
