package domain

// PowerCardType is the closed set of consumable boosts.
type PowerCardType string

const (
	PowerCardHint           PowerCardType = "hint"
	PowerCardTimeExtend     PowerCardType = "timeExtend"
	PowerCardReduceOptions  PowerCardType = "reduceOptions"
	PowerCardChangeQuestion PowerCardType = "changeQuestion"
)

// PowerCardTypes lists the catalog in display order.
var PowerCardTypes = []PowerCardType{
	PowerCardHint,
	PowerCardTimeExtend,
	PowerCardReduceOptions,
	PowerCardChangeQuestion,
}

var powerCardCosts = map[PowerCardType]int64{
	PowerCardHint:           300,
	PowerCardTimeExtend:     250,
	PowerCardReduceOptions:  400,
	PowerCardChangeQuestion: 600,
}

// ParsePowerCardType validates a client supplied card type.
func ParsePowerCardType(raw string) (PowerCardType, error) {
	card := PowerCardType(raw)
	if _, ok := powerCardCosts[card]; !ok {
		return "", Errorf(KindInvalidPowerCardType, "unknown power card %q", raw)
	}
	return card, nil
}

// Cost is the coin price of one card.
func (c PowerCardType) Cost() int64 {
	return powerCardCosts[c]
}

// PowerCardOffer is one catalog line for a user.
type PowerCardOffer struct {
	Type  PowerCardType `json:"type"`
	Cost  int64         `json:"cost"`
	Owned int           `json:"owned"`
}

// PowerCardEffect is the payload produced by using a card. Type selects which
// of the remaining fields is populated.
type PowerCardEffect struct {
	Type         PowerCardType `json:"type"`
	QuestionID   string        `json:"questionId"`
	Hint         string        `json:"hint,omitempty"`
	Options      []string      `json:"options,omitempty"`
	ExtraSeconds int           `json:"extraSeconds,omitempty"`
	Substitute   *QuestionView `json:"substitute,omitempty"`
}

// Rand is the slice of math/rand the effects need.
type Rand interface {
	Intn(n int) int
}

// ApplyPowerCard computes the effect of card against question. It has no side
// effects; consuming or buying the card is the caller's job.
func ApplyPowerCard(card PowerCardType, quiz Quiz, question Question, rng Rand) (PowerCardEffect, error) {
	effect := PowerCardEffect{Type: card, QuestionID: question.ID}
	switch card {
	case PowerCardHint:
		effect.Hint = question.Hint
	case PowerCardTimeExtend:
		effect.ExtraSeconds = TimeExtendSeconds
	case PowerCardReduceOptions:
		effect.Options = reduceOptions(question, rng)
	case PowerCardChangeQuestion:
		substitute, ok := pickOther(quiz, question.ID, rng)
		if !ok {
			return PowerCardEffect{}, Errorf(KindNotFound, "quiz %s has no other question to swap in", quiz.ID)
		}
		view := substitute.View()
		effect.Substitute = &view
	default:
		return PowerCardEffect{}, Errorf(KindInvalidPowerCardType, "unknown power card %q", card)
	}
	return effect, nil
}

func reduceOptions(question Question, rng Rand) []string {
	wrong := make([]string, 0, len(question.Options))
	for _, opt := range question.Options {
		if opt != question.Answer {
			wrong = append(wrong, opt)
		}
	}
	if len(wrong) == 0 {
		return []string{question.Answer}
	}
	other := wrong[rng.Intn(len(wrong))]
	if rng.Intn(2) == 0 {
		return []string{question.Answer, other}
	}
	return []string{other, question.Answer}
}

func pickOther(quiz Quiz, questionID string, rng Rand) (Question, bool) {
	others := make([]Question, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if q.ID != questionID {
			others = append(others, q)
		}
	}
	if len(others) == 0 {
		return Question{}, false
	}
	return others[rng.Intn(len(others))], true
}
