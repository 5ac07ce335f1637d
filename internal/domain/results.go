package domain

import "time"

// AnswerSubmission is a player's answer to one question.
type AnswerSubmission struct {
	QuestionID     string `json:"questionId"`
	SelectedAnswer string `json:"selectedAnswer"`
	PressLuck      bool   `json:"pressLuck"`
}

// AnswerResult summarizes an evaluated answer and the attempt it belongs to.
type AnswerResult struct {
	QuestionID        string `json:"questionId"`
	Correct           bool   `json:"correct"`
	CorrectAnswer     string `json:"correctAnswer"`
	AttemptNumber     int    `json:"attemptNumber"`
	Score             int    `json:"score"`
	CoinsEarned       int64  `json:"coinsEarned"`
	ExpEarned         int64  `json:"expEarned"`
	Awarded           Reward `json:"awarded"`
	Multiplier        int64  `json:"multiplier"`
	Finished          bool   `json:"finished"`
	Merged            bool   `json:"merged"`
	Credited          Reward `json:"credited"`
	RemainingAttempts int    `json:"remainingAttempts"`
}

// FinishResult is returned when a player cashes out an attempt.
type FinishResult struct {
	Submission        Submission `json:"submission"`
	Credited          Reward     `json:"credited"`
	Merged            bool       `json:"merged"`
	RemainingAttempts int        `json:"remainingAttempts"`
}

// AttemptStatus is a quiz together with one user's progress on it.
type AttemptStatus struct {
	Quiz              QuizView     `json:"quiz"`
	AttemptsUsed      int          `json:"attemptsUsed"`
	RemainingAttempts int          `json:"remainingAttempts"`
	Active            *Submission  `json:"active,omitempty"`
	Submissions       []Submission `json:"submissions"`
	AnsweredQuestions []string     `json:"answeredQuestions"`
	UnlockedQuestions []string     `json:"unlockedQuestions"`
}

// PowerCardUse is the outcome of playing a card.
type PowerCardUse struct {
	Effect        PowerCardEffect `json:"effect"`
	AutoPurchased bool            `json:"autoPurchased"`
	Wallet        Wallet          `json:"wallet"`
}

// UnlockResult is the outcome of buying a question unlock.
type UnlockResult struct {
	Question RevealedQuestion `json:"question"`
	GemsPaid int64            `json:"gemsPaid"`
	Wallet   Wallet           `json:"wallet"`
}

// AttemptEvent is pushed to live subscribers of a (user, quiz) pair.
type AttemptEvent struct {
	Type    string    `json:"type"`
	UserID  string    `json:"userId"`
	QuizID  string    `json:"quizId"`
	Payload any       `json:"payload"`
	At      time.Time `json:"at"`
}
