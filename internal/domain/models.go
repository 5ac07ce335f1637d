package domain

import "time"

// Difficulty labels a question's tier; it drives rewards and unlock prices.
type Difficulty string

const (
	Easy    Difficulty = "easy"
	Medium  Difficulty = "medium"
	Hard    Difficulty = "hard"
	Extreme Difficulty = "extreme"
)

// Valid reports whether d is one of the four known tiers.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard, Extreme:
		return true
	}
	return false
}

// QuizStatus is the lifecycle state set by the quiz creator.
type QuizStatus string

const (
	QuizDraft     QuizStatus = "draft"
	QuizPublished QuizStatus = "published"
)

// Question is immutable once generated. Answer equals exactly one entry of Options.
type Question struct {
	ID          string     `json:"id" yaml:"id"`
	Prompt      string     `json:"prompt" yaml:"prompt"`
	Options     []string   `json:"options" yaml:"options"`
	Answer      string     `json:"answer" yaml:"answer"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty"`
	Explanation string     `json:"explanation" yaml:"explanation"`
	Hint        string     `json:"hint" yaml:"hint"`
}

// Quiz is an ordered collection of questions belonging to one comic.
type Quiz struct {
	ID        string     `json:"id" yaml:"id"`
	ComicID   string     `json:"comicId" yaml:"comicId"`
	Title     string     `json:"title" yaml:"title"`
	Status    QuizStatus `json:"status" yaml:"status"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Question returns the question with the given id.
func (q Quiz) Question(id string) (Question, bool) {
	for _, question := range q.Questions {
		if question.ID == id {
			return question, true
		}
	}
	return Question{}, false
}

// Playable reports whether players may attempt the quiz. Quizzes without an
// explicit status predate the lifecycle field and are treated as published.
func (q Quiz) Playable() bool {
	return q.Status == "" || q.Status == QuizPublished
}

// QuestionView is what a player sees before answering.
type QuestionView struct {
	ID         string     `json:"id"`
	Prompt     string     `json:"prompt"`
	Options    []string   `json:"options"`
	Difficulty Difficulty `json:"difficulty"`
}

// RevealedQuestion exposes the correct answer, e.g. after an unlock purchase.
type RevealedQuestion struct {
	QuestionView
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	Hint        string `json:"hint"`
}

// View hides the answer, explanation and hint.
func (q Question) View() QuestionView {
	options := make([]string, len(q.Options))
	copy(options, q.Options)
	return QuestionView{
		ID:         q.ID,
		Prompt:     q.Prompt,
		Options:    options,
		Difficulty: q.Difficulty,
	}
}

func (q Question) Reveal() RevealedQuestion {
	return RevealedQuestion{
		QuestionView: q.View(),
		Answer:       q.Answer,
		Explanation:  q.Explanation,
		Hint:         q.Hint,
	}
}

// QuizView is a quiz as presented to players.
type QuizView struct {
	ID        string         `json:"id"`
	ComicID   string         `json:"comicId"`
	Title     string         `json:"title"`
	Questions []QuestionView `json:"questions"`
}

func (q Quiz) View() QuizView {
	questions := make([]QuestionView, 0, len(q.Questions))
	for _, question := range q.Questions {
		questions = append(questions, question.View())
	}
	return QuizView{ID: q.ID, ComicID: q.ComicID, Title: q.Title, Questions: questions}
}

// AnswerRecord is one evaluated answer inside a submission.
type AnswerRecord struct {
	QuestionID     string    `json:"questionId"`
	SelectedAnswer string    `json:"selectedAnswer"`
	Correct        bool      `json:"correct"`
	Coins          int64     `json:"coins"`
	Exp            int64     `json:"exp"`
	Multiplier     int64     `json:"multiplier"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// Submission is one attempt of one user at one quiz.
type Submission struct {
	ID                string         `json:"id"`
	UserID            string         `json:"userId"`
	QuizID            string         `json:"quizId"`
	AttemptNumber     int            `json:"attemptNumber"`
	Answers           []AnswerRecord `json:"answers"`
	Score             int            `json:"score"`
	CoinsEarned       int64          `json:"coinsEarned"`
	ExpEarned         int64          `json:"expEarned"`
	Multiplier        int64          `json:"multiplier"`
	IsActive          bool           `json:"isActive"`
	IsFinished        bool           `json:"isFinished"`
	HasMergedToWallet bool           `json:"hasMergedToWallet"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	FinishedAt        *time.Time     `json:"finishedAt,omitempty"`
}

// Clone returns a deep copy so stores can hand out submissions safely.
func (s Submission) Clone() Submission {
	out := s
	if s.Answers != nil {
		out.Answers = make([]AnswerRecord, len(s.Answers))
		copy(out.Answers, s.Answers)
	}
	if s.FinishedAt != nil {
		t := *s.FinishedAt
		out.FinishedAt = &t
	}
	return out
}

// Wallet holds a user's currencies and power-card inventory.
type Wallet struct {
	UserID     string                `json:"userId"`
	Coins      int64                 `json:"coins"`
	Exp        int64                 `json:"exp"`
	Gems       int64                 `json:"gems"`
	PowerCards map[PowerCardType]int `json:"powerCards"`
}

func (w Wallet) Clone() Wallet {
	out := w
	out.PowerCards = make(map[PowerCardType]int, len(w.PowerCards))
	for k, v := range w.PowerCards {
		out.PowerCards[k] = v
	}
	return out
}

// QuestionUnlock grants permanent visibility of one question's answer to a user.
// AttemptNumber records which attempt was active at purchase time (0 if none)
// and carries no scoping meaning.
type QuestionUnlock struct {
	UserID        string    `json:"userId"`
	QuizID        string    `json:"quizId"`
	QuestionID    string    `json:"questionId"`
	GemsPaid      int64     `json:"gemsPaid"`
	AttemptNumber int       `json:"attemptNumber"`
	CreatedAt     time.Time `json:"createdAt"`
}
