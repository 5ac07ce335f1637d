package domain

import (
	"sort"
	"time"
)

// AnswerOutcome is the result of evaluating one answer inside a submission.
type AnswerOutcome struct {
	Correct    bool
	Awarded    Reward
	Multiplier int64
}

// NewSubmission opens a fresh attempt with an empty reward chain.
func NewSubmission(id, userID, quizID string, attemptNumber int, now time.Time) Submission {
	return Submission{
		ID:            id,
		UserID:        userID,
		QuizID:        quizID,
		AttemptNumber: attemptNumber,
		Answers:       []AnswerRecord{},
		Multiplier:    1,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Record evaluates selected against question and advances the attempt.
// A correct answer pays base reward times the current multiplier and doubles
// the multiplier when pressLuck is set. A wrong answer forfeits everything the
// attempt earned and closes it.
func (s *Submission) Record(question Question, selected string, pressLuck bool, now time.Time) AnswerOutcome {
	multiplier := s.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	record := AnswerRecord{
		QuestionID:     question.ID,
		SelectedAnswer: selected,
		Multiplier:     multiplier,
		AnsweredAt:     now,
	}
	s.UpdatedAt = now

	if selected != question.Answer {
		s.Answers = append(s.Answers, record)
		s.CoinsEarned = 0
		s.ExpEarned = 0
		s.Multiplier = 1
		s.Close(now)
		return AnswerOutcome{Multiplier: multiplier}
	}

	reward := BaseReward(question.Difficulty).Times(multiplier)
	record.Correct = true
	record.Coins = reward.Coins
	record.Exp = reward.Exp
	s.Answers = append(s.Answers, record)
	s.Score++
	s.CoinsEarned += reward.Coins
	s.ExpEarned += reward.Exp
	if pressLuck {
		s.Multiplier = multiplier * 2
	} else {
		s.Multiplier = multiplier
	}
	return AnswerOutcome{Correct: true, Awarded: reward, Multiplier: multiplier}
}

// Close makes the submission terminal.
func (s *Submission) Close(now time.Time) {
	s.IsActive = false
	s.IsFinished = true
	s.UpdatedAt = now
	finished := now
	s.FinishedAt = &finished
}

// Settle hands out the attempt's earnings for merging into the wallet.
// It returns ok=true at most once per submission.
func (s *Submission) Settle() (Reward, bool) {
	if s.HasMergedToWallet {
		return Reward{}, false
	}
	s.HasMergedToWallet = true
	return Reward{Coins: s.CoinsEarned, Exp: s.ExpEarned}, true
}

// History is every submission one user made for one quiz.
type History struct {
	subs []Submission
}

// NewHistory orders submissions by attempt number.
func NewHistory(subs []Submission) *History {
	sorted := make([]Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AttemptNumber < sorted[j].AttemptNumber
	})
	return &History{subs: sorted}
}

func (h *History) Submissions() []Submission {
	return h.subs
}

// FinishedCount counts terminal attempts; this is what the lifetime cap applies to.
func (h *History) FinishedCount() int {
	n := 0
	for _, s := range h.subs {
		if s.IsFinished {
			n++
		}
	}
	return n
}

// Active returns the single in-flight submission, or nil.
func (h *History) Active() *Submission {
	for i := range h.subs {
		if h.subs[i].IsActive && !h.subs[i].IsFinished {
			return &h.subs[i]
		}
	}
	return nil
}

// Answered reports whether questionID appears in any submission.
func (h *History) Answered(questionID string) bool {
	for _, s := range h.subs {
		for _, a := range s.Answers {
			if a.QuestionID == questionID {
				return true
			}
		}
	}
	return false
}

// AnsweredIDs lists answered question ids in answer order.
func (h *History) AnsweredIDs() []string {
	ids := []string{}
	for _, s := range h.subs {
		for _, a := range s.Answers {
			ids = append(ids, a.QuestionID)
		}
	}
	return ids
}

// Cleared reports whether no question of quiz is left unanswered.
func (h *History) Cleared(quiz Quiz) bool {
	for _, q := range quiz.Questions {
		if !h.Answered(q.ID) {
			return false
		}
	}
	return true
}

// RemainingAttempts is max minus finished attempts, floored at zero.
func (h *History) RemainingAttempts(max int) int {
	if left := max - h.FinishedCount(); left > 0 {
		return left
	}
	return 0
}

// StartOrResume returns the active submission or opens a new one when the
// cap allows. created tells the caller whether it must insert the result.
// The returned pointer stays valid until the next call that opens an attempt.
func (h *History) StartOrResume(userID, quizID string, max int, newID func() string, now time.Time) (*Submission, bool, error) {
	if active := h.Active(); active != nil {
		return active, false, nil
	}
	finished := h.FinishedCount()
	if finished >= max {
		return nil, false, Errorf(KindAttemptLimitExceeded, "all %d attempts for quiz %s are used", max, quizID)
	}
	h.subs = append(h.subs, NewSubmission(newID(), userID, quizID, finished+1, now))
	return &h.subs[len(h.subs)-1], true, nil
}
