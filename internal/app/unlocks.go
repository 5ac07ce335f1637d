package app

import (
	"context"

	"hardcore-quiz-service/internal/domain"
)

// PurchaseQuestionUnlock buys permanent visibility of one question's answer
// with gems. Unlocks belong to the (user, quiz) pair, not to an attempt.
func (e *Engine) PurchaseQuestionUnlock(ctx context.Context, userID, quizID, questionID string) (domain.UnlockResult, error) {
	if err := requireUser(userID); err != nil {
		return domain.UnlockResult{}, err
	}
	quiz, err := e.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.UnlockResult{}, err
	}
	question, err := loadQuestion(quiz, questionID)
	if err != nil {
		return domain.UnlockResult{}, err
	}
	cost := domain.UnlockCost(question.Difficulty)

	result := domain.UnlockResult{Question: question.Reveal(), GemsPaid: cost}
	err = e.withUserQuiz(ctx, userID, quizID, func(ctx context.Context, tx Tx) error {
		unlocks, err := tx.ListUnlocks(ctx, userID, quizID)
		if err != nil {
			return err
		}
		for _, u := range unlocks {
			if u.QuestionID == question.ID {
				return domain.Errorf(domain.KindAlreadyUnlocked, "question %s is already unlocked", question.ID)
			}
		}

		result.Wallet, err = tx.DebitGems(ctx, userID, cost)
		if err != nil {
			return err
		}

		subs, err := tx.ListSubmissions(ctx, userID, quizID)
		if err != nil {
			return err
		}
		attempt := 0
		if active := domain.NewHistory(subs).Active(); active != nil {
			attempt = active.AttemptNumber
		}
		return tx.InsertUnlock(ctx, domain.QuestionUnlock{
			UserID:        userID,
			QuizID:        quizID,
			QuestionID:    question.ID,
			GemsPaid:      cost,
			AttemptNumber: attempt,
			CreatedAt:     e.now(),
		})
	})
	if err != nil {
		return domain.UnlockResult{}, err
	}

	e.requestLog(ctx).Info("question unlocked", "user_id", userID, "quiz_id", quizID, "question_id", question.ID, "gems", cost)
	e.publish("unlock", userID, quizID, question.ID)
	return result, nil
}

// ListUnlockedQuestions returns every question the user unlocked on quizID,
// in quiz order, with answers revealed.
func (e *Engine) ListUnlockedQuestions(ctx context.Context, userID, quizID string) ([]domain.RevealedQuestion, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	quiz, err := e.loadQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}

	var unlocks []domain.QuestionUnlock
	err = e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		unlocks, err = tx.ListUnlocks(ctx, userID, quizID)
		return err
	})
	if err != nil {
		return nil, err
	}

	unlocked := make(map[string]struct{}, len(unlocks))
	for _, u := range unlocks {
		unlocked[u.QuestionID] = struct{}{}
	}
	out := make([]domain.RevealedQuestion, 0, len(unlocked))
	for _, q := range quiz.Questions {
		if _, ok := unlocked[q.ID]; ok {
			out = append(out, q.Reveal())
		}
	}
	return out, nil
}
