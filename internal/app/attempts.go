package app

import (
	"context"

	"hardcore-quiz-service/internal/domain"
)

// StartOrResume returns the user's active attempt on quizID, opening a new
// one when none is active and the lifetime cap allows it.
func (e *Engine) StartOrResume(ctx context.Context, userID, quizID string) (domain.Submission, error) {
	if err := requireUser(userID); err != nil {
		return domain.Submission{}, err
	}
	if _, err := e.loadQuiz(ctx, quizID); err != nil {
		return domain.Submission{}, err
	}

	var out domain.Submission
	err := e.withUserQuiz(ctx, userID, quizID, func(ctx context.Context, tx Tx) error {
		subs, err := tx.ListSubmissions(ctx, userID, quizID)
		if err != nil {
			return err
		}
		history := domain.NewHistory(subs)
		sub, created, err := history.StartOrResume(userID, quizID, e.maxAttempts, e.newID, e.now())
		if err != nil {
			return err
		}
		if created {
			if err := tx.InsertSubmission(ctx, *sub); err != nil {
				return err
			}
		}
		out = sub.Clone()
		return nil
	})
	if err != nil {
		return domain.Submission{}, err
	}
	e.requestLog(ctx).Debug("attempt ready", "user_id", userID, "quiz_id", quizID, "attempt", out.AttemptNumber)
	return out, nil
}

// AnswerQuestion evaluates one answer. A correct answer extends the reward
// chain and, once no question of the quiz is left unanswered, finalizes the
// attempt and merges its earnings into the wallet. A wrong answer ends the
// attempt and forfeits everything it earned.
func (e *Engine) AnswerQuestion(ctx context.Context, userID, quizID string, in domain.AnswerSubmission) (domain.AnswerResult, error) {
	if err := requireUser(userID); err != nil {
		return domain.AnswerResult{}, err
	}
	quiz, err := e.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	question, err := loadQuestion(quiz, in.QuestionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	var result domain.AnswerResult
	err = e.withUserQuiz(ctx, userID, quizID, func(ctx context.Context, tx Tx) error {
		subs, err := tx.ListSubmissions(ctx, userID, quizID)
		if err != nil {
			return err
		}
		history := domain.NewHistory(subs)
		if history.FinishedCount() >= e.maxAttempts {
			return domain.Errorf(domain.KindAttemptLimitExceeded, "all %d attempts for quiz %s are used", e.maxAttempts, quizID)
		}
		if history.Answered(question.ID) {
			return domain.Errorf(domain.KindQuestionAlreadyAnswered, "question %s was already answered", question.ID)
		}

		now := e.now()
		sub, created, err := history.StartOrResume(userID, quizID, e.maxAttempts, e.newID, now)
		if err != nil {
			return err
		}
		outcome := sub.Record(question, in.SelectedAnswer, in.PressLuck, now)

		var credited domain.Reward
		merged := false
		if outcome.Correct && history.Cleared(quiz) {
			sub.Close(now)
			if reward, ok := sub.Settle(); ok {
				if _, err := tx.Credit(ctx, userID, reward); err != nil {
					return err
				}
				credited = reward
				merged = true
			}
		}

		if created {
			err = tx.InsertSubmission(ctx, *sub)
		} else {
			err = tx.UpdateSubmission(ctx, *sub)
		}
		if err != nil {
			return err
		}

		result = domain.AnswerResult{
			QuestionID:        question.ID,
			Correct:           outcome.Correct,
			CorrectAnswer:     question.Answer,
			AttemptNumber:     sub.AttemptNumber,
			Score:             sub.Score,
			CoinsEarned:       sub.CoinsEarned,
			ExpEarned:         sub.ExpEarned,
			Awarded:           outcome.Awarded,
			Multiplier:        sub.Multiplier,
			Finished:          sub.IsFinished,
			Merged:            merged,
			Credited:          credited,
			RemainingAttempts: history.RemainingAttempts(e.maxAttempts),
		}
		return nil
	})
	if err != nil {
		return domain.AnswerResult{}, err
	}

	e.requestLog(ctx).Info("answer evaluated",
		"user_id", userID,
		"quiz_id", quizID,
		"question_id", question.ID,
		"correct", result.Correct,
		"attempt", result.AttemptNumber,
		"finished", result.Finished,
		"merged", result.Merged,
	)
	e.publish("answer", userID, quizID, result)
	return result, nil
}

// FinishAttempt lets a player stop and cash out whatever the active attempt
// has earned so far. Earnings are merged at most once per attempt.
func (e *Engine) FinishAttempt(ctx context.Context, userID, quizID string) (domain.FinishResult, error) {
	if err := requireUser(userID); err != nil {
		return domain.FinishResult{}, err
	}
	if _, err := e.loadQuiz(ctx, quizID); err != nil {
		return domain.FinishResult{}, err
	}

	var result domain.FinishResult
	err := e.withUserQuiz(ctx, userID, quizID, func(ctx context.Context, tx Tx) error {
		subs, err := tx.ListSubmissions(ctx, userID, quizID)
		if err != nil {
			return err
		}
		history := domain.NewHistory(subs)
		active := history.Active()
		if active == nil {
			return domain.Errorf(domain.KindNotFound, "no active attempt for quiz %s", quizID)
		}

		var credited domain.Reward
		merged := false
		if !active.HasMergedToWallet && len(active.Answers) > 0 {
			reward, _ := active.Settle()
			if _, err := tx.Credit(ctx, userID, reward); err != nil {
				return err
			}
			credited = reward
			merged = true
		}
		active.Close(e.now())
		if err := tx.UpdateSubmission(ctx, *active); err != nil {
			return err
		}

		result = domain.FinishResult{
			Submission:        active.Clone(),
			Credited:          credited,
			Merged:            merged,
			RemainingAttempts: history.RemainingAttempts(e.maxAttempts),
		}
		return nil
	})
	if err != nil {
		return domain.FinishResult{}, err
	}

	e.requestLog(ctx).Info("attempt finished",
		"user_id", userID,
		"quiz_id", quizID,
		"attempt", result.Submission.AttemptNumber,
		"coins", result.Credited.Coins,
		"exp", result.Credited.Exp,
	)
	e.publish("finish", userID, quizID, result)
	return result, nil
}

// QuizStatus returns the quiz without answers plus the user's progress.
func (e *Engine) QuizStatus(ctx context.Context, userID, quizID string) (domain.AttemptStatus, error) {
	if err := requireUser(userID); err != nil {
		return domain.AttemptStatus{}, err
	}
	quiz, err := e.loadQuiz(ctx, quizID)
	if err != nil {
		return domain.AttemptStatus{}, err
	}

	status := domain.AttemptStatus{Quiz: quiz.View()}
	err = e.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		subs, err := tx.ListSubmissions(ctx, userID, quizID)
		if err != nil {
			return err
		}
		unlocks, err := tx.ListUnlocks(ctx, userID, quizID)
		if err != nil {
			return err
		}

		history := domain.NewHistory(subs)
		status.AttemptsUsed = history.FinishedCount()
		status.RemainingAttempts = history.RemainingAttempts(e.maxAttempts)
		status.Submissions = history.Submissions()
		status.AnsweredQuestions = history.AnsweredIDs()
		if active := history.Active(); active != nil {
			sub := active.Clone()
			status.Active = &sub
		}
		status.UnlockedQuestions = make([]string, 0, len(unlocks))
		for _, u := range unlocks {
			status.UnlockedQuestions = append(status.UnlockedQuestions, u.QuestionID)
		}
		return nil
	})
	if err != nil {
		return domain.AttemptStatus{}, err
	}
	return status, nil
}
