package domain

// HardcoreQuestionCount is how many questions the generation pipeline emits per hardcore quiz.
const HardcoreQuestionCount = 8

// HardcoreDifficultyOrder is the tier sequence of a generated hardcore quiz.
var HardcoreDifficultyOrder = []Difficulty{Easy, Medium, Hard, Extreme, Easy, Medium, Hard, Extreme}

// Validate checks structural rules every quiz must satisfy.
func (q Quiz) Validate() error {
	if q.ID == "" {
		return Errorf(KindInvalidRequest, "quiz id is required")
	}
	if len(q.Questions) == 0 {
		return Errorf(KindInvalidRequest, "quiz %s has no questions", q.ID)
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		if question.ID == "" {
			return Errorf(KindInvalidRequest, "quiz %s has a question without id", q.ID)
		}
		if _, dup := seen[question.ID]; dup {
			return Errorf(KindInvalidRequest, "quiz %s repeats question %s", q.ID, question.ID)
		}
		seen[question.ID] = struct{}{}
		if !question.Difficulty.Valid() {
			return Errorf(KindInvalidRequest, "question %s has unknown difficulty %q", question.ID, question.Difficulty)
		}
		matches := 0
		for _, opt := range question.Options {
			if opt == question.Answer {
				matches++
			}
		}
		if matches != 1 {
			return Errorf(KindInvalidRequest, "question %s must have exactly one correct option, found %d", question.ID, matches)
		}
	}
	return nil
}

// ValidateHardcore additionally enforces the hardcore layout: eight questions
// in the fixed difficulty order, each with six or seven options.
func (q Quiz) ValidateHardcore() error {
	if err := q.Validate(); err != nil {
		return err
	}
	if len(q.Questions) != HardcoreQuestionCount {
		return Errorf(KindInvalidRequest, "hardcore quiz %s needs %d questions, has %d", q.ID, HardcoreQuestionCount, len(q.Questions))
	}
	for i, question := range q.Questions {
		if question.Difficulty != HardcoreDifficultyOrder[i] {
			return Errorf(KindInvalidRequest, "question %d of %s should be %s, is %s", i+1, q.ID, HardcoreDifficultyOrder[i], question.Difficulty)
		}
		if n := len(question.Options); n < 6 || n > 7 {
			return Errorf(KindInvalidRequest, "question %s has %d options, want 6 or 7", question.ID, n)
		}
	}
	return nil
}
