package domain

import "fmt"

// Bank is the canonical question set. It is built once and never mutated, so a
// single instance is shared by all request handlers without locking.
type Bank struct {
	questions []Question
	byID      map[string]int
}

// NewBank validates and copies questions into an immutable bank.
func NewBank(questions []Question) (*Bank, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyBank
	}
	b := &Bank{
		questions: make([]Question, 0, len(questions)),
		byID:      make(map[string]int, len(questions)),
	}
	for _, q := range questions {
		if err := ValidateQuestion(q); err != nil {
			return nil, err
		}
		if _, dup := b.byID[q.ID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateQuestion, q.ID)
		}
		b.byID[q.ID] = len(b.questions)
		b.questions = append(b.questions, cloneQuestion(q))
	}
	return b, nil
}

// Len is the number of canonical questions.
func (b *Bank) Len() int { return len(b.questions) }

// Lookup finds the canonical question an answer id refers to.
func (b *Bank) Lookup(id AnswerID) (Question, bool) {
	if id.IsNumeric() {
		return Question{}, false
	}
	i, ok := b.byID[id.String()]
	if !ok {
		return Question{}, false
	}
	return b.questions[i], true
}

// Public returns the questions in canonical order with answer keys stripped.
func (b *Bank) Public() []PublicQuestion {
	out := make([]PublicQuestion, len(b.questions))
	for i, q := range b.questions {
		out[i] = q.Public()
	}
	return out
}

// Questions returns a copy of the canonical questions.
func (b *Bank) Questions() []Question {
	out := make([]Question, len(b.questions))
	for i, q := range b.questions {
		out[i] = cloneQuestion(q)
	}
	return out
}

// ValidateQuestion checks that the answer key matches the question type.
func ValidateQuestion(q Question) error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	if !q.Type.Valid() {
		return fmt.Errorf("%w: %s: unknown type %q", ErrInvalidQuestion, q.ID, q.Type)
	}
	if q.Type.HasChoices() && len(q.Choices) == 0 {
		return fmt.Errorf("%w: %s: %s question needs choices", ErrInvalidQuestion, q.ID, q.Type)
	}
	keys := 0
	if q.CorrectText != nil {
		keys++
	}
	if q.CorrectIndex != nil {
		keys++
	}
	if q.CorrectIndexes != nil {
		keys++
	}
	if keys != 1 {
		return fmt.Errorf("%w: %s: expected exactly one answer key, got %d", ErrInvalidQuestion, q.ID, keys)
	}

	switch q.Type {
	case QuestionText:
		if q.CorrectText == nil {
			return fmt.Errorf("%w: %s: text question needs correctText", ErrInvalidQuestion, q.ID)
		}
	case QuestionRadio:
		if q.CorrectIndex == nil {
			return fmt.Errorf("%w: %s: radio question needs correctIndex", ErrInvalidQuestion, q.ID)
		}
		if *q.CorrectIndex < 0 || *q.CorrectIndex >= len(q.Choices) {
			return fmt.Errorf("%w: %s: correctIndex %d out of range", ErrInvalidQuestion, q.ID, *q.CorrectIndex)
		}
	case QuestionCheckbox:
		if q.CorrectIndexes == nil {
			return fmt.Errorf("%w: %s: checkbox question needs correctIndexes", ErrInvalidQuestion, q.ID)
		}
		for _, idx := range q.CorrectIndexes {
			if idx < 0 || idx >= len(q.Choices) {
				return fmt.Errorf("%w: %s: correctIndexes entry %d out of range", ErrInvalidQuestion, q.ID, idx)
			}
		}
	}
	return nil
}

func cloneQuestion(q Question) Question {
	out := q
	if q.Choices != nil {
		out.Choices = append([]string(nil), q.Choices...)
	}
	if q.CorrectText != nil {
		text := *q.CorrectText
		out.CorrectText = &text
	}
	if q.CorrectIndex != nil {
		idx := *q.CorrectIndex
		out.CorrectIndex = &idx
	}
	if q.CorrectIndexes != nil {
		out.CorrectIndexes = append([]int{}, q.CorrectIndexes...)
	}
	return out
}
