// Package shuffle produces reproducible presentation orders for a quiz attempt
// and translates answers given in shuffled positions back to canonical indexes.
//
// The generator is a sine-derived fractional value. It is neither uniform nor
// secure; it only has to be cheap and reproducible for a given base seed.
package shuffle

import (
	"errors"
	"fmt"
	"math"

	"timed-quiz-service/internal/domain"
)

var (
	// ErrUnknownQuestion is returned when translating an answer for a question not in the arrangement.
	ErrUnknownQuestion = errors.New("question not in arrangement")
	// ErrPositionOutOfRange is returned when a selected shuffled position has no choice.
	ErrPositionOutOfRange = errors.New("selected position out of range")
	// ErrInvalidSelection is returned when the selection shape does not fit the question type.
	ErrInvalidSelection = errors.New("selection does not match question type")
)

// Random returns frac(sin(seed) * 10000), a value in [0, 1).
func Random(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}

// Permutation returns a Fisher-Yates permutation of [0, n). Step i draws its
// swap partner from Random(seed+i). Element k of the result is the original
// index of the item placed at position k.
func Permutation(n int, seed int64) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := int(math.Floor(Random(float64(seed+int64(i))) * float64(i+1)))
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm
}

// Slice returns a shuffled copy of items; the input is left untouched.
func Slice[T any](items []T, seed int64) []T {
	out := make([]T, len(items))
	for pos, orig := range Permutation(len(items), seed) {
		out[pos] = items[orig]
	}
	return out
}

// ChoiceMapping translates a shuffled position to the canonical choice index
// displayed there.
type ChoiceMapping []int

// Canonical returns the canonical index shown at shuffled position pos.
func (m ChoiceMapping) Canonical(pos int) (int, error) {
	if pos < 0 || pos >= len(m) {
		return 0, fmt.Errorf("%w: %d of %d", ErrPositionOutOfRange, pos, len(m))
	}
	return m[pos], nil
}

// Position is the inverse lookup: where canonical index idx is displayed.
func (m ChoiceMapping) Position(idx int) (int, bool) {
	for pos, canonical := range m {
		if canonical == idx {
			return pos, true
		}
	}
	return 0, false
}

// Arrangement is one attempt's presentation: shuffled questions with shuffled
// choices and the mappings needed to undo the choice shuffle.
type Arrangement struct {
	Seed      int64
	Questions []domain.PublicQuestion
	// Order[k] is the canonical position of the question shown at position k.
	Order    []int
	Mappings map[string]ChoiceMapping

	types map[string]domain.QuestionType
}

// Arrange shuffles question order with seed, then each question's choices with
// seed plus the question's position in the shuffled order.
func Arrange(questions []domain.PublicQuestion, seed int64) Arrangement {
	order := Permutation(len(questions), seed)
	a := Arrangement{
		Seed:      seed,
		Questions: make([]domain.PublicQuestion, len(questions)),
		Order:     order,
		Mappings:  make(map[string]ChoiceMapping),
		types:     make(map[string]domain.QuestionType, len(questions)),
	}

	for pos, orig := range order {
		q := questions[orig]
		a.types[q.ID] = q.Type
		if len(q.Choices) > 0 {
			mapping := ChoiceMapping(Permutation(len(q.Choices), seed+int64(pos)))
			choices := make([]string, len(q.Choices))
			for shuffled, canonical := range mapping {
				choices[shuffled] = q.Choices[canonical]
			}
			q.Choices = choices
			a.Mappings[q.ID] = mapping
		}
		a.Questions[pos] = q
	}
	return a
}

// Translate converts a selection made in shuffled positions into the canonical
// answer value sent for grading. Text answers pass through unchanged.
func (a Arrangement) Translate(questionID string, value domain.AnswerValue) (domain.AnswerValue, error) {
	qType, ok := a.types[questionID]
	if !ok {
		return domain.AnswerValue{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, questionID)
	}
	if value.Kind() == domain.KindNone {
		return domain.AnswerValue{}, fmt.Errorf("%w: %s has no value", ErrInvalidSelection, questionID)
	}
	mapping, hasChoices := a.Mappings[questionID]
	if !hasChoices {
		return value, nil
	}

	switch qType {
	case domain.QuestionRadio:
		pos, err := position(value)
		if err != nil {
			return domain.AnswerValue{}, err
		}
		canonical, err := mapping.Canonical(pos)
		if err != nil {
			return domain.AnswerValue{}, err
		}
		return domain.IndexValue(canonical), nil
	case domain.QuestionCheckbox:
		list, ok := value.List()
		if !ok {
			return domain.AnswerValue{}, fmt.Errorf("%w: %s expects a list", ErrInvalidSelection, questionID)
		}
		out := make([]int, len(list))
		for i, n := range list {
			pos, err := position(domain.NumberValue(n))
			if err != nil {
				return domain.AnswerValue{}, err
			}
			if out[i], err = mapping.Canonical(pos); err != nil {
				return domain.AnswerValue{}, err
			}
		}
		return domain.IndexesValue(out), nil
	}
	return value, nil
}

func position(value domain.AnswerValue) (int, error) {
	n, ok := value.Numeric()
	if !ok || math.IsInf(n, 0) || n != math.Trunc(n) {
		return 0, fmt.Errorf("%w: %q is not a choice position", ErrInvalidSelection, value.String())
	}
	return int(n), nil
}
