package app

import (
	"sort"
	"strings"

	"timed-quiz-service/internal/domain"
)

// Grade scores answers against the canonical bank. Unknown ids are scored
// wrong rather than rejected. Total is always the bank size, and results keep
// the order answers were submitted in.
func Grade(bank *domain.Bank, answers []domain.Answer) domain.GradeResponse {
	results := make([]domain.GradeResult, 0, len(answers))
	score := 0

	for _, answer := range answers {
		question, ok := bank.Lookup(answer.ID)
		if !ok {
			results = append(results, domain.GradeResult{ID: answer.ID, Correct: false})
			continue
		}

		correct := gradeAnswer(question, answer.Value)
		if correct {
			score++
		}
		results = append(results, domain.GradeResult{ID: answer.ID, Correct: correct})
	}

	return domain.GradeResponse{
		Score:   score,
		Total:   bank.Len(),
		Results: results,
	}
}

func gradeAnswer(q domain.Question, value domain.AnswerValue) bool {
	switch q.Type {
	case domain.QuestionText:
		if q.CorrectText == nil {
			return false
		}
		return normalizeText(value.String()) == normalizeText(*q.CorrectText)
	case domain.QuestionRadio:
		if q.CorrectIndex == nil {
			return false
		}
		n, ok := value.Numeric()
		return ok && n == float64(*q.CorrectIndex)
	case domain.QuestionCheckbox:
		if q.CorrectIndexes == nil {
			return false
		}
		selected, ok := value.List()
		if !ok {
			return false
		}
		return sameIndexes(selected, q.CorrectIndexes)
	}
	return false
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sameIndexes compares both sides as multisets, sorted numerically.
func sameIndexes(selected []float64, canonical []int) bool {
	if len(selected) != len(canonical) {
		return false
	}
	want := make([]float64, len(canonical))
	for i, idx := range canonical {
		want[i] = float64(idx)
	}
	sort.Float64s(selected)
	sort.Float64s(want)
	for i := range want {
		if selected[i] != want[i] {
			return false
		}
	}
	return true
}
