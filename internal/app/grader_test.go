package app_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
)

func defaultBank(t *testing.T) *domain.Bank {
	t.Helper()
	bank, err := domain.NewBank(memory.DefaultQuestions())
	require.NoError(t, err)
	return bank
}

func TestGradeSingleAnswer(t *testing.T) {
	bank := defaultBank(t)

	tests := []struct {
		name    string
		id      string
		value   domain.AnswerValue
		correct bool
	}{
		{name: "text exact", id: "q3", value: domain.TextValue("200"), correct: true},
		{name: "text padded", id: "q3", value: domain.TextValue("  200 "), correct: true},
		{name: "text case insensitive", id: "q9", value: domain.TextValue(" CONST"), correct: true},
		{name: "text wrong", id: "q9", value: domain.TextValue("let"), correct: false},
		{name: "text from number", id: "q3", value: domain.NumberValue(200), correct: true},
		{name: "radio number", id: "q4", value: domain.NumberValue(1), correct: true},
		{name: "radio numeric string", id: "q4", value: domain.TextValue("1"), correct: true},
		{name: "radio padded string", id: "q4", value: domain.TextValue(" 1 "), correct: true},
		{name: "radio wrong", id: "q4", value: domain.NumberValue(2), correct: false},
		{name: "radio fractional", id: "q4", value: domain.NumberValue(1.0000001), correct: false},
		{name: "radio non numeric", id: "q4", value: domain.TextValue("Vercel"), correct: false},
		{name: "radio blank string", id: "q1", value: domain.TextValue(""), correct: false},
		{name: "radio list", id: "q4", value: domain.ListValue(1), correct: false},
		{name: "checkbox canonical order", id: "q2", value: domain.ListValue(0, 1, 3), correct: true},
		{name: "checkbox shuffled order", id: "q2", value: domain.ListValue(3, 0, 1), correct: true},
		{name: "checkbox missing one", id: "q2", value: domain.ListValue(0, 1), correct: false},
		{name: "checkbox extra one", id: "q2", value: domain.ListValue(0, 1, 3, 4), correct: false},
		{name: "checkbox duplicate", id: "q2", value: domain.ListValue(0, 1, 1), correct: false},
		{name: "checkbox not a list", id: "q2", value: domain.NumberValue(0), correct: false},
		{name: "checkbox empty", id: "q2", value: domain.ListValue(), correct: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := app.Grade(bank, []domain.Answer{{ID: domain.StringID(tc.id), Value: tc.value}})
			require.Len(t, resp.Results, 1)
			assert.Equal(t, tc.correct, resp.Results[0].Correct)
			assert.Equal(t, 10, resp.Total)
			if tc.correct {
				assert.Equal(t, 1, resp.Score)
			} else {
				assert.Equal(t, 0, resp.Score)
			}
		})
	}
}

func TestGradeSortsIndexesNumerically(t *testing.T) {
	choices := make([]string, 12)
	for i := range choices {
		choices[i] = "choice"
	}
	bank, err := domain.NewBank([]domain.Question{{
		ID:             "wide",
		Type:           domain.QuestionCheckbox,
		Prompt:         "pick",
		Choices:        choices,
		CorrectIndexes: []int{2, 10, 11},
	}})
	require.NoError(t, err)

	// A string sort would order these as 10, 11, 2.
	resp := app.Grade(bank, []domain.Answer{{ID: domain.StringID("wide"), Value: domain.ListValue(11, 2, 10)}})
	assert.True(t, resp.Results[0].Correct)
}

func TestGradeUnknownIDScoredWrong(t *testing.T) {
	bank := defaultBank(t)

	resp := app.Grade(bank, []domain.Answer{
		{ID: domain.StringID("q3"), Value: domain.TextValue("200")},
		{ID: domain.StringID("q99"), Value: domain.TextValue("200")},
		{ID: domain.NumberID(3), Value: domain.TextValue("200")},
	})

	assert.Equal(t, 10, resp.Total)
	assert.Equal(t, 1, resp.Score)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, domain.GradeResult{ID: domain.StringID("q99"), Correct: false}, resp.Results[1])
	assert.Equal(t, domain.GradeResult{ID: domain.NumberID(3), Correct: false}, resp.Results[2])
}

func TestGradeKeepsSubmissionOrder(t *testing.T) {
	bank := defaultBank(t)

	resp := app.Grade(bank, []domain.Answer{
		{ID: domain.StringID("q10"), Value: domain.IndexValue(2)},
		{ID: domain.StringID("q1"), Value: domain.IndexValue(3)},
		{ID: domain.StringID("q5"), Value: domain.IndexesValue([]int{4, 2, 1, 0})},
	})

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "q10", resp.Results[0].ID.String())
	assert.Equal(t, "q1", resp.Results[1].ID.String())
	assert.Equal(t, "q5", resp.Results[2].ID.String())
	assert.Equal(t, []bool{true, false, true}, []bool{resp.Results[0].Correct, resp.Results[1].Correct, resp.Results[2].Correct})
	assert.Equal(t, 2, resp.Score)
}

func TestGradeTotalIndependentOfSubmissions(t *testing.T) {
	bank := defaultBank(t)

	empty := app.Grade(bank, nil)
	assert.Equal(t, 10, empty.Total)
	assert.Equal(t, 0, empty.Score)
	assert.Empty(t, empty.Results)

	var all []domain.Answer
	for _, q := range bank.Questions() {
		all = append(all, domain.Answer{ID: domain.StringID(q.ID), Value: canonicalValue(q)})
	}
	all = append(all, domain.Answer{ID: domain.StringID("stray"), Value: domain.TextValue("x")})

	full := app.Grade(bank, all)
	assert.Equal(t, 10, full.Total)
	assert.Equal(t, 10, full.Score)
	assert.Len(t, full.Results, 11)
	assert.False(t, full.Results[10].Correct)
}

func TestGradeDoesNotMutateSubmission(t *testing.T) {
	bank := defaultBank(t)
	value := domain.ListValue(3, 1, 0)

	app.Grade(bank, []domain.Answer{{ID: domain.StringID("q2"), Value: value}})

	list, _ := value.List()
	assert.Equal(t, []float64{3, 1, 0}, list)
}

func canonicalValue(q domain.Question) domain.AnswerValue {
	switch q.Type {
	case domain.QuestionText:
		return domain.TextValue(*q.CorrectText)
	case domain.QuestionRadio:
		return domain.IndexValue(*q.CorrectIndex)
	default:
		return domain.IndexesValue(q.CorrectIndexes)
	}
}
