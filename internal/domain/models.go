package domain

// QuestionType selects the answer shape and grading rule of a question.
type QuestionType string

const (
	QuestionText     QuestionType = "text"
	QuestionRadio    QuestionType = "radio"
	QuestionCheckbox QuestionType = "checkbox"
)

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionText, QuestionRadio, QuestionCheckbox:
		return true
	}
	return false
}

// HasChoices reports whether questions of this type present a choice list.
func (t QuestionType) HasChoices() bool {
	return t == QuestionRadio || t == QuestionCheckbox
}

// Question is a canonical quiz question including its answer key.
// Exactly one of CorrectText, CorrectIndex, CorrectIndexes is set, matching Type.
type Question struct {
	ID             string       `json:"id"`
	Type           QuestionType `json:"type"`
	Prompt         string       `json:"question"`
	Choices        []string     `json:"choices,omitempty"`
	CorrectText    *string      `json:"correctText,omitempty"`
	CorrectIndex   *int         `json:"correctIndex,omitempty"`
	CorrectIndexes []int        `json:"correctIndexes,omitempty"`
}

// Public strips the answer key.
func (q Question) Public() PublicQuestion {
	var choices []string
	if len(q.Choices) > 0 {
		choices = append([]string(nil), q.Choices...)
	}
	return PublicQuestion{
		ID:      q.ID,
		Type:    q.Type,
		Prompt:  q.Prompt,
		Choices: choices,
	}
}

// PublicQuestion is what clients receive: a question without any answer key.
type PublicQuestion struct {
	ID      string       `json:"id"`
	Type    QuestionType `json:"type"`
	Prompt  string       `json:"question"`
	Choices []string     `json:"choices,omitempty"`
}

// Answer is a submitted value for one question.
type Answer struct {
	ID    AnswerID    `json:"id"`
	Value AnswerValue `json:"value"`
}

// GradeResult is the per-question grading outcome.
type GradeResult struct {
	ID      AnswerID `json:"id"`
	Correct bool     `json:"correct"`
}

// GradeResponse aggregates a graded submission. Results follow submission order.
type GradeResponse struct {
	Score   int           `json:"score"`
	Total   int           `json:"total"`
	Results []GradeResult `json:"results"`
}
