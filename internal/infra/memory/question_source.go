package memory

import (
	"context"

	"timed-quiz-service/internal/domain"
)

// StaticSource serves a fixed in-memory question list (default set, tests, demos).
type StaticSource struct {
	questions []domain.Question
}

func NewStaticSource(questions []domain.Question) *StaticSource {
	return &StaticSource{questions: questions}
}

func (s *StaticSource) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	if len(s.questions) == 0 {
		return nil, domain.ErrEmptyBank
	}
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

// DefaultQuestions is the built-in developer quiz used when no database is configured.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:           "q1",
			Type:         domain.QuestionRadio,
			Prompt:       "What does JSX stand for?",
			Choices:      []string{"JavaScript XML", "JavaScript Extension", "Java Syntax Extension", "JavaScript Execution"},
			CorrectIndex: index(0),
		},
		{
			ID:             "q2",
			Type:           domain.QuestionCheckbox,
			Prompt:         "Which of these are React hooks? (Select all that apply)",
			Choices:        []string{"useState", "useEffect", "useStyle", "useContext", "useClass"},
			CorrectIndexes: []int{0, 1, 3},
		},
		{
			ID:          "q3",
			Type:        domain.QuestionText,
			Prompt:      "What HTTP status code indicates a successful response?",
			CorrectText: text("200"),
		},
		{
			ID:           "q4",
			Type:         domain.QuestionRadio,
			Prompt:       "Which company developed Next.js?",
			Choices:      []string{"Meta", "Vercel", "Google", "Netflix"},
			CorrectIndex: index(1),
		},
		{
			ID:             "q5",
			Type:           domain.QuestionCheckbox,
			Prompt:         "Which are valid CSS display values? (Select all that apply)",
			Choices:        []string{"flex", "grid", "table", "hidden", "inline-block"},
			CorrectIndexes: []int{0, 1, 2, 4},
		},
		{
			ID:          "q6",
			Type:        domain.QuestionText,
			Prompt:      "What is the default port for a Next.js development server?",
			CorrectText: text("3000"),
		},
		{
			ID:           "q7",
			Type:         domain.QuestionRadio,
			Prompt:       "What does API stand for?",
			Choices:      []string{"Application Programming Interface", "Advanced Programming Integration", "Application Process Integration", "Advanced Protocol Interface"},
			CorrectIndex: index(0),
		},
		{
			ID:             "q8",
			Type:           domain.QuestionCheckbox,
			Prompt:         "Which HTTP methods are idempotent? (Select all that apply)",
			Choices:        []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
			CorrectIndexes: []int{0, 2, 3},
		},
		{
			ID:          "q9",
			Type:        domain.QuestionText,
			Prompt:      "What keyword is used to define a constant in JavaScript?",
			CorrectText: text("const"),
		},
		{
			ID:           "q10",
			Type:         domain.QuestionRadio,
			Prompt:       "Which rendering strategy does Next.js use by default in App Router?",
			Choices:      []string{"Client-side Rendering", "Static Site Generation", "Server Components", "Incremental Static Regeneration"},
			CorrectIndex: index(2),
		},
	}
}

func index(i int) *int { return &i }

func text(s string) *string { return &s }
