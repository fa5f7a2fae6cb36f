package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"timed-quiz-service/internal/domain"
)

// ErrBankUnavailable is returned when the service was built without a question bank.
var ErrBankUnavailable = errors.New("question bank unavailable")

// QuestionSource loads canonical questions from a backing store (static set, Postgres, cache).
type QuestionSource interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// LoadBank reads the canonical questions once and freezes them into a bank.
func LoadBank(ctx context.Context, source QuestionSource) (*domain.Bank, error) {
	questions, err := source.LoadQuestions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	bank, err := domain.NewBank(questions)
	if err != nil {
		return nil, fmt.Errorf("build question bank: %w", err)
	}
	return bank, nil
}

// QuizService contains the quiz use cases: serving questions and grading.
// It holds no mutable state and is safe for concurrent use.
type QuizService struct {
	bank *domain.Bank
	log  zerolog.Logger
}

func NewQuizService(bank *domain.Bank, log zerolog.Logger) *QuizService {
	return &QuizService{
		bank: bank,
		log:  log.With().Str("component", "quiz_service").Logger(),
	}
}

// Questions returns the question set with every answer key removed.
func (s *QuizService) Questions(_ context.Context) ([]domain.PublicQuestion, error) {
	if s.bank == nil {
		return nil, ErrBankUnavailable
	}
	return s.bank.Public(), nil
}

// Grade recomputes correctness from the canonical answer keys.
func (s *QuizService) Grade(_ context.Context, answers []domain.Answer) (domain.GradeResponse, error) {
	if s.bank == nil {
		return domain.GradeResponse{}, ErrBankUnavailable
	}
	resp := Grade(s.bank, answers)
	s.log.Debug().
		Int("submitted", len(answers)).
		Int("score", resp.Score).
		Int("total", resp.Total).
		Msg("graded submission")
	return resp, nil
}
