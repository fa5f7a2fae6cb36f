package attempt

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/shuffle"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	bank  *domain.Bank
	calls [][]domain.Answer
	fail  error
}

func (s *recordingSubmitter) Submit(_ context.Context, answers []domain.Answer) (domain.GradeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, answers)
	if s.fail != nil {
		return domain.GradeResponse{}, s.fail
	}
	return app.Grade(s.bank, answers), nil
}

func (s *recordingSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func newAttempt(t *testing.T, duration time.Duration) (*Attempt, *recordingSubmitter, *domain.Bank) {
	t.Helper()
	bank, err := domain.NewBank(memory.DefaultQuestions())
	require.NoError(t, err)
	sub := &recordingSubmitter{bank: bank}
	return New(bank.Public(), 42, duration, sub), sub, bank
}

// answerAllCorrectly selects, in shuffled positions, the canonical answer of every question.
func answerAllCorrectly(t *testing.T, a *Attempt, bank *domain.Bank) {
	t.Helper()
	arrangement := a.Arrangement()
	for _, q := range bank.Questions() {
		mapping := arrangement.Mappings[q.ID]
		var value domain.AnswerValue
		switch q.Type {
		case domain.QuestionText:
			value = domain.TextValue(*q.CorrectText)
		case domain.QuestionRadio:
			pos, _ := mapping.Position(*q.CorrectIndex)
			value = domain.IndexValue(pos)
		case domain.QuestionCheckbox:
			var positions []int
			for _, idx := range q.CorrectIndexes {
				pos, _ := mapping.Position(idx)
				positions = append(positions, pos)
			}
			value = domain.IndexesValue(positions)
		}
		require.NoError(t, a.Answer(q.ID, value))
	}
}

func TestTicksOnlyCountInProgress(t *testing.T) {
	a, _, _ := newAttempt(t, 5*time.Second)

	assert.False(t, a.Tick())
	assert.Equal(t, 5, a.Snapshot().Remaining)

	require.NoError(t, a.Start())
	assert.False(t, a.Tick())
	assert.False(t, a.Tick())
	snap := a.Snapshot()
	assert.Equal(t, InProgress, snap.State)
	assert.Equal(t, 3, snap.Remaining)
}

func TestExpiryAutoSubmitsOnce(t *testing.T) {
	a, sub, _ := newAttempt(t, 3*time.Second)
	require.NoError(t, a.Start())
	require.NoError(t, a.Answer("q3", domain.TextValue("200")))

	ticks := make(chan time.Time, 10)
	for i := 0; i < 10; i++ {
		ticks <- time.Time{}
	}
	require.NoError(t, a.Run(context.Background(), ticks))

	snap := a.Snapshot()
	assert.Equal(t, Submitted, snap.State)
	assert.Equal(t, 0, snap.Remaining)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 1, snap.Result.Score)
	assert.Equal(t, 10, snap.Result.Total)
	assert.Equal(t, 1, sub.callCount())
	assert.Len(t, ticks, 7, "countdown must stop reading ticks after expiry")

	assert.False(t, a.Tick())
	_, err := a.SubmitExpired(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, 1, sub.callCount())
}

func TestZeroDurationExpiresOnStart(t *testing.T) {
	a, sub, _ := newAttempt(t, 0)
	require.NoError(t, a.Start())
	assert.Equal(t, TimeExpired, a.Snapshot().State)

	require.NoError(t, a.Run(context.Background(), make(chan time.Time)))
	assert.Equal(t, Submitted, a.Snapshot().State)
	assert.Equal(t, 1, sub.callCount())
	assert.Empty(t, sub.calls[0])
}

func TestManualSubmitRequiresAllAnswers(t *testing.T) {
	a, sub, _ := newAttempt(t, time.Minute)
	require.NoError(t, a.Start())
	require.NoError(t, a.Answer("q3", domain.TextValue("200")))

	_, err := a.Submit(context.Background())
	assert.ErrorIs(t, err, ErrIncomplete)
	assert.Equal(t, InProgress, a.Snapshot().State)
	assert.Equal(t, 0, sub.callCount())
}

func TestManualSubmitTranslatesToCanonical(t *testing.T) {
	a, sub, bank := newAttempt(t, time.Minute)
	require.NoError(t, a.Start())
	answerAllCorrectly(t, a, bank)

	resp, err := a.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Score)
	assert.Equal(t, 10, resp.Total)
	assert.Equal(t, Submitted, a.Snapshot().State)

	require.Equal(t, 1, sub.callCount())
	for i, answer := range sub.calls[0] {
		assert.Equal(t, bank.Questions()[i].ID, answer.ID.String(), "answers keep the order they were given")
	}
}

func TestSubmitStopsCountdown(t *testing.T) {
	a, sub, bank := newAttempt(t, time.Minute)
	require.NoError(t, a.Start())
	answerAllCorrectly(t, a, bank)

	ticks := make(chan time.Time)
	runErr := make(chan error, 1)
	go func() { runErr <- a.Run(context.Background(), ticks) }()

	_, err := a.Submit(context.Background())
	require.NoError(t, err)

	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("countdown kept running after submission")
	}
	assert.False(t, a.Tick())
	assert.Equal(t, 1, sub.callCount())
}

func TestFailedSubmissionKeepsAnswersAndRetries(t *testing.T) {
	a, sub, bank := newAttempt(t, time.Minute)
	require.NoError(t, a.Start())
	answerAllCorrectly(t, a, bank)

	sub.fail = errors.New("connection refused")
	_, err := a.Submit(context.Background())
	require.Error(t, err)

	snap := a.Snapshot()
	assert.Equal(t, Failed, snap.State)
	assert.Equal(t, 10, snap.Answered)
	assert.EqualError(t, snap.Err, "connection refused")

	sub.fail = nil
	resp, err := a.Retry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, resp.Score)
	assert.Equal(t, Submitted, a.Snapshot().State)
	assert.Nil(t, a.Snapshot().Err)
	assert.Equal(t, sub.calls[0], sub.calls[1])
}

func TestAnswerValidation(t *testing.T) {
	a, _, _ := newAttempt(t, time.Minute)

	err := a.Answer("q1", domain.IndexValue(0))
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, a.Start())
	assert.Error(t, a.Answer("q1", domain.IndexValue(9)))
	assert.Error(t, a.Answer("nope", domain.IndexValue(0)))
	assert.ErrorIs(t, a.Answer("q3", domain.AnswerValue{}), shuffle.ErrInvalidSelection)
	assert.ErrorIs(t, a.Answer("q1", domain.AnswerValue{}), shuffle.ErrInvalidSelection)
	require.NoError(t, a.Answer("q1", domain.IndexValue(0)))
	require.NoError(t, a.Answer("q1", domain.IndexValue(1)))
	assert.Equal(t, 1, a.Snapshot().Answered)
}

func TestResetStartsOver(t *testing.T) {
	a, _, bank := newAttempt(t, time.Minute)
	require.NoError(t, a.Start())
	answerAllCorrectly(t, a, bank)
	_, err := a.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, a.Reset(7))
	snap := a.Snapshot()
	assert.Equal(t, NotStarted, snap.State)
	assert.Equal(t, 0, snap.Answered)
	assert.Nil(t, snap.Result)
	assert.Equal(t, 60, snap.Remaining)
	assert.Equal(t, int64(7), a.Arrangement().Seed)

	require.NoError(t, a.Start())
	assert.Equal(t, InProgress, a.Snapshot().State)
}

func TestStartTwiceRejected(t *testing.T) {
	a, _, _ := newAttempt(t, time.Minute)
	require.NoError(t, a.Start())
	assert.ErrorIs(t, a.Start(), ErrInvalidTransition)
}
