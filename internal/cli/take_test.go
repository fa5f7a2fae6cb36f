package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timed-quiz-service/internal/app"
	"timed-quiz-service/internal/client"
	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/infra/memory"
	"timed-quiz-service/internal/shuffle"
	transport "timed-quiz-service/internal/transport/http"
)

func newTestAPI(t *testing.T) (*client.Client, *domain.Bank) {
	t.Helper()
	bank, err := domain.NewBank(memory.DefaultQuestions())
	require.NoError(t, err)
	service := app.NewQuizService(bank, zerolog.Nop())
	server := httptest.NewServer(transport.NewRouter(service, transport.RouterConfig{}, zerolog.Nop()))
	t.Cleanup(server.Close)
	return client.New(server.URL), bank
}

// correctLines types the right answer for every question as presented with seed.
func correctLines(bank *domain.Bank, seed int64) []string {
	arrangement := shuffle.Arrange(bank.Public(), seed)
	lines := make([]string, 0, bank.Len())
	for _, shown := range arrangement.Questions {
		q, _ := bank.Lookup(domain.StringID(shown.ID))
		mapping := arrangement.Mappings[q.ID]
		switch q.Type {
		case domain.QuestionText:
			lines = append(lines, strings.ToUpper(*q.CorrectText))
		case domain.QuestionRadio:
			pos, _ := mapping.Position(*q.CorrectIndex)
			lines = append(lines, strconv.Itoa(pos+1))
		case domain.QuestionCheckbox:
			picks := make([]string, 0, len(q.CorrectIndexes))
			for _, idx := range q.CorrectIndexes {
				pos, _ := mapping.Position(idx)
				picks = append(picks, strconv.Itoa(pos+1))
			}
			lines = append(lines, strings.Join(picks, ", "))
		}
	}
	return lines
}

// syncBuffer lets the test read output while the taker is still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func feed(lines ...string) <-chan string {
	ch := make(chan string, len(lines))
	for _, l := range lines {
		ch <- l
	}
	close(ch)
	return ch
}

func TestTakeAllCorrect(t *testing.T) {
	api, bank := newTestAPI(t)
	var out bytes.Buffer

	input := append([]string{"not a number"}, correctLines(bank, 42)...)
	// The first question might be free text, where any input is accepted.
	if shuffle.Arrange(bank.Public(), 42).Questions[0].Type == domain.QuestionText {
		input = correctLines(bank, 42)
	}
	input = append(input, "n")

	taker := &quizTaker{
		api:      api,
		duration: time.Minute,
		in:       feed(input...),
		out:      &out,
		nextSeed: seedSequence(42),
	}
	require.NoError(t, taker.run(context.Background()))
	assert.Contains(t, out.String(), "Score: 10/10")
	assert.NotContains(t, out.String(), "wrong")
}

func TestTakeRetakeUsesNewPresentation(t *testing.T) {
	api, bank := newTestAPI(t)
	var out bytes.Buffer

	seeds := []int64{7, 8}
	next := 0
	input := append(correctLines(bank, 7), "y")
	input = append(input, correctLines(bank, 8)...)
	input = append(input, "no")

	taker := &quizTaker{
		api:      api,
		duration: time.Minute,
		in:       feed(input...),
		out:      &out,
		nextSeed: func() int64 {
			s := seeds[next]
			next++
			return s
		},
	}
	require.NoError(t, taker.run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "Score: 10/10"))
}

func TestTakeTimeExpiryAutoSubmits(t *testing.T) {
	api, _ := newTestAPI(t)
	out := &syncBuffer{}

	// Input stays open and silent, so only the countdown can end the attempt.
	in := make(chan string)
	taker := &quizTaker{
		api:      api,
		duration: time.Second,
		in:       in,
		out:      out,
		nextSeed: seedSequence(1),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- taker.run(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Score: 0/10")
	}, 4*time.Second, 20*time.Millisecond)
	close(in)
	require.NoError(t, <-errCh)
	assert.Contains(t, out.String(), "Time's up!")
}

func TestTakeInputClosedEarly(t *testing.T) {
	api, _ := newTestAPI(t)
	var out bytes.Buffer

	taker := &quizTaker{
		api:      api,
		duration: time.Minute,
		in:       feed(),
		out:      &out,
		nextSeed: seedSequence(3),
	}
	assert.ErrorIs(t, taker.run(context.Background()), errInputClosed)
}

func TestParseSelection(t *testing.T) {
	v, err := parseSelection(domain.QuestionRadio, " 2 ")
	require.NoError(t, err)
	n, ok := v.Numeric()
	require.True(t, ok)
	assert.Equal(t, 1.0, n)

	v, err = parseSelection(domain.QuestionCheckbox, "1, 3 4")
	require.NoError(t, err)
	list, ok := v.List()
	require.True(t, ok)
	assert.Equal(t, []float64{0, 2, 3}, list)

	_, err = parseSelection(domain.QuestionCheckbox, " , ")
	assert.Error(t, err)
	_, err = parseSelection(domain.QuestionRadio, "two")
	assert.Error(t, err)
	_, err = parseSelection(domain.QuestionText, "   ")
	assert.Error(t, err)

	v, err = parseSelection(domain.QuestionText, " Paris ")
	require.NoError(t, err)
	assert.Equal(t, " Paris ", v.String())
}

func TestSeedSequence(t *testing.T) {
	next := seedSequence(5)
	assert.Equal(t, int64(5), next())
	assert.NotEqual(t, int64(0), next())
}
