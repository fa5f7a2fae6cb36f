// Package attempt drives one timed quiz attempt on the client side: the
// shuffled presentation, recorded answers, the countdown and submission.
package attempt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"timed-quiz-service/internal/domain"
	"timed-quiz-service/internal/shuffle"
)

// State is a stage of the attempt lifecycle.
type State int

const (
	NotStarted State = iota
	InProgress
	// TimeExpired means the countdown reached zero and the automatic submission is pending.
	TimeExpired
	Submitting
	Submitted
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case InProgress:
		return "in-progress"
	case TimeExpired:
		return "time-expired"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrInvalidTransition is returned when an operation is not allowed in the current state.
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	// ErrIncomplete is returned by a manual submit before every question is answered.
	ErrIncomplete = errors.New("not every question is answered")
)

// Submitter sends canonical answers for grading.
type Submitter interface {
	Submit(ctx context.Context, answers []domain.Answer) (domain.GradeResponse, error)
}

// Snapshot is a consistent read of the attempt.
type Snapshot struct {
	State     State
	Remaining int
	Answered  int
	Total     int
	Result    *domain.GradeResponse
	Err       error
}

// Attempt is a single quiz attempt. The countdown and user input arrive on
// different goroutines, so every transition happens under mu.
type Attempt struct {
	mu        sync.Mutex
	questions []domain.PublicQuestion
	duration  int
	submitter Submitter

	state       State
	remaining   int
	arrangement shuffle.Arrangement
	answers     map[string]domain.AnswerValue
	order       []string
	result      *domain.GradeResponse
	err         error
	left        chan struct{}
}

// New prepares an attempt over questions, shuffled with seed. The countdown
// length is truncated to whole seconds.
func New(questions []domain.PublicQuestion, seed int64, duration time.Duration, submitter Submitter) *Attempt {
	a := &Attempt{
		questions: questions,
		duration:  int(duration / time.Second),
		submitter: submitter,
	}
	a.reset(seed)
	return a
}

func (a *Attempt) reset(seed int64) {
	a.state = NotStarted
	a.remaining = a.duration
	a.arrangement = shuffle.Arrange(a.questions, seed)
	a.answers = make(map[string]domain.AnswerValue, len(a.questions))
	a.order = nil
	a.result = nil
	a.err = nil
	a.left = make(chan struct{})
}

// Arrangement is the presentation the user sees.
func (a *Attempt) Arrangement() shuffle.Arrangement {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.arrangement
}

func (a *Attempt) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Snapshot{
		State:     a.state,
		Remaining: a.remaining,
		Answered:  len(a.answers),
		Total:     len(a.questions),
		Result:    a.result,
		Err:       a.err,
	}
}

// Start begins the countdown.
func (a *Attempt) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != NotStarted {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, a.state)
	}
	a.state = InProgress
	a.remaining = a.duration
	if a.remaining <= 0 {
		a.expireLocked()
	}
	return nil
}

// Answer records a selection made in shuffled positions. A later answer for the
// same question replaces the earlier one but keeps its place in the submission.
func (a *Attempt) Answer(questionID string, value domain.AnswerValue) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != InProgress {
		return fmt.Errorf("%w: answer in %s", ErrInvalidTransition, a.state)
	}
	if _, err := a.arrangement.Translate(questionID, value); err != nil {
		return err
	}
	if _, seen := a.answers[questionID]; !seen {
		a.order = append(a.order, questionID)
	}
	a.answers[questionID] = value
	return nil
}

// Tick records one elapsed second. It reports true only on the tick that
// exhausts the countdown; ticks outside InProgress are ignored.
func (a *Attempt) Tick() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state != InProgress {
		return false
	}
	a.remaining--
	if a.remaining > 0 {
		return false
	}
	a.expireLocked()
	return true
}

func (a *Attempt) expireLocked() {
	a.remaining = 0
	a.state = TimeExpired
	close(a.left)
}

// Submit is the manual submission; it needs every question answered.
func (a *Attempt) Submit(ctx context.Context) (domain.GradeResponse, error) {
	a.mu.Lock()
	if a.state != InProgress {
		state := a.state
		a.mu.Unlock()
		return domain.GradeResponse{}, fmt.Errorf("%w: submit in %s", ErrInvalidTransition, state)
	}
	if len(a.answers) != len(a.questions) {
		answered := len(a.answers)
		a.mu.Unlock()
		return domain.GradeResponse{}, fmt.Errorf("%w: %d of %d", ErrIncomplete, answered, len(a.questions))
	}
	close(a.left)
	return a.submitLocked(ctx)
}

// SubmitExpired sends whatever was recorded once the time ran out. It runs at
// most once per expiry: later calls find the attempt no longer in TimeExpired.
func (a *Attempt) SubmitExpired(ctx context.Context) (domain.GradeResponse, error) {
	a.mu.Lock()
	if a.state != TimeExpired {
		state := a.state
		a.mu.Unlock()
		return domain.GradeResponse{}, fmt.Errorf("%w: auto-submit in %s", ErrInvalidTransition, state)
	}
	return a.submitLocked(ctx)
}

// Retry resubmits the recorded answers after a failed submission.
func (a *Attempt) Retry(ctx context.Context) (domain.GradeResponse, error) {
	a.mu.Lock()
	if a.state != Failed {
		state := a.state
		a.mu.Unlock()
		return domain.GradeResponse{}, fmt.Errorf("%w: retry in %s", ErrInvalidTransition, state)
	}
	return a.submitLocked(ctx)
}

// Reset starts over with a new presentation, discarding answers and results.
func (a *Attempt) Reset(seed int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	switch a.state {
	case Submitting:
		return fmt.Errorf("%w: reset in %s", ErrInvalidTransition, a.state)
	case NotStarted, InProgress:
		close(a.left)
	}
	a.reset(seed)
	return nil
}

// submitLocked must be called with mu held; it releases mu around the network call.
func (a *Attempt) submitLocked(ctx context.Context) (domain.GradeResponse, error) {
	answers, err := a.canonicalAnswersLocked()
	if err != nil {
		a.state = Failed
		a.err = err
		a.mu.Unlock()
		return domain.GradeResponse{}, err
	}
	a.state = Submitting
	a.err = nil
	a.mu.Unlock()

	resp, err := a.submitter.Submit(ctx, answers)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.state = Failed
		a.err = err
		return domain.GradeResponse{}, err
	}
	a.state = Submitted
	a.result = &resp
	return resp, nil
}

func (a *Attempt) canonicalAnswersLocked() ([]domain.Answer, error) {
	out := make([]domain.Answer, 0, len(a.order))
	for _, id := range a.order {
		value, err := a.arrangement.Translate(id, a.answers[id])
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Answer{ID: domain.StringID(id), Value: value})
	}
	return out, nil
}

// Done is closed when the attempt leaves InProgress.
func (a *Attempt) Done() <-chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.left
}
