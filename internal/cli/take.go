package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timed-quiz-service/internal/attempt"
	"timed-quiz-service/internal/client"
	"timed-quiz-service/internal/config"
	"timed-quiz-service/internal/domain"
)

const defaultQuizDuration = 3 * time.Minute

var errInputClosed = errors.New("input closed before the quiz was finished")

// NewTakeCmd runs a timed attempt in the terminal against a running API.
func NewTakeCmd(configPath *string) *cobra.Command {
	var (
		apiURL   string
		duration time.Duration
		seed     int64
	)
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Take the quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if apiURL == "" {
				apiURL = cfg.Client.BaseURL
			}
			if duration <= 0 {
				duration = config.TTLDuration(cfg.Quiz.Duration, defaultQuizDuration)
			}
			t := &quizTaker{
				api:      client.New(apiURL),
				duration: duration,
				in:       readLines(cmd.InOrStdin()),
				out:      cmd.OutOrStdout(),
				nextSeed: seedSequence(seed),
			}
			return t.run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "", "quiz API base URL (default from config or QUIZ_API_URL)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "time limit (default from config, else 3m)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "shuffle seed for the first attempt (default: current time)")
	return cmd
}

// seedSequence yields first (when set) and then time-based seeds for retakes.
func seedSequence(first int64) func() int64 {
	return func() int64 {
		if first != 0 {
			s := first
			first = 0
			return s
		}
		return timeSeed()
	}
}

// timeSeed uses milliseconds: nanosecond seeds exceed float64 integer precision,
// which would make neighbouring seeds shuffle identically.
func timeSeed() int64 {
	return time.Now().UnixMilli()
}

type quizTaker struct {
	api      *client.Client
	duration time.Duration
	in       <-chan string
	out      io.Writer
	nextSeed func() int64
}

func (t *quizTaker) run(ctx context.Context) error {
	questions, err := t.api.FetchQuiz(ctx)
	if err != nil {
		return err
	}
	a := attempt.New(questions, t.nextSeed(), t.duration, t.api)
	for {
		if err := t.play(ctx, a); err != nil {
			return err
		}
		if !t.confirm(ctx, "Take the quiz again? [y/N] ") {
			return nil
		}
		if err := a.Reset(t.nextSeed()); err != nil {
			return err
		}
	}
}

// play runs one attempt from start to a rendered result.
func (t *quizTaker) play(ctx context.Context, a *attempt.Attempt) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(); err != nil {
		return err
	}
	countdown := make(chan error, 1)
	go func() { countdown <- a.RunCountdown(runCtx) }()

	fmt.Fprintf(t.out, "You have %s to answer %d questions.\n\n", t.duration, len(a.Arrangement().Questions))

	expired, err := t.ask(runCtx, a)
	if err != nil {
		return err
	}
	if !expired {
		if _, err := a.Submit(runCtx); errors.Is(err, attempt.ErrInvalidTransition) {
			expired = true
		}
	}
	if expired {
		fmt.Fprintln(t.out, "\nTime's up! Submitting your answers...")
	}
	if err := <-countdown; err != nil && a.Snapshot().State != attempt.Failed {
		return err
	}

	for a.Snapshot().State == attempt.Failed {
		fmt.Fprintf(t.out, "Submission failed: %v\n", a.Snapshot().Err)
		if !t.confirm(ctx, "Retry? [y/N] ") {
			return a.Snapshot().Err
		}
		_, _ = a.Retry(ctx)
	}

	snap := a.Snapshot()
	if snap.Result == nil {
		return fmt.Errorf("attempt ended in %s without a result", snap.State)
	}
	t.render(a.Arrangement().Questions, *snap.Result)
	return nil
}

// ask prompts every question in presentation order. It reports true if the
// time ran out first.
func (t *quizTaker) ask(ctx context.Context, a *attempt.Attempt) (bool, error) {
	done := a.Done()
	questions := a.Arrangement().Questions
	for i, q := range questions {
		t.prompt(i, len(questions), q, a.Snapshot().Remaining)
		for {
			var line string
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-done:
				return true, nil
			case l, ok := <-t.in:
				if !ok {
					return false, errInputClosed
				}
				line = l
			}
			value, err := parseSelection(q.Type, line)
			if err == nil {
				err = a.Answer(q.ID, value)
			}
			if errors.Is(err, attempt.ErrInvalidTransition) {
				return true, nil
			}
			if err == nil {
				break
			}
			fmt.Fprintf(t.out, "  %s\n> ", hint(q.Type))
		}
		fmt.Fprintln(t.out)
	}
	return false, nil
}

func (t *quizTaker) prompt(i, total int, q domain.PublicQuestion, remaining int) {
	fmt.Fprintf(t.out, "[%d/%d] %s  (%ds left)\n", i+1, total, q.Prompt, remaining)
	for pos, choice := range q.Choices {
		fmt.Fprintf(t.out, "  %d) %s\n", pos+1, choice)
	}
	fmt.Fprintf(t.out, "  %s\n> ", hint(q.Type))
}

func (t *quizTaker) render(questions []domain.PublicQuestion, resp domain.GradeResponse) {
	prompts := make(map[string]string, len(questions))
	for _, q := range questions {
		prompts[q.ID] = q.Prompt
	}
	fmt.Fprintf(t.out, "\nScore: %d/%d\n", resp.Score, resp.Total)
	for _, r := range resp.Results {
		mark := "wrong"
		if r.Correct {
			mark = "correct"
		}
		label := prompts[r.ID.String()]
		if label == "" {
			label = r.ID.String()
		}
		fmt.Fprintf(t.out, "  %-7s %s\n", mark, label)
	}
}

func (t *quizTaker) confirm(ctx context.Context, question string) bool {
	fmt.Fprint(t.out, question)
	select {
	case <-ctx.Done():
		return false
	case line, ok := <-t.in:
		if !ok {
			return false
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes"
	}
}

func hint(qType domain.QuestionType) string {
	switch qType {
	case domain.QuestionRadio:
		return "Enter the number of one choice."
	case domain.QuestionCheckbox:
		return "Enter one or more choice numbers separated by commas."
	}
	return "Type your answer."
}

var errBlankInput = errors.New("blank input")

// parseSelection turns typed input into an answer in presented (shuffled) positions.
// Choices are shown numbered from 1.
func parseSelection(qType domain.QuestionType, line string) (domain.AnswerValue, error) {
	switch qType {
	case domain.QuestionRadio:
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return domain.AnswerValue{}, err
		}
		return domain.IndexValue(n - 1), nil
	case domain.QuestionCheckbox:
		fields := strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ' ' })
		if len(fields) == 0 {
			return domain.AnswerValue{}, errBlankInput
		}
		positions := make([]int, 0, len(fields))
		for _, f := range fields {
			n, err := strconv.Atoi(f)
			if err != nil {
				return domain.AnswerValue{}, err
			}
			positions = append(positions, n-1)
		}
		return domain.IndexesValue(positions), nil
	}
	if strings.TrimSpace(line) == "" {
		return domain.AnswerValue{}, errBlankInput
	}
	return domain.TextValue(line), nil
}

// readLines feeds input lines to a channel that is closed at EOF.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}
