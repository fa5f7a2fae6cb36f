// Package client talks to the quiz API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"timed-quiz-service/internal/domain"
)

// APIError is a non-2xx response from the quiz API.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
	Details    json.RawMessage
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %d", e.Op, e.StatusCode)
}

// Client fetches the question set and submits answers for grading.
type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuiz loads the question set. Answer keys are never part of the response.
func (c *Client) FetchQuiz(ctx context.Context) ([]domain.PublicQuestion, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/quiz", nil)
	if err != nil {
		return nil, err
	}
	var questions []domain.PublicQuestion
	if err := c.do(req, "fetch quiz", &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

type gradeRequest struct {
	Answers []domain.Answer `json:"answers"`
}

// Submit sends canonical answers and returns the server's grading.
func (c *Client) Submit(ctx context.Context, answers []domain.Answer) (domain.GradeResponse, error) {
	if answers == nil {
		answers = []domain.Answer{}
	}
	body, err := json.Marshal(gradeRequest{Answers: answers})
	if err != nil {
		return domain.GradeResponse{}, fmt.Errorf("encode answers: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/grade", bytes.NewReader(body))
	if err != nil {
		return domain.GradeResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp domain.GradeResponse
	if err := c.do(req, "submit quiz", &resp); err != nil {
		return domain.GradeResponse{}, err
	}
	return resp, nil
}

type errorBody struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (c *Client) do(req *http.Request, op string, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: res.StatusCode}
		var body errorBody
		raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if json.Unmarshal(raw, &body) == nil {
			apiErr.Message = body.Error
			apiErr.Details = body.Details
		}
		return apiErr
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}
