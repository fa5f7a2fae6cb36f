package domain

import "errors"

var (
	// ErrInvalidAnswerID is returned when an answer id is neither a string nor a number.
	ErrInvalidAnswerID = errors.New("answer id must be a string or a number")
	// ErrInvalidAnswerValue is returned when an answer value is not a string, number, or list of numbers.
	ErrInvalidAnswerValue = errors.New("answer value must be a string, a number, or an array of numbers")
	// ErrInvalidQuestion indicates a canonical question with a malformed definition.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrDuplicateQuestion indicates two canonical questions share an id.
	ErrDuplicateQuestion = errors.New("duplicate question id")
	// ErrEmptyBank indicates the question source returned no questions.
	ErrEmptyBank = errors.New("question bank is empty")
)
