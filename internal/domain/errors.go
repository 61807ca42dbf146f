package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz definition could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when no attempt session exists for the given id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuestionNotFound indicates a question ID outside the quiz definition.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates an option ID that does not belong to the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrInvalidIndex is returned for navigation or review targets out of range.
	ErrInvalidIndex = errors.New("question index out of range")
	// ErrInvalidTransition is returned for mutations on a submitted or evaluated attempt.
	ErrInvalidTransition = errors.New("attempt is no longer in progress")
	// ErrAttemptLimitReached is returned when the quiz does not allow another attempt.
	ErrAttemptLimitReached = errors.New("attempt limit reached")
)
