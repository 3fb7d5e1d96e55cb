package mvu

import (
	"errors"
	"fmt"
)

// RuntimeError represents a recoverable condition detected by the
// dispatch loop. It carries a code for categorization plus enough context
// to diagnose the failure without crashing the loop.
type RuntimeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes runtime errors.
type ErrorCode string

const (
	// ErrCodeSpawnRejected indicates the Spawner refused a task effect.
	ErrCodeSpawnRejected ErrorCode = "SPAWN_REJECTED"

	// ErrCodeQueueOverflow indicates a bounded queue dropped an event.
	ErrCodeQueueOverflow ErrorCode = "QUEUE_OVERFLOW"

	// ErrCodeAlreadyStarted indicates Start was called twice.
	ErrCodeAlreadyStarted ErrorCode = "ALREADY_STARTED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsSpawnRejected reports whether the error is a Spawner refusal.
// Uses errors.As to handle wrapped errors.
func IsSpawnRejected(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeSpawnRejected
	}
	return false
}

// IsQueueOverflow reports whether the error is a dropped-event report
// from a bounded queue. Uses errors.As to handle wrapped errors.
func IsQueueOverflow(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeQueueOverflow
	}
	return false
}

func newSpawnRejectedError(cause error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSpawnRejected,
		Message: "spawner refused task",
		Err:     cause,
	}
}

func newQueueOverflowError(pending, capacity int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQueueOverflow,
		Message: fmt.Sprintf("event dropped, queue at capacity (%d/%d)", pending, capacity),
	}
}
