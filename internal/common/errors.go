package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Failure taxonomy for the extraction chain. The orchestrator is the single
// seam that converts all of these into the structured result contract; none
// of them may escape past it.
var (
	ErrParseFailure  = errors.New("buffer unparsable")      // analyzer routes to OCR instead
	ErrProvider      = errors.New("provider error")         // network/auth/timeout for one strategy
	ErrLowConfidence = errors.New("confidence below bar")   // escalation trigger, not terminal
	ErrTotalFailure  = errors.New("all strategies failed")  // every configured strategy exhausted
	ErrEnrichment    = errors.New("enrichment unavailable") // always non-fatal
	ErrInvalidInput  = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
