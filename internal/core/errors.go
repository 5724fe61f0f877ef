package core

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is(err, core.ErrFetch) to test the kind of an
// *AnalysisError.
var (
	ErrValidation    = errors.New("validation error")
	ErrFetch         = errors.New("fetch error")
	ErrCalculation   = errors.New("calculation error")
	ErrConfiguration = errors.New("configuration error")
)

// AnalysisError is the typed failure every engine entry point returns.
type AnalysisError struct {
	Kind      error
	Month     int
	Year      int
	Operation string
	Message   string
	Cause     error
}

func (e *AnalysisError) Error() string {
	msg := fmt.Sprintf("%s: %s failed for %04d-%02d: %s", e.Kind, e.Operation, e.Year, e.Month, e.Message)
	if e.Month == 0 {
		msg = fmt.Sprintf("%s: %s failed for %04d: %s", e.Kind, e.Operation, e.Year, e.Message)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}

// Is matches the error kind sentinels.
func (e *AnalysisError) Is(target error) bool {
	return e.Kind == target
}

func newAnalysisError(kind error, p Period, operation, message string, cause error) *AnalysisError {
	return &AnalysisError{
		Kind:      kind,
		Month:     p.Month,
		Year:      p.Year,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

func NewValidationError(p Period, operation string, cause error) *AnalysisError {
	return newAnalysisError(ErrValidation, p, operation, "invalid period", cause)
}

func NewFetchError(p Period, operation string, cause error) *AnalysisError {
	return newAnalysisError(ErrFetch, p, operation, "could not fetch data", cause)
}

func NewCalculationError(p Period, operation, message string, cause error) *AnalysisError {
	return newAnalysisError(ErrCalculation, p, operation, message, cause)
}

func NewConfigurationError(p Period, operation, message string) *AnalysisError {
	return newAnalysisError(ErrConfiguration, p, operation, message, nil)
}

// AsAnalysisError extracts an *AnalysisError from err's chain.
func AsAnalysisError(err error) (*AnalysisError, bool) {
	var ae *AnalysisError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
