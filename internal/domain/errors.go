package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for caller contract violations and degenerate pipeline input.
// InvalidHorizon and InvalidSeries mean the request itself is wrong and should
// be rejected; DegenerateInput means the request was valid but the data made
// the computation undefined.
var (
	ErrInvalidHorizon  = errors.New("invalid forecast horizon")
	ErrInvalidSeries   = errors.New("invalid historical series")
	ErrDegenerateInput = errors.New("degenerate input")
)

// ModelInferenceError wraps a failure from the underlying forecasting model.
// It is terminal for the request and never retried internally: inference is
// deterministic for fixed inputs, so a retry would fail the same way.
type ModelInferenceError struct {
	Err error
}

func (e *ModelInferenceError) Error() string {
	return fmt.Sprintf("model inference: %v", e.Err)
}

func (e *ModelInferenceError) Unwrap() error { return e.Err }
