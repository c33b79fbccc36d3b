package attrition

import "errors"

var (
	// ErrModelUnavailable is returned when no model artifact was loaded.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidInput is returned when a raw attribute is outside of its domain.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionByZero is returned when a derived feature has a zero denominator.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrBadProbability is returned when the classifier output is not a probability pair.
	ErrBadProbability = errors.New("classifier returned invalid probabilities")

	// ErrColumnOrder is returned when a model expects a different column sequence.
	ErrColumnOrder = errors.New("feature column order mismatch")
)
