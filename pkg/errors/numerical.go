package errors

import (
	"math"

	"github.com/rs/zerolog"
)

// NumericalInstabilityError reports NaN or Inf values where finite numbers
// are required, such as hessian weights fed into the quantile sketch.
type NumericalInstabilityError struct {
	Op     string
	Values []float64
}

func (e *NumericalInstabilityError) Error() string {
	return "gbhist: " + e.Op + ": non-finite values detected"
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError creates the error with a stack trace attached.
func NewNumericalInstabilityError(op string, values []float64) error {
	err := &NumericalInstabilityError{Op: op, Values: values}
	return WithStack(err)
}

// CheckFinite scans values and returns an error when any NaN or Inf is
// present. At most ten offending values are reported.
func CheckFinite(op string, values []float64) error {
	var bad []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, v)
			if len(bad) >= 10 {
				break
			}
		}
	}
	if len(bad) > 0 {
		return NewNumericalInstabilityError(op, bad)
	}
	return nil
}
