// Package errors provides structured error types for the histogram core and
// thin wrappers around cockroachdb/errors so callers get stack traces and
// errors.Is/As support without importing two error packages.
//
// Every contract violation inside the core (bad bin width, unregistered node,
// out-of-range feature id, mismatched histogram lengths) is fatal by design:
// the core panics with one of these error values rather than returning it.
// Callers that need a recoverable boundary can use Recover from this package.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// DimensionError reports a length mismatch between two buffers that must
// agree, such as the operands of a histogram merge.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("gbhist: %s: dimension mismatch: expected %d, got %d", e.Op, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got}
	return errors.WithStack(err)
}

// RangeError reports an index outside its declared range, such as a feature
// or node id past the registered count.
type RangeError struct {
	Op    string
	Index int
	Limit int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("gbhist: %s: index %d out of range [0, %d)", e.Op, e.Index, e.Limit)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *RangeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("index", e.Index).
		Int("limit", e.Limit).
		Str("type", "RangeError")
}

// NewRangeError creates a RangeError with a stack trace attached.
func NewRangeError(op string, index, limit int) error {
	err := &RangeError{Op: op, Index: index, Limit: limit}
	return errors.WithStack(err)
}

// NodeError reports a tree-node registration contract violation: adding a
// node id twice, or reading a row for a node that was never registered.
type NodeError struct {
	Op     string
	Node   int
	Reason string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("gbhist: %s: node %d: %s", e.Op, e.Node, e.Reason)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *NodeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("node", e.Node).
		Str("reason", e.Reason).
		Str("type", "NodeError")
}

// NewNodeError creates a NodeError with a stack trace attached.
func NewNodeError(op string, node int, reason string) error {
	err := &NodeError{Op: op, Node: node, Reason: reason}
	return errors.WithStack(err)
}

// BinWidthError reports an unsupported bin storage width. Only 1, 2 and 4
// byte encodings exist.
type BinWidthError struct {
	Width int
}

func (e *BinWidthError) Error() string {
	return fmt.Sprintf("gbhist: invalid bin type size %d: must be 1, 2 or 4 bytes", e.Width)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *BinWidthError) MarshalZerologObject(event *zerolog.Event) {
	event.Int("width", e.Width).
		Str("type", "BinWidthError")
}

// NewBinWidthError creates a BinWidthError with a stack trace attached.
func NewBinWidthError(width int) error {
	err := &BinWidthError{Width: width}
	return errors.WithStack(err)
}

// ValidationError reports an invalid parameter value passed into the core.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gbhist: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument value the operation cannot work with.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("gbhist: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}
