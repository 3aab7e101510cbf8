// Package xerr defines the typed error taxonomy shared by the netlist
// parser, component and circuit models, and solver: input errors, modeling errors,
// and numerical errors, each carrying a code a host can switch on instead
// of matching message strings.
package xerr

import "fmt"

// Code identifies the class of failure. Hosts (HTTP handlers, CLI) use
// it to choose a status code or exit path without parsing Error().
type Code string

const (
	MissingField          Code = "MISSING_FIELD"
	InvalidShape          Code = "INVALID_SHAPE"
	UnknownType           Code = "UNKNOWN_TYPE"
	InvalidValue          Code = "INVALID_VALUE"
	SelfLoop              Code = "SELF_LOOP"
	NonPositiveResistance Code = "NON_POSITIVE_RESISTANCE"
	DuplicateComponentId  Code = "DUPLICATE_COMPONENT_ID"
	SingularMatrix        Code = "SINGULAR_MATRIX"
	NonFiniteResult       Code = "NON_FINITE_RESULT"
)

// Error is the structured error value returned across package boundaries.
// Field and Index are optional and identify the offending netlist entry
// when the error originates from request validation.
type Error struct {
	Code       Code
	Message    string
	Suggestion string
	Field      string
	Index      int // -1 when not applicable
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %q, index %d)", e.Code, e.Message, e.Field, e.Index)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New builds an Error with no field/index context.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Index: -1}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithSuggestion returns a copy of e with Suggestion set.
func (e *Error) WithSuggestion(s string) *Error {
	cp := *e
	cp.Suggestion = s
	return &cp
}

// WithField returns a copy of e with Field/Index set, identifying which
// netlist entry triggered it.
func (e *Error) WithField(field string, index int) *Error {
	cp := *e
	cp.Field = field
	cp.Index = index
	return &cp
}

// IsInputError reports whether code belongs to the client-input class or
// is the modeling error DuplicateComponentId (spec §7): these abort the
// request with a client-error status.
func IsInputError(code Code) bool {
	switch code {
	case MissingField, InvalidShape, UnknownType, InvalidValue, SelfLoop, NonPositiveResistance, DuplicateComponentId:
		return true
	default:
		return false
	}
}
