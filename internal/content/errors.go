package content

import (
	"errors"
	"fmt"

	"content-loader/internal/processor"
)

// UnknownTypeError reports a record whose type has no schema.
type UnknownTypeError struct {
	Name string
	// Key is set when the record does not name a type at all.
	Key  string
	Line int
}

func (e *UnknownTypeError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("line %d: record has no %q key naming its type", e.Line, e.Key)
	}

	return fmt.Sprintf("line %d: unknown content type %q", e.Line, e.Name)
}

// UndefinedFieldError reports field data for a field the type does not declare.
type UndefinedFieldError struct {
	Type        string
	Field       string
	Suggestions []string
}

func (e *UndefinedFieldError) Error() string {
	return fmt.Sprintf("%s has no field %q", e.Type, e.Field)
}

// InvalidFieldError reports field data that cannot be stored in the field.
type InvalidFieldError struct {
	Type   string
	Field  string
	Value  any
	Reason string
	Err    error
}

func (e *InvalidFieldError) Error() string {
	msg := fmt.Sprintf("invalid value for %s.%s: %s", e.Type, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// AmbiguousMatchError reports an existence check matching several objects
// under MatchUnique.
type AmbiguousMatchError struct {
	Type  string
	Count int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("existence check for %s matched %d objects", e.Type, e.Count)
}

// isFieldLevel reports whether err is isolated to the field it occurred in.
func isFieldLevel(err error) bool {
	var (
		undefined *UndefinedFieldError
		invalid   *InvalidFieldError
	)

	if errors.As(err, &undefined) || errors.As(err, &invalid) {
		return true
	}

	return processor.IsFieldLevel(err)
}

// diagnosticCode returns the diagnostic code recorded for a field-level error.
func diagnosticCode(err error) string {
	var (
		undefined  *UndefinedFieldError
		invalid    *InvalidFieldError
		missingRef *processor.MissingReferenceError
	)

	switch {
	case errors.As(err, &undefined):
		return "undefined_field"
	case errors.As(err, &invalid):
		return "invalid_field"
	case errors.As(err, &missingRef):
		return "missing_reference"
	default:
		return "plugin_error"
	}
}
