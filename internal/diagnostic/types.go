package diagnostic

import (
	"errors"
	"fmt"
	"strings"

	"content-loader/internal/common"
)

// Diagnostics collects the errors and warnings of one schema load or
// document import.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Diagnostic is a single finding.
type Diagnostic struct {
	Severity Severity

	// Code identifies the kind of finding, such as "undefined_field".
	Code    string
	Message string

	// Source and Line locate the finding in a document, when known.
	Source string
	Line   int

	TypeName  string
	FieldPath string

	// Value is the offending input.
	Value       any
	Suggestions []string
}

// Severity of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Add files diag under its severity.
func (d *Diagnostics) Add(diag Diagnostic) {
	if diag.Severity == SeverityError {
		d.Errors = append(d.Errors, diag)
		return
	}

	d.Warnings = append(d.Warnings, diag)
}

// AddError adds an error without a document position.
func (d *Diagnostics) AddError(code, message, typeName, fieldPath string) {
	d.Add(Diagnostic{Severity: SeverityError, Code: code, Message: message, TypeName: typeName, FieldPath: fieldPath})
}

// AddWarning adds a warning without a document position.
func (d *Diagnostics) AddWarning(code, message, typeName, fieldPath string) {
	d.Add(Diagnostic{Severity: SeverityWarning, Code: code, Message: message, TypeName: typeName, FieldPath: fieldPath})
}

func (d *Diagnostics) HasErrors() bool   { return len(d.Errors) > 0 }
func (d *Diagnostics) HasWarnings() bool { return len(d.Warnings) > 0 }

// IsValid reports whether no error was recorded.
func (d *Diagnostics) IsValid() bool { return !d.HasErrors() }

// Merge appends the findings of other.
func (d *Diagnostics) Merge(other *Diagnostics) {
	if other == nil {
		return
	}

	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// All returns the errors followed by the warnings.
func (d *Diagnostics) All() []Diagnostic {
	return append(append([]Diagnostic(nil), d.Errors...), d.Warnings...)
}

// ByCode returns the diagnostics of either severity carrying code.
func (d *Diagnostics) ByCode(code string) []Diagnostic {
	var out []Diagnostic

	for _, diag := range d.All() {
		if diag.Code == code {
			out = append(out, diag)
		}
	}

	return out
}

// Error joins the error diagnostics into one error, or returns nil.
func (d *Diagnostics) Error() error {
	if d.IsValid() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "; "))
}

// Location returns "source:line", "source", "line N" or "".
func (d Diagnostic) Location() string {
	switch {
	case d.Source != "" && d.Line > 0:
		return fmt.Sprintf("%s:%d", d.Source, d.Line)
	case d.Source != "":
		return d.Source
	case d.Line > 0:
		return fmt.Sprintf("line %d", d.Line)
	default:
		return ""
	}
}

func (d Diagnostic) String() string {
	var subject []string

	if d.TypeName != "" {
		subject = append(subject, "["+d.TypeName+"]")
	}

	if d.FieldPath != "" {
		subject = append(subject, d.FieldPath)
	}

	msg := d.Message
	if d.Code != "" {
		msg = fmt.Sprintf("[%s] %s", d.Code, msg)
	}

	if len(d.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(d.Suggestions, ", ") + "?)"
	}

	if len(subject) > 0 {
		msg = strings.Join(subject, " ") + ": " + msg
	}

	if loc := d.Location(); loc != "" {
		msg = loc + ": " + msg
	}

	return msg
}
