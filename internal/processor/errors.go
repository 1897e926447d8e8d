package processor

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigurationError reports a malformed directive or an unknown plugin.
// It always aborts the import.
type ConfigurationError struct {
	Plugin string
	Line   int
	Err    error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder

	b.WriteString("processor configuration")

	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}

	if e.Plugin != "" {
		fmt.Fprintf(&b, " for %q", e.Plugin)
	}

	b.WriteString(": ")
	b.WriteString(e.Err.Error())

	return b.String()
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// CapabilityError reports a plugin that cannot run in the requested mode.
type CapabilityError struct {
	Plugin     string
	Capability string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("processor %q does not support %s operations", e.Plugin, e.Capability)
}

// MissingContextError reports a required plugin parameter absent from the
// merged context.
type MissingContextError struct {
	Plugin string
	Param  string
}

func (e *MissingContextError) Error() string {
	return fmt.Sprintf("processor %q requires context parameter %q", e.Plugin, e.Param)
}

// PluginError wraps a failure returned by a plugin hook.
type PluginError struct {
	Plugin string
	Phase  Phase
	Err    error
}

func (e *PluginError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Phase, e.Plugin, e.Err)
}

func (e *PluginError) Unwrap() error { return e.Err }

// MissingReferenceError reports a reference lookup that matched nothing.
type MissingReferenceError struct {
	EntityType string
	Conditions map[string]any
}

func (e *MissingReferenceError) Error() string {
	if len(e.Conditions) == 0 {
		return fmt.Sprintf("no %s found", e.EntityType)
	}

	return fmt.Sprintf("no %s found matching %v", e.EntityType, e.Conditions)
}

// IsFieldLevel reports whether err should be isolated to the field or item
// it occurred in rather than abort the import.
func IsFieldLevel(err error) bool {
	var (
		pluginErr  *PluginError
		missingRef *MissingReferenceError
		configErr  *ConfigurationError
		capErr     *CapabilityError
		ctxErr     *MissingContextError
	)

	if errors.As(err, &configErr) || errors.As(err, &capErr) || errors.As(err, &ctxErr) {
		return false
	}

	return errors.As(err, &pluginErr) || errors.As(err, &missingRef)
}
