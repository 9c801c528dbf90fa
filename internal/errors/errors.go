// Package errors defines the structured error types used across the
// generation pipeline.
//
// User-facing validation findings are never Go errors; they travel as
// Diagnostics inside a ValidationReport. The types here cover everything
// else: framework configuration mistakes, internal builder defects, and
// target-scoped render failures.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind categorizes a pipeline error.
type ErrorKind string

const (
	// KindConfig marks a framework configuration mistake, such as a cyclic
	// validator dependency or an unregistered target.
	KindConfig ErrorKind = "config"
	// KindDefect marks an internal invariant violation: an input that
	// validation should have rejected reached a later stage. These are bugs,
	// not user misconfiguration.
	KindDefect ErrorKind = "defect"
	// KindRender marks a failure scoped to rendering one target.
	KindRender ErrorKind = "render"
)

// PipelineError is the structured error carried through the pipeline.
type PipelineError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Target  string
	// Component names the registry component involved, when the error is
	// about one. A resolve failure deep in a dependency chain keeps the
	// name of the component that was actually missing.
	Component string
	Cause     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.Target != "" {
		parts = append(parts, "target:"+e.Target)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *PipelineError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on kind and code.
func (e *PipelineError) Is(target error) bool {
	var t *PipelineError
	if errors.As(target, &t) {
		return e.Kind == t.Kind && e.Code == t.Code
	}

	return false
}

// WithTarget scopes the error to a target language.
func (e *PipelineError) WithTarget(target string) *PipelineError {
	e.Target = target

	return e
}

// NewConfigError creates a framework configuration error.
func NewConfigError(code, message string) *PipelineError {
	return &PipelineError{
		Kind:    KindConfig,
		Code:    code,
		Message: message,
	}
}

// NewDefectError creates an internal defect error. The message is prefixed
// so callers surface it with a "this is a bug" framing rather than a
// misconfiguration one.
func NewDefectError(code, message string) *PipelineError {
	return &PipelineError{
		Kind:    KindDefect,
		Code:    code,
		Message: "internal defect (this is a bug, not a misconfiguration): " + message,
	}
}

// NewRenderError creates a render failure scoped to one target.
func NewRenderError(target, code, message string, cause error) *PipelineError {
	return &PipelineError{
		Kind:    KindRender,
		Code:    code,
		Message: message,
		Target:  target,
		Cause:   cause,
	}
}

// As and Is re-export the standard helpers so callers need only one errors
// import.
func As(err error, target any) bool { return errors.As(err, target) }

func Is(err, target error) bool { return errors.Is(err, target) }

// IsDefect checks whether an error is an internal defect.
func IsDefect(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == KindDefect
	}

	return false
}

// IsRenderError checks whether an error is a target-scoped render failure.
func IsRenderError(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind == KindRender
	}

	return false
}

// Common error codes.
const (
	ErrCodeValidatorCycle    = "ERR_VALIDATOR_CYCLE"
	ErrCodeValidatorMissing  = "ERR_VALIDATOR_MISSING"
	ErrCodeUnknownTarget     = "ERR_UNKNOWN_TARGET"
	ErrCodeUnknownType       = "ERR_UNKNOWN_TYPE"
	ErrCodeBrokenTree        = "ERR_BROKEN_TREE"
	ErrCodeBadHookName       = "ERR_BAD_HOOK_NAME"
	ErrCodeComponentNotFound = "ERR_COMPONENT_NOT_FOUND"
	ErrCodeComponentCycle    = "ERR_COMPONENT_CYCLE"
	ErrCodeMissingMandatory  = "ERR_MISSING_MANDATORY_COMPONENT"
	ErrCodeTemplateRender    = "ERR_TEMPLATE_RENDER"
	ErrCodeConfigInvalid     = "ERR_CONFIG_INVALID"
)

// ErrUnknownTarget creates an error for an unsupported target language.
func ErrUnknownTarget(target string, available []string) *PipelineError {
	return NewConfigError(
		ErrCodeUnknownTarget,
		fmt.Sprintf("unsupported target %q (available: %s)", target, strings.Join(available, ", ")),
	)
}

// ErrUnknownType creates a defect for a type tag that validation should have
// rejected before the builder ran.
func ErrUnknownType(location, typeTag string) *PipelineError {
	return NewDefectError(
		ErrCodeUnknownType,
		fmt.Sprintf("unknown type tag %q at %s escaped validation", typeTag, location),
	)
}

// ErrMissingMandatory creates a render failure for a missing mandatory
// component.
func ErrMissingMandatory(target, component string) *PipelineError {
	err := NewRenderError(
		target,
		ErrCodeMissingMandatory,
		fmt.Sprintf("mandatory component %q is not available for target %s", component, target),
		nil,
	)
	err.Component = component
	return err
}
