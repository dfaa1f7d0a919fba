package optproxy

import (
	"errors"
	"fmt"
)

// DiagnosticKind classifies why an option fell back to its default or why an
// entry was dropped from a composite option.
type DiagnosticKind string

const (
	// DiagnosticMissingKey means the key was absent from the provider.
	DiagnosticMissingKey DiagnosticKind = "missing_key"
	// DiagnosticValidationFailure means the validator or a constraint rejected
	// the raw value.
	DiagnosticValidationFailure DiagnosticKind = "validation_failure"
	// DiagnosticConversionFailure means one entry of an enum, wrapper or list
	// option could not be converted and was dropped.
	DiagnosticConversionFailure DiagnosticKind = "conversion_failure"
	// DiagnosticDuplicateOption means a name was declared twice in one group.
	DiagnosticDuplicateOption DiagnosticKind = "duplicate_option"
)

var (
	ErrMissingKey      = errors.New("optproxy: key not found in provider")
	ErrValidation      = errors.New("optproxy: validation failed")
	ErrConversion      = errors.New("optproxy: conversion failed")
	ErrConstraint      = errors.New("optproxy: constraint not satisfied")
	ErrDuplicateOption = errors.New("optproxy: option declared more than once")
	ErrNotMapping      = errors.New("optproxy: value is not a mapping")
	ErrNotSequence     = errors.New("optproxy: value is not a sequence")
)

// Diagnostic records a single fail-soft event. It implements error and
// unwraps to one of the sentinel errors above.
type Diagnostic struct {
	Kind   DiagnosticKind
	Path   string
	Group  string
	Option string
	// Key is the provider key involved: the option name, or the entry key or
	// index for composite options.
	Key string
	Err error
}

func (d Diagnostic) Error() string {
	if d.Key != "" && d.Key != d.Option {
		return fmt.Sprintf("optproxy: %s %s[%s]: %v", d.Kind, d.Path, d.Key, d.Err)
	}
	return fmt.Sprintf("optproxy: %s %s: %v", d.Kind, d.Path, d.Err)
}

func (d Diagnostic) Unwrap() error {
	return d.Err
}

func missingKey(path, group, name string) Diagnostic {
	return Diagnostic{
		Kind:   DiagnosticMissingKey,
		Path:   path,
		Group:  group,
		Option: name,
		Key:    name,
		Err:    ErrMissingKey,
	}
}

func validationFailure(path, group, name string, cause error) Diagnostic {
	return Diagnostic{
		Kind:   DiagnosticValidationFailure,
		Path:   path,
		Group:  group,
		Option: name,
		Key:    name,
		Err:    fmt.Errorf("%w: %w", ErrValidation, cause),
	}
}

func conversionFailure(path, group, name, key string, cause error) Diagnostic {
	return Diagnostic{
		Kind:   DiagnosticConversionFailure,
		Path:   path,
		Group:  group,
		Option: name,
		Key:    key,
		Err:    fmt.Errorf("%w: %w", ErrConversion, cause),
	}
}

// guard runs fn converting a panic into an error, so user supplied
// validators, parsers and factories can never escape construction.
func guard[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			value = zero
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	if fn == nil {
		return value, errors.New("nil conversion function")
	}
	return fn()
}
