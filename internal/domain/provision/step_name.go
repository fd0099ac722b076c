package provision

import (
	"errors"
	"regexp"
	"strings"
)

// StepName uniquely identifies a step within a runbook.
// Format: area:action[:resource] (e.g., "pip:install:google-cloud-storage")
type StepName struct {
	value string
}

// Errors for StepName validation.
var (
	ErrEmptyStepName   = errors.New("step name cannot be empty")
	ErrInvalidStepName = errors.New("step name format invalid: must be alphanumeric segments separated by colons (dots, hyphens, underscores and slashes allowed)")
)

// stepNamePattern allows dots so versions and module paths can appear in
// names ("pyenv:python:3.8.7", "pip:verify:google.cloud.storage").
var stepNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._/-]*(?::[a-zA-Z0-9][a-zA-Z0-9._/-]*)*$`)

// NewStepName creates a StepName from a string.
func NewStepName(value string) (StepName, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return StepName{}, ErrEmptyStepName
	}

	if !stepNamePattern.MatchString(trimmed) {
		return StepName{}, ErrInvalidStepName
	}

	return StepName{value: trimmed}, nil
}

// MustNewStepName creates a StepName, panicking on error.
// Use this for compile-time known values that should never fail validation.
func MustNewStepName(value string) StepName {
	name, err := NewStepName(value)
	if err != nil {
		panic("invalid step name: " + value + ": " + err.Error())
	}
	return name
}

// String returns the string representation.
func (n StepName) String() string {
	return n.value
}

// Area returns the first segment ("pip" for "pip:install:requests").
func (n StepName) Area() string {
	parts := strings.SplitN(n.value, ":", 2)
	return parts[0]
}

// IsZero returns true if this is a zero-value StepName.
func (n StepName) IsZero() bool {
	return n.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (n StepName) MarshalText() ([]byte, error) {
	return []byte(n.value), nil
}
