package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrArtifactMissing signals that a trained artifact is absent or unreadable.
	ErrArtifactMissing = errors.New("artifact missing")
	// ErrUnknownMaterial signals a material outside the encoder's known categories.
	ErrUnknownMaterial = errors.New("unknown material")
	// ErrUnknownArchitecture signals an architecture outside the one-hot schema.
	ErrUnknownArchitecture = errors.New("unknown architecture")
	// ErrInvalidNumericInput signals a frequency or bandwidth that is not a finite number.
	ErrInvalidNumericInput = errors.New("invalid numeric input")
	// ErrBatchTooLarge signals a batch request above the configured size limit.
	ErrBatchTooLarge = errors.New("batch too large")
)

// Kind classifies a prediction failure.
type Kind string

// Failure kinds.
const (
	KindArtifactMissing     Kind = "artifact_missing"
	KindUnknownMaterial     Kind = "unknown_material"
	KindUnknownArchitecture Kind = "unknown_architecture"
	KindInvalidNumericInput Kind = "invalid_numeric_input"
	// KindInternal covers anything that is not a typed prediction failure.
	KindInternal Kind = "internal"
)

// ArtifactMissingError reports which of the four trained artifacts could not be loaded.
type ArtifactMissingError struct {
	Name string
	Err  error
}

func (e *ArtifactMissingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrArtifactMissing.Error(), e.Name)
	}
	return fmt.Sprintf("%s: %s: %v", ErrArtifactMissing.Error(), e.Name, e.Err)
}

func (e *ArtifactMissingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrArtifactMissing}
	}
	return []error{ErrArtifactMissing, e.Err}
}

// Kind returns KindArtifactMissing.
func (e *ArtifactMissingError) Kind() Kind { return KindArtifactMissing }

// NewArtifactMissing creates an artifact missing error.
func NewArtifactMissing(name string, err error) error {
	return &ArtifactMissingError{Name: name, Err: err}
}

// UnknownMaterialError carries the rejected material and every category the encoder knows,
// so the caller can re-prompt with valid choices.
type UnknownMaterialError struct {
	Given string
	Known []string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("%s %q: known materials are [%s]",
		ErrUnknownMaterial.Error(), e.Given, strings.Join(e.Known, ", "))
}

func (e *UnknownMaterialError) Unwrap() error { return ErrUnknownMaterial }

// Kind returns KindUnknownMaterial.
func (e *UnknownMaterialError) Kind() Kind { return KindUnknownMaterial }

// NewUnknownMaterial creates an unknown material error. known is copied.
func NewUnknownMaterial(given string, known []string) error {
	return &UnknownMaterialError{Given: given, Known: append([]string(nil), known...)}
}

// UnknownArchitectureError carries the rejected architecture name.
type UnknownArchitectureError struct {
	Given string
}

func (e *UnknownArchitectureError) Error() string {
	return fmt.Sprintf("%s %q", ErrUnknownArchitecture.Error(), e.Given)
}

func (e *UnknownArchitectureError) Unwrap() error { return ErrUnknownArchitecture }

// Kind returns KindUnknownArchitecture.
func (e *UnknownArchitectureError) Kind() Kind { return KindUnknownArchitecture }

// NewUnknownArchitecture creates an unknown architecture error.
func NewUnknownArchitecture(given string) error {
	return &UnknownArchitectureError{Given: given}
}

// InvalidNumericInputError names the offending field and its raw value.
type InvalidNumericInputError struct {
	Field string
	Given string
}

func (e *InvalidNumericInputError) Error() string {
	return fmt.Sprintf("%s: %s=%q is not a finite number", ErrInvalidNumericInput.Error(), e.Field, e.Given)
}

func (e *InvalidNumericInputError) Unwrap() error { return ErrInvalidNumericInput }

// Kind returns KindInvalidNumericInput.
func (e *InvalidNumericInputError) Kind() Kind { return KindInvalidNumericInput }

// NewInvalidNumericInput creates an invalid numeric input error.
func NewInvalidNumericInput(field, given string) error {
	return &InvalidNumericInputError{Field: field, Given: given}
}

type kinded interface {
	Kind() Kind
}

// KindOf returns the failure kind carried by err, or KindInternal.
func KindOf(err error) Kind {
	var k kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindInternal
}
