package persist

import (
	"context"
	"errors"
	"fmt"
)

// Errors returned by the persistence layer.
var (
	// ErrValidation indicates content was rejected before saving.
	ErrValidation = errors.New("validation failed")

	// ErrStorage indicates a storage read or write failure.
	ErrStorage = errors.New("storage failure")
)

// ValidationError reports content rejected by a Validator.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return ErrValidation.Error()
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

// StorageError reports a failed snapshot read or write.
type StorageError struct {
	Op  string // "save", "load", "clear"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", ErrStorage, e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// Validator accepts or rejects content before it is saved.
type Validator interface {
	Validate(ctx context.Context, content string) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(ctx context.Context, content string) error

// Validate implements Validator.
func (f ValidatorFunc) Validate(ctx context.Context, content string) error {
	return f(ctx, content)
}

// AcceptAll is the default validator.
var AcceptAll Validator = ValidatorFunc(func(context.Context, string) error {
	return nil
})

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
