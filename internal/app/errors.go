package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrClosed indicates the application has been shut down.
	ErrClosed = errors.New("application closed")

	// ErrNotStarted indicates Start has not been called.
	ErrNotStarted = errors.New("application not started")

	// ErrUnknownAction indicates a navigation action name with no handler.
	ErrUnknownAction = errors.New("unknown navigation action")

	// ErrSaveFailed indicates a manual save did not persist the document.
	ErrSaveFailed = errors.New("save failed")
)

// ComponentError represents a failure constructing or driving one
// component.
type ComponentError struct {
	Component string // e.g. "storage", "validator", "themes"
	Action    string
	Err       error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{
		Component: component,
		Action:    action,
		Err:       err,
	}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}

	if e.Action != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}

	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
