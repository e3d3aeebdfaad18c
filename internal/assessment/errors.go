package assessment

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrapped with context via fmt.Errorf("%w: ...").
var (
	// ErrInvalidInput indicates a missing or malformed request field.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound indicates the user could not be resolved.
	ErrNotFound = errors.New("not found")
)

// PersistenceError indicates a store was unreachable or a write could not be
// committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// UpstreamError indicates a failure while building or storing the roadmap
// during completion.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error during %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// wrapPersistence leaves taxonomy errors untouched and wraps anything else.
func wrapPersistence(op string, err error) error {
	var upstream *UpstreamError
	var persistence *PersistenceError
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotFound):
		return err
	case errors.As(err, &upstream), errors.As(err, &persistence):
		return err
	default:
		return &PersistenceError{Op: op, Err: err}
	}
}
