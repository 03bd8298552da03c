package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/tracker/internal/logger"
)

var (
	// ErrNotFound is the root of every lookup failure
	ErrNotFound         = stderrors.New("not found")
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrTrackerNotFound  = fmt.Errorf("tracker %w", ErrNotFound)
	ErrOutOfRange       = fmt.Errorf("position %w", ErrNotFound)

	// ErrValidation is the root of every rejected input
	ErrValidation       = stderrors.New("validation failed")
	ErrEmptyName        = fmt.Errorf("%w: name cannot be empty", ErrValidation)
	ErrEmptySchedule    = fmt.Errorf("%w: schedule must contain at least one weekday", ErrValidation)
	ErrFutureDate       = fmt.Errorf("%w: cannot complete a tracker on a future day", ErrValidation)
	ErrAlreadyCompleted = fmt.Errorf("%w: tracker already completed on this day", ErrValidation)

	// ErrStoreUnavailable means the database could not be opened or migrated
	ErrStoreUnavailable = stderrors.New("store unavailable")
	ErrStoreClosed      = stderrors.New("store closed")
)

// PersistError reports a write that did not reach the database
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Persist wraps err as a PersistError unless it is nil or already a
// domain outcome (not-found or validation) that should reach callers as is
func Persist(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, ErrNotFound) || stderrors.Is(err, ErrValidation) || stderrors.Is(err, ErrStoreClosed) {
		return err
	}
	var pe *PersistError
	if stderrors.As(err, &pe) {
		return err
	}
	return &PersistError{Op: op, Err: err}
}

// IsNotFound reports whether err is any kind of not-found outcome
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsValidation reports whether err was caused by rejected input
func IsValidation(err error) bool {
	return stderrors.Is(err, ErrValidation)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}
