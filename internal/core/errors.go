package core

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is wrapped by lookups that find nothing.
	ErrNotFound = errors.New("not found")
	// ErrConflict is wrapped when a unique constraint (e.g. order code) is violated.
	ErrConflict = errors.New("conflict")

	ErrDuplicateArticle = errors.New("article already selected on another line")
	ErrLineIndex        = errors.New("line index out of range")

	ErrOrderNotSaved = errors.New("order not saved")
	ErrBusy          = errors.New("save already in progress")
	ErrNotEditing    = errors.New("no order form is open")
)

// ValidationError lists every problem found by a validation gate.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(msg string) {
	e.Problems = append(e.Problems, msg)
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}
