package model

import (
	"errors"
	"fmt"
)

var (
	// ErrPathNotFound signals that a path does not resolve to an existing
	// field at the time of the operation.
	ErrPathNotFound = errors.New("model: path not found")
	// ErrInvalidPath signals an empty path or a negative index.
	ErrInvalidPath = errors.New("model: invalid path")
	// ErrIndexOutOfRange signals a move target outside the sibling range.
	ErrIndexOutOfRange = errors.New("model: index out of range")
)

// PathError records the operation and path that failed.
type PathError struct {
	Op   string
	Path Path
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func pathError(op string, path Path, err error) error {
	return &PathError{Op: op, Path: path.Clone(), Err: err}
}
