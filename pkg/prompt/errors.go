package prompt

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("prompt: aborted")
	// ErrNoSession is returned when an editor is built without a session.
	ErrNoSession = errors.New("prompt: session is required")
)
