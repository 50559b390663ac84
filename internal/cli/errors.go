package cli

import (
	"errors"

	"github.com/integrixs/fieldtree/pkg/prompt"
)

var (
	// ErrLintFailed is returned by lint when an error severity issue exists.
	ErrLintFailed = errors.New("cli: lint found errors")
	// ErrNothingToUpdate is returned by update without any attribute flag.
	ErrNothingToUpdate = errors.New("cli: no attribute to update")
)

// Exit codes returned by ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitLint    = 2
	ExitAborted = 130
)

// ExitCode maps a command error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrLintFailed):
		return ExitLint
	case errors.Is(err, prompt.ErrAborted):
		return ExitAborted
	default:
		return ExitFailure
	}
}
