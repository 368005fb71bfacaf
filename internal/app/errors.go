package app

import (
	"errors"
)

// ErrChecksFailed reports that validation ran to completion and at least one
// check failed. The CLI maps it to exit code 1, distinct from configuration
// and load errors.
var ErrChecksFailed = errors.New("schema validation checks failed")

type MissingInventoryPathError struct{}

func (e *MissingInventoryPathError) Error() string {
	return "no inventory directory: pass --inventory or set inventory in the configuration file"
}

// ExitCode maps a command error to the process exit code: 0 clean, 1 for
// validation failures, 2 for everything else.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrChecksFailed):
		return 1
	default:
		return 2
	}
}
