package cli

import (
	"errors"

	"github.com/temirov/gitid/internal/router"
)

const genericFailureExitCodeConstant = 1

// ExitCode maps an execution error to a process exit status. A failing git subprocess keeps its own code.
func ExitCode(executionError error) int {
	if executionError == nil {
		return 0
	}
	var exitError router.ExitError
	if errors.As(executionError, &exitError) && exitError.Code > 0 {
		return exitError.Code
	}
	return genericFailureExitCodeConstant
}

// ReportsOwnFailure reports whether the error's output was already shown to the user by git itself.
func ReportsOwnFailure(executionError error) bool {
	var exitError router.ExitError
	return errors.As(executionError, &exitError)
}
