package main

import (
	"fmt"
	"os"

	"github.com/temirov/gitid/cmd/cli"
)

const (
	exitErrorTemplateConstant = "Error: %v\n"
)

// main executes the git-id command-line application.
func main() {
	executionError := cli.Execute()
	if executionError == nil {
		return
	}
	if !cli.ReportsOwnFailure(executionError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(cli.ExitCode(executionError))
}
