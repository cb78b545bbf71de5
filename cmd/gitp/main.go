package main

import (
	"fmt"
	"os"

	"github.com/temirov/gitid/cmd/cli"
)

const (
	exitErrorTemplateConstant = "gitp: %v\n"
)

// main runs git under the profile named by --profile, or plain git when none is given.
func main() {
	executionError := cli.ExecuteGit(os.Args[1:])
	if executionError == nil {
		return
	}
	if !cli.ReportsOwnFailure(executionError) {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	os.Exit(cli.ExitCode(executionError))
}
