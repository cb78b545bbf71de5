package execshell

import (
	"bytes"
	"context"
	"io"
	"os"
)

// PassthroughCommandRunner executes commands attached to the caller's standard streams.
// Output is not captured, so results only carry the exit code.
type PassthroughCommandRunner struct {
	standardInput  io.Reader
	standardOutput io.Writer
	standardError  io.Writer
}

// NewPassthroughCommandRunner constructs a runner bound to the process standard streams.
func NewPassthroughCommandRunner() *PassthroughCommandRunner {
	return NewPassthroughCommandRunnerWithStreams(os.Stdin, os.Stdout, os.Stderr)
}

// NewPassthroughCommandRunnerWithStreams constructs a runner bound to the supplied streams.
func NewPassthroughCommandRunnerWithStreams(input io.Reader, output io.Writer, errorOutput io.Writer) *PassthroughCommandRunner {
	return &PassthroughCommandRunner{standardInput: input, standardOutput: output, standardError: errorOutput}
}

// Run executes the command, streaming its output directly.
func (runner *PassthroughCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executable := buildExecutable(executionContext, command)

	executable.Stdin = runner.standardInput
	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}
	executable.Stdout = runner.standardOutput
	executable.Stderr = runner.standardError

	exitCode, runError := waitForExitCode(executable.Run())
	if runError != nil {
		return ExecutionResult{}, runError
	}

	return ExecutionResult{ExitCode: exitCode}, nil
}
