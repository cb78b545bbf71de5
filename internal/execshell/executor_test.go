package execshell_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitid/internal/execshell"
)

const (
	executorKeyPathConstant     = "/home/dev/.ssh/id_ed25519_personal"
	executorAliasHostConstant   = "git@github.com-personal"
	executorRepositoryConstant  = "/srv/projects/site"
	executorStderrConstant      = "error: could not lock config file .git/config"
	executorTokenOutputConstant = "gho_example\n"
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func TestNewShellExecutorRejectsMissingCollaborators(testInstance *testing.T) {
	_, creationError := execshell.NewShellExecutor(nil, &recordingCommandRunner{})
	require.ErrorIs(testInstance, creationError, execshell.ErrLoggerNotConfigured)

	_, creationError = execshell.NewShellExecutor(zap.NewNop(), nil)
	require.ErrorIs(testInstance, creationError, execshell.ErrCommandRunnerNotConfigured)

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{})
	require.NoError(testInstance, creationError)
	require.NotNil(testInstance, executor)
}

func TestShellExecutorLogsConfigWriteOutcomes(testInstance *testing.T) {
	configDetails := execshell.CommandDetails{
		Arguments:        []string{"config", "--local", "user.email", "dev@personal.example"},
		WorkingDirectory: executorRepositoryConstant,
	}

	testCases := []struct {
		name                 string
		runnerResult         execshell.ExecutionResult
		runnerError          error
		verifyError          func(require.TestingT, error)
		expectedFinalMessage string
		expectedFinalLevel   zapcore.Level
	}{
		{
			name:                 "config_written",
			runnerResult:         execshell.ExecutionResult{},
			expectedFinalMessage: `Set local user.email to "dev@personal.example" in ` + executorRepositoryConstant,
			expectedFinalLevel:   zapcore.DebugLevel,
		},
		{
			name:         "config_locked",
			runnerResult: execshell.ExecutionResult{ExitCode: 255, StandardError: executorStderrConstant},
			verifyError: func(testingT require.TestingT, executionError error) {
				var commandFailure execshell.CommandFailedError
				require.ErrorAs(testingT, executionError, &commandFailure)
				require.Equal(testingT, 255, commandFailure.Result.ExitCode)
			},
			expectedFinalMessage: `Failed to set local user.email to "dev@personal.example" in ` + executorRepositoryConstant + " (exit code 255: " + executorStderrConstant + ")",
			expectedFinalLevel:   zapcore.DebugLevel,
		},
		{
			name:        "git_missing",
			runnerError: exec.ErrNotFound,
			verifyError: func(testingT require.TestingT, executionError error) {
				var executionFailure execshell.CommandExecutionError
				require.ErrorAs(testingT, executionError, &executionFailure)
				require.ErrorIs(testingT, executionError, exec.ErrNotFound)
			},
			expectedFinalMessage: `Unable to set local user.email to "dev@personal.example" in ` + executorRepositoryConstant + ": " + exec.ErrNotFound.Error(),
			expectedFinalLevel:   zapcore.ErrorLevel,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTestInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			recordingRunner := &recordingCommandRunner{executionResult: testCase.runnerResult, executionError: testCase.runnerError}

			shellExecutor, creationError := execshell.NewShellExecutor(zap.New(observerCore), recordingRunner)
			require.NoError(subTestInstance, creationError)

			executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), configDetails)
			if testCase.verifyError == nil {
				require.NoError(subTestInstance, executionError)
			} else {
				testCase.verifyError(subTestInstance, executionError)
				require.Equal(subTestInstance, execshell.ExecutionResult{}, executionResult)
			}

			entries := observedLogs.AllUntimed()
			require.Len(subTestInstance, entries, 2)
			require.Equal(subTestInstance, "Setting local user.email to \"dev@personal.example\" in "+executorRepositoryConstant, entries[0].Message)
			require.Equal(subTestInstance, testCase.expectedFinalMessage, entries[1].Message)
			require.Equal(subTestInstance, testCase.expectedFinalLevel, entries[1].Level)
			require.Equal(subTestInstance, executorRepositoryConstant, entries[1].ContextMap()["working_directory"])
		})
	}
}

func TestShellExecutorToolHelpersTargetExecutables(testInstance *testing.T) {
	testCases := []struct {
		name            string
		details         execshell.CommandDetails
		invoke          func(*execshell.ShellExecutor, context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
		expectedCommand execshell.CommandName
	}{
		{
			name:            "ssh_keygen",
			details:         execshell.CommandDetails{Arguments: []string{"-t", "ed25519", "-f", executorKeyPathConstant, "-N", ""}},
			invoke:          (*execshell.ShellExecutor).ExecuteSSHKeygen,
			expectedCommand: execshell.CommandSSHKeygen,
		},
		{
			name:            "ssh",
			details:         execshell.CommandDetails{Arguments: []string{"-T", executorAliasHostConstant}},
			invoke:          (*execshell.ShellExecutor).ExecuteSSH,
			expectedCommand: execshell.CommandSSH,
		},
		{
			name:            "github_cli",
			details:         execshell.CommandDetails{Arguments: []string{"auth", "token", "--hostname", "github.com"}},
			invoke:          (*execshell.ShellExecutor).ExecuteGitHubCLI,
			expectedCommand: execshell.CommandGitHubCLI,
		},
		{
			name:            "git",
			details:         execshell.CommandDetails{Arguments: []string{"remote", "get-url", "origin"}, WorkingDirectory: executorRepositoryConstant},
			invoke:          (*execshell.ShellExecutor).ExecuteGit,
			expectedCommand: execshell.CommandGit,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTestInstance *testing.T) {
			recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: executorTokenOutputConstant}}
			shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
			require.NoError(subTestInstance, creationError)

			executionResult, executionError := testCase.invoke(shellExecutor, context.Background(), testCase.details)
			require.NoError(subTestInstance, executionError)
			require.Equal(subTestInstance, executorTokenOutputConstant, executionResult.StandardOutput)
			require.Equal(subTestInstance, []execshell.ShellCommand{{Name: testCase.expectedCommand, Details: testCase.details}}, recordingRunner.recordedCommands)
		})
	}
}

type countingObserver struct {
	started   int
	completed int
	failed    int
}

func (observer *countingObserver) CommandStarted(execshell.ShellCommand) {
	observer.started++
}

func (observer *countingObserver) CommandCompleted(execshell.ShellCommand, execshell.ExecutionResult) {
	observer.completed++
}

func (observer *countingObserver) CommandExecutionFailed(execshell.ShellCommand, error) {
	observer.failed++
}

func TestShellExecutorNotifiesEveryObserver(testInstance *testing.T) {
	firstObserver := &countingObserver{}
	secondObserver := &countingObserver{}
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 0}}

	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner, firstObserver, nil, secondObserver)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})
	require.NoError(testInstance, executionError)

	recordingRunner.executionError = errors.New("boom")
	_, executionError = executor.ExecuteGit(context.Background(), execshell.CommandDetails{Arguments: []string{"status"}})
	require.Error(testInstance, executionError)

	for _, observer := range []*countingObserver{firstObserver, secondObserver} {
		require.Equal(testInstance, 2, observer.started)
		require.Equal(testInstance, 1, observer.completed)
		require.Equal(testInstance, 1, observer.failed)
	}
}

func TestCommandFailedErrorExposesResult(testInstance *testing.T) {
	recordingRunner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{
		StandardError: "Hi octocat! You've successfully authenticated",
		ExitCode:      1,
	}}
	executor, creationError := execshell.NewShellExecutor(zap.NewNop(), recordingRunner)
	require.NoError(testInstance, creationError)

	_, executionError := executor.ExecuteSSH(context.Background(), execshell.CommandDetails{Arguments: []string{"-T", "git@github-work"}})

	var commandFailure execshell.CommandFailedError
	require.ErrorAs(testInstance, executionError, &commandFailure)
	require.Equal(testInstance, 1, commandFailure.Result.ExitCode)
	require.Contains(testInstance, commandFailure.Result.CombinedOutput(), "Hi octocat!")
	require.Contains(testInstance, commandFailure.Error(), "ssh -T git@github-work exited with code 1")
}
