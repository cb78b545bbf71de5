package ui_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/gitid/internal/execshell"
	"github.com/temirov/gitid/internal/ui"
)

const (
	eventsKeyPathConstant         = "/home/dev/.ssh/id_ed25519_work"
	eventsKeyCommentConstant      = "dev@work.example"
	eventsAliasDestinationConst   = "git@github.com-work"
	eventsRepositoryPathConstant  = "/srv/projects/api"
	eventsUserNameConstant        = "Dev Work"
	eventsSSHDeniedStderrConstant = "Permission denied (publickey)."
	eventsMissingBinaryConstant   = "executable file not found in $PATH"
)

type commandEventExpectation struct {
	level   zapcore.Level
	message string
}

func TestConsoleCommandEventLoggerDescribesIdentityCommands(testInstance *testing.T) {
	keygenCommand := execshell.ShellCommand{
		Name: execshell.CommandSSHKeygen,
		Details: execshell.CommandDetails{
			Arguments: []string{"-t", "ed25519", "-f", eventsKeyPathConstant, "-C", eventsKeyCommentConstant, "-N", ""},
		},
	}
	sshTestCommand := execshell.ShellCommand{
		Name: execshell.CommandSSH,
		Details: execshell.CommandDetails{
			Arguments: []string{"-T", "-o", "BatchMode=yes", eventsAliasDestinationConst},
		},
	}
	configWriteCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"config", "--local", "user.name", eventsUserNameConstant},
			WorkingDirectory: eventsRepositoryPathConstant,
		},
	}
	tokenCommand := execshell.ShellCommand{
		Name: execshell.CommandGitHubCLI,
		Details: execshell.CommandDetails{
			Arguments: []string{"auth", "token", "--hostname", "github.com"},
		},
	}

	testCases := []struct {
		name     string
		emit     func(eventLogger *ui.ConsoleCommandEventLogger)
		expected commandEventExpectation
	}{
		{
			name: "key_generation_started",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandStarted(keygenCommand)
			},
			expected: commandEventExpectation{
				level:   zapcore.DebugLevel,
				message: "Generating SSH key " + eventsKeyPathConstant + " for " + eventsKeyCommentConstant,
			},
		},
		{
			name: "key_generation_completed",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(keygenCommand, execshell.ExecutionResult{})
			},
			expected: commandEventExpectation{
				level:   zapcore.InfoLevel,
				message: "Generated SSH key " + eventsKeyPathConstant + " for " + eventsKeyCommentConstant,
			},
		},
		{
			name: "ssh_test_rejected",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(sshTestCommand, execshell.ExecutionResult{ExitCode: 255, StandardError: eventsSSHDeniedStderrConstant + "\n"})
			},
			expected: commandEventExpectation{
				level:   zapcore.DebugLevel,
				message: "SSH connection to " + eventsAliasDestinationConst + " exited with code 255: " + eventsSSHDeniedStderrConstant,
			},
		},
		{
			name: "local_config_write_completed",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandCompleted(configWriteCommand, execshell.ExecutionResult{})
			},
			expected: commandEventExpectation{
				level:   zapcore.InfoLevel,
				message: `Set local user.name to "` + eventsUserNameConstant + `" in ` + eventsRepositoryPathConstant,
			},
		},
		{
			name: "github_cli_missing",
			emit: func(eventLogger *ui.ConsoleCommandEventLogger) {
				eventLogger.CommandExecutionFailed(tokenCommand, errors.New(eventsMissingBinaryConstant))
			},
			expected: commandEventExpectation{
				level:   zapcore.ErrorLevel,
				message: "gh auth token --hostname github.com failed: " + eventsMissingBinaryConstant,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subTestInstance *testing.T) {
			observerCore, observedLogs := observer.New(zapcore.DebugLevel)
			eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

			testCase.emit(eventLogger)

			entries := observedLogs.AllUntimed()
			require.Len(subTestInstance, entries, 1)
			require.Equal(subTestInstance, testCase.expected, commandEventExpectation{level: entries[0].Level, message: entries[0].Message})
		})
	}
}

func TestConsoleCommandEventLoggerHidesDebugAtInfoLevel(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.InfoLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observerCore))

	command := execshell.ShellCommand{
		Name:    execshell.CommandSSH,
		Details: execshell.CommandDetails{Arguments: []string{"-T", eventsAliasDestinationConst}},
	}
	eventLogger.CommandStarted(command)
	eventLogger.CommandCompleted(command, execshell.ExecutionResult{ExitCode: 1})

	require.Zero(testInstance, observedLogs.Len())
}

func TestConsoleCommandEventLoggerDefaultsToNopLogger(testInstance *testing.T) {
	eventLogger := ui.NewConsoleCommandEventLogger(nil)
	require.NotPanics(testInstance, func() {
		eventLogger.CommandStarted(execshell.ShellCommand{Name: execshell.CommandGit})
	})
}
