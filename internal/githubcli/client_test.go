package githubcli_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/execshell"
	"github.com/temirov/gitid/internal/githubcli"
)

type stubGitHubExecutor struct {
	executeFunc     func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error)
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitHubExecutor) ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	if executor.executeFunc != nil {
		return executor.executeFunc(executionContext, details)
	}
	return execshell.ExecutionResult{}, nil
}

func TestNewClientValidation(testInstance *testing.T) {
	client, creationError := githubcli.NewClient(nil)
	require.ErrorIs(testInstance, creationError, githubcli.ErrExecutorNotConfigured)
	require.Nil(testInstance, client)
}

func TestAuthToken(testInstance *testing.T) {
	commandFailure := execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGitHubCLI},
		Result:  execshell.ExecutionResult{ExitCode: 1, StandardError: "not logged in"},
	}

	testCases := []struct {
		name          string
		hostname      string
		output        string
		failure       error
		expectedToken string
		expectedError error
		expectedCalls int
	}{
		{
			name:          "token_printed",
			hostname:      "github.com",
			output:        "gho_abc123\n",
			expectedToken: "gho_abc123",
			expectedCalls: 1,
		},
		{
			name:          "not_logged_in",
			hostname:      "github.com",
			failure:       commandFailure,
			expectedError: execshell.CommandFailedError{},
			expectedCalls: 1,
		},
		{
			name:          "empty_output",
			hostname:      "github.com",
			output:        "  \n",
			expectedError: githubcli.ErrEmptyToken,
			expectedCalls: 1,
		},
		{
			name:          "hostname_required",
			hostname:      " ",
			expectedError: githubcli.InvalidInputError{},
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTestInstance *testing.T) {
			executor := &stubGitHubExecutor{
				executeFunc: func(context.Context, execshell.CommandDetails) (execshell.ExecutionResult, error) {
					if testCase.failure != nil {
						return execshell.ExecutionResult{}, testCase.failure
					}
					return execshell.ExecutionResult{StandardOutput: testCase.output}, nil
				},
			}
			client, creationError := githubcli.NewClient(executor)
			require.NoError(subTestInstance, creationError)

			token, tokenError := client.AuthToken(context.Background(), testCase.hostname)
			require.Len(subTestInstance, executor.recordedDetails, testCase.expectedCalls)

			switch expected := testCase.expectedError.(type) {
			case nil:
				require.NoError(subTestInstance, tokenError)
				require.Equal(subTestInstance, testCase.expectedToken, token)
				require.Equal(subTestInstance, []string{"auth", "token", "--hostname", "github.com"}, executor.recordedDetails[0].Arguments)
			case execshell.CommandFailedError:
				var commandError execshell.CommandFailedError
				require.ErrorAs(subTestInstance, tokenError, &commandError)
			case githubcli.InvalidInputError:
				var inputError githubcli.InvalidInputError
				require.ErrorAs(subTestInstance, tokenError, &inputError)
			default:
				require.True(subTestInstance, errors.Is(tokenError, expected))
			}
		})
	}
}
