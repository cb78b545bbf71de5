package githubcli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/gitid/internal/execshell"
)

const (
	authSubcommandConstant                  = "auth"
	tokenSubcommandConstant                 = "token"
	hostnameFlagConstant                    = "--hostname"
	hostnameFieldNameConstant               = "hostname"
	requiredValueMessageConstant            = "value required"
	executorNotConfiguredMessageConstant    = "github cli executor not configured"
	emptyTokenMessageConstant               = "github cli returned an empty token"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	authTokenOperationNameConstant          = OperationName("AuthToken")
)

// OperationName describes a named GitHub CLI workflow supported by the client.
type OperationName string

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor GitHubCommandExecutor
}

var (
	// ErrExecutorNotConfigured indicates the client was constructed without an executor.
	ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)
	// ErrEmptyToken indicates gh succeeded without printing a token.
	ErrEmptyToken = errors.New(emptyTokenMessageConstant)
)

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps execution issues for GitHub CLI operations.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// NewClient constructs a GitHub CLI client.
func NewClient(executor GitHubCommandExecutor) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor}, nil
}

// AuthToken returns the token of the account gh is signed in to for hostname.
func (client *Client) AuthToken(executionContext context.Context, hostname string) (string, error) {
	trimmedHostname := strings.TrimSpace(hostname)
	if len(trimmedHostname) == 0 {
		return "", InvalidInputError{FieldName: hostnameFieldNameConstant, Message: requiredValueMessageConstant}
	}

	executionResult, executionError := client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments: []string{authSubcommandConstant, tokenSubcommandConstant, hostnameFlagConstant, trimmedHostname},
	})
	if executionError != nil {
		return "", OperationError{Operation: authTokenOperationNameConstant, Cause: executionError}
	}

	token := strings.TrimSpace(executionResult.StandardOutput)
	if len(token) == 0 {
		return "", OperationError{Operation: authTokenOperationNameConstant, Cause: ErrEmptyToken}
	}
	return token, nil
}
