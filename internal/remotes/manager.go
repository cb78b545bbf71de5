package remotes

import (
	"context"
	"errors"
	"strings"

	"github.com/temirov/gitid/internal/execshell"
)

const (
	gitRemoteSubcommandConstant       = "remote"
	gitGetURLSubcommandConstant       = "get-url"
	gitSetURLSubcommandConstant       = "set-url"
	gitExecutorMissingMessageConstant = "remotes git executor not configured"
)

// ErrGitExecutorNotConfigured indicates NewManager received no git executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Manager reads and writes remote URLs through git.
type Manager struct {
	executor GitExecutor
}

// NewManager constructs a Manager.
func NewManager(executor GitExecutor) (*Manager, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &Manager{executor: executor}, nil
}

// GetRemoteURL returns the fetch URL of remoteName in repositoryPath.
func (manager *Manager) GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error) {
	executionResult, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitGetURLSubcommandConstant, remoteName},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(executionResult.StandardOutput), nil
}

// SetRemoteURL replaces the URL of remoteName in repositoryPath.
func (manager *Manager) SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error {
	_, executionError := manager.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRemoteSubcommandConstant, gitSetURLSubcommandConstant, remoteName, remoteURL},
		WorkingDirectory: repositoryPath,
	})
	return executionError
}
