package remotes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/gitrepo"
	"github.com/temirov/gitid/internal/ui"
)

const (
	// DefaultRemoteName is the remote rebound when none is named.
	DefaultRemoteName = "origin"

	gitManagerMissingMessageConstant = "remotes git manager not configured"
	prompterMissingMessageConstant   = "remotes prompter not configured"
	hostMismatchTemplateConstant     = "remote %q (%s) does not point at %s"
	readFailureTemplateConstant      = "failed to read remote %q: %w"
	writeFailureTemplateConstant     = "failed to update remote %q: %w"
	alreadyBoundTemplateConstant     = "Remote %q already uses %s"
	planTemplateConstant             = "Would update %s: %s → %s"
	promptTemplateConstant           = "Update %s (%s → %s)?"
	declinedMessageConstant          = "Cancelled."
	successTemplateConstant          = "Updated %s: %s → %s"
	remoteUpdatedMessageConstant     = "Rebound remote to profile alias"
	logFieldRemoteConstant           = "remote"
	logFieldRepositoryConstant       = "repository"
	logFieldURLConstant              = "url"
)

var (
	// ErrGitManagerNotConfigured indicates NewExecutor received no git manager.
	ErrGitManagerNotConfigured = errors.New(gitManagerMissingMessageConstant)
	// ErrPrompterNotConfigured indicates NewExecutor received no prompter.
	ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)
)

// Outcome summarizes what Execute did.
type Outcome string

// Supported outcomes.
const (
	OutcomeAlreadyBound Outcome = "already_bound"
	OutcomePlanned      Outcome = "planned"
	OutcomeDeclined     Outcome = "declined"
	OutcomeUpdated      Outcome = "updated"
)

// HostMismatchError reports a remote that is neither on the host nor on the alias.
type HostMismatchError struct {
	Remote string
	URL    string
	Host   string
}

// Error describes the mismatch.
func (mismatchError HostMismatchError) Error() string {
	return fmt.Sprintf(hostMismatchTemplateConstant, mismatchError.Remote, mismatchError.URL, mismatchError.Host)
}

// GitRepositoryManager reads and writes remote URLs.
type GitRepositoryManager interface {
	GetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string) (string, error)
	SetRemoteURL(executionContext context.Context, repositoryPath string, remoteName string, remoteURL string) error
}

// ConfirmationPrompter asks yes/no questions.
type ConfirmationPrompter interface {
	Confirm(label string, defaultValue bool) (bool, error)
}

// Options configures a single rebind.
type Options struct {
	RepositoryPath string
	RemoteName     string
	Host           string
	Alias          string
	DryRun         bool
	AssumeYes      bool
}

// Dependencies supplies collaborators for Executor.
type Dependencies struct {
	GitManager GitRepositoryManager
	Prompter   ConfirmationPrompter
	Reporter   *ui.Reporter
	Logger     *zap.Logger
}

// Executor rewrites a repository remote from the plain host to a profile alias.
type Executor struct {
	gitManager GitRepositoryManager
	prompter   ConfirmationPrompter
	reporter   *ui.Reporter
	logger     *zap.Logger
}

// NewExecutor constructs an Executor.
func NewExecutor(dependencies Dependencies) (*Executor, error) {
	if dependencies.GitManager == nil {
		return nil, ErrGitManagerNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = ui.NewReporter(nil, nil)
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		gitManager: dependencies.GitManager,
		prompter:   dependencies.Prompter,
		reporter:   reporter,
		logger:     logger,
	}, nil
}

// Execute rebinds the remote. A remote already on the alias is left alone; a remote on any other host is an error.
func (executor *Executor) Execute(executionContext context.Context, options Options) (Outcome, error) {
	remoteName := strings.TrimSpace(options.RemoteName)
	if len(remoteName) == 0 {
		remoteName = DefaultRemoteName
	}

	currentURL, readError := executor.gitManager.GetRemoteURL(executionContext, options.RepositoryPath, remoteName)
	if readError != nil {
		return "", fmt.Errorf(readFailureTemplateConstant, remoteName, readError)
	}

	if _, onAlias := gitrepo.RewriteHostAlias(currentURL, options.Alias, options.Alias); onAlias {
		executor.reporter.Hint(alreadyBoundTemplateConstant, remoteName, options.Alias)
		return OutcomeAlreadyBound, nil
	}

	targetURL, rewritten := gitrepo.RewriteHostAlias(currentURL, options.Host, options.Alias)
	if !rewritten {
		return "", HostMismatchError{Remote: remoteName, URL: currentURL, Host: options.Host}
	}

	if options.DryRun {
		executor.reporter.Line(planTemplateConstant, remoteName, currentURL, targetURL)
		return OutcomePlanned, nil
	}

	if !options.AssumeYes {
		confirmed, promptError := executor.prompter.Confirm(fmt.Sprintf(promptTemplateConstant, remoteName, currentURL, targetURL), true)
		if promptError != nil {
			return "", promptError
		}
		if !confirmed {
			executor.reporter.Hint(declinedMessageConstant)
			return OutcomeDeclined, nil
		}
	}

	if updateError := executor.gitManager.SetRemoteURL(executionContext, options.RepositoryPath, remoteName, targetURL); updateError != nil {
		return "", fmt.Errorf(writeFailureTemplateConstant, remoteName, updateError)
	}

	executor.logger.Info(remoteUpdatedMessageConstant,
		zap.String(logFieldRepositoryConstant, options.RepositoryPath),
		zap.String(logFieldRemoteConstant, remoteName),
		zap.String(logFieldURLConstant, targetURL),
	)
	executor.reporter.Success(successTemplateConstant, remoteName, currentURL, targetURL)
	return OutcomeUpdated, nil
}
