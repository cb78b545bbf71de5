package gitconfig

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/execshell"
	"github.com/temirov/gitid/internal/profiles"
)

const (
	gitConfigSubcommandConstant              = "config"
	gitConfigGetFlagConstant                 = "--get"
	gitRevParseSubcommandConstant            = "rev-parse"
	gitDirFlagConstant                       = "--git-dir"
	scopeFlagPrefixConstant                  = "--"
	userNameKeyConstant                      = "user.name"
	userEmailKeyConstant                     = "user.email"
	sshCommandKeyConstant                    = "core.sshCommand"
	notARepositoryMessageConstant            = "not a git repository; use --global to set globally"
	configWriteFailedMessageConstant         = "failed to write git configuration"
	configWriteErrorTemplateConstant         = "failed to set %s %s: %v"
	gitExecutorMissingMessageConstant        = "git executor not configured"
	sshCommandProviderMissingMessageConstant = "ssh command provider not configured"
	unknownScopeMessageTemplateConstant      = "unknown configuration scope %q"
	identityAppliedMessageConstant           = "Applied profile to git configuration"
	logFieldProfileConstant                  = "profile"
	logFieldScopeConstant                    = "scope"
	logFieldWorkingDirectoryConstant         = "working_directory"
)

// Scope selects which Git configuration file receives settings.
type Scope string

// Supported scopes.
const (
	ScopeLocal  Scope = "local"
	ScopeGlobal Scope = "global"
)

var (
	// ErrNotARepository indicates local scope was requested outside a Git repository.
	ErrNotARepository = errors.New(notARepositoryMessageConstant)
	// ErrConfigWriteFailed matches every ConfigWriteError.
	ErrConfigWriteFailed = errors.New(configWriteFailedMessageConstant)
	// ErrGitExecutorNotConfigured indicates NewApplier received no git executor.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)
	// ErrSSHCommandProviderNotConfigured indicates NewApplier received no SSH command provider.
	ErrSSHCommandProviderNotConfigured = errors.New(sshCommandProviderMissingMessageConstant)
)

// ConfigWriteError reports which setting could not be written.
type ConfigWriteError struct {
	Key   string
	Scope Scope
	Cause error
}

// Error describes the failed write.
func (writeError ConfigWriteError) Error() string {
	return fmt.Sprintf(configWriteErrorTemplateConstant, writeError.Scope, writeError.Key, writeError.Cause)
}

// Is matches ErrConfigWriteFailed.
func (writeError ConfigWriteError) Is(target error) bool {
	return target == ErrConfigWriteFailed
}

// Unwrap exposes the underlying failure.
func (writeError ConfigWriteError) Unwrap() error {
	return writeError.Cause
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// SSHCommandProvider renders the core.sshCommand value for a profile.
type SSHCommandProvider interface {
	SSHCommand(profileName string) string
}

// Setting is one Git configuration key and value.
type Setting struct {
	Key   string
	Value string
}

// Identity is the effective user name and email reported by Git.
type Identity struct {
	UserName string
	Email    string
}

// ApplyOptions describe a single Apply call.
type ApplyOptions struct {
	Profile          profiles.Profile
	Scope            Scope
	WorkingDirectory string
}

// ApplierDependencies wires collaborators for Applier.
type ApplierDependencies struct {
	GitExecutor        GitExecutor
	SSHCommandProvider SSHCommandProvider
	Logger             *zap.Logger
}

// Applier writes profile identities into Git configuration.
type Applier struct {
	gitExecutor        GitExecutor
	sshCommandProvider SSHCommandProvider
	logger             *zap.Logger
}

// NewApplier constructs an Applier.
func NewApplier(dependencies ApplierDependencies) (*Applier, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.SSHCommandProvider == nil {
		return nil, ErrSSHCommandProviderNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Applier{gitExecutor: dependencies.GitExecutor, sshCommandProvider: dependencies.SSHCommandProvider, logger: logger}, nil
}

// Settings lists the configuration written for profile, in write order.
func (applier *Applier) Settings(profile profiles.Profile) []Setting {
	settings := []Setting{
		{Key: userNameKeyConstant, Value: profile.UserName},
		{Key: userEmailKeyConstant, Value: profile.Email},
	}
	if profile.SSHKeyConfigured {
		settings = append(settings, Setting{Key: sshCommandKeyConstant, Value: applier.sshCommandProvider.SSHCommand(profile.Name)})
	}
	return settings
}

// IsRepository reports whether workingDirectory is inside a Git repository.
func (applier *Applier) IsRepository(executionContext context.Context, workingDirectory string) bool {
	_, executionError := applier.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitDirFlagConstant},
		WorkingDirectory: workingDirectory,
	})
	return executionError == nil
}

// Apply writes user.name, user.email and, for SSH-enabled profiles, core.sshCommand at the requested scope.
// The first failing write aborts without rolling back earlier writes.
func (applier *Applier) Apply(executionContext context.Context, options ApplyOptions) error {
	switch options.Scope {
	case ScopeLocal:
		if !applier.IsRepository(executionContext, options.WorkingDirectory) {
			return ErrNotARepository
		}
	case ScopeGlobal:
	default:
		return fmt.Errorf(unknownScopeMessageTemplateConstant, options.Scope)
	}

	for _, setting := range applier.Settings(options.Profile) {
		_, executionError := applier.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{gitConfigSubcommandConstant, scopeFlag(options.Scope), setting.Key, setting.Value},
			WorkingDirectory: options.WorkingDirectory,
		})
		if executionError != nil {
			return ConfigWriteError{Key: setting.Key, Scope: options.Scope, Cause: executionError}
		}
	}

	applier.logger.Info(identityAppliedMessageConstant,
		zap.String(logFieldProfileConstant, options.Profile.Name),
		zap.String(logFieldScopeConstant, string(options.Scope)),
		zap.String(logFieldWorkingDirectoryConstant, options.WorkingDirectory),
	)
	return nil
}

// CurrentUser returns user.name, preferring local scope over global.
func (applier *Applier) CurrentUser(executionContext context.Context, workingDirectory string) string {
	return applier.readWithFallback(executionContext, workingDirectory, userNameKeyConstant)
}

// CurrentEmail returns user.email, preferring local scope over global.
func (applier *Applier) CurrentEmail(executionContext context.Context, workingDirectory string) string {
	return applier.readWithFallback(executionContext, workingDirectory, userEmailKeyConstant)
}

// EffectiveIdentity returns the user name and email Git would use in workingDirectory.
func (applier *Applier) EffectiveIdentity(executionContext context.Context, workingDirectory string) Identity {
	return Identity{
		UserName: applier.CurrentUser(executionContext, workingDirectory),
		Email:    applier.CurrentEmail(executionContext, workingDirectory),
	}
}

// readWithFallback treats any local failure, including running outside a repository, as unset.
func (applier *Applier) readWithFallback(executionContext context.Context, workingDirectory string, key string) string {
	if localValue, found := applier.read(executionContext, workingDirectory, ScopeLocal, key); found {
		return localValue
	}
	globalValue, _ := applier.read(executionContext, workingDirectory, ScopeGlobal, key)
	return globalValue
}

func (applier *Applier) read(executionContext context.Context, workingDirectory string, scope Scope, key string) (string, bool) {
	executionResult, executionError := applier.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitConfigSubcommandConstant, scopeFlag(scope), gitConfigGetFlagConstant, key},
		WorkingDirectory: workingDirectory,
	})
	if executionError != nil {
		return "", false
	}
	value := strings.TrimSpace(executionResult.StandardOutput)
	return value, len(value) > 0
}

func scopeFlag(scope Scope) string {
	return scopeFlagPrefixConstant + string(scope)
}
