package router

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/execshell"
	"github.com/temirov/gitid/internal/gitconfig"
	"github.com/temirov/gitid/internal/gitrepo"
	"github.com/temirov/gitid/internal/profiles"
	"github.com/temirov/gitid/internal/ui"
)

const (
	profileNotFoundMessageConstant           = "profile not found"
	profileNotFoundTemplateConstant          = "profile %q not found"
	knownProfilesSuffixTemplateConstant      = "; available profiles: %s"
	noProfilesSuffixConstant                 = "; no profiles exist yet, run git-id add"
	knownProfilesSeparatorConstant           = ", "
	exitErrorTemplateConstant                = "git exited with code %d"
	profileResolverMissingMessageConstant    = "router profile resolver not configured"
	identityApplierMissingMessageConstant    = "router identity applier not configured"
	gitRunnerMissingMessageConstant          = "router git runner not configured"
	connectionLayoutMissingMessageConstant   = "router connection layout not configured"
	gitSSHCommandEnvironmentVariableConstant = "GIT_SSH_COMMAND"
	flagPrefixConstant                       = "-"
	cloningMessageTemplateConstant           = "Cloning with profile %q"
	clonedMessageTemplateConstant            = "Cloned with profile %q"
	applyAfterCloneWarningTemplateConstant   = "could not apply profile %q in %s: %v"
	userDetailTemplateConstant               = "User:  %s"
	emailDetailTemplateConstant              = "Email: %s"
	startWorkingHintTemplateConstant         = "cd %s"
	routingMessageConstant                   = "routing git invocation"
	localIdentityAppliedMessageConstant      = "applied profile before git invocation"
	applyAfterCloneFailedMessageConstant     = "failed to apply profile after clone"
	remoteRewrittenMessageConstant           = "rewrote remote to SSH alias"
	logFieldProfileConstant                  = "profile"
	logFieldSubcommandConstant               = "subcommand"
	logFieldDirectoryConstant                = "directory"
	logFieldOriginalRemoteConstant           = "original_remote"
	logFieldRewrittenRemoteConstant          = "rewritten_remote"
)

var (
	// ErrProfileNotFound is matched by ProfileNotFoundError.
	ErrProfileNotFound = errors.New(profileNotFoundMessageConstant)
	// ErrProfileResolverNotConfigured indicates a missing ProfileResolver.
	ErrProfileResolverNotConfigured = errors.New(profileResolverMissingMessageConstant)
	// ErrIdentityApplierNotConfigured indicates a missing IdentityApplier.
	ErrIdentityApplierNotConfigured = errors.New(identityApplierMissingMessageConstant)
	// ErrGitRunnerNotConfigured indicates a missing GitRunner.
	ErrGitRunnerNotConfigured = errors.New(gitRunnerMissingMessageConstant)
	// ErrConnectionLayoutNotConfigured indicates a missing ConnectionLayout.
	ErrConnectionLayoutNotConfigured = errors.New(connectionLayoutMissingMessageConstant)
)

// DefaultNetworkCommands lists git subcommands that open connections to a remote.
var DefaultNetworkCommands = []string{"push", "pull", "fetch", "remote", "ls-remote", "submodule"}

// DefaultCloneCommands lists git subcommands that create a repository from a remote.
var DefaultCloneCommands = []string{"clone"}

// cloneOptionsWithValue lists git clone options whose value is a separate argument.
var cloneOptionsWithValue = map[string]struct{}{
	"-b": {}, "--branch": {}, "-o": {}, "--origin": {}, "-c": {}, "--config": {},
	"-u": {}, "--upload-pack": {}, "-j": {}, "--jobs": {}, "--depth": {}, "--reference": {},
	"--reference-if-able": {}, "--separate-git-dir": {}, "--template": {}, "--filter": {},
	"--shallow-since": {}, "--shallow-exclude": {}, "--server-option": {},
}

// ProfileNotFoundError reports a requested profile that does not exist, with the names that do.
type ProfileNotFoundError struct {
	Name  string
	Known []string
}

// Error lists the known profiles to aid recovery.
func (notFoundError ProfileNotFoundError) Error() string {
	message := fmt.Sprintf(profileNotFoundTemplateConstant, notFoundError.Name)
	if len(notFoundError.Known) == 0 {
		return message + noProfilesSuffixConstant
	}
	return message + fmt.Sprintf(knownProfilesSuffixTemplateConstant, strings.Join(notFoundError.Known, knownProfilesSeparatorConstant))
}

// Is matches ErrProfileNotFound.
func (notFoundError ProfileNotFoundError) Is(target error) bool {
	return target == ErrProfileNotFound
}

// ExitError carries the non-zero exit code of the routed git process.
type ExitError struct {
	Code int
}

// Error describes the exit code.
func (exitError ExitError) Error() string {
	return fmt.Sprintf(exitErrorTemplateConstant, exitError.Code)
}

// ProfileResolver looks up stored profiles.
type ProfileResolver interface {
	Find(name string) (profiles.Profile, error)
	Names() []string
}

// IdentityApplier writes a profile identity into git configuration.
type IdentityApplier interface {
	IsRepository(executionContext context.Context, workingDirectory string) bool
	Apply(executionContext context.Context, options gitconfig.ApplyOptions) error
}

// GitRunner runs git with the terminal attached.
type GitRunner interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ConnectionLayout describes how a profile reaches the remote host over SSH.
type ConnectionLayout interface {
	RemoteHost() string
	HostAlias(profileName string) string
	ConnectionCommand(profileName string) string
}

// Options tune routing.
type Options struct {
	NetworkCommands  []string
	CloneCommands    []string
	WorkingDirectory string
}

// Dependencies wires collaborators for Router.
type Dependencies struct {
	Profiles ProfileResolver
	Applier  IdentityApplier
	Git      GitRunner
	Layout   ConnectionLayout
	Reporter *ui.Reporter
	Logger   *zap.Logger
	Options  Options
}

// Router dispatches git invocations under a profile.
type Router struct {
	profiles        ProfileResolver
	applier         IdentityApplier
	git             GitRunner
	layout          ConnectionLayout
	reporter        *ui.Reporter
	logger          *zap.Logger
	networkCommands map[string]struct{}
	cloneCommands   map[string]struct{}
	workingDir      string
}

// New constructs a Router.
func New(dependencies Dependencies) (*Router, error) {
	if dependencies.Profiles == nil {
		return nil, ErrProfileResolverNotConfigured
	}
	if dependencies.Applier == nil {
		return nil, ErrIdentityApplierNotConfigured
	}
	if dependencies.Git == nil {
		return nil, ErrGitRunnerNotConfigured
	}
	if dependencies.Layout == nil {
		return nil, ErrConnectionLayoutNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reporter := dependencies.Reporter
	if reporter == nil {
		reporter = ui.NewReporter(nil, nil)
	}

	networkCommands := dependencies.Options.NetworkCommands
	if len(networkCommands) == 0 {
		networkCommands = DefaultNetworkCommands
	}
	cloneCommands := dependencies.Options.CloneCommands
	if len(cloneCommands) == 0 {
		cloneCommands = DefaultCloneCommands
	}

	return &Router{
		profiles:        dependencies.Profiles,
		applier:         dependencies.Applier,
		git:             dependencies.Git,
		layout:          dependencies.Layout,
		reporter:        reporter,
		logger:          logger,
		networkCommands: toSet(networkCommands),
		cloneCommands:   toSet(cloneCommands),
		workingDir:      dependencies.Options.WorkingDirectory,
	}, nil
}

// Route runs git with arguments, honoring a profile selection flag when present.
func (router *Router) Route(executionContext context.Context, arguments []string) error {
	invocation := Parse(arguments)
	if !invocation.HasProfile() {
		return router.runGit(executionContext, invocation.Arguments, nil, router.workingDir)
	}

	profile, findError := router.profiles.Find(invocation.ProfileName)
	if findError != nil {
		if errors.Is(findError, profiles.ErrNotFound) {
			return ProfileNotFoundError{Name: invocation.ProfileName, Known: router.profiles.Names()}
		}
		return findError
	}

	transformedArguments := router.Transform(profile, invocation.Arguments)
	subcommand := leadingSubcommand(transformedArguments)
	router.logger.Debug(routingMessageConstant,
		zap.String(logFieldProfileConstant, profile.Name),
		zap.String(logFieldSubcommandConstant, subcommand),
	)

	if _, isClone := router.cloneCommands[subcommand]; isClone {
		return router.routeClone(executionContext, profile, transformedArguments)
	}

	if router.applier.IsRepository(executionContext, router.workingDir) {
		applyError := router.applier.Apply(executionContext, gitconfig.ApplyOptions{
			Profile:          profile,
			Scope:            gitconfig.ScopeLocal,
			WorkingDirectory: router.workingDir,
		})
		if applyError != nil {
			return applyError
		}
		router.logger.Debug(localIdentityAppliedMessageConstant, zap.String(logFieldProfileConstant, profile.Name))
	}

	var environment map[string]string
	if _, isNetwork := router.networkCommands[subcommand]; isNetwork && profile.SSHKeyConfigured {
		environment = map[string]string{gitSSHCommandEnvironmentVariableConstant: router.layout.ConnectionCommand(profile.Name)}
	}
	return router.runGit(executionContext, transformedArguments, environment, router.workingDir)
}

// Transform points every remote on the SSH host at the profile's alias. Profiles without an SSH key
// get the arguments back unchanged.
func (router *Router) Transform(profile profiles.Profile, arguments []string) []string {
	transformedArguments := make([]string, len(arguments))
	copy(transformedArguments, arguments)
	if !profile.SSHKeyConfigured {
		return transformedArguments
	}

	alias := router.layout.HostAlias(profile.Name)
	host := router.layout.RemoteHost()
	for argumentIndex, argument := range transformedArguments {
		rewrittenArgument, rewritten := gitrepo.RewriteHostAlias(argument, host, alias)
		if !rewritten {
			continue
		}
		router.logger.Debug(remoteRewrittenMessageConstant,
			zap.String(logFieldOriginalRemoteConstant, argument),
			zap.String(logFieldRewrittenRemoteConstant, rewrittenArgument),
		)
		transformedArguments[argumentIndex] = rewrittenArgument
	}
	return transformedArguments
}

func (router *Router) routeClone(executionContext context.Context, profile profiles.Profile, arguments []string) error {
	router.reporter.Hint(cloningMessageTemplateConstant, profile.Name)
	if runError := router.runGit(executionContext, arguments, nil, router.workingDir); runError != nil {
		return runError
	}

	targetDirectory := CloneTargetDirectory(arguments)
	if len(targetDirectory) == 0 {
		return nil
	}
	if !filepath.IsAbs(targetDirectory) && len(router.workingDir) > 0 {
		targetDirectory = filepath.Join(router.workingDir, targetDirectory)
	}

	applyError := router.applier.Apply(executionContext, gitconfig.ApplyOptions{
		Profile:          profile,
		Scope:            gitconfig.ScopeLocal,
		WorkingDirectory: targetDirectory,
	})
	if applyError != nil {
		router.logger.Warn(applyAfterCloneFailedMessageConstant,
			zap.String(logFieldProfileConstant, profile.Name),
			zap.String(logFieldDirectoryConstant, targetDirectory),
			zap.Error(applyError),
		)
		router.reporter.Warning(applyAfterCloneWarningTemplateConstant, profile.Name, targetDirectory, applyError)
		return nil
	}

	router.reporter.Success(clonedMessageTemplateConstant, profile.Name)
	router.reporter.Detail(userDetailTemplateConstant, profile.UserName)
	router.reporter.Detail(emailDetailTemplateConstant, profile.Email)
	router.reporter.Hint(startWorkingHintTemplateConstant, targetDirectory)
	return nil
}

func (router *Router) runGit(executionContext context.Context, arguments []string, environment map[string]string, workingDirectory string) error {
	_, executionError := router.git.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     workingDirectory,
		EnvironmentVariables: environment,
	})
	if executionError == nil {
		return nil
	}

	var commandFailedError execshell.CommandFailedError
	if errors.As(executionError, &commandFailedError) {
		return ExitError{Code: commandFailedError.Result.ExitCode}
	}
	return executionError
}

// CloneTargetDirectory returns the directory a clone invocation creates: the explicit directory argument
// when present, otherwise the last segment of the repository argument without .git.
func CloneTargetDirectory(arguments []string) string {
	positionalArguments := make([]string, 0, 3)
	for argumentIndex := 0; argumentIndex < len(arguments); argumentIndex++ {
		argument := arguments[argumentIndex]
		if argument == "--" {
			positionalArguments = append(positionalArguments, arguments[argumentIndex+1:]...)
			break
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			if _, takesValue := cloneOptionsWithValue[argument]; takesValue {
				argumentIndex++
			}
			continue
		}
		positionalArguments = append(positionalArguments, argument)
	}

	// positionalArguments[0] is the subcommand itself.
	switch {
	case len(positionalArguments) >= 3:
		return positionalArguments[2]
	case len(positionalArguments) == 2:
		return gitrepo.CloneDirectoryName(positionalArguments[1])
	default:
		return ""
	}
}

func leadingSubcommand(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	return arguments[0]
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}
