package router_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/execshell"
	"github.com/temirov/gitid/internal/gitconfig"
	"github.com/temirov/gitid/internal/profiles"
	"github.com/temirov/gitid/internal/router"
	"github.com/temirov/gitid/internal/sshkeys"
	"github.com/temirov/gitid/internal/ui"
)

const (
	testWorkingDirectoryConstant = "/work/projects"
	testConnectionCommand        = "ssh -i ~/.ssh/id_ed25519_work -o IdentitiesOnly=yes"
)

var (
	testWorkProfile = profiles.Profile{
		Name:             "work",
		UserName:         "Jane Work",
		Email:            "w@x.com",
		SSHKeyConfigured: true,
	}
	testPersonalProfile = profiles.Profile{
		Name:     "personal",
		UserName: "Jane",
		Email:    "p@x.com",
	}
)

type stubResolver struct {
	profiles []profiles.Profile
}

func (resolver stubResolver) Find(name string) (profiles.Profile, error) {
	for _, profile := range resolver.profiles {
		if profiles.SameName(profile.Name, name) {
			return profile, nil
		}
	}
	return profiles.Profile{}, fmt.Errorf("%w: %s", profiles.ErrNotFound, name)
}

func (resolver stubResolver) Names() []string {
	names := make([]string, 0, len(resolver.profiles))
	for _, profile := range resolver.profiles {
		names = append(names, profile.Name)
	}
	return names
}

type eventLog struct {
	events []string
}

func (log *eventLog) record(event string) {
	log.events = append(log.events, event)
}

type recordingApplier struct {
	log        *eventLog
	repository bool
	applyError error
	applied    []gitconfig.ApplyOptions
}

func (applier *recordingApplier) IsRepository(_ context.Context, _ string) bool {
	return applier.repository
}

func (applier *recordingApplier) Apply(_ context.Context, options gitconfig.ApplyOptions) error {
	applier.log.record("apply " + options.Profile.Email + " " + string(options.Scope))
	if applier.applyError != nil {
		return applier.applyError
	}
	applier.applied = append(applier.applied, options)
	return nil
}

type recordingGitRunner struct {
	log            *eventLog
	exitCode       int
	executionError error
	calls          []execshell.CommandDetails
}

func (runner *recordingGitRunner) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	runner.log.record("git " + strings.Join(details.Arguments, " "))
	runner.calls = append(runner.calls, details)
	if runner.executionError != nil {
		return execshell.ExecutionResult{}, runner.executionError
	}
	if runner.exitCode != 0 {
		return execshell.ExecutionResult{}, execshell.CommandFailedError{
			Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
			Result:  execshell.ExecutionResult{ExitCode: runner.exitCode},
		}
	}
	return execshell.ExecutionResult{}, nil
}

type routerFixture struct {
	router   *router.Router
	log      *eventLog
	applier  *recordingApplier
	git      *recordingGitRunner
	messages *bytes.Buffer
}

func newRouterFixture(testInstance *testing.T, repository bool) routerFixture {
	testInstance.Helper()

	log := &eventLog{}
	applier := &recordingApplier{log: log, repository: repository}
	gitRunner := &recordingGitRunner{log: log}
	messages := &bytes.Buffer{}

	routerInstance, creationError := router.New(router.Dependencies{
		Profiles: stubResolver{profiles: []profiles.Profile{testWorkProfile, testPersonalProfile}},
		Applier:  applier,
		Git:      gitRunner,
		Layout: sshkeys.Layout{
			Directory:         "/home/jane/.ssh",
			ConfigPath:        "/home/jane/.ssh/config",
			DisplayDirectory:  "~/.ssh",
			DisplayConfigPath: "~/.ssh/config",
		},
		Reporter: ui.NewReporter(messages, messages),
		Options:  router.Options{WorkingDirectory: testWorkingDirectoryConstant},
	})
	require.NoError(testInstance, creationError)

	return routerFixture{router: routerInstance, log: log, applier: applier, git: gitRunner, messages: messages}
}

func TestParse(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedProfile   string
		expectedArguments []string
	}{
		{
			name:              "long_flag",
			arguments:         []string{"push", "--profile", "work", "origin"},
			expectedProfile:   "work",
			expectedArguments: []string{"push", "origin"},
		},
		{
			name:              "short_flag",
			arguments:         []string{"-p", "personal", "pull"},
			expectedProfile:   "personal",
			expectedArguments: []string{"pull"},
		},
		{
			name:              "inline_flag",
			arguments:         []string{"fetch", "--profile=work", "--all"},
			expectedProfile:   "work",
			expectedArguments: []string{"fetch", "--all"},
		},
		{
			name:              "no_flag",
			arguments:         []string{"status", "-sb"},
			expectedArguments: []string{"status", "-sb"},
		},
		{
			name:              "trailing_flag_without_value",
			arguments:         []string{"push", "--profile"},
			expectedArguments: []string{"push"},
		},
		{
			name:              "last_flag_wins",
			arguments:         []string{"-p", "work", "push", "--profile=personal"},
			expectedProfile:   "personal",
			expectedArguments: []string{"push"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			invocation := router.Parse(testCase.arguments)
			require.Equal(testInstance, testCase.expectedProfile, invocation.ProfileName)
			require.Equal(testInstance, testCase.expectedProfile != "", invocation.HasProfile())
			require.Equal(testInstance, testCase.expectedArguments, invocation.Arguments)
		})
	}
}

func TestRoutePassesThroughWithoutProfile(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, true)

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"status", "-sb"}))

	require.Equal(testInstance, []string{"git status -sb"}, fixture.log.events)
	require.Nil(testInstance, fixture.git.calls[0].EnvironmentVariables)
	require.Equal(testInstance, testWorkingDirectoryConstant, fixture.git.calls[0].WorkingDirectory)
}

func TestRouteUnknownProfile(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, true)

	routeError := fixture.router.Route(context.Background(), []string{"push", "--profile", "ghost"})

	require.ErrorIs(testInstance, routeError, router.ErrProfileNotFound)
	var notFoundError router.ProfileNotFoundError
	require.True(testInstance, errors.As(routeError, &notFoundError))
	require.Equal(testInstance, []string{"work", "personal"}, notFoundError.Known)
	require.Contains(testInstance, routeError.Error(), "work, personal")
	require.Empty(testInstance, fixture.log.events)
}

func TestRouteAppliesIdentityBeforePush(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, true)

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"push", "--profile", "work"}))

	require.Equal(testInstance, []string{"apply w@x.com local", "git push"}, fixture.log.events)
	require.Equal(testInstance, testWorkingDirectoryConstant, fixture.applier.applied[0].WorkingDirectory)
	require.Equal(testInstance, map[string]string{"GIT_SSH_COMMAND": testConnectionCommand}, fixture.git.calls[0].EnvironmentVariables)
}

func TestRouteSkipsApplyOutsideRepository(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, false)

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"ls-remote", "https://github.com/a/b.git", "-p", "work"}))

	require.Equal(testInstance, []string{"git ls-remote git@github-work:a/b.git"}, fixture.log.events)
}

func TestRouteWithoutSSHKeyLeavesRemotesAndEnvironment(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, true)

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"fetch", "git@github.com:a/b.git", "--profile=personal"}))

	require.Equal(testInstance, []string{"apply p@x.com local", "git fetch git@github.com:a/b.git"}, fixture.log.events)
	require.Nil(testInstance, fixture.git.calls[0].EnvironmentVariables)
}

func TestRouteNonNetworkCommandGetsNoEnvironment(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, true)

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"commit", "-m", "message", "-p", "work"}))

	require.Equal(testInstance, []string{"apply w@x.com local", "git commit -m message"}, fixture.log.events)
	require.Nil(testInstance, fixture.git.calls[0].EnvironmentVariables)
}

func TestRouteCloneRewritesAndAppliesInClonedDirectory(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, false)

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"clone", "git@github.com:a/b.git", "--profile", "work"}))

	require.Equal(testInstance, []string{"git clone git@github-work:a/b.git", "apply w@x.com local"}, fixture.log.events)
	require.Equal(testInstance, filepath.Join(testWorkingDirectoryConstant, "b"), fixture.applier.applied[0].WorkingDirectory)
	require.Equal(testInstance, gitconfig.ScopeLocal, fixture.applier.applied[0].Scope)
	require.Contains(testInstance, fixture.messages.String(), `Cloned with profile "work"`)
}

func TestRouteCloneWithExplicitDirectory(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, false)

	arguments := []string{"clone", "--depth", "1", "https://github.com/a/b", "/tmp/checkout", "-p", "work"}
	require.NoError(testInstance, fixture.router.Route(context.Background(), arguments))

	require.Equal(testInstance, "git clone --depth 1 git@github-work:a/b /tmp/checkout", fixture.log.events[0])
	require.Equal(testInstance, "/tmp/checkout", fixture.applier.applied[0].WorkingDirectory)
}

func TestRouteCloneApplyFailureIsWarning(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, false)
	fixture.applier.applyError = gitconfig.ErrNotARepository

	require.NoError(testInstance, fixture.router.Route(context.Background(), []string{"clone", "git@github.com:a/b.git", "-p", "work"}))

	require.Contains(testInstance, fixture.messages.String(), "could not apply profile")
}

func TestRouteCloneFailureSkipsApply(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, false)
	fixture.git.exitCode = 128

	routeError := fixture.router.Route(context.Background(), []string{"clone", "git@github.com:a/b.git", "-p", "work"})

	require.Equal(testInstance, router.ExitError{Code: 128}, routeError)
	require.Equal(testInstance, []string{"git clone git@github-work:a/b.git"}, fixture.log.events)
}

func TestRoutePropagatesExitCode(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, false)
	fixture.git.exitCode = 1

	routeError := fixture.router.Route(context.Background(), []string{"status"})

	var exitError router.ExitError
	require.True(testInstance, errors.As(routeError, &exitError))
	require.Equal(testInstance, 1, exitError.Code)
	require.Equal(testInstance, "git exited with code 1", routeError.Error())
}

func TestRouteStopsWhenApplyFails(testInstance *testing.T) {
	fixture := newRouterFixture(testInstance, true)
	fixture.applier.applyError = gitconfig.ConfigWriteError{Key: "user.email", Scope: gitconfig.ScopeLocal, Cause: errors.New("locked")}

	routeError := fixture.router.Route(context.Background(), []string{"push", "-p", "work"})

	require.ErrorIs(testInstance, routeError, gitconfig.ErrConfigWriteFailed)
	require.Equal(testInstance, []string{"apply w@x.com local"}, fixture.log.events)
}

func TestCloneTargetDirectory(testInstance *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		expected  string
	}{
		{name: "derived", arguments: []string{"clone", "git@github-work:a/b.git"}, expected: "b"},
		{name: "explicit", arguments: []string{"clone", "git@github-work:a/b.git", "target"}, expected: "target"},
		{name: "options_with_values", arguments: []string{"clone", "-b", "main", "--origin", "up", "https://github.com/a/repo"}, expected: "repo"},
		{name: "inline_option", arguments: []string{"clone", "--branch=main", "git@github.com:a/b.git"}, expected: "b"},
		{name: "separator", arguments: []string{"clone", "--", "git@github.com:a/b.git", "dir"}, expected: "dir"},
		{name: "missing_url", arguments: []string{"clone"}, expected: ""},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, router.CloneTargetDirectory(testCase.arguments))
		})
	}
}

func TestNewRequiresDependencies(testInstance *testing.T) {
	_, creationError := router.New(router.Dependencies{})
	require.ErrorIs(testInstance, creationError, router.ErrProfileResolverNotConfigured)
}
