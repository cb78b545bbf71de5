package remotes_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitid/internal/remotes"
	"github.com/temirov/gitid/internal/ui"
)

const (
	testRepositoryPathConstant = "/work/project"
	testHostConstant           = "github.com"
	testAliasConstant          = "github.com-work"
)

type stubGitManager struct {
	currentURL    string
	getError      error
	setError      error
	requestedName []string
	setURLs       []string
}

func (manager *stubGitManager) GetRemoteURL(_ context.Context, _ string, remoteName string) (string, error) {
	manager.requestedName = append(manager.requestedName, remoteName)
	if manager.getError != nil {
		return "", manager.getError
	}
	return manager.currentURL, nil
}

func (manager *stubGitManager) SetRemoteURL(_ context.Context, _ string, _ string, remoteURL string) error {
	if manager.setError != nil {
		return manager.setError
	}
	manager.setURLs = append(manager.setURLs, remoteURL)
	return nil
}

type stubPrompter struct {
	response bool
	err      error
	asked    []string
}

func (prompter *stubPrompter) Confirm(label string, _ bool) (bool, error) {
	prompter.asked = append(prompter.asked, label)
	return prompter.response, prompter.err
}

func TestNewExecutorValidation(testInstance *testing.T) {
	_, missingManagerError := remotes.NewExecutor(remotes.Dependencies{Prompter: &stubPrompter{}})
	require.ErrorIs(testInstance, missingManagerError, remotes.ErrGitManagerNotConfigured)

	_, missingPrompterError := remotes.NewExecutor(remotes.Dependencies{GitManager: &stubGitManager{}})
	require.ErrorIs(testInstance, missingPrompterError, remotes.ErrPrompterNotConfigured)
}

func TestExecutorBehaviors(testInstance *testing.T) {
	testCases := []struct {
		name            string
		currentURL      string
		options         remotes.Options
		prompter        *stubPrompter
		expectedOutcome remotes.Outcome
		expectedSetURLs []string
		expectedOutput  string
		expectedPrompts int
	}{
		{
			name:            "https_remote_rebound_after_confirmation",
			currentURL:      "https://github.com/acme/widgets.git",
			prompter:        &stubPrompter{response: true},
			expectedOutcome: remotes.OutcomeUpdated,
			expectedSetURLs: []string{"git@github.com-work:acme/widgets.git"},
			expectedOutput:  "Updated origin: https://github.com/acme/widgets.git → git@github.com-work:acme/widgets.git",
			expectedPrompts: 1,
		},
		{
			name:            "scp_remote_rebound_without_prompt",
			currentURL:      "git@github.com:acme/widgets.git",
			options:         remotes.Options{AssumeYes: true},
			prompter:        &stubPrompter{},
			expectedOutcome: remotes.OutcomeUpdated,
			expectedSetURLs: []string{"git@github.com-work:acme/widgets.git"},
		},
		{
			name:            "dry_run_plans_only",
			currentURL:      "ssh://git@github.com/acme/widgets.git",
			options:         remotes.Options{DryRun: true},
			prompter:        &stubPrompter{},
			expectedOutcome: remotes.OutcomePlanned,
			expectedOutput:  "Would update origin: ssh://git@github.com/acme/widgets.git → git@github.com-work:acme/widgets.git",
		},
		{
			name:            "declined",
			currentURL:      "https://github.com/acme/widgets.git",
			prompter:        &stubPrompter{response: false},
			expectedOutcome: remotes.OutcomeDeclined,
			expectedOutput:  "Cancelled.",
			expectedPrompts: 1,
		},
		{
			name:            "already_on_alias",
			currentURL:      "git@github.com-work:acme/widgets.git",
			prompter:        &stubPrompter{},
			expectedOutcome: remotes.OutcomeAlreadyBound,
			expectedOutput:  "Remote \"origin\" already uses github.com-work",
		},
	}

	for testCaseIndex := range testCases {
		testCase := testCases[testCaseIndex]
		testInstance.Run(testCase.name, func(subTestInstance *testing.T) {
			gitManager := &stubGitManager{currentURL: testCase.currentURL}
			outputBuffer := &bytes.Buffer{}
			executor, creationError := remotes.NewExecutor(remotes.Dependencies{
				GitManager: gitManager,
				Prompter:   testCase.prompter,
				Reporter:   ui.NewReporter(outputBuffer, outputBuffer),
			})
			require.NoError(subTestInstance, creationError)

			options := testCase.options
			options.RepositoryPath = testRepositoryPathConstant
			options.Host = testHostConstant
			options.Alias = testAliasConstant

			outcome, executeError := executor.Execute(context.Background(), options)
			require.NoError(subTestInstance, executeError)
			require.Equal(subTestInstance, testCase.expectedOutcome, outcome)
			require.Equal(subTestInstance, testCase.expectedSetURLs, gitManager.setURLs)
			require.Equal(subTestInstance, []string{remotes.DefaultRemoteName}, gitManager.requestedName)
			require.Len(subTestInstance, testCase.prompter.asked, testCase.expectedPrompts)
			require.Contains(subTestInstance, outputBuffer.String(), testCase.expectedOutput)
		})
	}
}

func TestExecutorRejectsForeignHost(testInstance *testing.T) {
	gitManager := &stubGitManager{currentURL: "https://gitlab.com/acme/widgets.git"}
	executor, creationError := remotes.NewExecutor(remotes.Dependencies{
		GitManager: gitManager,
		Prompter:   &stubPrompter{response: true},
		Reporter:   ui.NewReporter(&bytes.Buffer{}, &bytes.Buffer{}),
	})
	require.NoError(testInstance, creationError)

	_, executeError := executor.Execute(context.Background(), remotes.Options{
		RepositoryPath: testRepositoryPathConstant,
		RemoteName:     "upstream",
		Host:           testHostConstant,
		Alias:          testAliasConstant,
	})

	var mismatchError remotes.HostMismatchError
	require.ErrorAs(testInstance, executeError, &mismatchError)
	require.Equal(testInstance, "upstream", mismatchError.Remote)
	require.Empty(testInstance, gitManager.setURLs)
}

func TestExecutorWrapsGitFailures(testInstance *testing.T) {
	readFailure := errors.New("no such remote")
	executor, creationError := remotes.NewExecutor(remotes.Dependencies{
		GitManager: &stubGitManager{getError: readFailure},
		Prompter:   &stubPrompter{},
		Reporter:   ui.NewReporter(&bytes.Buffer{}, &bytes.Buffer{}),
	})
	require.NoError(testInstance, creationError)

	_, executeError := executor.Execute(context.Background(), remotes.Options{Host: testHostConstant, Alias: testAliasConstant})
	require.ErrorIs(testInstance, executeError, readFailure)

	writeFailure := errors.New("permission denied")
	executor, creationError = remotes.NewExecutor(remotes.Dependencies{
		GitManager: &stubGitManager{currentURL: "git@github.com:acme/widgets.git", setError: writeFailure},
		Prompter:   &stubPrompter{},
		Reporter:   ui.NewReporter(&bytes.Buffer{}, &bytes.Buffer{}),
	})
	require.NoError(testInstance, creationError)

	_, executeError = executor.Execute(context.Background(), remotes.Options{Host: testHostConstant, Alias: testAliasConstant, AssumeYes: true})
	require.ErrorIs(testInstance, executeError, writeFailure)
}
