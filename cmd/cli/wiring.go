package cli

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitid/internal/blockedit"
	"github.com/temirov/gitid/internal/execshell"
	"github.com/temirov/gitid/internal/gitconfig"
	"github.com/temirov/gitid/internal/githubapi"
	"github.com/temirov/gitid/internal/githubcli"
	"github.com/temirov/gitid/internal/identity"
	"github.com/temirov/gitid/internal/profiles"
	"github.com/temirov/gitid/internal/prompt"
	"github.com/temirov/gitid/internal/remotes"
	"github.com/temirov/gitid/internal/router"
	"github.com/temirov/gitid/internal/shellrc"
	"github.com/temirov/gitid/internal/sshkeys"
	"github.com/temirov/gitid/internal/ui"
)

const (
	markerCommentPrefixConstant = "#"
	endMarkerTemplatePrefix     = "# End "
)

// runtimeComponents are the collaborators shared by the identity service and the router.
type runtimeComponents struct {
	store    *profiles.Store
	keys     *sshkeys.Manager
	applier  *gitconfig.Applier
	router   *router.Router
	reporter *ui.Reporter
	executor *execshell.ShellExecutor
}

func (application *Application) identityService(command *cobra.Command) (*identity.Service, error) {
	components, componentsError := application.buildRuntime(command)
	if componentsError != nil {
		return nil, componentsError
	}

	githubCLIClient, githubCLIError := githubcli.NewClient(components.executor)
	if githubCLIError != nil {
		return nil, githubCLIError
	}
	sshHost := components.keys.Layout().RemoteHost()

	githubConfiguration := application.configuration.GitHub
	connector := identity.NewGitHubConnector(identity.GitHubConnectorOptions{
		EnvironmentToken: githubapi.NewEnvironmentTokenSource(os.LookupEnv),
		CLIToken: func(executionContext context.Context) (string, error) {
			if _, lookupError := exec.LookPath(string(execshell.CommandGitHubCLI)); lookupError != nil {
				return "", lookupError
			}
			return githubCLIClient.AuthToken(executionContext, sshHost)
		},
		DeviceFlow: githubapi.NewDeviceFlow(githubapi.DeviceFlowOptions{
			ClientID:    githubConfiguration.ClientID,
			Scopes:      githubConfiguration.Scopes,
			OpenBrowser: githubConfiguration.OpenBrowser,
			Output:      command.OutOrStdout(),
			Logger:      application.logger,
		}),
		APIBaseURL: githubConfiguration.APIBaseURL,
		Logger:     application.logger,
	})

	interactive := prompt.IsTerminal(command.InOrStdin()) && prompt.IsTerminal(command.OutOrStdout())
	prompter := prompt.NewLinePrompter(command.InOrStdin(), command.OutOrStdout())

	remoteManager, remoteManagerError := remotes.NewManager(components.executor)
	if remoteManagerError != nil {
		return nil, remoteManagerError
	}
	remoteBinder, remoteBinderError := remotes.NewExecutor(remotes.Dependencies{
		GitManager: remoteManager,
		Prompter:   prompter,
		Reporter:   components.reporter,
		Logger:     application.logger,
	})
	if remoteBinderError != nil {
		return nil, remoteBinderError
	}

	return identity.NewService(identity.Dependencies{
		Store:    components.store,
		Applier:  components.applier,
		Keys:     components.keys,
		Provider: connector,
		Router:   components.router,
		Prompter: prompter,
		Selector: prompt.NewSelector(prompt.SelectorOptions{
			Input:       command.InOrStdin(),
			Output:      command.OutOrStdout(),
			Interactive: interactive,
		}),
		Remotes:  remoteBinder,
		Reporter: components.reporter,
		Logger:   application.logger,
	})
}

func (application *Application) shellInstaller(command *cobra.Command) (*shellrc.Installer, *ui.Reporter, error) {
	installer, installerError := shellrc.NewInstaller(shellrc.InstallerOptions{
		HomeDirectory: application.homeExpander.HomeDirectory(),
		RCFiles:       application.configuration.Shell.RCFiles,
		LockTimeout:   application.configuration.Profiles.LockTimeout,
		Logger:        application.logger,
	})
	if installerError != nil {
		return nil, nil, installerError
	}
	return installer, ui.NewReporter(command.OutOrStdout(), command.ErrOrStderr()), nil
}

func (application *Application) buildRuntime(command *cobra.Command) (runtimeComponents, error) {
	configuration := application.configuration

	store, storeError := profiles.NewStore(profiles.StoreOptions{
		Path:        application.homeExpander.Expand(configuration.Profiles.StorePath),
		LockTimeout: configuration.Profiles.LockTimeout,
		Logger:      application.logger,
	})
	if storeError != nil {
		return runtimeComponents{}, storeError
	}

	executorLogger, observers := application.executorLogging()
	capturingExecutor, capturingError := execshell.NewShellExecutor(executorLogger, execshell.NewOSCommandRunner(), observers...)
	if capturingError != nil {
		return runtimeComponents{}, capturingError
	}
	passthroughRunner := execshell.NewPassthroughCommandRunnerWithStreams(command.InOrStdin(), command.OutOrStdout(), command.ErrOrStderr())
	passthroughExecutor, passthroughError := execshell.NewShellExecutor(executorLogger, passthroughRunner, observers...)
	if passthroughError != nil {
		return runtimeComponents{}, passthroughError
	}

	aliasFile, aliasFileError := blockedit.NewFileEditor(blockedit.FileEditorOptions{
		Path:        application.homeExpander.Expand(configuration.SSH.ConfigPath),
		MarkerSet:   sshMarkerSet(configuration.SSH.MarkerPrefix),
		FileMode:    0o600,
		LockTimeout: configuration.Profiles.LockTimeout,
		Logger:      application.logger,
	})
	if aliasFileError != nil {
		return runtimeComponents{}, aliasFileError
	}

	layout := application.sshLayout()
	keys, keysError := sshkeys.NewManager(sshkeys.ManagerDependencies{
		Layout:      layout,
		KeyType:     configuration.SSH.KeyType,
		TestTimeout: configuration.SSH.TestTimeout,
		Executor:    capturingExecutor,
		AliasFile:   aliasFile,
		Agent:       sshkeys.NewSocketAgentConnector(os.LookupEnv),
		Logger:      application.logger,
	})
	if keysError != nil {
		return runtimeComponents{}, keysError
	}

	applier, applierError := gitconfig.NewApplier(gitconfig.ApplierDependencies{
		GitExecutor:        capturingExecutor,
		SSHCommandProvider: keys,
		Logger:             application.logger,
	})
	if applierError != nil {
		return runtimeComponents{}, applierError
	}

	workingDirectory := application.commandContextAccessor.WorkingDirectory(command.Context())
	profileRouter, routerError := router.New(router.Dependencies{
		Profiles: store,
		Applier:  applier,
		Git:      passthroughExecutor,
		Layout:   layout,
		Reporter: ui.NewReporter(command.ErrOrStderr(), command.ErrOrStderr()),
		Logger:   application.logger,
		Options: router.Options{
			NetworkCommands:  configuration.Router.NetworkCommands,
			CloneCommands:    configuration.Router.CloneCommands,
			WorkingDirectory: workingDirectory,
		},
	})
	if routerError != nil {
		return runtimeComponents{}, routerError
	}

	return runtimeComponents{
		store:    store,
		keys:     keys,
		applier:  applier,
		router:   profileRouter,
		reporter: ui.NewReporter(command.OutOrStdout(), command.ErrOrStderr()),
		executor: capturingExecutor,
	}, nil
}

func (application *Application) sshLayout() sshkeys.Layout {
	sshConfiguration := application.configuration.SSH
	directory := application.homeExpander.Expand(sshConfiguration.Directory)
	configPath := application.homeExpander.Expand(sshConfiguration.ConfigPath)
	return sshkeys.Layout{
		Directory:         directory,
		ConfigPath:        configPath,
		DisplayDirectory:  application.homeExpander.Abbreviate(directory),
		DisplayConfigPath: application.homeExpander.Abbreviate(configPath),
		KeyPrefix:         sshConfiguration.KeyPrefix,
		Host:              sshConfiguration.Host,
		AliasPrefix:       sshConfiguration.AliasPrefix,
	}
}

// executorLogging narrates commands through the console logger in console mode and through
// structured fields otherwise, never both.
func (application *Application) executorLogging() (*zap.Logger, []execshell.CommandEventObserver) {
	if application.humanReadableLoggingEnabled() {
		return zap.NewNop(), []execshell.CommandEventObserver{ui.NewConsoleCommandEventLogger(application.consoleLogger)}
	}
	return application.logger, nil
}

func sshMarkerSet(markerPrefix string) blockedit.MarkerSet {
	trimmedPrefix := strings.TrimSpace(markerPrefix)
	label := strings.TrimSpace(strings.TrimPrefix(trimmedPrefix, markerCommentPrefixConstant))
	return blockedit.MarkerSet{
		StartPrefix: trimmedPrefix,
		EndPrefix:   endMarkerTemplatePrefix + label,
	}
}
