package shellrc

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/temirov/gitid/internal/ui"
)

const (
	shellUseConstant             = "shell"
	shellShortConstant           = "Manage the git() shell function that enables git --profile"
	installUseConstant           = "install"
	installShortConstant         = "Add the git() function to shell rc files"
	uninstallUseConstant         = "uninstall"
	uninstallShortConstant       = "Remove the git() function from shell rc files"
	fileFlagNameConstant         = "file"
	fileFlagUsageConstant        = "rc file to edit (repeatable; defaults to the configured rc files)"
	installedTemplateConstant    = "Shell integration installed in %s"
	alreadyInstalledTemplate     = "Shell integration already up to date in %s"
	uninstalledTemplateConstant  = "Shell integration removed from %s"
	notInstalledTemplateConstant = "Shell integration not present in %s"
	reloadHintConstant           = "Restart your shell or source the rc file to use git --profile."
	installerProviderMissing     = "shell installer provider not configured"
)

// ErrInstallerProviderNotConfigured indicates CommandBuilder has no InstallerProvider.
var ErrInstallerProviderNotConfigured = errors.New(installerProviderMissing)

// InstallerProvider constructs the installer and reporter for a running command.
type InstallerProvider func(command *cobra.Command) (*Installer, *ui.Reporter, error)

// CommandBuilder assembles the shell command group.
type CommandBuilder struct {
	InstallerProvider InstallerProvider
}

// Build constructs the shell command with install and uninstall subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	if builder.InstallerProvider == nil {
		return nil, ErrInstallerProviderNotConfigured
	}

	shellCommand := &cobra.Command{
		Use:   shellUseConstant,
		Short: shellShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}
	shellCommand.AddCommand(builder.buildInstall(), builder.buildUninstall())
	return shellCommand, nil
}

func (builder *CommandBuilder) buildInstall() *cobra.Command {
	var explicitFiles []string

	command := &cobra.Command{
		Use:   installUseConstant,
		Short: installShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			installer, reporter, providerError := builder.InstallerProvider(command)
			if providerError != nil {
				return providerError
			}
			results, installError := installer.Install(command.Context(), explicitFiles)
			for _, result := range results {
				if result.Changed {
					reporter.Success(installedTemplateConstant, result.Path)
				} else {
					reporter.Hint(alreadyInstalledTemplate, result.Path)
				}
			}
			if installError != nil {
				return installError
			}
			reporter.Hint(reloadHintConstant)
			return nil
		},
	}
	command.Flags().StringSliceVar(&explicitFiles, fileFlagNameConstant, nil, fileFlagUsageConstant)
	return command
}

func (builder *CommandBuilder) buildUninstall() *cobra.Command {
	var explicitFiles []string

	command := &cobra.Command{
		Use:   uninstallUseConstant,
		Short: uninstallShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			installer, reporter, providerError := builder.InstallerProvider(command)
			if providerError != nil {
				return providerError
			}
			results, uninstallError := installer.Uninstall(command.Context(), explicitFiles)
			for _, result := range results {
				if result.Changed {
					reporter.Success(uninstalledTemplateConstant, result.Path)
				} else {
					reporter.Hint(notInstalledTemplateConstant, result.Path)
				}
			}
			return uninstallError
		},
	}
	command.Flags().StringSliceVar(&explicitFiles, fileFlagNameConstant, nil, fileFlagUsageConstant)
	return command
}
