package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitid/internal/ui"
)

const (
	configCommandUseConstant          = "config"
	configCommandShortConstant        = "Inspect or initialize the git-id configuration"
	configShowUseConstant             = "show"
	configShowShortConstant           = "Print the effective configuration as YAML"
	configInitUseConstant             = "init"
	configInitShortConstant           = "Write the default configuration file"
	configInitPathFlagNameConstant    = "path"
	configInitPathFlagUsageConstant   = "destination of the configuration file"
	defaultConfigurationFileConstant  = "~/.git-id/config.yaml"
	configurationSourceTemplate       = "# source: %s\n"
	embeddedConfigurationSourceLabel  = "built-in defaults"
	configurationExistsTemplate       = "Configuration already exists at %s"
	configurationWrittenTemplate      = "Wrote default configuration to %s"
	configurationEncodeErrorTemplate  = "unable to render configuration: %w"
	configurationWriteErrorTemplate   = "unable to write configuration %s: %w"
	configurationDirectoryPermissions = fs.FileMode(0o700)
	configurationFilePermissions      = fs.FileMode(0o600)
	yamlIndentConstant                = 2
)

func (application *Application) buildConfigCommand() *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configCommandUseConstant,
		Short: configCommandShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	showCommand := &cobra.Command{
		Use:   configShowUseConstant,
		Short: configShowShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.showConfiguration(command)
		},
	}

	var destinationPath string
	initCommand := &cobra.Command{
		Use:   configInitUseConstant,
		Short: configInitShortConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfigurationFile(command, destinationPath)
		},
	}
	initCommand.Flags().StringVar(&destinationPath, configInitPathFlagNameConstant, defaultConfigurationFileConstant, configInitPathFlagUsageConstant)

	configCommand.AddCommand(showCommand, initCommand)
	return configCommand
}

func (application *Application) showConfiguration(command *cobra.Command) error {
	source := application.configurationMetadata.Source(embeddedConfigurationSourceLabel)

	output := command.OutOrStdout()
	if _, writeError := fmt.Fprintf(output, configurationSourceTemplate, source); writeError != nil {
		return writeError
	}

	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(yamlIndentConstant)
	if encodeError := encoder.Encode(application.configuration); encodeError != nil {
		return fmt.Errorf(configurationEncodeErrorTemplate, encodeError)
	}
	return encoder.Close()
}

func (application *Application) initializeConfigurationFile(command *cobra.Command, destinationPath string) error {
	reporter := ui.NewReporter(command.OutOrStdout(), command.ErrOrStderr())
	resolvedPath := application.homeExpander.Expand(destinationPath)

	if _, statError := os.Stat(resolvedPath); statError == nil {
		reporter.Hint(configurationExistsTemplate, resolvedPath)
		return nil
	} else if !errors.Is(statError, fs.ErrNotExist) {
		return fmt.Errorf(configurationWriteErrorTemplate, resolvedPath, statError)
	}

	if directoryError := os.MkdirAll(filepath.Dir(resolvedPath), configurationDirectoryPermissions); directoryError != nil {
		return fmt.Errorf(configurationWriteErrorTemplate, resolvedPath, directoryError)
	}

	content := DefaultConfigurationContent()
	if writeError := os.WriteFile(resolvedPath, content, configurationFilePermissions); writeError != nil {
		return fmt.Errorf(configurationWriteErrorTemplate, resolvedPath, writeError)
	}

	reporter.Success(configurationWrittenTemplate, resolvedPath)
	return nil
}
