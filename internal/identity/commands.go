package identity

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/temirov/gitid/internal/remotes"
	"github.com/temirov/gitid/internal/utils"
	"github.com/temirov/gitid/internal/utils/flags"
)

const (
	listUseConstant             = "list"
	listAliasConstant           = "ls"
	listShortConstant           = "List configured profiles"
	addUseConstant              = "add"
	addShortConstant            = "Create a new profile"
	addLongConstant             = "Create a profile either by signing in with GitHub, which generates and uploads an SSH key, or by entering the identity manually."
	useUseConstant              = "use [name]"
	useAliasConstant            = "switch"
	useShortConstant            = "Apply a profile to the current repository or globally"
	currentUseConstant          = "current"
	currentAliasConstant        = "whoami"
	currentShortConstant        = "Show the effective Git identity"
	deleteUseConstant           = "delete [name]"
	deleteAliasConstant         = "rm"
	deleteShortConstant         = "Delete a profile with its SSH key and host alias"
	testUseConstant             = "test [name]"
	testShortConstant           = "Test SSH authentication for a profile"
	cloneUseConstant            = "clone <url> [directory]"
	cloneShortConstant          = "Clone a repository under a profile"
	remoteUseConstant           = "remote [name]"
	remoteShortConstant         = "Point a repository remote at a profile's SSH host alias"
	remoteFlagNameConstant      = "remote"
	remoteFlagUsageConstant     = "remote to rebind"
	dryRunFlagUsageConstant     = "print the new URL without changing the remote"
	gitUseConstant              = "git [--profile name] <git arguments...>"
	gitShortConstant            = "Run git under a profile"
	nameFlagNameConstant        = "name"
	nameFlagShorthandConstant   = "n"
	nameFlagUsageConstant       = "profile name"
	githubFlagNameConstant      = "github"
	githubFlagUsageConstant     = "sign in with GitHub"
	manualFlagNameConstant      = "manual"
	manualFlagUsageConstant     = "enter the identity manually"
	userFlagNameConstant        = "user"
	userFlagUsageConstant       = "git user.name"
	emailFlagNameConstant       = "email"
	emailFlagUsageConstant      = "git user.email"
	accountFlagNameConstant     = "account"
	accountFlagUsageConstant    = "GitHub username used for the SSH host alias"
	sshFlagNameConstant         = "ssh"
	sshFlagUsageConstant        = "generate an SSH key for a manual profile"
	globalFlagUsageConstant     = "apply to the global git configuration"
	allFlagNameConstant         = "all"
	allFlagShorthandConstant    = "a"
	allFlagUsageConstant        = "delete every profile"
	assumeYesFlagUsageConstant  = "skip the confirmation prompt"
	cloneProfileUsageConstant   = "profile to clone with"
	serviceProviderMissingError = "identity service provider not configured"
)

// ErrServiceProviderNotConfigured indicates CommandBuilder has no ServiceProvider.
var ErrServiceProviderNotConfigured = errors.New(serviceProviderMissingError)

// ServiceProvider constructs the identity service for a running command.
type ServiceProvider func(command *cobra.Command) (*Service, error)

// CommandBuilder assembles the profile management commands.
type CommandBuilder struct {
	ServiceProvider ServiceProvider
}

// Build constructs every profile command.
func (builder *CommandBuilder) Build() ([]*cobra.Command, error) {
	if builder.ServiceProvider == nil {
		return nil, ErrServiceProviderNotConfigured
	}
	return []*cobra.Command{
		builder.buildList(),
		builder.buildAdd(),
		builder.buildUse(),
		builder.buildCurrent(),
		builder.buildDelete(),
		builder.buildTest(),
		builder.buildClone(),
		builder.buildRemote(),
		builder.buildGit(),
	}, nil
}

func (builder *CommandBuilder) buildList() *cobra.Command {
	return &cobra.Command{
		Use:     listUseConstant,
		Aliases: []string{listAliasConstant},
		Short:   listShortConstant,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			return service.List(command.Context(), workingDirectory(command))
		},
	}
}

func (builder *CommandBuilder) buildAdd() *cobra.Command {
	var options AddOptions
	var useGitHub bool
	var useManual bool
	var generateKey bool

	command := &cobra.Command{
		Use:   addUseConstant,
		Short: addShortConstant,
		Long:  addLongConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			switch {
			case useGitHub:
				options.Mode = AddModeGitHub
			case useManual:
				options.Mode = AddModeManual
			}
			if command.Flags().Changed(sshFlagNameConstant) {
				options.GenerateKey = &generateKey
			}

			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			_, addError := service.Add(command.Context(), options)
			return addError
		},
	}

	command.Flags().StringVarP(&options.Name, nameFlagNameConstant, nameFlagShorthandConstant, "", nameFlagUsageConstant)
	command.Flags().BoolVar(&useGitHub, githubFlagNameConstant, false, githubFlagUsageConstant)
	command.Flags().BoolVar(&useManual, manualFlagNameConstant, false, manualFlagUsageConstant)
	command.Flags().StringVar(&options.UserName, userFlagNameConstant, "", userFlagUsageConstant)
	command.Flags().StringVar(&options.Email, emailFlagNameConstant, "", emailFlagUsageConstant)
	command.Flags().StringVar(&options.Account, accountFlagNameConstant, "", accountFlagUsageConstant)
	flags.AddToggleFlag(command.Flags(), &generateKey, sshFlagNameConstant, true, sshFlagUsageConstant)
	command.MarkFlagsMutuallyExclusive(githubFlagNameConstant, manualFlagNameConstant)

	return command
}

func (builder *CommandBuilder) buildUse() *cobra.Command {
	var global bool

	command := &cobra.Command{
		Use:     useUseConstant,
		Aliases: []string{useAliasConstant},
		Short:   useShortConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			return service.Use(command.Context(), UseOptions{
				Name:             firstArgument(arguments),
				Global:           global,
				WorkingDirectory: workingDirectory(command),
			})
		},
	}
	command.Flags().BoolVarP(&global, flags.GlobalFlagName, flags.GlobalFlagShorthand, false, globalFlagUsageConstant)
	return command
}

func (builder *CommandBuilder) buildCurrent() *cobra.Command {
	return &cobra.Command{
		Use:     currentUseConstant,
		Aliases: []string{currentAliasConstant},
		Short:   currentShortConstant,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			return service.Current(command.Context(), workingDirectory(command))
		},
	}
}

func (builder *CommandBuilder) buildDelete() *cobra.Command {
	var options DeleteOptions

	command := &cobra.Command{
		Use:     deleteUseConstant,
		Aliases: []string{deleteAliasConstant},
		Short:   deleteShortConstant,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			options.Name = firstArgument(arguments)
			return service.Delete(command.Context(), options)
		},
	}
	command.Flags().BoolVarP(&options.All, allFlagNameConstant, allFlagShorthandConstant, false, allFlagUsageConstant)
	command.Flags().BoolVarP(&options.AssumeYes, flags.AssumeYesFlagName, flags.AssumeYesFlagShorthand, false, assumeYesFlagUsageConstant)
	return command
}

func (builder *CommandBuilder) buildTest() *cobra.Command {
	return &cobra.Command{
		Use:   testUseConstant,
		Short: testShortConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			return service.Test(command.Context(), firstArgument(arguments))
		},
	}
}

func (builder *CommandBuilder) buildClone() *cobra.Command {
	var profileName string

	command := &cobra.Command{
		Use:   cloneUseConstant,
		Short: cloneShortConstant,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			options := CloneOptions{URL: arguments[0], Profile: profileName}
			if len(arguments) > 1 {
				options.Directory = arguments[1]
			}
			return service.Clone(command.Context(), options)
		},
	}
	command.Flags().StringVarP(&profileName, flags.ProfileFlagName, flags.ProfileFlagShorthand, "", cloneProfileUsageConstant)
	return command
}

func (builder *CommandBuilder) buildRemote() *cobra.Command {
	var options RemoteOptions

	command := &cobra.Command{
		Use:   remoteUseConstant,
		Short: remoteShortConstant,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			options.Name = firstArgument(arguments)
			options.WorkingDirectory = workingDirectory(command)
			return service.Remote(command.Context(), options)
		},
	}
	command.Flags().StringVar(&options.RemoteName, remoteFlagNameConstant, remotes.DefaultRemoteName, remoteFlagUsageConstant)
	command.Flags().BoolVar(&options.DryRun, flags.DryRunFlagName, false, dryRunFlagUsageConstant)
	command.Flags().BoolVarP(&options.AssumeYes, flags.AssumeYesFlagName, flags.AssumeYesFlagShorthand, false, assumeYesFlagUsageConstant)
	return command
}

func (builder *CommandBuilder) buildGit() *cobra.Command {
	return &cobra.Command{
		Use:                gitUseConstant,
		Short:              gitShortConstant,
		DisableFlagParsing: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			service, serviceError := builder.ServiceProvider(command)
			if serviceError != nil {
				return serviceError
			}
			return service.Git(command.Context(), arguments)
		},
	}
}

func firstArgument(arguments []string) string {
	if len(arguments) == 0 {
		return ""
	}
	return arguments[0]
}

func workingDirectory(command *cobra.Command) string {
	if directory := utils.NewCommandContextAccessor().WorkingDirectory(command.Context()); len(directory) > 0 {
		return directory
	}
	directory, _ := os.Getwd()
	return directory
}
