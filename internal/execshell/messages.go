package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitRevParseSubcommandNameConstant = "rev-parse"
	gitGitDirFlagConstant             = "--git-dir"
	gitConfigSubcommandNameConstant   = "config"
	gitConfigGetFlagConstant          = "--get"
	gitConfigLocalFlagConstant        = "--local"
	gitConfigGlobalFlagConstant       = "--global"
	gitConfigLocalScopeLabelConstant  = "local"
	gitConfigGlobalScopeLabelConstant = "global"
	gitCloneSubcommandNameConstant    = "clone"
	sshKeygenOutputFlagConstant       = "-f"
	sshKeygenCommentFlagConstant      = "-C"
	sshTestFlagConstant               = "-T"
)

const (
	gitRepositoryCheckStartTemplateConstant            = "Checking whether %s is a Git repository"
	gitRepositoryCheckSuccessTemplateConstant          = "%s is a Git repository"
	gitRepositoryCheckFailureTemplateConstant          = "%s is not a Git repository (exit code %d%s)"
	gitRepositoryCheckExecutionFailureTemplateConstant = "Could not inspect %s: %s"
	gitConfigReadStartTemplateConstant                 = "Reading %s %s setting in %s"
	gitConfigReadSuccessTemplateConstant               = "Read %s %s setting in %s"
	gitConfigReadFailureTemplateConstant               = "%s %s setting is not set in %s (exit code %d%s)"
	gitConfigReadExecutionFailureTemplateConstant      = "Unable to read %s %s setting in %s: %s"
	gitConfigWriteStartTemplateConstant                = "Setting %s %s to %q in %s"
	gitConfigWriteSuccessTemplateConstant              = "Set %s %s to %q in %s"
	gitConfigWriteFailureTemplateConstant              = "Failed to set %s %s to %q in %s (exit code %d%s)"
	gitConfigWriteExecutionFailureTemplateConstant     = "Unable to set %s %s to %q in %s: %s"
	gitCloneStartTemplateConstant                      = "Cloning %s"
	gitCloneSuccessTemplateConstant                    = "Cloned %s"
	gitCloneFailureTemplateConstant                    = "Failed to clone %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant           = "Unable to clone %s: %s"
	sshKeygenStartTemplateConstant                     = "Generating SSH key %s for %s"
	sshKeygenSuccessTemplateConstant                   = "Generated SSH key %s for %s"
	sshKeygenFailureTemplateConstant                   = "Failed to generate SSH key %s (exit code %d%s)"
	sshKeygenExecutionFailureTemplateConstant          = "Unable to generate SSH key %s: %s"
	sshTestStartTemplateConstant                       = "Testing SSH connection to %s"
	sshTestSuccessTemplateConstant                     = "SSH connection to %s completed"
	sshTestFailureTemplateConstant                     = "SSH connection to %s exited with code %d%s"
	sshTestExecutionFailureTemplateConstant            = "Unable to test SSH connection to %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	case CommandSSHKeygen:
		return formatter.describeSSHKeygenMessage(command, result, failure, stage)
	case CommandSSH:
		return formatter.describeSSHMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitRevParseSubcommandNameConstant:
		return formatter.describeGitRevParseMessage(command, result, failure, stage)
	case gitConfigSubcommandNameConstant:
		return formatter.describeGitConfigMessage(command, result, failure, stage)
	case gitCloneSubcommandNameConstant:
		return formatter.describeGitCloneMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitRevParseMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if !containsArgument(command.Details.Arguments, gitGitDirFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitRepositoryCheckStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitRepositoryCheckSuccessTemplateConstant, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitRepositoryCheckFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitRepositoryCheckExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeGitConfigMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	workingDirectory := formatter.describeWorkingDirectory(command)
	scopeLabel := formatter.describeConfigScope(arguments)
	positionalArguments := formatter.extractPositionalArguments(arguments[1:])

	if containsArgument(arguments, gitConfigGetFlagConstant) {
		key := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitConfigReadStartTemplateConstant, scopeLabel, key, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitConfigReadSuccessTemplateConstant, scopeLabel, key, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitConfigReadFailureTemplateConstant, scopeLabel, key, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitConfigReadExecutionFailureTemplateConstant, scopeLabel, key, workingDirectory, formatter.describeFailure(failure))
		default:
			return emptyStringConstant
		}
	}

	if len(positionalArguments) < 2 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	key := positionalArguments[0]
	value := positionalArguments[1]
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitConfigWriteStartTemplateConstant, scopeLabel, key, value, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitConfigWriteSuccessTemplateConstant, scopeLabel, key, value, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitConfigWriteFailureTemplateConstant, scopeLabel, key, value, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitConfigWriteExecutionFailureTemplateConstant, scopeLabel, key, value, workingDirectory, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeGitCloneMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	positionalArguments := formatter.extractPositionalArguments(command.Details.Arguments[1:])
	repository := formatter.ensureValue(formatter.argumentAtIndex(positionalArguments, 0))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCloneStartTemplateConstant, repository)
	case messageStageSuccess:
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, repository)
	case messageStageFailure:
		return fmt.Sprintf(gitCloneFailureTemplateConstant, repository, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, repository, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeSSHKeygenMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	keyPath := formatter.ensureValue(findFlagValue(arguments, sshKeygenOutputFlagConstant))
	comment := formatter.ensureValue(findFlagValue(arguments, sshKeygenCommentFlagConstant))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(sshKeygenStartTemplateConstant, keyPath, comment)
	case messageStageSuccess:
		return fmt.Sprintf(sshKeygenSuccessTemplateConstant, keyPath, comment)
	case messageStageFailure:
		return fmt.Sprintf(sshKeygenFailureTemplateConstant, keyPath, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(sshKeygenExecutionFailureTemplateConstant, keyPath, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) describeSSHMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if !containsArgument(arguments, sshTestFlagConstant) {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	destination := formatter.ensureValue(formatter.extractFirstNonFlagArgument(arguments))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(sshTestStartTemplateConstant, destination)
	case messageStageSuccess:
		return fmt.Sprintf(sshTestSuccessTemplateConstant, destination)
	case messageStageFailure:
		return fmt.Sprintf(sshTestFailureTemplateConstant, destination, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(sshTestExecutionFailureTemplateConstant, destination, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) describeConfigScope(arguments []string) string {
	switch {
	case containsArgument(arguments, gitConfigGlobalFlagConstant):
		return gitConfigGlobalScopeLabelConstant
	case containsArgument(arguments, gitConfigLocalFlagConstant):
		return gitConfigLocalScopeLabelConstant
	default:
		return gitConfigLocalScopeLabelConstant
	}
}

func (formatter CommandMessageFormatter) extractPositionalArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		positionalArguments = append(positionalArguments, argument)
	}
	return positionalArguments
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	skipNext := false
	for _, argument := range arguments {
		if skipNext {
			skipNext = false
			continue
		}
		if argument == "-o" || argument == "-i" || argument == "-F" {
			skipNext = true
			continue
		}
		if strings.HasPrefix(argument, flagPrefixConstant) {
			continue
		}
		return argument
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return emptyStringConstant
	}
	return strings.TrimSpace(arguments[index])
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmedValue
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func findFlagValue(arguments []string, flag string) string {
	for argumentIndex := 0; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == flag {
			return arguments[argumentIndex+1]
		}
	}
	return emptyStringConstant
}
