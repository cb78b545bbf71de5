package execshell

// CommandEventObserver receives lifecycle notifications for shell command execution.
type CommandEventObserver interface {
	CommandStarted(command ShellCommand)
	CommandCompleted(command ShellCommand, result ExecutionResult)
	CommandExecutionFailed(command ShellCommand, failure error)
}

// commandEventBroadcaster forwards every event to each registered observer in order.
type commandEventBroadcaster []CommandEventObserver

func newCommandEventBroadcaster(observers []CommandEventObserver) commandEventBroadcaster {
	registeredObservers := make(commandEventBroadcaster, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			registeredObservers = append(registeredObservers, observer)
		}
	}
	return registeredObservers
}

func (broadcaster commandEventBroadcaster) CommandStarted(command ShellCommand) {
	for _, observer := range broadcaster {
		observer.CommandStarted(command)
	}
}

func (broadcaster commandEventBroadcaster) CommandCompleted(command ShellCommand, result ExecutionResult) {
	for _, observer := range broadcaster {
		observer.CommandCompleted(command, result)
	}
}

func (broadcaster commandEventBroadcaster) CommandExecutionFailed(command ShellCommand, failure error) {
	for _, observer := range broadcaster {
		observer.CommandExecutionFailed(command, failure)
	}
}
