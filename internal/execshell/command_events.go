package execshell

// CommandEventObserver receives lifecycle notifications for GitHub CLI
// invocations. The console event logger in internal/ui implements it to
// narrate API calls for people.
type CommandEventObserver interface {
	// CommandStarted fires before the CLI process is launched.
	CommandStarted(command ShellCommand)
	// CommandCompleted fires once the process exits, regardless of exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed fires when the process could not run at all.
	CommandExecutionFailed(command ShellCommand, failure error)
}

// noopCommandEventObserver stands in when no observer is configured.
type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
