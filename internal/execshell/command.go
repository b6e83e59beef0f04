package execshell

import (
	"context"
	"fmt"
	"strings"
)

const (
	gitHubCLIExecutableNameConstant          = "gh"
	commandFailedMessageTemplateConstant     = "%s exited with code %d%s"
	commandExecutionMessageTemplateConstant  = "%s could not be executed: %s"
	commandStandardErrorSuffixTemplate       = ": %s"
	commandDescriptionJoinSeparatorConstant  = " "
	commandDescriptionUnknownFailureConstant = "unknown error"
)

// CommandName identifies a supported external executable.
type CommandName string

// Supported executables.
const (
	// CommandGitHub identifies the GitHub CLI binary.
	CommandGitHub CommandName = CommandName(gitHubCLIExecutableNameConstant)
)

// CommandDetails describes a single GitHub CLI invocation. Every request
// runs in the inherited working directory and environment; the CLI resolves
// authentication and hosts on its own.
type CommandDetails struct {
	Arguments     []string
	StandardInput []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable output of an executed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// CommandFailedError reports a command that ran to completion with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command including captured standard error output.
func (failedError CommandFailedError) Error() string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(commandStandardErrorSuffixTemplate, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedMessageTemplateConstant, describeCommand(failedError.Command), failedError.Result.ExitCode, standardErrorSuffix)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	failureMessage := commandDescriptionUnknownFailureConstant
	if executionError.Cause != nil {
		failureMessage = executionError.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionMessageTemplateConstant, describeCommand(executionError.Command), failureMessage)
}

// Unwrap exposes the underlying cause.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

func describeCommand(command ShellCommand) string {
	commandParts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(commandParts, commandDescriptionJoinSeparatorConstant)
}
