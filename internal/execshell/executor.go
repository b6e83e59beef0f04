package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// ShellExecutor coordinates external command execution with logging and observer notifications.
type ShellExecutor struct {
	logger    *zap.Logger
	runner    CommandRunner
	observer  CommandEventObserver
	formatter CommandMessageFormatter
}

// NewShellExecutor constructs an executor that logs through the provided logger.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs an executor that additionally notifies the observer.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}

	return &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  observer,
		formatter: CommandMessageFormatter{},
	}, nil
}

// ExecuteGitHubCLI runs the GitHub CLI with the provided details.
func (executor *ShellExecutor) ExecuteGitHubCLI(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	command := ShellCommand{Name: CommandGitHub, Details: details}
	return executor.execute(executionContext, command)
}

func (executor *ShellExecutor) execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Info(executor.formatter.BuildStartedMessage(command))
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executor.logger.Error(executor.formatter.BuildExecutionFailureMessage(command, runError))
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, executionResult)

	if executionResult.ExitCode != 0 {
		executor.logger.Warn(executor.formatter.BuildFailureMessage(command, executionResult))
		return executionResult, CommandFailedError{Command: command, Result: executionResult}
	}

	executor.logger.Info(executor.formatter.BuildSuccessMessage(command))
	return executionResult, nil
}
