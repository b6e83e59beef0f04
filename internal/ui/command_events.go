package ui

import (
	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/execshell"
)

const successExitCodeConstant = 0

// ConsoleCommandEventLogger implements execshell.CommandEventObserver by
// logging command lifecycle events through a zap logger configured for
// human-readable output. Messages come from the shared command message
// formatter, so the console shows what the CLI call does rather than its
// argument vector.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter execshell.CommandMessageFormatter
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: execshell.CommandMessageFormatter{}}
}

// CommandStarted logs command start notifications.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Info(eventLogger.formatter.BuildStartedMessage(command))
}

// CommandCompleted logs completion notifications, demoting non-zero exits to warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	if result.ExitCode == successExitCodeConstant {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command))
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result))
}

// CommandExecutionFailed logs failures that prevented the command from running.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(eventLogger.formatter.BuildExecutionFailureMessage(command, failure))
}
