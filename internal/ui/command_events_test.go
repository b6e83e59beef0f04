package ui_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/repogov/repogov/internal/execshell"
	"github.com/repogov/repogov/internal/ui"
)

func rulesetListCommand() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGitHub,
		Details: execshell.CommandDetails{
			Arguments: []string{"api", "repos/octo-org/octo-repo/rulesets"},
		},
	}
}

func TestConsoleCommandEventLoggerDescribesLifecycle(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observedCore))

	eventLogger.CommandStarted(rulesetListCommand())
	eventLogger.CommandCompleted(rulesetListCommand(), execshell.ExecutionResult{ExitCode: 0})

	logEntries := observedLogs.All()
	require.Len(testInstance, logEntries, 2)
	require.Equal(testInstance, "Listing rulesets for octo-org/octo-repo", logEntries[0].Message)
	require.Equal(testInstance, zapcore.InfoLevel, logEntries[0].Level)
	require.Equal(testInstance, "Listed rulesets for octo-org/octo-repo", logEntries[1].Message)
}

func TestConsoleCommandEventLoggerWarnsOnFailureExit(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observedCore))

	eventLogger.CommandCompleted(rulesetListCommand(), execshell.ExecutionResult{ExitCode: 1, StandardError: "HTTP 404"})

	logEntries := observedLogs.All()
	require.Len(testInstance, logEntries, 1)
	require.Equal(testInstance, zapcore.WarnLevel, logEntries[0].Level)
	require.Equal(testInstance, "Failed to list rulesets for octo-org/octo-repo (exit code 1: HTTP 404)", logEntries[0].Message)
}

func TestConsoleCommandEventLoggerReportsExecutionFailures(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	eventLogger := ui.NewConsoleCommandEventLogger(zap.New(observedCore))

	eventLogger.CommandExecutionFailed(rulesetListCommand(), execshell.CommandExecutionError{})

	logEntries := observedLogs.All()
	require.Len(testInstance, logEntries, 1)
	require.Equal(testInstance, zapcore.ErrorLevel, logEntries[0].Level)
	require.Contains(testInstance, logEntries[0].Message, "Unable to list rulesets for octo-org/octo-repo")
}
