package scan

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/execshell"
	"github.com/repogov/repogov/internal/githubcli"
	"github.com/repogov/repogov/internal/policy"
	"github.com/repogov/repogov/internal/protection"
	"github.com/repogov/repogov/internal/remote"
)

const (
	commandNameConstant        = "scan <owner/repo>"
	commandShortDescription    = "Scan a repository against the governance policy"
	commandLongDescription     = "Scan fetches the repository's protection rulesets and governance files and reports every deviation from the desired policy without changing anything."
	scanFailedMessageConstant  = "scan found failed checks"
	resultIndentConstant       = "  "
	resultOutputFormatConstant = "%s\n"
	expectedArgumentCount      = 1
)

// ErrScanFailed signals a completed scan with at least one failed check.
var ErrScanFailed = errors.New(scanFailedMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PolicyProvider supplies the desired-state policy for command execution.
type PolicyProvider func() (policy.Configuration, error)

// CommandBuilder assembles the scan cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	PolicyProvider        PolicyProvider
	Verifier              RemoteVerifier
	Rulesets              RulesetLister
	CommandEventsObserver execshell.CommandEventObserver
}

// Build constructs the cobra command for repository scans.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		Args:  cobra.ExactArgs(expectedArgumentCount),
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()

	loadedPolicy, policyError := builder.resolvePolicy()
	if policyError != nil {
		return policyError
	}

	verifier, rulesets, dependencyError := builder.resolveRemoteDependencies(logger)
	if dependencyError != nil {
		return dependencyError
	}

	scanner, scannerError := NewScanner(verifier, rulesets, logger)
	if scannerError != nil {
		return scannerError
	}

	scanResult, scanError := scanner.Scan(command.Context(), Options{
		Repository: arguments[0],
		Desired:    loadedPolicy.BranchProtection,
	})
	if scanError != nil {
		return scanError
	}

	encodedResult, encodingError := json.MarshalIndent(scanResult, "", resultIndentConstant)
	if encodingError != nil {
		return encodingError
	}
	fmt.Fprintf(command.OutOrStdout(), resultOutputFormatConstant, encodedResult)

	if !scanResult.Passed {
		return ErrScanFailed
	}
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolvePolicy() (policy.Configuration, error) {
	if builder.PolicyProvider != nil {
		return builder.PolicyProvider()
	}
	return policy.NewLoader().Load("")
}

func (builder *CommandBuilder) resolveRemoteDependencies(logger *zap.Logger) (RemoteVerifier, RulesetLister, error) {
	if builder.Verifier != nil && builder.Rulesets != nil {
		return builder.Verifier, builder.Rulesets, nil
	}

	executor, executorError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), builder.CommandEventsObserver)
	if executorError != nil {
		return nil, nil, executorError
	}
	client, clientError := githubcli.NewClient(executor)
	if clientError != nil {
		return nil, nil, clientError
	}

	verifier := builder.Verifier
	if verifier == nil {
		fetcher, fetcherError := remote.NewFetcher(client)
		if fetcherError != nil {
			return nil, nil, fetcherError
		}
		verifier = fetcher
	}

	rulesets := builder.Rulesets
	if rulesets == nil {
		applier, applierError := protection.NewApplier(client)
		if applierError != nil {
			return nil, nil, applierError
		}
		rulesets = applier
	}
	return verifier, rulesets, nil
}
