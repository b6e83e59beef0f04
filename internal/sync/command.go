package sync

import (
	"encoding/json"
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
	commandNameConstant        = "sync <owner/repo>"
	commandShortDescription    = "Reconcile a repository's protection with the governance policy"
	commandLongDescription     = "Sync computes the difference between the repository's protection rulesets and the desired policy, then creates or updates the rulesets to close it. With --dry-run the diff is reported without applying."
	flagDryRunName             = "dry-run"
	flagDryRunDescription      = "Report the diff without applying changes"
	resultIndentConstant       = "  "
	resultOutputFormatConstant = "%s\n"
	expectedArgumentCount      = 1
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PolicyProvider supplies the desired-state policy for command execution.
type PolicyProvider func() (policy.Configuration, error)

// CommandBuilder assembles the sync cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	PolicyProvider        PolicyProvider
	Verifier              RemoteVerifier
	Reconciler            ProtectionReconciler
	CommandEventsObserver execshell.CommandEventObserver
}

// Build constructs the cobra command for protection reconciliation.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		Args:  cobra.ExactArgs(expectedArgumentCount),
		RunE:  builder.run,
	}
	command.Flags().Bool(flagDryRunName, false, flagDryRunDescription)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	dryRunFlag, _ := command.Flags().GetBool(flagDryRunName)

	logger := builder.resolveLogger()

	loadedPolicy, policyError := builder.resolvePolicy()
	if policyError != nil {
		return policyError
	}

	verifier, reconciler, dependencyError := builder.resolveRemoteDependencies(logger)
	if dependencyError != nil {
		return dependencyError
	}

	service, serviceError := NewService(verifier, reconciler, logger)
	if serviceError != nil {
		return serviceError
	}

	syncResult, syncError := service.Sync(command.Context(), Options{
		Repository: arguments[0],
		Policy:     loadedPolicy,
		DryRun:     dryRunFlag,
	})
	if syncError != nil {
		return syncError
	}

	encodedResult, encodingError := json.MarshalIndent(syncResult, "", resultIndentConstant)
	if encodingError != nil {
		return encodingError
	}
	fmt.Fprintf(command.OutOrStdout(), resultOutputFormatConstant, encodedResult)
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

func (builder *CommandBuilder) resolveRemoteDependencies(logger *zap.Logger) (RemoteVerifier, ProtectionReconciler, error) {
	if builder.Verifier != nil && builder.Reconciler != nil {
		return builder.Verifier, builder.Reconciler, nil
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

	reconciler := builder.Reconciler
	if reconciler == nil {
		applier, applierError := protection.NewApplier(client)
		if applierError != nil {
			return nil, nil, applierError
		}
		reconciler = applier
	}
	return verifier, reconciler, nil
}
