package tier

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/policy"
)

const (
	commandNameConstant        = "tier"
	commandShortDescription    = "Validate extended rulesets against the repository tier"
	commandLongDescription     = "Tier reads the governance tier from the repository metadata file and verifies that at least one ruleset listed under [extends] carries the matching tier suffix."
	flagMetadataName           = "metadata"
	flagMetadataDescription    = "Path to the repository metadata file"
	tierFailedMessageConstant  = "tier validation failed"
	resultIndentConstant       = "  "
	resultOutputFormatConstant = "%s\n"
	validationLogMessage       = "tier validation completed"
	logFieldTierConstant       = "tier"
	logFieldTierSourceConstant = "tier_source"
	logFieldPassedConstant     = "passed"
)

// ErrTierValidationFailed signals a completed validation with no matching ruleset.
var ErrTierValidationFailed = errors.New(tierFailedMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// PolicyProvider supplies the desired-state policy for command execution.
type PolicyProvider func() (policy.Configuration, error)

// CommandBuilder assembles the tier cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider LoggerProvider
	PolicyProvider PolicyProvider
}

// Build constructs the cobra command for tier validation.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  builder.run,
	}
	command.Flags().String(flagMetadataName, MetadataFileName, flagMetadataDescription)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, _ []string) error {
	metadataPath, _ := command.Flags().GetString(flagMetadataName)
	logger := builder.resolveLogger()

	loadedPolicy, policyError := builder.resolvePolicy()
	if policyError != nil {
		return policyError
	}

	tierResolution, resolveError := ResolveTier(metadataPath)
	if resolveError != nil {
		return resolveError
	}

	validationResult := ValidateTierRuleset(loadedPolicy.Extends.Rulesets, tierResolution)
	logger.Info(
		validationLogMessage,
		zap.String(logFieldTierConstant, tierResolution.Tier),
		zap.String(logFieldTierSourceConstant, tierResolution.Source),
		zap.Bool(logFieldPassedConstant, validationResult.Check.Passed),
	)

	encodedResult, encodingError := json.MarshalIndent(validationResult.Check, "", resultIndentConstant)
	if encodingError != nil {
		return encodingError
	}
	fmt.Fprintf(command.OutOrStdout(), resultOutputFormatConstant, encodedResult)

	if !validationResult.Check.Passed {
		return ErrTierValidationFailed
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
