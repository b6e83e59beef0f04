package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/execshell"
	"github.com/repogov/repogov/internal/policy"
	"github.com/repogov/repogov/internal/scan"
	synccmd "github.com/repogov/repogov/internal/sync"
	"github.com/repogov/repogov/internal/tier"
	"github.com/repogov/repogov/internal/ui"
	"github.com/repogov/repogov/internal/utils"
)

const (
	applicationNameConstant                 = "repogov"
	applicationShortDescriptionConstant     = "Repository governance checks for GitHub"
	applicationLongDescriptionConstant      = "repogov scans GitHub repositories against a desired-state governance policy, reconciles branch and tag protection rulesets, and validates tier conventions. All GitHub access goes through the gh CLI."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a policy file (TOML)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	environmentPrefixConstant               = "REPOGOV"
	configurationNameConstant               = "repogov"
	configurationTypeConstant               = "toml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	rootCommandInfoMessageConstant          = "repogov CLI executed"
	rootCommandDebugMessageConstant         = "repogov CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	defaultConfigurationSearchPathConstant  = "."
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
}

// ApplicationCommonConfiguration stores logging configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)

	scanBuilder := scan.CommandBuilder{
		LoggerProvider:        application.loggerProvider,
		PolicyProvider:        application.policyProvider,
		CommandEventsObserver: application.commandEventsObserver(),
	}
	scanCommand, scanBuildError := scanBuilder.Build()
	if scanBuildError == nil {
		cobraCommand.AddCommand(scanCommand)
	}

	syncBuilder := synccmd.CommandBuilder{
		LoggerProvider:        application.loggerProvider,
		PolicyProvider:        application.policyProvider,
		CommandEventsObserver: application.commandEventsObserver(),
	}
	syncCommand, syncBuildError := syncBuilder.Build()
	if syncBuildError == nil {
		cobraCommand.AddCommand(syncCommand)
	}

	tierBuilder := tier.CommandBuilder{
		LoggerProvider: application.loggerProvider,
		PolicyProvider: application.policyProvider,
	}
	tierCommand, tierBuildError := tierBuilder.Build()
	if tierBuildError == nil {
		cobraCommand.AddCommand(tierCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// RootCommand exposes the assembled Cobra root command.
func (application *Application) RootCommand() *cobra.Command {
	return application.rootCommand
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) loggerProvider() *zap.Logger {
	return application.logger
}

func (application *Application) policyProvider() (policy.Configuration, error) {
	return policy.NewLoader().Load(application.configurationFilePath)
}

func (application *Application) commandEventsObserver() execshell.CommandEventObserver {
	return &consoleEventRelay{application: application}
}

// consoleEventRelay defers observer construction until events arrive, so the
// logger configured during PersistentPreRunE is the one that renders them.
// Events are only rendered when console logging is enabled.
type consoleEventRelay struct {
	application *Application
}

func (relay *consoleEventRelay) consoleLogger() *ui.ConsoleCommandEventLogger {
	if !relay.application.humanReadableLoggingEnabled() {
		return ui.NewConsoleCommandEventLogger(zap.NewNop())
	}
	return ui.NewConsoleCommandEventLogger(relay.application.logger)
}

// CommandStarted relays command start events to the console logger.
func (relay *consoleEventRelay) CommandStarted(command execshell.ShellCommand) {
	relay.consoleLogger().CommandStarted(command)
}

// CommandCompleted relays command completion events to the console logger.
func (relay *consoleEventRelay) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	relay.consoleLogger().CommandCompleted(command, result)
}

// CommandExecutionFailed relays execution failures to the console logger.
func (relay *consoleEventRelay) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	relay.consoleLogger().CommandExecutionFailed(command, failure)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	createdLogger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = createdLogger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
