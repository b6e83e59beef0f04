package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	githubAPICommandNameConstant          = "api"
	githubMethodFlagConstant              = "-X"
	githubReposEndpointPrefixConstant     = "repos/"
	githubRulesetsEndpointSegmentConstant = "/rulesets"
	githubContentsEndpointSegmentConstant = "/contents/"
	githubMethodGetConstant               = "GET"
	githubMethodPostConstant              = "POST"
	githubMethodPutConstant               = "PUT"
)

const (
	githubRepoAccessStartTemplateConstant               = "Verifying access to %s"
	githubRepoAccessSuccessTemplateConstant             = "Verified access to %s"
	githubRepoAccessFailureTemplateConstant             = "Failed to verify access to %s (exit code %d%s)"
	githubRepoAccessExecutionFailureTemplateConstant    = "Unable to verify access to %s: %s"
	githubRulesetListStartTemplateConstant              = "Listing rulesets for %s"
	githubRulesetListSuccessTemplateConstant            = "Listed rulesets for %s"
	githubRulesetListFailureTemplateConstant            = "Failed to list rulesets for %s (exit code %d%s)"
	githubRulesetListExecutionFailureTemplateConstant   = "Unable to list rulesets for %s: %s"
	githubRulesetCreateStartTemplateConstant            = "Creating ruleset for %s"
	githubRulesetCreateSuccessTemplateConstant          = "Created ruleset for %s"
	githubRulesetCreateFailureTemplateConstant          = "Failed to create ruleset for %s (exit code %d%s)"
	githubRulesetCreateExecutionFailureTemplateConstant = "Unable to create ruleset for %s: %s"
	githubRulesetUpdateStartTemplateConstant            = "Updating ruleset for %s"
	githubRulesetUpdateSuccessTemplateConstant          = "Updated ruleset for %s"
	githubRulesetUpdateFailureTemplateConstant          = "Failed to update ruleset for %s (exit code %d%s)"
	githubRulesetUpdateExecutionFailureTemplateConstant = "Unable to update ruleset for %s: %s"
	githubContentsStartTemplateConstant                 = "Checking %s for %s"
	githubContentsSuccessTemplateConstant               = "Checked %s for %s"
	githubContentsFailureTemplateConstant               = "%s not found in %s (exit code %d%s)"
	githubContentsExecutionFailureTemplateConstant      = "Unable to check %s for %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name == CommandGitHub {
		return formatter.describeGitHubMessage(command, result, failure, stage)
	}
	return formatter.buildGenericMessage(command, result, failure, stage)
}

func (formatter CommandMessageFormatter) describeGitHubMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	arguments := command.Details.Arguments
	if len(arguments) < 2 || strings.TrimSpace(arguments[0]) != githubAPICommandNameConstant {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	endpoint := strings.TrimSpace(arguments[1])
	method := strings.TrimSpace(findFlagValue(arguments, githubMethodFlagConstant))
	if len(method) == 0 {
		method = githubMethodGetConstant
	}

	switch {
	case strings.Contains(endpoint, githubContentsEndpointSegmentConstant):
		repository, filePath := formatter.extractRepositoryAndPathFromContentsEndpoint(endpoint)
		return formatter.renderStageMessage(stage, result, failure,
			fmt.Sprintf(githubContentsStartTemplateConstant, filePath, repository),
			fmt.Sprintf(githubContentsSuccessTemplateConstant, filePath, repository),
			githubContentsFailureTemplateConstant, githubContentsExecutionFailureTemplateConstant,
			filePath, repository)
	case strings.Contains(endpoint, githubRulesetsEndpointSegmentConstant):
		repository := formatter.extractRepositoryFromEndpoint(endpoint)
		switch method {
		case githubMethodPostConstant:
			return formatter.renderStageMessage(stage, result, failure,
				fmt.Sprintf(githubRulesetCreateStartTemplateConstant, repository),
				fmt.Sprintf(githubRulesetCreateSuccessTemplateConstant, repository),
				githubRulesetCreateFailureTemplateConstant, githubRulesetCreateExecutionFailureTemplateConstant,
				repository)
		case githubMethodPutConstant:
			return formatter.renderStageMessage(stage, result, failure,
				fmt.Sprintf(githubRulesetUpdateStartTemplateConstant, repository),
				fmt.Sprintf(githubRulesetUpdateSuccessTemplateConstant, repository),
				githubRulesetUpdateFailureTemplateConstant, githubRulesetUpdateExecutionFailureTemplateConstant,
				repository)
		default:
			return formatter.renderStageMessage(stage, result, failure,
				fmt.Sprintf(githubRulesetListStartTemplateConstant, repository),
				fmt.Sprintf(githubRulesetListSuccessTemplateConstant, repository),
				githubRulesetListFailureTemplateConstant, githubRulesetListExecutionFailureTemplateConstant,
				repository)
		}
	case strings.HasPrefix(endpoint, githubReposEndpointPrefixConstant):
		repository := formatter.extractRepositoryFromEndpoint(endpoint)
		return formatter.renderStageMessage(stage, result, failure,
			fmt.Sprintf(githubRepoAccessStartTemplateConstant, repository),
			fmt.Sprintf(githubRepoAccessSuccessTemplateConstant, repository),
			githubRepoAccessFailureTemplateConstant, githubRepoAccessExecutionFailureTemplateConstant,
			repository)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) renderStageMessage(stage messageStage, result ExecutionResult, failure error, startMessage string, successMessage string, failureTemplate string, executionFailureTemplate string, subjects ...any) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		failureArguments := append(append([]any{}, subjects...), result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		return fmt.Sprintf(failureTemplate, failureArguments...)
	case messageStageExecutionFailure:
		executionArguments := append(append([]any{}, subjects...), formatter.describeFailure(failure))
		return fmt.Sprintf(executionFailureTemplate, executionArguments...)
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return commandLabel
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) extractRepositoryFromEndpoint(endpoint string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(endpoint), githubReposEndpointPrefixConstant)
	segments := strings.Split(trimmed, "/")
	if len(segments) < 2 || len(segments[0]) == 0 || len(segments[1]) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return strings.Join(segments[:2], "/")
}

func (formatter CommandMessageFormatter) extractRepositoryAndPathFromContentsEndpoint(endpoint string) (string, string) {
	repository := formatter.extractRepositoryFromEndpoint(endpoint)
	separatorIndex := strings.Index(endpoint, githubContentsEndpointSegmentConstant)
	if separatorIndex < 0 {
		return repository, fallbackUnknownValueLabelConstant
	}
	filePath := endpoint[separatorIndex+len(githubContentsEndpointSegmentConstant):]
	if len(filePath) == 0 {
		return repository, fallbackUnknownValueLabelConstant
	}
	return repository, filePath
}

func findFlagValue(arguments []string, flag string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == flag && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return emptyStringConstant
}
