package scan

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/check"
	"github.com/repogov/repogov/internal/protection"
	"github.com/repogov/repogov/internal/remote"
)

const (
	branchProtectionCheckNameConstant = "branch_protection"
	branchProtectionRuleNameConstant  = "branch-protection-matches-policy"
	fileCheckNameFormatConstant       = "file:%s"
	fileCheckRuleNameConstant         = "governance-file-present"
	settingAddedMessageFormat         = "%s is not configured, desired %v"
	settingChangedMessageFormat       = "%s is %v, desired %v"
	requiredFileMessageFormat         = "required file %s not found, checked %v"
	optionalFileMessageFormat         = "optional file %s not found, checked %v"
	serviceDependencyMessageConstant  = "scanner dependencies not configured"
	scanStartedMessageConstant        = "Scanning repository"
	scanFinishedMessageConstant       = "Scan finished"
	repositoryFieldNameConstant       = "repository"
	branchFieldNameConstant           = "branch"
	passedFieldNameConstant           = "passed"
	failedChecksFieldNameConstant     = "failed_checks"
)

// ErrDependenciesNotConfigured reports a Scanner constructed without its
// collaborators.
var ErrDependenciesNotConfigured = errors.New(serviceDependencyMessageConstant)

// RemoteVerifier is the slice of the remote fetcher the scanner needs.
type RemoteVerifier interface {
	EnsureCLIAvailable(executionContext context.Context) error
	VerifyRepoAccess(executionContext context.Context, repositoryInfo protection.RepoInfo) error
	CheckRemoteFiles(executionContext context.Context, repositoryInfo protection.RepoInfo, checkConfigurations []remote.FileCheckConfig) ([]remote.FileCheckResult, error)
}

// RulesetLister fetches repository rulesets.
type RulesetLister interface {
	ListRulesets(executionContext context.Context, repositoryInfo protection.RepoInfo) ([]protection.Ruleset, error)
}

// Scanner performs read-only governance scans.
type Scanner struct {
	verifier RemoteVerifier
	rulesets RulesetLister
	logger   *zap.Logger
}

// NewScanner validates the collaborators and returns a ready Scanner.
func NewScanner(verifier RemoteVerifier, rulesets RulesetLister, logger *zap.Logger) (*Scanner, error) {
	if verifier == nil || rulesets == nil {
		return nil, ErrDependenciesNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{verifier: verifier, rulesets: rulesets, logger: logger}, nil
}

// Scan runs the full read-only pipeline: CLI availability, repository string
// parsing, access verification, ruleset fetch, protection diff, and file
// checks. Check failures are reported in the result; only lookup failures
// return errors.
func (scanner *Scanner) Scan(executionContext context.Context, options Options) (Result, error) {
	if availabilityError := scanner.verifier.EnsureCLIAvailable(executionContext); availabilityError != nil {
		return Result{}, availabilityError
	}

	repositoryInfo, parseError := remote.ParseRepoString(options.Repository)
	if parseError != nil {
		return Result{}, parseError
	}

	scanner.logger.Info(scanStartedMessageConstant,
		zap.String(repositoryFieldNameConstant, repositoryInfo.String()),
		zap.String(branchFieldNameConstant, options.Desired.Branch),
	)

	if accessError := scanner.verifier.VerifyRepoAccess(executionContext, repositoryInfo); accessError != nil {
		return Result{}, accessError
	}

	fetchedRulesets, listError := scanner.rulesets.ListRulesets(executionContext, repositoryInfo)
	if listError != nil {
		return Result{}, listError
	}

	activeRuleset := protection.FindActiveBranchRuleset(fetchedRulesets, options.Desired.Branch)
	currentSettings, mappingError := protection.SettingsFromRuleset(options.Desired.Branch, activeRuleset)
	if mappingError != nil {
		return Result{}, mappingError
	}

	diffResult := protection.ComputeDiff(repositoryInfo, currentSettings, options.Desired)

	fileCheckConfigurations := options.FileChecks
	if fileCheckConfigurations == nil {
		fileCheckConfigurations = remote.StandardFileChecks()
	}
	fileCheckResults, fileCheckError := scanner.verifier.CheckRemoteFiles(executionContext, repositoryInfo, fileCheckConfigurations)
	if fileCheckError != nil {
		return Result{}, fileCheckError
	}

	scanResult := buildResult(repositoryInfo, options.Desired.Branch, diffResult, fileCheckResults)
	scanner.logger.Info(scanFinishedMessageConstant,
		zap.String(repositoryFieldNameConstant, repositoryInfo.String()),
		zap.Bool(passedFieldNameConstant, scanResult.Passed),
		zap.Int(failedChecksFieldNameConstant, scanResult.Summary.FailedChecks),
	)
	return scanResult, nil
}

func buildResult(repositoryInfo protection.RepoInfo, branchName string, diffResult protection.SyncDiffResult, fileCheckResults []remote.FileCheckResult) Result {
	checkResults := []check.Result{buildProtectionCheck(diffResult)}
	for _, fileCheckResult := range fileCheckResults {
		checkResults = append(checkResults, buildFileCheck(fileCheckResult))
	}

	scanSummary := Summary{TotalChecks: len(checkResults)}
	allPassed := true
	for _, checkResult := range checkResults {
		if checkResult.Passed {
			scanSummary.PassedChecks++
			continue
		}
		scanSummary.FailedChecks++
		allPassed = false
	}

	return Result{
		RepoInfo:   repositoryInfo,
		Repository: repositoryInfo.String(),
		Branch:     branchName,
		Diff:       diffResult,
		FileChecks: fileCheckResults,
		Checks:     checkResults,
		Passed:     allPassed,
		Summary:    scanSummary,
	}
}

func buildProtectionCheck(diffResult protection.SyncDiffResult) check.Result {
	if !diffResult.HasChanges {
		return check.PassResult(branchProtectionCheckNameConstant, branchProtectionRuleNameConstant)
	}

	diffViolations := make([]check.Violation, 0, len(diffResult.Diffs))
	for _, settingDiff := range diffResult.Diffs {
		violationMessage := fmt.Sprintf(settingChangedMessageFormat, settingDiff.Setting, settingDiff.Current, settingDiff.Desired)
		if settingDiff.Action == protection.DiffActionAdd {
			violationMessage = fmt.Sprintf(settingAddedMessageFormat, settingDiff.Setting, settingDiff.Desired)
		}
		diffViolations = append(diffViolations, check.Violation{
			Rule:     branchProtectionRuleNameConstant,
			Tool:     branchProtectionCheckNameConstant,
			Message:  violationMessage,
			Severity: check.SeverityError,
		})
	}
	return check.FailResult(branchProtectionCheckNameConstant, branchProtectionRuleNameConstant, diffViolations)
}

func buildFileCheck(fileCheckResult remote.FileCheckResult) check.Result {
	checkName := fmt.Sprintf(fileCheckNameFormatConstant, fileCheckResult.Name)
	if fileCheckResult.Exists {
		return check.PassResult(checkName, fileCheckRuleNameConstant)
	}

	if !fileCheckResult.Required {
		passedResult := check.PassResult(checkName, fileCheckRuleNameConstant)
		passedResult.Violations = []check.Violation{{
			Rule:     fileCheckRuleNameConstant,
			Tool:     checkName,
			Message:  fmt.Sprintf(optionalFileMessageFormat, fileCheckResult.Name, fileCheckResult.CheckedPaths),
			Severity: check.SeverityInfo,
		}}
		return passedResult
	}

	return check.FailResult(checkName, fileCheckRuleNameConstant, []check.Violation{{
		Rule:     fileCheckRuleNameConstant,
		Tool:     checkName,
		Message:  fmt.Sprintf(requiredFileMessageFormat, fileCheckResult.Name, fileCheckResult.CheckedPaths),
		Severity: check.SeverityError,
	}})
}
