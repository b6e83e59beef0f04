package sync

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/policy"
	"github.com/repogov/repogov/internal/protection"
	"github.com/repogov/repogov/internal/remote"
)

const (
	syncDependencyMessageConstant   = "sync service dependencies not configured"
	syncStartedMessageConstant      = "Reconciling repository protection"
	diffComputedMessageConstant     = "Computed protection diff"
	dryRunMessageConstant           = "Dry run, skipping apply"
	applyFinishedMessageConstant    = "Apply finished"
	tagApplyFinishedMessageConstant = "Tag protection applied"
	repositoryFieldNameConstant     = "repository"
	branchFieldNameConstant         = "branch"
	diffCountFieldNameConstant      = "diff_count"
	successFieldNameConstant        = "success"
)

// ErrDependenciesNotConfigured reports a Service constructed without its
// collaborators.
var ErrDependenciesNotConfigured = errors.New(syncDependencyMessageConstant)

// RemoteVerifier is the slice of the remote fetcher the service needs.
type RemoteVerifier interface {
	EnsureCLIAvailable(executionContext context.Context) error
	VerifyRepoAccess(executionContext context.Context, repositoryInfo protection.RepoInfo) error
}

// ProtectionReconciler lists rulesets and applies protection policies.
type ProtectionReconciler interface {
	ListRulesets(executionContext context.Context, repositoryInfo protection.RepoInfo) ([]protection.Ruleset, error)
	ApplyBranchProtection(executionContext context.Context, diffResult protection.SyncDiffResult, desiredSettings protection.DesiredBranchProtection) (protection.ApplyResult, error)
	ApplyTagProtection(executionContext context.Context, repositoryInfo protection.RepoInfo, tagPolicy protection.TagProtectionPolicy, currentRulesetID *int64) error
}

// Options configures one reconciliation run.
type Options struct {
	Repository string
	Policy     policy.Configuration
	DryRun     bool
}

// Result reports one reconciliation run. In dry runs Apply stays empty and
// only Diff is populated.
type Result struct {
	Repository           string                   `json:"repository"`
	Branch               string                   `json:"branch"`
	DryRun               bool                     `json:"dry_run"`
	Diffs                []protection.SettingDiff `json:"diffs"`
	HasChanges           bool                     `json:"has_changes"`
	Apply                protection.ApplyResult   `json:"apply"`
	TagProtectionApplied bool                     `json:"tag_protection_applied"`
}

// Service reconciles repositories against the desired policy.
type Service struct {
	verifier   RemoteVerifier
	reconciler ProtectionReconciler
	logger     *zap.Logger
}

// NewService validates the collaborators and returns a ready Service.
func NewService(verifier RemoteVerifier, reconciler ProtectionReconciler, logger *zap.Logger) (*Service, error) {
	if verifier == nil || reconciler == nil {
		return nil, ErrDependenciesNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{verifier: verifier, reconciler: reconciler, logger: logger}, nil
}

// Sync runs the reconciliation pipeline: availability, repository parsing,
// access verification, diff, and apply. A dry run stops after the diff. A
// *protection.NoPermissionError from any apply aborts the run.
func (service *Service) Sync(executionContext context.Context, options Options) (Result, error) {
	if availabilityError := service.verifier.EnsureCLIAvailable(executionContext); availabilityError != nil {
		return Result{}, availabilityError
	}

	repositoryInfo, parseError := remote.ParseRepoString(options.Repository)
	if parseError != nil {
		return Result{}, parseError
	}

	branchName := options.Policy.BranchProtection.Branch
	service.logger.Info(syncStartedMessageConstant,
		zap.String(repositoryFieldNameConstant, repositoryInfo.String()),
		zap.String(branchFieldNameConstant, branchName),
	)

	if accessError := service.verifier.VerifyRepoAccess(executionContext, repositoryInfo); accessError != nil {
		return Result{}, accessError
	}

	fetchedRulesets, listError := service.reconciler.ListRulesets(executionContext, repositoryInfo)
	if listError != nil {
		return Result{}, listError
	}

	activeRuleset := protection.FindActiveBranchRuleset(fetchedRulesets, branchName)
	currentSettings, mappingError := protection.SettingsFromRuleset(branchName, activeRuleset)
	if mappingError != nil {
		return Result{}, mappingError
	}

	diffResult := protection.ComputeDiff(repositoryInfo, currentSettings, options.Policy.BranchProtection)
	service.logger.Info(diffComputedMessageConstant,
		zap.String(repositoryFieldNameConstant, repositoryInfo.String()),
		zap.Int(diffCountFieldNameConstant, len(diffResult.Diffs)),
	)

	syncResult := Result{
		Repository: repositoryInfo.String(),
		Branch:     branchName,
		DryRun:     options.DryRun,
		Diffs:      diffResult.Diffs,
		HasChanges: diffResult.HasChanges,
	}

	if options.DryRun {
		service.logger.Info(dryRunMessageConstant, zap.String(repositoryFieldNameConstant, repositoryInfo.String()))
		return syncResult, nil
	}

	applyResult, applyError := service.reconciler.ApplyBranchProtection(executionContext, diffResult, options.Policy.BranchProtection)
	if applyError != nil {
		return Result{}, applyError
	}
	syncResult.Apply = applyResult
	service.logger.Info(applyFinishedMessageConstant,
		zap.String(repositoryFieldNameConstant, repositoryInfo.String()),
		zap.Bool(successFieldNameConstant, applyResult.Success),
	)

	if options.Policy.TagProtection != nil {
		var currentTagRulesetID *int64
		if existingTagRuleset := protection.FindTagRuleset(fetchedRulesets); existingTagRuleset != nil {
			tagRulesetIdentifier := existingTagRuleset.ID
			currentTagRulesetID = &tagRulesetIdentifier
		}
		if tagApplyError := service.reconciler.ApplyTagProtection(executionContext, repositoryInfo, *options.Policy.TagProtection, currentTagRulesetID); tagApplyError != nil {
			return Result{}, tagApplyError
		}
		syncResult.TagProtectionApplied = true
		service.logger.Info(tagApplyFinishedMessageConstant, zap.String(repositoryFieldNameConstant, repositoryInfo.String()))
	}

	return syncResult, nil
}
