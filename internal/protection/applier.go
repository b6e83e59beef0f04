package protection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/repogov/repogov/internal/githubcli"
)

const (
	rulesetsEndpointFormatConstant      = "repos/%s/rulesets"
	rulesetEndpointFormatConstant       = "repos/%s/rulesets/%d"
	noPermissionErrorFormatConstant     = "insufficient permission to modify rulesets for %s: %v"
	branchProtectionApplyFormatConstant = "apply branch protection for %s@%s: %w"
	tagProtectionApplyFormatConstant    = "apply tag protection for %s: %w"
	applierClientNotConfiguredMessage   = "github client not configured"
)

// ErrClientNotConfigured reports that an Applier was constructed without a
// GitHub client.
var ErrClientNotConfigured = errors.New(applierClientNotConfiguredMessage)

// GitHubClient issues authenticated GitHub REST requests.
type GitHubClient interface {
	Request(executionContext context.Context, method string, path string, payload any) (json.RawMessage, error)
}

// NoPermissionError reports that the authenticated user may not modify
// rulesets on the repository. It aborts further apply attempts.
type NoPermissionError struct {
	RepoInfo RepoInfo
	Cause    error
}

// Error describes the permission failure.
func (permissionError *NoPermissionError) Error() string {
	return fmt.Sprintf(noPermissionErrorFormatConstant, permissionError.RepoInfo, permissionError.Cause)
}

// Unwrap exposes the underlying request failure.
func (permissionError *NoPermissionError) Unwrap() error {
	return permissionError.Cause
}

// FailedDiff pairs a setting diff with the reason it could not be applied.
type FailedDiff struct {
	Diff  SettingDiff `json:"diff"`
	Error string      `json:"error"`
}

// ApplyResult summarizes one apply attempt. Recoverable request failures are
// recorded in Failed rather than returned as errors, so callers can continue
// with the remaining repositories.
type ApplyResult struct {
	Success bool          `json:"success"`
	Applied []SettingDiff `json:"applied"`
	Failed  []FailedDiff  `json:"failed"`
}

// Applier pushes desired protection policies to GitHub through a client.
type Applier struct {
	client GitHubClient
}

// NewApplier validates the client and returns a ready Applier.
func NewApplier(client GitHubClient) (*Applier, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	return &Applier{client: client}, nil
}

// ApplyBranchProtection realizes the desired policy on the branch the diff
// was computed for. When the diff reports no changes the apply is a no-op and
// no request is issued. An existing ruleset is updated in place; otherwise a
// new one is created. A 403 response is fatal and surfaces as
// *NoPermissionError; any other request failure is recorded per diff in the
// returned result.
func (applier *Applier) ApplyBranchProtection(executionContext context.Context, diffResult SyncDiffResult, desiredSettings DesiredBranchProtection) (ApplyResult, error) {
	if !diffResult.HasChanges {
		return ApplyResult{Success: true, Applied: []SettingDiff{}, Failed: []FailedDiff{}}, nil
	}

	rulesetBody, buildError := BuildBranchRuleset(diffResult.Branch, desiredSettings)
	if buildError != nil {
		return ApplyResult{}, fmt.Errorf(branchProtectionApplyFormatConstant, diffResult.RepoInfo, diffResult.Branch, buildError)
	}

	requestError := applier.submitRuleset(executionContext, diffResult.RepoInfo, diffResult.CurrentRulesetID, rulesetBody)
	if requestError != nil {
		if githubcli.HTTPStatusCode(requestError) == http.StatusForbidden {
			return ApplyResult{}, &NoPermissionError{RepoInfo: diffResult.RepoInfo, Cause: requestError}
		}
		failedDiffs := make([]FailedDiff, 0, len(diffResult.Diffs))
		for _, settingDiff := range diffResult.Diffs {
			failedDiffs = append(failedDiffs, FailedDiff{Diff: settingDiff, Error: requestError.Error()})
		}
		return ApplyResult{Success: false, Applied: []SettingDiff{}, Failed: failedDiffs}, nil
	}

	return ApplyResult{Success: true, Applied: diffResult.Diffs, Failed: []FailedDiff{}}, nil
}

// ApplyTagProtection realizes the tag protection policy on the repository,
// updating the ruleset identified by currentRulesetID or creating a new one
// when the identifier is nil. A 403 response surfaces as *NoPermissionError.
func (applier *Applier) ApplyTagProtection(executionContext context.Context, repositoryInfo RepoInfo, tagPolicy TagProtectionPolicy, currentRulesetID *int64) error {
	rulesetBody, buildError := BuildTagRuleset(tagPolicy)
	if buildError != nil {
		return fmt.Errorf(tagProtectionApplyFormatConstant, repositoryInfo, buildError)
	}

	requestError := applier.submitRuleset(executionContext, repositoryInfo, currentRulesetID, rulesetBody)
	if requestError != nil {
		if githubcli.HTTPStatusCode(requestError) == http.StatusForbidden {
			return &NoPermissionError{RepoInfo: repositoryInfo, Cause: requestError}
		}
		return fmt.Errorf(tagProtectionApplyFormatConstant, repositoryInfo, requestError)
	}
	return nil
}

func (applier *Applier) submitRuleset(executionContext context.Context, repositoryInfo RepoInfo, currentRulesetID *int64, rulesetBody Ruleset) error {
	if currentRulesetID == nil {
		createPath := fmt.Sprintf(rulesetsEndpointFormatConstant, repositoryInfo)
		_, requestError := applier.client.Request(executionContext, http.MethodPost, createPath, rulesetBody)
		return requestError
	}
	updatePath := fmt.Sprintf(rulesetEndpointFormatConstant, repositoryInfo, *currentRulesetID)
	_, requestError := applier.client.Request(executionContext, http.MethodPut, updatePath, rulesetBody)
	return requestError
}

// ListRulesets fetches the repository's rulesets.
func (applier *Applier) ListRulesets(executionContext context.Context, repositoryInfo RepoInfo) ([]Ruleset, error) {
	listPath := fmt.Sprintf(rulesetsEndpointFormatConstant, repositoryInfo)
	responseBody, requestError := applier.client.Request(executionContext, http.MethodGet, listPath, nil)
	if requestError != nil {
		return nil, requestError
	}
	fetchedRulesets := []Ruleset{}
	if decodingError := json.Unmarshal(responseBody, &fetchedRulesets); decodingError != nil {
		return nil, decodingError
	}
	return fetchedRulesets, nil
}
