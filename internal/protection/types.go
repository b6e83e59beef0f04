package protection

import "fmt"

const (
	repositoryPathFormatConstant = "%s/%s"
)

// Setting names in the order they are diffed and reported.
const (
	SettingRequiredReviews         = "required_reviews"
	SettingDismissStaleReviews     = "dismiss_stale_reviews"
	SettingRequireCodeOwnerReviews = "require_code_owner_reviews"
	SettingRequireStatusChecks     = "require_status_checks"
	SettingRequireBranchesUpToDate = "require_branches_up_to_date"
	SettingRequireSignedCommits    = "require_signed_commits"
	SettingEnforceAdmins           = "enforce_admins"
)

// RepoInfo identifies a GitHub repository by owner and name.
type RepoInfo struct {
	Owner      string
	Repository string
}

// String renders the repository in owner/name form.
func (repositoryInfo RepoInfo) String() string {
	return fmt.Sprintf(repositoryPathFormatConstant, repositoryInfo.Owner, repositoryInfo.Repository)
}

// BranchProtectionSettings is a snapshot of the protection state of a single
// branch. Pointer fields and the nil slice mean the setting is not configured
// remotely; RulesetID carries the identifier of the active ruleset the
// snapshot was read from, or nil when no ruleset governs the branch.
type BranchProtectionSettings struct {
	Branch                  string
	RulesetID               *int64
	RequiredReviews         *int
	DismissStaleReviews     *bool
	RequireCodeOwnerReviews *bool
	RequiredStatusChecks    []string
	RequireBranchesUpToDate *bool
	RequireSignedCommits    *bool
	EnforceAdmins           *bool
}

// DesiredBranchProtection is a partial protection policy. Nil pointer fields
// and a nil status check slice mean the setting is unmanaged and never
// produces a diff.
type DesiredBranchProtection struct {
	Branch                  string   `mapstructure:"branch"`
	RequiredReviews         *int     `mapstructure:"required_reviews"`
	DismissStaleReviews     *bool    `mapstructure:"dismiss_stale_reviews"`
	RequireCodeOwnerReviews *bool    `mapstructure:"require_code_owner_reviews"`
	RequiredStatusChecks    []string `mapstructure:"require_status_checks"`
	RequireBranchesUpToDate *bool    `mapstructure:"require_branches_up_to_date"`
	RequireSignedCommits    *bool    `mapstructure:"require_signed_commits"`
	EnforceAdmins           *bool    `mapstructure:"enforce_admins"`
}

// TagProtectionPolicy describes the desired protection for tags matching the
// configured patterns.
type TagProtectionPolicy struct {
	Patterns        []string `mapstructure:"patterns"`
	PreventDeletion bool     `mapstructure:"prevent_deletion"`
	PreventUpdate   bool     `mapstructure:"prevent_update"`
}

// DiffAction classifies how a setting deviates from the desired policy.
type DiffAction string

const (
	// DiffActionAdd marks a setting that is desired but absent remotely.
	DiffActionAdd DiffAction = "add"
	// DiffActionChange marks a setting whose remote value differs from the
	// desired one.
	DiffActionChange DiffAction = "change"
)

// SettingDiff records a single deviation between the remote state and the
// desired policy.
type SettingDiff struct {
	Setting string     `json:"setting"`
	Current any        `json:"current"`
	Desired any        `json:"desired"`
	Action  DiffAction `json:"action"`
}

// SyncDiffResult is the outcome of diffing one branch of one repository.
type SyncDiffResult struct {
	RepoInfo         RepoInfo
	Branch           string
	Diffs            []SettingDiff
	HasChanges       bool
	CurrentRulesetID *int64
}
