package scan

import (
	"github.com/repogov/repogov/internal/check"
	"github.com/repogov/repogov/internal/protection"
	"github.com/repogov/repogov/internal/remote"
)

// Options configures a single repository scan.
type Options struct {
	Repository string
	Desired    protection.DesiredBranchProtection
	FileChecks []remote.FileCheckConfig
}

// Summary counts the checks a scan performed.
type Summary struct {
	TotalChecks  int `json:"total_checks"`
	PassedChecks int `json:"passed_checks"`
	FailedChecks int `json:"failed_checks"`
}

// Result is the full outcome of one repository scan. Passed reflects only
// the checks; fatal lookup failures surface as errors instead.
type Result struct {
	RepoInfo   protection.RepoInfo       `json:"-"`
	Repository string                    `json:"repository"`
	Branch     string                    `json:"branch"`
	Diff       protection.SyncDiffResult `json:"-"`
	FileChecks []remote.FileCheckResult  `json:"-"`
	Checks     []check.Result            `json:"checks"`
	Passed     bool                      `json:"passed"`
	Summary    Summary                   `json:"summary"`
}
