package scan_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/repogov/repogov/internal/protection"
	"github.com/repogov/repogov/internal/remote"
	"github.com/repogov/repogov/internal/scan"
)

const (
	scanTestRepositoryConstant = "octo-org/octo-repo"
	scanTestBranchConstant     = "main"
)

type stubVerifier struct {
	availabilityError error
	accessError       error
	fileCheckResults  []remote.FileCheckResult
	fileCheckError    error
	verifiedRepos     []protection.RepoInfo
}

func (stub *stubVerifier) EnsureCLIAvailable(_ context.Context) error {
	return stub.availabilityError
}

func (stub *stubVerifier) VerifyRepoAccess(_ context.Context, repositoryInfo protection.RepoInfo) error {
	stub.verifiedRepos = append(stub.verifiedRepos, repositoryInfo)
	return stub.accessError
}

func (stub *stubVerifier) CheckRemoteFiles(_ context.Context, _ protection.RepoInfo, _ []remote.FileCheckConfig) ([]remote.FileCheckResult, error) {
	return stub.fileCheckResults, stub.fileCheckError
}

type stubRulesetLister struct {
	rulesets  []protection.Ruleset
	listError error
}

func (stub *stubRulesetLister) ListRulesets(_ context.Context, _ protection.RepoInfo) ([]protection.Ruleset, error) {
	return stub.rulesets, stub.listError
}

func intPointer(value int) *int {
	return &value
}

func passingFileChecks() []remote.FileCheckResult {
	return []remote.FileCheckResult{
		{Name: "codeowners", Exists: true, FoundPath: ".github/CODEOWNERS", Required: true},
		{Name: "readme", Exists: true, FoundPath: "README.md", Required: true},
	}
}

func compliantRuleset() protection.Ruleset {
	return protection.Ruleset{
		ID:          42,
		Target:      "branch",
		Enforcement: "active",
		Conditions: protection.RulesetConditions{
			RefName: protection.RefNameCondition{Include: []string{"refs/heads/main"}},
		},
		Rules: []protection.RulesetRule{
			{Type: "pull_request", Parameters: []byte(`{"required_approving_review_count": 2}`)},
		},
	}
}

func TestNewScannerRequiresDependencies(testInstance *testing.T) {
	_, creationError := scan.NewScanner(nil, &stubRulesetLister{}, zap.NewNop())
	require.ErrorIs(testInstance, creationError, scan.ErrDependenciesNotConfigured)

	_, creationError = scan.NewScanner(&stubVerifier{}, nil, zap.NewNop())
	require.ErrorIs(testInstance, creationError, scan.ErrDependenciesNotConfigured)
}

func TestScanPassesWhenStateMatchesPolicy(testInstance *testing.T) {
	verifierStub := &stubVerifier{fileCheckResults: passingFileChecks()}
	listerStub := &stubRulesetLister{rulesets: []protection.Ruleset{compliantRuleset()}}
	scanner, creationError := scan.NewScanner(verifierStub, listerStub, zap.NewNop())
	require.NoError(testInstance, creationError)

	scanResult, scanError := scanner.Scan(context.Background(), scan.Options{
		Repository: scanTestRepositoryConstant,
		Desired: protection.DesiredBranchProtection{
			Branch:          scanTestBranchConstant,
			RequiredReviews: intPointer(2),
		},
	})

	require.NoError(testInstance, scanError)
	require.True(testInstance, scanResult.Passed)
	require.Equal(testInstance, scanTestRepositoryConstant, scanResult.Repository)
	require.Zero(testInstance, scanResult.Summary.FailedChecks)
	require.Equal(testInstance, scanResult.Summary.TotalChecks, scanResult.Summary.PassedChecks)
	require.Len(testInstance, verifierStub.verifiedRepos, 1)
}

func TestScanReportsProtectionDeviations(testInstance *testing.T) {
	verifierStub := &stubVerifier{fileCheckResults: passingFileChecks()}
	listerStub := &stubRulesetLister{rulesets: []protection.Ruleset{}}
	scanner, creationError := scan.NewScanner(verifierStub, listerStub, zap.NewNop())
	require.NoError(testInstance, creationError)

	scanResult, scanError := scanner.Scan(context.Background(), scan.Options{
		Repository: scanTestRepositoryConstant,
		Desired: protection.DesiredBranchProtection{
			Branch:          scanTestBranchConstant,
			RequiredReviews: intPointer(2),
		},
	})

	require.NoError(testInstance, scanError)
	require.False(testInstance, scanResult.Passed)
	require.Equal(testInstance, 1, scanResult.Summary.FailedChecks)
	require.True(testInstance, scanResult.Diff.HasChanges)
	require.Nil(testInstance, scanResult.Diff.CurrentRulesetID)

	protectionCheck := scanResult.Checks[0]
	require.Equal(testInstance, "branch_protection", protectionCheck.Name)
	require.False(testInstance, protectionCheck.Passed)
	require.Len(testInstance, protectionCheck.Violations, 1)
	require.Contains(testInstance, protectionCheck.Violations[0].Message, "required_reviews")
}

func TestScanReportsMissingRequiredFiles(testInstance *testing.T) {
	verifierStub := &stubVerifier{fileCheckResults: []remote.FileCheckResult{
		{Name: "codeowners", Exists: false, CheckedPaths: []string{".github/CODEOWNERS", "CODEOWNERS"}, Required: true},
		{Name: "license", Exists: false, CheckedPaths: []string{"LICENSE"}, Required: false},
	}}
	listerStub := &stubRulesetLister{rulesets: []protection.Ruleset{compliantRuleset()}}
	scanner, creationError := scan.NewScanner(verifierStub, listerStub, zap.NewNop())
	require.NoError(testInstance, creationError)

	scanResult, scanError := scanner.Scan(context.Background(), scan.Options{
		Repository: scanTestRepositoryConstant,
		Desired: protection.DesiredBranchProtection{
			Branch:          scanTestBranchConstant,
			RequiredReviews: intPointer(2),
		},
	})

	require.NoError(testInstance, scanError)
	require.False(testInstance, scanResult.Passed)

	checksByName := map[string]bool{}
	for _, checkResult := range scanResult.Checks {
		checksByName[checkResult.Name] = checkResult.Passed
	}
	require.False(testInstance, checksByName["file:codeowners"])
	require.True(testInstance, checksByName["file:license"])
}

func TestScanSurfacesFatalLookupFailures(testInstance *testing.T) {
	testCases := []struct {
		name         string
		verifierStub *stubVerifier
		listerStub   *stubRulesetLister
		repository   string
		expectedCode remote.ErrorCode
	}{
		{
			name:         "missing_cli",
			verifierStub: &stubVerifier{availabilityError: &remote.FetchError{Code: remote.ErrorCodeNoGh}},
			listerStub:   &stubRulesetLister{},
			repository:   scanTestRepositoryConstant,
			expectedCode: remote.ErrorCodeNoGh,
		},
		{
			name:         "invalid_repository_string",
			verifierStub: &stubVerifier{},
			listerStub:   &stubRulesetLister{},
			repository:   "not-a-repository",
			expectedCode: remote.ErrorCodeInvalidRepo,
		},
		{
			name:         "inaccessible_repository",
			verifierStub: &stubVerifier{accessError: &remote.FetchError{Code: remote.ErrorCodeNoRepo}},
			listerStub:   &stubRulesetLister{},
			repository:   scanTestRepositoryConstant,
			expectedCode: remote.ErrorCodeNoRepo,
		},
		{
			name:         "ruleset_fetch_failure",
			verifierStub: &stubVerifier{},
			listerStub:   &stubRulesetLister{listError: errors.New("gh exploded")},
			repository:   scanTestRepositoryConstant,
			expectedCode: remote.ErrorCodeAPIError,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			scanner, creationError := scan.NewScanner(testCase.verifierStub, testCase.listerStub, zap.NewNop())
			require.NoError(subtestInstance, creationError)

			_, scanError := scanner.Scan(context.Background(), scan.Options{
				Repository: testCase.repository,
				Desired:    protection.DesiredBranchProtection{Branch: scanTestBranchConstant},
			})

			require.Error(subtestInstance, scanError)
			require.Equal(subtestInstance, testCase.expectedCode, remote.CodeOf(scanError))
		})
	}
}
