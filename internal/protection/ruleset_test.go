package protection_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/repogov/repogov/internal/protection"
)

func TestFindActiveBranchRuleset(testInstance *testing.T) {
	rulesetFixtures := []protection.Ruleset{
		{ID: 1, Target: "tag", Enforcement: "active"},
		{
			ID:          2,
			Target:      "branch",
			Enforcement: "disabled",
			Conditions:  protection.RulesetConditions{RefName: protection.RefNameCondition{Include: []string{"refs/heads/main"}}},
		},
		{
			ID:          3,
			Target:      "branch",
			Enforcement: "active",
			Conditions:  protection.RulesetConditions{RefName: protection.RefNameCondition{Include: []string{"refs/heads/release"}}},
		},
		{
			ID:          4,
			Target:      "branch",
			Enforcement: "active",
			Conditions:  protection.RulesetConditions{RefName: protection.RefNameCondition{Include: []string{"refs/heads/main"}}},
		},
	}

	locatedRuleset := protection.FindActiveBranchRuleset(rulesetFixtures, "main")

	require.NotNil(testInstance, locatedRuleset)
	require.Equal(testInstance, int64(4), locatedRuleset.ID)

	require.Nil(testInstance, protection.FindActiveBranchRuleset(rulesetFixtures, "develop"))
}

func TestBuildBranchRulesetOmitsStatusChecksRuleWithoutContexts(testInstance *testing.T) {
	desiredSettings := protection.DesiredBranchProtection{RequireBranchesUpToDate: boolPointer(true)}

	assembledRuleset, buildError := protection.BuildBranchRuleset(differTestBranchConstant, desiredSettings)

	require.NoError(testInstance, buildError)
	require.Empty(testInstance, assembledRuleset.Rules)
}

func TestBuildBranchRulesetEmitsStatusChecksRuleWithStrictFlag(testInstance *testing.T) {
	desiredSettings := protection.DesiredBranchProtection{
		RequiredStatusChecks:    []string{"build"},
		RequireBranchesUpToDate: boolPointer(true),
	}

	assembledRuleset, buildError := protection.BuildBranchRuleset(differTestBranchConstant, desiredSettings)

	require.NoError(testInstance, buildError)
	require.Len(testInstance, assembledRuleset.Rules, 1)
	require.Equal(testInstance, "required_status_checks", assembledRuleset.Rules[0].Type)
	require.JSONEq(
		testInstance,
		`{"required_status_checks": [{"context": "build"}], "strict_required_status_checks_policy": true}`,
		string(assembledRuleset.Rules[0].Parameters),
	)
}

func TestSettingsFromRulesetReverseMapsRules(testInstance *testing.T) {
	pullRequestParameters := json.RawMessage(`{"required_approving_review_count": 2, "dismiss_stale_reviews_on_push": true, "require_code_owner_review": false}`)
	statusChecksParameters := json.RawMessage(`{"required_status_checks": [{"context": "build"}, {"context": "lint"}], "strict_required_status_checks_policy": true}`)
	activeRuleset := &protection.Ruleset{
		ID:          42,
		Target:      "branch",
		Enforcement: "active",
		Rules: []protection.RulesetRule{
			{Type: "pull_request", Parameters: pullRequestParameters},
			{Type: "required_status_checks", Parameters: statusChecksParameters},
			{Type: "required_signatures"},
		},
	}

	settingsSnapshot, mappingError := protection.SettingsFromRuleset(differTestBranchConstant, activeRuleset)

	require.NoError(testInstance, mappingError)
	require.NotNil(testInstance, settingsSnapshot.RulesetID)
	require.Equal(testInstance, int64(42), *settingsSnapshot.RulesetID)
	require.NotNil(testInstance, settingsSnapshot.RequiredReviews)
	require.Equal(testInstance, 2, *settingsSnapshot.RequiredReviews)
	require.NotNil(testInstance, settingsSnapshot.DismissStaleReviews)
	require.True(testInstance, *settingsSnapshot.DismissStaleReviews)
	require.NotNil(testInstance, settingsSnapshot.RequireCodeOwnerReviews)
	require.False(testInstance, *settingsSnapshot.RequireCodeOwnerReviews)
	require.Equal(testInstance, []string{"build", "lint"}, settingsSnapshot.RequiredStatusChecks)
	require.NotNil(testInstance, settingsSnapshot.RequireBranchesUpToDate)
	require.True(testInstance, *settingsSnapshot.RequireBranchesUpToDate)
	require.NotNil(testInstance, settingsSnapshot.RequireSignedCommits)
	require.True(testInstance, *settingsSnapshot.RequireSignedCommits)
	require.Nil(testInstance, settingsSnapshot.EnforceAdmins)
}

func TestSettingsFromRulesetHandlesMissingRuleset(testInstance *testing.T) {
	settingsSnapshot, mappingError := protection.SettingsFromRuleset(differTestBranchConstant, nil)

	require.NoError(testInstance, mappingError)
	require.Nil(testInstance, settingsSnapshot.RulesetID)
	require.Nil(testInstance, settingsSnapshot.RequiredReviews)
	require.Nil(testInstance, settingsSnapshot.RequiredStatusChecks)
	require.Equal(testInstance, differTestBranchConstant, settingsSnapshot.Branch)
}

func TestSettingsFromRulesetIgnoresRulesWithoutSettings(testInstance *testing.T) {
	activeRuleset := &protection.Ruleset{
		ID:    5,
		Rules: []protection.RulesetRule{{Type: "deletion"}, {Type: "non_fast_forward"}},
	}

	settingsSnapshot, mappingError := protection.SettingsFromRuleset(differTestBranchConstant, activeRuleset)

	require.NoError(testInstance, mappingError)
	require.Nil(testInstance, settingsSnapshot.RequiredReviews)
	require.Nil(testInstance, settingsSnapshot.RequireSignedCommits)
}
