package protection

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	branchRulesetNameConstant        = "Branch Protection"
	tagRulesetNameConstant           = "Tag Protection"
	rulesetTargetBranchConstant      = "branch"
	rulesetTargetTagConstant         = "tag"
	rulesetEnforcementActiveConstant = "active"
	branchReferencePrefixConstant    = "refs/heads/"
	tagReferencePrefixConstant       = "refs/tags/"
	ruleTypePullRequestConstant      = "pull_request"
	ruleTypeStatusChecksConstant     = "required_status_checks"
	ruleTypeSignaturesConstant       = "required_signatures"
	ruleTypeDeletionConstant         = "deletion"
	ruleTypeUpdateConstant           = "update"
	ruleParametersEncodingFormat     = "encode parameters for %s rule: %w"
)

// Ruleset models a GitHub repository ruleset. The same shape serves both the
// create and update request bodies and the list response entries; ID is zero
// on requests and populated on responses.
type Ruleset struct {
	ID          int64             `json:"id,omitempty"`
	Name        string            `json:"name"`
	Target      string            `json:"target"`
	Enforcement string            `json:"enforcement"`
	Conditions  RulesetConditions `json:"conditions"`
	BypassActor []BypassActor     `json:"bypass_actors"`
	Rules       []RulesetRule     `json:"rules"`
}

// RulesetConditions restricts the references a ruleset applies to.
type RulesetConditions struct {
	RefName RefNameCondition `json:"ref_name"`
}

// RefNameCondition lists fully qualified reference patterns.
type RefNameCondition struct {
	Include []string `json:"include"`
	Exclude []string `json:"exclude"`
}

// BypassActor identifies an actor allowed to bypass a ruleset.
type BypassActor struct {
	ActorID    int64  `json:"actor_id"`
	ActorType  string `json:"actor_type"`
	BypassMode string `json:"bypass_mode"`
}

// RulesetRule is a single rule within a ruleset. Parameters stays raw so the
// same struct can round-trip every rule type.
type RulesetRule struct {
	Type       string          `json:"type"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

type pullRequestRuleParameters struct {
	RequiredApprovingReviewCount int  `json:"required_approving_review_count"`
	DismissStaleReviewsOnPush    bool `json:"dismiss_stale_reviews_on_push"`
	RequireCodeOwnerReview       bool `json:"require_code_owner_review"`
}

type statusChecksRuleParameters struct {
	RequiredStatusChecks             []statusCheckContext `json:"required_status_checks"`
	StrictRequiredStatusChecksPolicy bool                 `json:"strict_required_status_checks_policy"`
}

type statusCheckContext struct {
	Context string `json:"context"`
}

func newRulesetRule(ruleType string, parameters any) (RulesetRule, error) {
	if parameters == nil {
		return RulesetRule{Type: ruleType}, nil
	}
	encodedParameters, encodingError := json.Marshal(parameters)
	if encodingError != nil {
		return RulesetRule{}, fmt.Errorf(ruleParametersEncodingFormat, ruleType, encodingError)
	}
	return RulesetRule{Type: ruleType, Parameters: encodedParameters}, nil
}

// BuildBranchRuleset assembles the ruleset body that realizes the desired
// branch protection policy for the given branch.
func BuildBranchRuleset(branchName string, desired DesiredBranchProtection) (Ruleset, error) {
	assembledRuleset := Ruleset{
		Name:        branchRulesetNameConstant,
		Target:      rulesetTargetBranchConstant,
		Enforcement: rulesetEnforcementActiveConstant,
		Conditions: RulesetConditions{
			RefName: RefNameCondition{
				Include: []string{branchReferencePrefixConstant + branchName},
				Exclude: []string{},
			},
		},
		BypassActor: []BypassActor{},
		Rules:       []RulesetRule{},
	}

	if desired.RequiredReviews != nil || desired.DismissStaleReviews != nil || desired.RequireCodeOwnerReviews != nil {
		pullRequestParameters := pullRequestRuleParameters{}
		if desired.RequiredReviews != nil {
			pullRequestParameters.RequiredApprovingReviewCount = *desired.RequiredReviews
		}
		if desired.DismissStaleReviews != nil {
			pullRequestParameters.DismissStaleReviewsOnPush = *desired.DismissStaleReviews
		}
		if desired.RequireCodeOwnerReviews != nil {
			pullRequestParameters.RequireCodeOwnerReview = *desired.RequireCodeOwnerReviews
		}
		pullRequestRule, ruleError := newRulesetRule(ruleTypePullRequestConstant, pullRequestParameters)
		if ruleError != nil {
			return Ruleset{}, ruleError
		}
		assembledRuleset.Rules = append(assembledRuleset.Rules, pullRequestRule)
	}

	if desired.RequiredStatusChecks != nil {
		statusChecksParameters := statusChecksRuleParameters{RequiredStatusChecks: []statusCheckContext{}}
		for _, checkContext := range desired.RequiredStatusChecks {
			statusChecksParameters.RequiredStatusChecks = append(statusChecksParameters.RequiredStatusChecks, statusCheckContext{Context: checkContext})
		}
		if desired.RequireBranchesUpToDate != nil {
			statusChecksParameters.StrictRequiredStatusChecksPolicy = *desired.RequireBranchesUpToDate
		}
		statusChecksRule, ruleError := newRulesetRule(ruleTypeStatusChecksConstant, statusChecksParameters)
		if ruleError != nil {
			return Ruleset{}, ruleError
		}
		assembledRuleset.Rules = append(assembledRuleset.Rules, statusChecksRule)
	}

	if desired.RequireSignedCommits != nil && *desired.RequireSignedCommits {
		signaturesRule, ruleError := newRulesetRule(ruleTypeSignaturesConstant, nil)
		if ruleError != nil {
			return Ruleset{}, ruleError
		}
		assembledRuleset.Rules = append(assembledRuleset.Rules, signaturesRule)
	}

	return assembledRuleset, nil
}

// BuildTagRuleset assembles the ruleset body that realizes the tag protection
// policy.
func BuildTagRuleset(policy TagProtectionPolicy) (Ruleset, error) {
	includePatterns := make([]string, 0, len(policy.Patterns))
	for _, tagPattern := range policy.Patterns {
		includePatterns = append(includePatterns, tagReferencePrefixConstant+tagPattern)
	}

	assembledRuleset := Ruleset{
		Name:        tagRulesetNameConstant,
		Target:      rulesetTargetTagConstant,
		Enforcement: rulesetEnforcementActiveConstant,
		Conditions: RulesetConditions{
			RefName: RefNameCondition{Include: includePatterns, Exclude: []string{}},
		},
		BypassActor: []BypassActor{},
		Rules:       []RulesetRule{},
	}

	if policy.PreventDeletion {
		deletionRule, ruleError := newRulesetRule(ruleTypeDeletionConstant, nil)
		if ruleError != nil {
			return Ruleset{}, ruleError
		}
		assembledRuleset.Rules = append(assembledRuleset.Rules, deletionRule)
	}
	if policy.PreventUpdate {
		updateRule, ruleError := newRulesetRule(ruleTypeUpdateConstant, nil)
		if ruleError != nil {
			return Ruleset{}, ruleError
		}
		assembledRuleset.Rules = append(assembledRuleset.Rules, updateRule)
	}

	return assembledRuleset, nil
}

// FindActiveBranchRuleset returns the first active branch-targeted ruleset
// whose conditions include the given branch, or nil when none governs it.
func FindActiveBranchRuleset(rulesets []Ruleset, branchName string) *Ruleset {
	branchReference := branchReferencePrefixConstant + branchName
	for rulesetIndex := range rulesets {
		candidateRuleset := &rulesets[rulesetIndex]
		if candidateRuleset.Target != rulesetTargetBranchConstant {
			continue
		}
		if candidateRuleset.Enforcement != rulesetEnforcementActiveConstant {
			continue
		}
		for _, includePattern := range candidateRuleset.Conditions.RefName.Include {
			if includePattern == branchReference {
				return candidateRuleset
			}
		}
	}
	return nil
}

// FindTagRuleset returns the first tag-targeted ruleset, or nil.
func FindTagRuleset(rulesets []Ruleset) *Ruleset {
	for rulesetIndex := range rulesets {
		if rulesets[rulesetIndex].Target == rulesetTargetTagConstant {
			return &rulesets[rulesetIndex]
		}
	}
	return nil
}

// SettingsFromRuleset reverse-maps a ruleset into a branch protection
// snapshot. A nil ruleset, or a rule type absent from the ruleset, leaves the
// corresponding settings unconfigured.
func SettingsFromRuleset(branchName string, activeRuleset *Ruleset) (BranchProtectionSettings, error) {
	settingsSnapshot := BranchProtectionSettings{Branch: branchName}
	if activeRuleset == nil {
		return settingsSnapshot, nil
	}
	rulesetIdentifier := activeRuleset.ID
	settingsSnapshot.RulesetID = &rulesetIdentifier

	for _, rulesetRule := range activeRuleset.Rules {
		switch rulesetRule.Type {
		case ruleTypePullRequestConstant:
			decodedParameters := pullRequestRuleParameters{}
			if len(rulesetRule.Parameters) > 0 {
				if decodingError := json.Unmarshal(rulesetRule.Parameters, &decodedParameters); decodingError != nil {
					return BranchProtectionSettings{}, fmt.Errorf(ruleParametersEncodingFormat, rulesetRule.Type, decodingError)
				}
			}
			requiredReviews := decodedParameters.RequiredApprovingReviewCount
			dismissStale := decodedParameters.DismissStaleReviewsOnPush
			codeOwnerReview := decodedParameters.RequireCodeOwnerReview
			settingsSnapshot.RequiredReviews = &requiredReviews
			settingsSnapshot.DismissStaleReviews = &dismissStale
			settingsSnapshot.RequireCodeOwnerReviews = &codeOwnerReview
		case ruleTypeStatusChecksConstant:
			decodedParameters := statusChecksRuleParameters{}
			if len(rulesetRule.Parameters) > 0 {
				if decodingError := json.Unmarshal(rulesetRule.Parameters, &decodedParameters); decodingError != nil {
					return BranchProtectionSettings{}, fmt.Errorf(ruleParametersEncodingFormat, rulesetRule.Type, decodingError)
				}
			}
			checkContexts := make([]string, 0, len(decodedParameters.RequiredStatusChecks))
			for _, requiredCheck := range decodedParameters.RequiredStatusChecks {
				checkContexts = append(checkContexts, requiredCheck.Context)
			}
			strictPolicy := decodedParameters.StrictRequiredStatusChecksPolicy
			settingsSnapshot.RequiredStatusChecks = checkContexts
			settingsSnapshot.RequireBranchesUpToDate = &strictPolicy
		case ruleTypeSignaturesConstant:
			signedCommitsRequired := true
			settingsSnapshot.RequireSignedCommits = &signedCommitsRequired
		}
	}
	return settingsSnapshot, nil
}

// BranchReference returns the fully qualified reference for a branch name.
func BranchReference(branchName string) string {
	return branchReferencePrefixConstant + branchName
}

// BranchFromReference strips the branch reference prefix; it returns the
// input unchanged when the prefix is absent.
func BranchFromReference(referenceName string) string {
	return strings.TrimPrefix(referenceName, branchReferencePrefixConstant)
}
