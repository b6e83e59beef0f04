package check_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/repogov/repogov/internal/check"
)

const (
	resultTestCheckNameConstant       = "branch_protection"
	resultTestRuleNameConstant        = "branch-protection-matches-policy"
	resultTestSkipReasonConstant      = "repository not accessible"
	resultTestViolationMessage        = "required_reviews is 1, desired 2"
	resultSubtestNameTemplateConstant = "%d_%s"
	resultCasePassMessageConstant     = "pass result carries no violations"
	resultCaseFailMessageConstant     = "fail result carries violations"
	resultCaseSkipMessageConstant     = "skip result passes with reason"
)

func TestResultConstructors(testInstance *testing.T) {
	failureViolations := []check.Violation{
		{
			Rule:     resultTestRuleNameConstant,
			Tool:     resultTestCheckNameConstant,
			Message:  resultTestViolationMessage,
			Severity: check.SeverityError,
		},
	}

	testCases := []struct {
		name           string
		buildResult    func() check.Result
		expectedResult check.Result
	}{
		{
			name: resultCasePassMessageConstant,
			buildResult: func() check.Result {
				return check.PassResult(resultTestCheckNameConstant, resultTestRuleNameConstant)
			},
			expectedResult: check.Result{
				Name:   resultTestCheckNameConstant,
				Rule:   resultTestRuleNameConstant,
				Passed: true,
			},
		},
		{
			name: resultCaseFailMessageConstant,
			buildResult: func() check.Result {
				return check.FailResult(resultTestCheckNameConstant, resultTestRuleNameConstant, failureViolations)
			},
			expectedResult: check.Result{
				Name:       resultTestCheckNameConstant,
				Rule:       resultTestRuleNameConstant,
				Passed:     false,
				Violations: failureViolations,
			},
		},
		{
			name: resultCaseSkipMessageConstant,
			buildResult: func() check.Result {
				return check.SkipResult(resultTestCheckNameConstant, resultTestRuleNameConstant, resultTestSkipReasonConstant)
			},
			expectedResult: check.Result{
				Name:       resultTestCheckNameConstant,
				Rule:       resultTestRuleNameConstant,
				Passed:     true,
				Skipped:    true,
				SkipReason: resultTestSkipReasonConstant,
			},
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(resultSubtestNameTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedResult, testCase.buildResult())
		})
	}
}
