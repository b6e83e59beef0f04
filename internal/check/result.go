package check

import "time"

// Severity classifies how strongly a violation counts against a repository.
type Severity string

// Supported severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Violation describes a single policy breach discovered by a check.
type Violation struct {
	Rule     string   `json:"rule"`
	Tool     string   `json:"tool"`
	File     string   `json:"file,omitempty"`
	Line     int      `json:"line,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Result is the outcome contract every governance check emits.
type Result struct {
	Name       string        `json:"name"`
	Rule       string        `json:"rule"`
	Passed     bool          `json:"passed"`
	Skipped    bool          `json:"skipped"`
	SkipReason string        `json:"skip_reason,omitempty"`
	Violations []Violation   `json:"violations,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// PassResult builds a passing result for the named check.
func PassResult(checkName string, ruleName string) Result {
	return Result{Name: checkName, Rule: ruleName, Passed: true}
}

// FailResult builds a failing result carrying the supplied violations.
func FailResult(checkName string, ruleName string, violations []Violation) Result {
	return Result{Name: checkName, Rule: ruleName, Passed: false, Violations: violations}
}

// SkipResult builds a skipped result with the reason evaluation was impossible.
func SkipResult(checkName string, ruleName string, skipReason string) Result {
	return Result{Name: checkName, Rule: ruleName, Passed: true, Skipped: true, SkipReason: skipReason}
}
