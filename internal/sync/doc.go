// Package sync reconciles a repository's protection rulesets with the
// desired-state policy: it diffs the remote state, applies the missing or
// deviating settings, and optionally stops at the diff for dry runs.
package sync
