// Package protection implements desired-versus-actual reconciliation of
// GitHub branch and tag protection rulesets.
//
// ComputeDiff compares a remote settings snapshot against a partial desired
// policy; Applier pushes the desired policy through the GitHub CLI with
// create-or-update semantics, idempotent short-circuiting, and fail-fast
// permission handling.
package protection
