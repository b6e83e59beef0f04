// Package policy loads the desired-state governance policy: branch
// protection settings, tag protection settings, and the ruleset tiers the
// repository declares it extends.
package policy
