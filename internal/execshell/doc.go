// Package execshell provides structured helpers for invoking the GitHub CLI.
//
// It wraps os/exec with zap logging via ShellExecutor, exposes OSCommandRunner
// for default process execution, and defines the abstractions repogov uses to
// issue gh api calls in a testable manner.
package execshell
