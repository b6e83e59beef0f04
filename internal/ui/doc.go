// Package ui renders command lifecycle events for people: GitHub CLI
// invocations are logged as short action descriptions instead of raw
// argument vectors.
package ui
