// Package githubcli adapts the GitHub CLI into a transport for the GitHub
// REST API.
//
// Client issues gh api calls through execshell, piping JSON payloads to the
// CLI over stdin, and classifies HTTP failures reported by gh so callers can
// map them onto their own error taxonomies.
package githubcli
