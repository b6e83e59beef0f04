// Package remote answers questions about the remote side of a repository
// through the GitHub CLI: whether the CLI is installed, whether the
// repository exists and is accessible, and which governance files are present
// in its default branch.
package remote
