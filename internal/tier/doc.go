// Package tier validates that a repository's extended rulesets match the
// governance tier declared in its metadata file.
package tier
