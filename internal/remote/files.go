package remote

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/repogov/repogov/internal/protection"
)

const (
	codeownersCheckNameConstant = "codeowners"
	readmeCheckNameConstant     = "readme"
	licenseCheckNameConstant    = "license"
	securityCheckNameConstant   = "security_policy"
	dependabotCheckNameConstant = "dependabot_config"
)

// FileCheckConfig describes one governance file lookup. Paths are alternative
// locations probed in order; the first hit satisfies the check.
type FileCheckConfig struct {
	Name     string
	Paths    []string
	Required bool
}

// FileCheckResult reports one file lookup. CheckedPaths records every path
// probed, in probe order, up to and including the one that matched.
type FileCheckResult struct {
	Name         string
	Exists       bool
	FoundPath    string
	CheckedPaths []string
	Required     bool
}

// StandardFileChecks returns the governance file lookups applied to every
// scanned repository.
func StandardFileChecks() []FileCheckConfig {
	return []FileCheckConfig{
		{
			Name:     codeownersCheckNameConstant,
			Paths:    []string{"CODEOWNERS", ".github/CODEOWNERS", "docs/CODEOWNERS"},
			Required: true,
		},
		{
			Name:     readmeCheckNameConstant,
			Paths:    []string{"README.md"},
			Required: true,
		},
		{
			Name:     licenseCheckNameConstant,
			Paths:    []string{"LICENSE", "LICENSE.md"},
			Required: false,
		},
		{
			Name:     securityCheckNameConstant,
			Paths:    []string{"SECURITY.md", ".github/SECURITY.md"},
			Required: false,
		},
		{
			Name:     dependabotCheckNameConstant,
			Paths:    []string{".github/dependabot.yml", ".github/dependabot.yaml"},
			Required: false,
		},
	}
}

// CheckRemoteFiles runs the configured file lookups against the repository.
// Independent lookups run concurrently; the alternative paths within one
// lookup are probed strictly in order and stop at the first hit. Results come
// back in configuration order.
func (fetcher *Fetcher) CheckRemoteFiles(executionContext context.Context, repositoryInfo protection.RepoInfo, checkConfigurations []FileCheckConfig) ([]FileCheckResult, error) {
	checkResults := make([]FileCheckResult, len(checkConfigurations))
	lookupGroup, lookupContext := errgroup.WithContext(executionContext)

	for configurationIndex, checkConfiguration := range checkConfigurations {
		configurationIndex, checkConfiguration := configurationIndex, checkConfiguration
		lookupGroup.Go(func() error {
			lookupResult := FileCheckResult{
				Name:         checkConfiguration.Name,
				Required:     checkConfiguration.Required,
				CheckedPaths: []string{},
			}
			for _, candidatePath := range checkConfiguration.Paths {
				if contextError := lookupContext.Err(); contextError != nil {
					return contextError
				}
				lookupResult.CheckedPaths = append(lookupResult.CheckedPaths, candidatePath)
				if fetcher.CheckRemoteFileExists(lookupContext, repositoryInfo, candidatePath) {
					lookupResult.Exists = true
					lookupResult.FoundPath = candidatePath
					break
				}
			}
			checkResults[configurationIndex] = lookupResult
			return nil
		})
	}

	if waitError := lookupGroup.Wait(); waitError != nil {
		return nil, waitError
	}
	return checkResults, nil
}
