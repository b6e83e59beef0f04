package policy

import (
	"errors"
	"fmt"

	"github.com/repogov/repogov/internal/protection"
	"github.com/repogov/repogov/internal/utils"
)

const (
	configurationNameConstant         = "repogov"
	configurationTypeConstant         = "toml"
	environmentPrefixConstant         = "REPOGOV"
	currentDirectoryConstant          = "."
	defaultBranchNameConstant         = "main"
	branchKeyConstant                 = "branch_protection.branch"
	negativeReviewsMessageFormat      = "branch_protection.required_reviews must not be negative, got %d"
	missingTagPatternsMessageConstant = "tag_protection.patterns must list at least one pattern"
)

// ErrMissingTagPatterns reports a tag protection section without patterns.
var ErrMissingTagPatterns = errors.New(missingTagPatternsMessageConstant)

// ExtendsConfiguration names the ruleset tiers the repository extends.
type ExtendsConfiguration struct {
	Rulesets []string `mapstructure:"rulesets"`
}

// Configuration is the desired-state governance policy. TagProtection stays
// nil when the policy file has no tag_protection section.
type Configuration struct {
	Extends          ExtendsConfiguration               `mapstructure:"extends"`
	BranchProtection protection.DesiredBranchProtection `mapstructure:"branch_protection"`
	TagProtection    *protection.TagProtectionPolicy    `mapstructure:"tag_protection"`
}

// Loader reads policy files through the shared configuration loader.
type Loader struct {
	configurationLoader *utils.ConfigurationLoader
}

// NewLoader builds a loader that searches the working directory for
// repogov.toml and honors REPOGOV_* environment overrides.
func NewLoader() *Loader {
	return &Loader{
		configurationLoader: utils.NewConfigurationLoader(
			configurationNameConstant,
			configurationTypeConstant,
			environmentPrefixConstant,
			[]string{currentDirectoryConstant},
		),
	}
}

// Load reads and validates the policy. An explicit configurationFilePath
// overrides the search paths; an empty path falls back to them.
func (loader *Loader) Load(configurationFilePath string) (Configuration, error) {
	loadedPolicy := Configuration{}
	defaultValues := map[string]any{branchKeyConstant: defaultBranchNameConstant}

	_, loadError := loader.configurationLoader.LoadConfiguration(configurationFilePath, defaultValues, &loadedPolicy)
	if loadError != nil {
		return Configuration{}, loadError
	}

	if validationError := validateConfiguration(loadedPolicy); validationError != nil {
		return Configuration{}, validationError
	}
	return loadedPolicy, nil
}

func validateConfiguration(loadedPolicy Configuration) error {
	if loadedPolicy.BranchProtection.RequiredReviews != nil && *loadedPolicy.BranchProtection.RequiredReviews < 0 {
		return fmt.Errorf(negativeReviewsMessageFormat, *loadedPolicy.BranchProtection.RequiredReviews)
	}
	if loadedPolicy.TagProtection != nil && len(loadedPolicy.TagProtection.Patterns) == 0 {
		return ErrMissingTagPatterns
	}
	return nil
}
