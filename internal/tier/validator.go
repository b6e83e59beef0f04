package tier

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/repogov/repogov/internal/check"
)

const (
	// TierProduction, TierInternal, and TierPrototype enumerate the
	// recognized governance tiers.
	TierProduction = "production"
	TierInternal   = "internal"
	TierPrototype  = "prototype"

	// DefaultTier applies when the metadata file is absent, silent, or
	// names an unrecognized tier.
	DefaultTier = TierInternal
	// TierSourceMetadata marks a tier read from the metadata file.
	TierSourceMetadata = "repo-metadata.yaml"
	// TierSourceDefault marks the fallback tier.
	TierSourceDefault = "default"

	// MetadataFileName is the conventional repository metadata file.
	MetadataFileName = "repo-metadata.yaml"

	tierCheckNameConstant            = "tier_ruleset"
	tierRuleNameConstant             = "extends-match-tier"
	tierSuffixFormatConstant         = "-%s"
	expectedPatternFormatConstant    = "*-%s"
	noMatchingRulesetFormatConstant  = "No ruleset matching pattern '%s' found"
	metadataReadErrorFormatConstant  = "read metadata file %s: %w"
	metadataParseErrorFormatConstant = "parse metadata file %s: %w"
)

// Metadata is the subset of repo-metadata.yaml the validator consumes.
type Metadata struct {
	Name string `yaml:"name"`
	Tier string `yaml:"tier"`
}

// Resolution is a tier together with where it came from.
type Resolution struct {
	Tier   string
	Source string
}

var recognizedTiers = map[string]struct{}{
	TierProduction: {},
	TierInternal:   {},
	TierPrototype:  {},
}

// ResolveTier reads the governance tier from the metadata file. A missing
// file, an empty tier field, or an unrecognized tier value degrades to the
// default tier; a present but unreadable or malformed file is an error.
func ResolveTier(metadataFilePath string) (Resolution, error) {
	metadataContent, readError := os.ReadFile(metadataFilePath)
	if readError != nil {
		if os.IsNotExist(readError) {
			return Resolution{Tier: DefaultTier, Source: TierSourceDefault}, nil
		}
		return Resolution{}, fmt.Errorf(metadataReadErrorFormatConstant, metadataFilePath, readError)
	}

	parsedMetadata := Metadata{}
	if parseError := yaml.Unmarshal(metadataContent, &parsedMetadata); parseError != nil {
		return Resolution{}, fmt.Errorf(metadataParseErrorFormatConstant, metadataFilePath, parseError)
	}

	declaredTier := strings.TrimSpace(parsedMetadata.Tier)
	if _, recognized := recognizedTiers[declaredTier]; !recognized {
		return Resolution{Tier: DefaultTier, Source: TierSourceDefault}, nil
	}
	return Resolution{Tier: declaredTier, Source: TierSourceMetadata}, nil
}

// ValidationResult reports a tier validation alongside the matching details.
type ValidationResult struct {
	Resolution      Resolution
	ExpectedPattern string
	MatchedRulesets []string
	Check           check.Result
}

// ValidateTierRuleset confirms that at least one extended ruleset name ends
// with the tier suffix. Matching is a literal suffix comparison against
// "-<tier>"; no glob expansion is performed. An empty ruleset list passes,
// since nothing was declared to check.
func ValidateTierRuleset(extendedRulesets []string, tierResolution Resolution) ValidationResult {
	tierSuffix := fmt.Sprintf(tierSuffixFormatConstant, tierResolution.Tier)
	expectedPattern := fmt.Sprintf(expectedPatternFormatConstant, tierResolution.Tier)

	matchedRulesets := []string{}
	for _, rulesetName := range extendedRulesets {
		if strings.HasSuffix(rulesetName, tierSuffix) {
			matchedRulesets = append(matchedRulesets, rulesetName)
		}
	}

	validationResult := ValidationResult{
		Resolution:      tierResolution,
		ExpectedPattern: expectedPattern,
		MatchedRulesets: matchedRulesets,
	}
	if len(extendedRulesets) == 0 || len(matchedRulesets) > 0 {
		validationResult.Check = check.PassResult(tierCheckNameConstant, tierRuleNameConstant)
		return validationResult
	}

	missingRulesetViolation := check.Violation{
		Rule:     tierRuleNameConstant,
		Tool:     tierCheckNameConstant,
		Message:  fmt.Sprintf(noMatchingRulesetFormatConstant, expectedPattern),
		Severity: check.SeverityError,
	}
	validationResult.Check = check.FailResult(tierCheckNameConstant, tierRuleNameConstant, []check.Violation{missingRulesetViolation})
	return validationResult
}
