package classify

import (
	"regexp"

	"github.com/xhad/cdpchat/internal/models"
)

// Vocabulary holds the fixed knowledge tables the classifier matches against.
// Build it once at process start and share it by reference; it is never
// mutated after construction.
type Vocabulary struct {
	Platforms          []string
	RelevantTerms      []string
	ComparisonPatterns []*regexp.Regexp
	HowToPatterns      []*regexp.Regexp
	FeaturePatterns    []*regexp.Regexp
}

// DefaultVocabulary compiles the built-in pattern tables for the four
// supported CDP platforms.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		Platforms: models.AllPlatforms(),
		RelevantTerms: []string{
			"segment", "mparticle", "lytics", "zeotap", "cdp",
			"customer data platform", "data", "analytics", "integration",
			"tracking", "source", "destination", "audience", "profile",
			"event", "user", "identity", "campaign",
		},
		ComparisonPatterns: compile(
			`compare`,
			`difference between`,
			`vs`,
			`versus`,
			`how does .+ compare`,
			`which is better`,
			`pros and cons`,
		),
		HowToPatterns: compile(
			`how (to|do|can|should)`,
			`steps to`,
			`guide for`,
			`tutorial`,
			`instructions for`,
			`process of`,
		),
		// Ordered capture patterns; the feature phrase is the last group of
		// whichever pattern matches first.
		FeaturePatterns: compile(
			`how does .+ (handle|manage|support|implement|provide) (.+)`,
			`compare .+ (in terms of|regarding|for) (.+)`,
			`difference between .+ for (.+)`,
			`which is better for (.+)`,
			`how do .+ compare for (.+)`,
		),
	}
}

func compile(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}
