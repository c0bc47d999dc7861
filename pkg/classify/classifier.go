// Package classify implements the pattern-based query classifier. All
// classification is deliberately substring/regex driven; there is no
// statistical language understanding anywhere in it.
package classify

import (
	"strings"

	"github.com/xhad/cdpchat/internal/models"
)

// Classifier answers the four classification questions about a raw query:
// which platform(s) it mentions, what type it is, whether it is relevant to
// the CDP domain at all, and (for comparisons) which feature is compared.
type Classifier struct {
	vocab *Vocabulary
}

// New creates a classifier over the given vocabulary. A nil vocabulary falls
// back to the built-in tables.
func New(vocab *Vocabulary) *Classifier {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Classifier{vocab: vocab}
}

// Platform returns the first platform name mentioned in the query, or ""
// when none is mentioned.
func (c *Classifier) Platform(query string) string {
	lower := strings.ToLower(query)
	for _, platform := range c.vocab.Platforms {
		if strings.Contains(lower, platform) {
			return platform
		}
	}
	return ""
}

// Platforms returns every platform name mentioned in the query, in the fixed
// platform order.
func (c *Classifier) Platforms(query string) []string {
	lower := strings.ToLower(query)
	var mentioned []string
	for _, platform := range c.vocab.Platforms {
		if strings.Contains(lower, platform) {
			mentioned = append(mentioned, platform)
		}
	}
	return mentioned
}

// QueryType classifies the query as comparison, how-to or general.
// Comparison patterns take precedence over how-to patterns.
func (c *Classifier) QueryType(query string) string {
	lower := strings.ToLower(query)
	for _, pattern := range c.vocab.ComparisonPatterns {
		if pattern.MatchString(lower) {
			return models.QueryTypeComparison
		}
	}
	for _, pattern := range c.vocab.HowToPatterns {
		if pattern.MatchString(lower) {
			return models.QueryTypeHowTo
		}
	}
	return models.QueryTypeGeneral
}

// IsRelevant reports whether the query contains at least one term from the
// relevance vocabulary. Irrelevant queries short-circuit retrieval; this is a
// cost-saving gate, not a quality filter.
func (c *Classifier) IsRelevant(query string) bool {
	lower := strings.ToLower(query)
	for _, term := range c.vocab.RelevantTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Feature extracts the feature phrase from a comparison query, or "" when no
// capture pattern matches. Queries comparing platforms without one of the
// known phrasings get no feature and fall back to full-query ranking.
func (c *Classifier) Feature(query string) string {
	lower := strings.ToLower(query)
	for _, pattern := range c.vocab.FeaturePatterns {
		match := pattern.FindStringSubmatch(lower)
		if match != nil {
			return strings.TrimSpace(match[len(match)-1])
		}
	}
	return ""
}

// Classify runs the single-query analysis: first mentioned platform, query
// type and domain relevance.
func (c *Classifier) Classify(query string) models.QueryAnalysis {
	return models.QueryAnalysis{
		Platform:   c.Platform(query),
		QueryType:  c.QueryType(query),
		IsRelevant: c.IsRelevant(query),
	}
}

// ClassifyComparison runs the comparison analysis: every mentioned platform
// (all platforms when none is named) and the extracted feature phrase.
func (c *Classifier) ClassifyComparison(query string) models.QueryAnalysis {
	platforms := c.Platforms(query)
	if len(platforms) == 0 {
		platforms = c.vocab.Platforms
	}
	return models.QueryAnalysis{
		QueryType:  models.QueryTypeComparison,
		IsRelevant: true,
		Platforms:  platforms,
		Feature:    c.Feature(query),
	}
}
