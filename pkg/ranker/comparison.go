package ranker

import "github.com/xhad/cdpchat/internal/models"

// ComparisonProcessor applies ranking and filtering independently per
// platform for comparison queries. Platforms never influence each other's
// results.
type ComparisonProcessor struct {
	ranker *Ranker
}

func NewComparisonProcessor(r *Ranker) *ComparisonProcessor {
	if r == nil {
		r = New()
	}
	return &ComparisonProcessor{ranker: r}
}

// Process ranks and filters each platform's results against the extracted
// feature phrase when one exists, otherwise against the full query. Every
// input platform keeps an entry in the output, empty or not; the response
// assembler renders placeholders for the empty ones.
func (p *ComparisonProcessor) Process(
	comparison map[string][]models.RetrievalResult,
	query string,
	feature string,
) map[string][]models.RetrievalResult {
	rankingQuery := query
	if feature != "" {
		rankingQuery = feature
	}

	processed := make(map[string][]models.RetrievalResult, len(comparison))
	for platform, results := range comparison {
		ranked := p.ranker.Rank(results, rankingQuery)
		processed[platform] = p.ranker.Filter(ranked)
	}

	return processed
}
