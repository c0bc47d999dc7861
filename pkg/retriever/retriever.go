// Package retriever fetches candidate chunks from the index for a classified
// query. Index failures never escape this package: they are logged and
// downgraded to empty result sets so the chat experience always returns
// something.
package retriever

import (
	"context"
	"log/slog"

	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/classify"
	"github.com/xhad/cdpchat/pkg/store"
)

type Config struct {
	TopK                int
	TopKPerPlatform     int
	SimilarityThreshold float64
}

type Retriever struct {
	index      store.Index
	classifier *classify.Classifier
	config     Config
	logger     *slog.Logger
}

func NewWithConfig(index store.Index, classifier *classify.Classifier, config Config, logger *slog.Logger) *Retriever {
	if config.TopK == 0 {
		config.TopK = 5
	}
	if config.TopKPerPlatform == 0 {
		config.TopKPerPlatform = 3
	}
	if config.SimilarityThreshold == 0 {
		config.SimilarityThreshold = 0.7
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Retriever{
		index:      index,
		classifier: classifier,
		config:     config,
		logger:     logger,
	}
}

// Retrieve classifies the query and fetches candidates. Irrelevant queries
// short-circuit without touching the index. When a platform is mentioned the
// index query is filtered to it. Results past the distance threshold are
// dropped; results without a distance are always kept.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]models.RetrievalResult, models.QueryAnalysis) {
	analysis := r.classifier.Classify(query)
	r.logger.Info("query analysis",
		"platform", analysis.Platform,
		"query_type", analysis.QueryType,
		"is_relevant", analysis.IsRelevant)

	if !analysis.IsRelevant {
		return nil, analysis
	}

	var filter store.Filter
	if analysis.Platform != "" {
		filter = store.Filter{"platform": analysis.Platform}
	}

	results, err := r.index.Query(ctx, query, r.config.TopK, filter)
	if err != nil {
		r.logger.Error("index query failed, degrading to empty results", "error", err)
		return nil, analysis
	}

	return r.thresholdFilter(results), analysis
}

// RetrieveForComparison fetches candidates independently for every platform
// the query mentions (all platforms when none is named). The retrieval text
// is the extracted feature phrase when one exists, otherwise the full query.
// A weak match for one platform never excludes or biases another's results.
func (r *Retriever) RetrieveForComparison(ctx context.Context, query string) (map[string][]models.RetrievalResult, models.QueryAnalysis) {
	analysis := r.classifier.ClassifyComparison(query)
	r.logger.Info("comparison query analysis",
		"platforms", analysis.Platforms,
		"feature", analysis.Feature)

	retrievalText := query
	if analysis.Feature != "" {
		retrievalText = analysis.Feature
	}

	comparison := make(map[string][]models.RetrievalResult, len(analysis.Platforms))
	for _, platform := range analysis.Platforms {
		results, err := r.index.Query(ctx, retrievalText, r.config.TopKPerPlatform,
			store.Filter{"platform": platform})
		if err != nil {
			r.logger.Error("index query failed for platform, degrading to empty results",
				"platform", platform, "error", err)
			comparison[platform] = nil
			continue
		}
		comparison[platform] = r.thresholdFilter(results)
	}

	return comparison, analysis
}

func (r *Retriever) thresholdFilter(results []models.RetrievalResult) []models.RetrievalResult {
	kept := make([]models.RetrievalResult, 0, len(results))
	for _, result := range results {
		if result.Distance != nil && *result.Distance > r.config.SimilarityThreshold {
			continue
		}
		kept = append(kept, result)
	}
	return kept
}
