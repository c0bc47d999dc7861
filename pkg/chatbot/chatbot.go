// Package chatbot wires the full question-answering pipeline: preprocessing,
// comparison routing, retrieval, ranking and response assembly. One Ask call
// is one synchronous pass; the pipeline holds no per-request state.
package chatbot

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/ranker"
	"github.com/xhad/cdpchat/pkg/responder"
	"github.com/xhad/cdpchat/pkg/retriever"
)

const (
	msgEmptyQuery = "Please provide a valid question."
	msgIrrelevant = "I'm sorry, but your question doesn't seem to be related to the CDP platforms I support. " +
		"I can answer questions about Segment, mParticle, Lytics, and Zeotap."
	msgNoResults = "I couldn't find information related to your question. " +
		"Could you try rephrasing or asking a different question about one of the CDP platforms?"
	msgNoComparisonResults = "I couldn't find enough information to compare the CDP platforms based on your question. " +
		"Could you try asking a more specific comparison question?"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	specialsPattern   = regexp.MustCompile(`[^\w\s?.]`)
)

// comparisonMarkers route a query into the comparison flow before any other
// analysis happens.
var comparisonMarkers = []string{"compare", "vs", "versus", "difference between"}

type Chatbot struct {
	retriever  *retriever.Retriever
	ranker     *ranker.Ranker
	comparison *ranker.ComparisonProcessor
	responder  *responder.Responder
	logger     *slog.Logger
}

func New(r *retriever.Retriever, logger *slog.Logger) *Chatbot {
	if logger == nil {
		logger = slog.Default()
	}
	rk := ranker.New()
	return &Chatbot{
		retriever:  r,
		ranker:     rk,
		comparison: ranker.NewComparisonProcessor(rk),
		responder:  responder.New(),
		logger:     logger,
	}
}

// Ask runs the pipeline end to end and returns the structured response. The
// Message field of the result is the final user-visible text.
func (c *Chatbot) Ask(ctx context.Context, query string) models.QueryResponse {
	resp := c.Process(ctx, query)
	resp.Message = c.responder.Generate(resp)
	return resp
}

// Process runs classification, retrieval and ranking without rendering the
// final text. Callers that want the raw structured results use this directly.
func (c *Chatbot) Process(ctx context.Context, query string) models.QueryResponse {
	processed := Preprocess(query)
	if processed == "" {
		return models.QueryResponse{
			Type:     models.ResponseTypeError,
			Query:    query,
			Message:  msgEmptyQuery,
			Analysis: models.QueryAnalysis{IsRelevant: false},
		}
	}

	if isComparisonQuery(processed) {
		return c.processComparison(ctx, processed)
	}
	return c.processRegular(ctx, processed)
}

func (c *Chatbot) processRegular(ctx context.Context, query string) models.QueryResponse {
	results, analysis := c.retriever.Retrieve(ctx, query)

	if !analysis.IsRelevant {
		return models.QueryResponse{
			Type:     models.ResponseTypeIrrelevant,
			Query:    query,
			Message:  msgIrrelevant,
			Analysis: analysis,
		}
	}

	if len(results) == 0 {
		return models.QueryResponse{
			Type:     models.ResponseTypeNoResults,
			Query:    query,
			Message:  msgNoResults,
			Analysis: analysis,
		}
	}

	ranked := c.ranker.Rank(results, query)
	filtered := c.ranker.Filter(ranked)

	return models.QueryResponse{
		Type:     models.ResponseTypeAnswer,
		Query:    query,
		Analysis: analysis,
		Results:  filtered,
	}
}

func (c *Chatbot) processComparison(ctx context.Context, query string) models.QueryResponse {
	comparison, analysis := c.retriever.RetrieveForComparison(ctx, query)

	populated := false
	for _, results := range comparison {
		if len(results) > 0 {
			populated = true
			break
		}
	}
	if !populated {
		return models.QueryResponse{
			Type:     models.ResponseTypeNoResults,
			Query:    query,
			Message:  msgNoComparisonResults,
			Analysis: analysis,
		}
	}

	processed := c.comparison.Process(comparison, query, analysis.Feature)

	return models.QueryResponse{
		Type:       models.ResponseTypeComparison,
		Query:      query,
		Analysis:   analysis,
		Comparison: processed,
	}
}

// Preprocess normalizes a raw question: lowercase, collapsed whitespace, and
// everything stripped except word characters, spaces, question marks and
// periods.
func Preprocess(query string) string {
	query = strings.ToLower(query)
	query = strings.TrimSpace(whitespacePattern.ReplaceAllString(query, " "))
	return specialsPattern.ReplaceAllString(query, "")
}

func isComparisonQuery(query string) bool {
	for _, marker := range comparisonMarkers {
		if strings.Contains(query, marker) {
			return true
		}
	}
	return false
}
