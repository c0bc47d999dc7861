package ranker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/ranker"
)

func floatPtr(f float64) *float64 { return &f }

func TestRankPerfectScore(t *testing.T) {
	r := ranker.New()

	// Content that is almost entirely query keywords, a matching how-to doc
	// type, and keyword-saturated title/headings push every signal to 1.0.
	results := []models.RetrievalResult{
		{
			ID:       "segment_0",
			Content:  "source setup source setup source setup",
			Distance: floatPtr(0.0),
			Metadata: models.Metadata{
				Platform:         models.PlatformSegment,
				Title:            "source setup",
				DocType:          models.DocTypeHowTo,
				HeadingHierarchy: []string{"source setup", "source setup"},
			},
		},
	}

	ranked := r.Rank(results, "how to do source setup")
	require.Len(t, ranked, 1)

	assert.Equal(t, 1.0, ranked[0].ContentScore)
	assert.InDelta(t, 1.0, ranked[0].MetadataScore, 1e-9)
	assert.InDelta(t, 1.0, ranked[0].FinalScore, 1e-9)
}

func TestRankNilDistanceNeverPenalized(t *testing.T) {
	r := ranker.New()

	results := []models.RetrievalResult{
		{ID: "a", Content: "audience targeting criteria", Distance: nil},
		{ID: "b", Content: "audience targeting criteria", Distance: floatPtr(0.0)},
	}

	ranked := r.Rank(results, "audience targeting")
	require.Len(t, ranked, 2)

	// Identical content, nil vs zero distance: the distance term must be
	// equal, so the final scores match exactly.
	assert.Equal(t, ranked[0].FinalScore, ranked[1].FinalScore)
}

func TestRankSortsByFinalScore(t *testing.T) {
	r := ranker.New()

	results := []models.RetrievalResult{
		{ID: "far", Content: "unrelated text about nothing in particular", Distance: floatPtr(0.9)},
		{ID: "near", Content: "identity resolution merges user profiles", Distance: floatPtr(0.1)},
	}

	ranked := r.Rank(results, "identity resolution")
	require.Len(t, ranked, 2)
	assert.Equal(t, "near", ranked[0].ID)
	assert.Greater(t, ranked[0].FinalScore, ranked[1].FinalScore)
}

func TestRankEmptyContentScoresZero(t *testing.T) {
	r := ranker.New()

	ranked := r.Rank([]models.RetrievalResult{{ID: "empty", Content: "", Distance: floatPtr(0.2)}}, "identity resolution")
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].ContentScore)
}

func TestFilterThreshold(t *testing.T) {
	r := ranker.New()

	results := []models.RetrievalResult{
		{ID: "keep", Content: "alpha content", FinalScore: 0.31},
		{ID: "edge", Content: "bravo content", FinalScore: 0.3},
		{ID: "drop", Content: "charlie content", FinalScore: 0.29},
	}

	filtered := r.Filter(results)
	require.Len(t, filtered, 2)
	assert.Equal(t, "keep", filtered[0].ID)
	assert.Equal(t, "edge", filtered[1].ID)
}

func TestFilterDeduplicatesByContentPrefix(t *testing.T) {
	r := ranker.New()

	long := "This passage explains how sources are configured in the workspace settings page of the platform, including keys."
	require.Greater(t, len(long), 100)

	results := []models.RetrievalResult{
		{ID: "hi", Content: long + " Variant one tail.", FinalScore: 0.9},
		{ID: "lo", Content: long + " Variant two tail.", FinalScore: 0.5},
		{ID: "other", Content: "Completely different passage about audiences.", FinalScore: 0.7},
	}

	filtered := r.Filter(results)
	require.Len(t, filtered, 2)

	// The higher-scored duplicate wins; first-100-chars fingerprints never
	// collide within the survivors.
	assert.Equal(t, "hi", filtered[0].ID)
	assert.Equal(t, "other", filtered[1].ID)
}

func TestFilterDedupMultibyteBoundary(t *testing.T) {
	r := ranker.New()

	// 34 three-byte runes (102 bytes): the 100-byte fingerprint cut lands
	// mid-rune and must back up to a boundary instead of hashing a torn rune.
	shared := strings.Repeat("日", 34)
	results := []models.RetrievalResult{
		{ID: "hi", Content: shared + " first tail", FinalScore: 0.9},
		{ID: "lo", Content: shared + " second tail", FinalScore: 0.5},
	}

	filtered := r.Filter(results)
	require.Len(t, filtered, 1)
	assert.Equal(t, "hi", filtered[0].ID)
}

func TestComparisonProcessorIndependentPerPlatform(t *testing.T) {
	p := ranker.NewComparisonProcessor(nil)

	comparison := map[string][]models.RetrievalResult{
		models.PlatformSegment: {
			{ID: "segment_0", Content: "identity resolution merges profiles across devices", Distance: floatPtr(0.1)},
		},
		models.PlatformLytics: {
			{ID: "lytics_0", Content: "completely unrelated release notes text", Distance: floatPtr(0.95)},
		},
		models.PlatformZeotap: {},
	}

	processed := p.Process(comparison, "compare identity resolution", "identity resolution")

	// Every input platform keeps an entry, even when filtering empties it.
	require.Len(t, processed, 3)
	assert.NotEmpty(t, processed[models.PlatformSegment])
	assert.Empty(t, processed[models.PlatformZeotap])

	// A weak platform never excludes a strong one.
	assert.Equal(t, "segment_0", processed[models.PlatformSegment][0].ID)
}
