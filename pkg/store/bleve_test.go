package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/store"
)

func testChunks() []models.Chunk {
	return []models.Chunk{
		{
			ChunkID: "segment_0",
			Content: "To create a source in Segment, open the workspace and click Add Source.",
			Metadata: models.Metadata{
				Platform: models.PlatformSegment,
				Title:    "How to add a source",
				URL:      "https://segment.com/docs/sources/",
				DocType:  models.DocTypeHowTo,
			},
		},
		{
			ChunkID: "mparticle_0",
			Content: "mParticle inputs collect event data from your apps and forward it downstream.",
			Metadata: models.Metadata{
				Platform: models.PlatformMParticle,
				Title:    "Inputs Overview",
				URL:      "https://docs.mparticle.com/inputs",
				DocType:  models.DocTypeOverview,
			},
		},
		{
			ChunkID: "lytics_0",
			Content: "Lytics audiences group users by behavioral criteria for campaign targeting.",
			Metadata: models.Metadata{
				Platform: models.PlatformLytics,
				Title:    "Audience Guide",
				URL:      "https://docs.lytics.com/audiences",
				DocType:  models.DocTypeHowTo,
			},
		},
	}
}

func TestBleveAddAndQuery(t *testing.T) {
	idx, err := store.NewBleveIndex()
	require.NoError(t, err)

	require.NoError(t, idx.Add(context.Background(), testChunks()))
	assert.Equal(t, 3, idx.Len())

	results, err := idx.Query(context.Background(), "create a source", 5, nil)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	top := results[0]
	assert.Equal(t, "segment_0", top.ID)
	assert.Equal(t, models.PlatformSegment, top.Metadata.Platform)
	assert.Equal(t, "How to add a source", top.Metadata.Title)

	// The best hit always gets distance 0; later hits never get a lower one.
	require.NotNil(t, top.Distance)
	assert.Equal(t, 0.0, *top.Distance)
	for i := 1; i < len(results); i++ {
		require.NotNil(t, results[i].Distance)
		assert.GreaterOrEqual(t, *results[i].Distance, *results[i-1].Distance)
	}
}

func TestBlevePlatformFilter(t *testing.T) {
	idx, err := store.NewBleveIndex()
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), testChunks()))

	results, err := idx.Query(context.Background(), "event data", 5,
		store.Filter{"platform": models.PlatformMParticle})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.Equal(t, models.PlatformMParticle, r.Metadata.Platform)
	}
}

func TestBleveNoMatchesIsEmptyNotError(t *testing.T) {
	idx, err := store.NewBleveIndex()
	require.NoError(t, err)
	require.NoError(t, idx.Add(context.Background(), testChunks()))

	results, err := idx.Query(context.Background(), "quantum chromodynamics", 5,
		store.Filter{"platform": models.PlatformZeotap})
	require.NoError(t, err)
	assert.Empty(t, results)
}
