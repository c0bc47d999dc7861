package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve"
	"github.com/blevesearch/bleve/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/search/query"

	"github.com/xhad/cdpchat/internal/models"
)

// bleveChunk is the shape bleve indexes. Filterable metadata fields use the
// keyword analyzer so term queries match them exactly.
type bleveChunk struct {
	Content  string `json:"content"`
	Title    string `json:"title"`
	Platform string `json:"platform"`
	DocType  string `json:"doc_type"`
}

// BleveIndex is a mem-only full-text index over chunks. Bleve only stores the
// indexed fields, so the full chunk (metadata included) is kept in a side map
// keyed by chunk ID and rehydrated on query.
type BleveIndex struct {
	index  bleve.Index
	mu     sync.RWMutex
	chunks map[string]models.Chunk
}

func NewBleveIndex() (*BleveIndex, error) {
	chunkMapping := bleve.NewDocumentMapping()
	chunkMapping.AddFieldMappingsAt("content", bleve.NewTextFieldMapping())
	chunkMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())

	platformField := bleve.NewTextFieldMapping()
	platformField.Analyzer = keyword.Name
	chunkMapping.AddFieldMappingsAt("platform", platformField)

	docTypeField := bleve.NewTextFieldMapping()
	docTypeField.Analyzer = keyword.Name
	chunkMapping.AddFieldMappingsAt("doc_type", docTypeField)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = chunkMapping

	index, err := bleve.NewMemOnly(indexMapping)
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &BleveIndex{
		index:  index,
		chunks: make(map[string]models.Chunk),
	}, nil
}

func (b *BleveIndex) Add(ctx context.Context, chunks []models.Chunk) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, chunk := range chunks {
		doc := bleveChunk{
			Content:  chunk.Content,
			Title:    chunk.Metadata.Title,
			Platform: chunk.Metadata.Platform,
			DocType:  chunk.Metadata.DocType,
		}
		if err := b.index.Index(chunk.ChunkID, doc); err != nil {
			return fmt.Errorf("failed to index chunk %s: %w", chunk.ChunkID, err)
		}
		b.chunks[chunk.ChunkID] = chunk
	}

	return nil
}

// Query runs a match query over chunk content, optionally conjoined with
// exact-match term filters on metadata fields. Bleve scores are higher-is-
// better; they are normalized per query so the best hit gets distance 0 and
// lower-is-closer ordering holds for callers.
func (b *BleveIndex) Query(ctx context.Context, text string, k int, filter Filter) ([]models.RetrievalResult, error) {
	match := bleve.NewMatchQuery(text)
	match.SetField("content")

	var q query.Query = match
	if len(filter) > 0 {
		conjuncts := []query.Query{match}
		for field, value := range filter {
			term := bleve.NewTermQuery(value)
			term.SetField(field)
			conjuncts = append(conjuncts, term)
		}
		q = bleve.NewConjunctionQuery(conjuncts...)
	}

	req := bleve.NewSearchRequestOptions(q, k, 0, false)
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	var maxScore float64
	if len(res.Hits) > 0 {
		maxScore = res.Hits[0].Score
	}

	results := make([]models.RetrievalResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		chunk, ok := b.chunks[hit.ID]
		if !ok {
			continue
		}
		distance := 0.0
		if maxScore > 0 {
			distance = 1.0 - hit.Score/maxScore
		}
		results = append(results, models.RetrievalResult{
			Content:  chunk.Content,
			Metadata: chunk.Metadata,
			ID:       hit.ID,
			Distance: &distance,
		})
	}

	return results, nil
}

// Len returns the number of indexed chunks.
func (b *BleveIndex) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.chunks)
}
