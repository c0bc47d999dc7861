// Package store holds the chunk index implementations. The retrieval
// pipeline only depends on the Index interface; the concrete backends are an
// in-memory bleve index and a pgvector-backed store.
package store

import (
	"context"

	"github.com/xhad/cdpchat/internal/models"
)

// Filter restricts a query to chunks whose metadata matches every entry
// exactly.
type Filter map[string]string

// Index is a nearest-neighbor text search over indexed chunks. Query returns
// an empty slice, not an error, when nothing matches. Implementations are
// safe for concurrent reads; writes happen in offline batch runs with no
// concurrent readers.
type Index interface {
	Add(ctx context.Context, chunks []models.Chunk) error
	Query(ctx context.Context, text string, k int, filter Filter) ([]models.RetrievalResult, error)
}
