package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/xhad/cdpchat/internal/models"
)

type PGVectorConfig struct {
	ConnString   string
	TableName    string
	VectorDim    int
	EmbedModel   string
	EmbedBaseURL string
}

// PGVectorStore is the persistent index backend: chunk records in Postgres
// with pgvector embeddings, computed through a local ollama embedding model
// at both indexing and query time.
type PGVectorStore struct {
	config   PGVectorConfig
	pool     *pgxpool.Pool
	embedder *ollama.LLM
}

func NewPGVectorStore(ctx context.Context, config PGVectorConfig) (*PGVectorStore, error) {
	if config.TableName == "" {
		config.TableName = "cdp_chunks"
	}
	if config.VectorDim == 0 {
		config.VectorDim = 768
	}
	if config.EmbedModel == "" {
		config.EmbedModel = "nomic-embed-text:latest"
	}
	if config.EmbedBaseURL == "" {
		config.EmbedBaseURL = "http://localhost:11434"
	}

	embedder, err := ollama.New(
		ollama.WithModel(config.EmbedModel),
		ollama.WithServerURL(config.EmbedBaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	vs := &PGVectorStore{
		config:   config,
		pool:     pool,
		embedder: embedder,
	}

	if err := vs.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return vs, nil
}

func (vs *PGVectorStore) initialize(ctx context.Context) error {
	_, err := vs.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			platform TEXT NOT NULL,
			title TEXT,
			url TEXT,
			doc_type TEXT,
			heading_hierarchy JSONB,
			content TEXT,
			embedding vector(%d)
		)`, vs.config.TableName, vs.config.VectorDim)

	if _, err = vs.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_embedding_idx
		ON %s
		USING ivfflat (embedding vector_cosine_ops)
		WITH (lists = 100)`,
		vs.config.TableName, vs.config.TableName)

	if _, err = vs.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

func (vs *PGVectorStore) Add(ctx context.Context, chunks []models.Chunk) error {
	tx, err := vs.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, platform, title, url, doc_type, heading_hierarchy, content, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			embedding = EXCLUDED.embedding,
			heading_hierarchy = EXCLUDED.heading_hierarchy`,
		vs.config.TableName)

	for _, chunk := range chunks {
		content := sanitizeUTF8(chunk.Content)

		embeddings, err := vs.embedder.CreateEmbedding(ctx, []string{content})
		if err != nil {
			return fmt.Errorf("failed to create embedding for chunk %s: %w", chunk.ChunkID, err)
		}
		if len(embeddings) == 0 {
			return fmt.Errorf("embedder returned no vector for chunk %s", chunk.ChunkID)
		}

		hierarchy, err := json.Marshal(chunk.Metadata.HeadingHierarchy)
		if err != nil {
			return fmt.Errorf("failed to marshal heading hierarchy: %w", err)
		}

		_, err = tx.Exec(ctx, stmt,
			chunk.ChunkID,
			chunk.Metadata.Platform,
			sanitizeUTF8(chunk.Metadata.Title),
			chunk.Metadata.URL,
			chunk.Metadata.DocType,
			hierarchy,
			content,
			pgvector.NewVector(embeddings[0]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ChunkID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Query embeds the text and returns the k nearest chunks by cosine distance,
// optionally restricted by exact-match metadata filters.
func (vs *PGVectorStore) Query(ctx context.Context, text string, k int, filter Filter) ([]models.RetrievalResult, error) {
	embeddings, err := vs.embedder.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}

	args := []interface{}{pgvector.NewVector(embeddings[0]), k}
	var conditions []string
	for field, value := range filter {
		switch field {
		case "platform", "doc_type":
			args = append(args, value)
			conditions = append(conditions, fmt.Sprintf("%s = $%d", field, len(args)))
		default:
			return nil, fmt.Errorf("unsupported filter field: %s", field)
		}
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT id, platform, title, url, doc_type, heading_hierarchy, content,
		       embedding <=> $1 AS distance
		FROM %s
		%s
		ORDER BY embedding <=> $1
		LIMIT $2`,
		vs.config.TableName, where)

	rows, err := vs.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []models.RetrievalResult
	for rows.Next() {
		var r models.RetrievalResult
		var hierarchy []byte
		var distance float64

		err := rows.Scan(
			&r.ID,
			&r.Metadata.Platform,
			&r.Metadata.Title,
			&r.Metadata.URL,
			&r.Metadata.DocType,
			&hierarchy,
			&r.Content,
			&distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if len(hierarchy) > 0 {
			if err := json.Unmarshal(hierarchy, &r.Metadata.HeadingHierarchy); err != nil {
				return nil, fmt.Errorf("failed to unmarshal heading hierarchy: %w", err)
			}
		}

		r.Distance = &distance
		results = append(results, r)
	}

	return results, rows.Err()
}

func (vs *PGVectorStore) Close() {
	if vs.pool != nil {
		vs.pool.Close()
	}
}

func sanitizeUTF8(s string) string {
	if !utf8.ValidString(s) {
		v := make([]rune, 0, len(s))
		for i, r := range s {
			if r == utf8.RuneError {
				_, size := utf8.DecodeRuneInString(s[i:])
				if size == 1 {
					continue
				}
			}
			v = append(v, r)
		}
		return string(v)
	}
	return s
}
