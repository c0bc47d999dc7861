package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	// Validate Index config
	if c.Index.Backend != "bleve" && c.Index.Backend != "pgvector" {
		errors = append(errors, ValidationError{
			Field:   "index.backend",
			Message: "backend must be bleve or pgvector",
		})
	}

	if c.Index.Backend == "pgvector" {
		if c.Index.DatabaseURL == "" {
			errors = append(errors, ValidationError{
				Field:   "index.database_url",
				Message: "database URL is required for the pgvector backend",
			})
		} else if _, err := url.Parse(c.Index.DatabaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "index.database_url",
				Message: "invalid database URL",
			})
		}

		if c.Index.VectorDim < 1 {
			errors = append(errors, ValidationError{
				Field:   "index.vector_dim",
				Message: "vector_dim must be positive",
			})
		}

		if _, err := url.Parse(c.Index.EmbedBaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "index.embed_base_url",
				Message: "invalid embedding base URL",
			})
		}
	}

	// Validate Chunker config
	if c.Chunker.ChunkSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "chunker.chunk_size",
			Message: "chunk_size must be positive",
		})
	}

	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		errors = append(errors, ValidationError{
			Field:   "chunker.chunk_overlap",
			Message: "chunk_overlap must be non-negative and less than chunk_size",
		})
	}

	// Validate Retrieval config
	if c.Retrieval.TopK < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k",
			Message: "top_k must be positive",
		})
	}

	if c.Retrieval.TopKPerPlatform < 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.top_k_per_platform",
			Message: "top_k_per_platform must be positive",
		})
	}

	if c.Retrieval.SimilarityThreshold <= 0 || c.Retrieval.SimilarityThreshold > 1 {
		errors = append(errors, ValidationError{
			Field:   "retrieval.similarity_threshold",
			Message: "similarity_threshold must be in (0, 1]",
		})
	}

	// Validate Scraper config
	if c.Scraper.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Scraper.MaxPages < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.max_pages",
			Message: "max_pages must be positive",
		})
	}

	for platform, docsURL := range c.Scraper.DocsURLs {
		if _, err := url.Parse(docsURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "scraper.docs_urls",
				Message: fmt.Sprintf("invalid docs URL for %s", platform),
			})
		}
	}

	return errors
}
