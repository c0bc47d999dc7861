package models

// Document types inferred from page titles at chunking time.
const (
	DocTypeHowTo     = "how-to"
	DocTypeReference = "reference"
	DocTypeOverview  = "overview"
	DocTypeUnknown   = "unknown"
)

// Metadata is the derived, read-only view attached to every chunk of a
// document. HeadingHierarchy holds one breadcrumb string per source heading,
// e.g. "Connections > Sources > Setup".
type Metadata struct {
	Platform         string   `json:"platform"`
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	HeadingHierarchy []string `json:"heading_hierarchy"`
	DocType          string   `json:"doc_type"`
}

// Chunk is a contiguous, size-bounded slice of a document's content. Chunks
// are created once at indexing time and never mutated.
type Chunk struct {
	Content  string   `json:"content"`
	ChunkID  string   `json:"chunk_id"`
	Metadata Metadata `json:"metadata"`
}
