package models

// Supported CDP platforms. Chunk metadata and query classification both key
// off these names, so they are the canonical lowercase spellings.
const (
	PlatformSegment   = "segment"
	PlatformMParticle = "mparticle"
	PlatformLytics    = "lytics"
	PlatformZeotap    = "zeotap"
)

// AllPlatforms returns the platform names in their fixed comparison order.
func AllPlatforms() []string {
	return []string{PlatformSegment, PlatformMParticle, PlatformLytics, PlatformZeotap}
}

// Heading is one document heading with its level (1 for h1, 2 for h2, ...).
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Document is one scraped documentation page. Documents are immutable once
// scraped; the chunker is their only consumer.
type Document struct {
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Headings []Heading `json:"headings"`
	Platform string    `json:"platform"`
}
