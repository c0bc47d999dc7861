// Package chunker splits cleaned documentation pages into overlapping,
// sentence-aligned chunks and derives the metadata the index stores with
// each one.
package chunker

import (
	"fmt"
	"strings"

	"github.com/xhad/cdpchat/internal/models"
)

type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

type Chunker struct {
	config Config
}

func NewWithConfig(config Config) Chunker {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}

	return Chunker{config: config}
}

// Prepare splits a document into chunks and attaches derived metadata. Chunk
// IDs are "{platform}_{ordinal}" and unique within one indexing run of a
// platform's corpus.
func (c *Chunker) Prepare(doc models.Document) []models.Chunk {
	metadata := deriveMetadata(doc)

	pieces := c.split(doc.Content)
	chunks := make([]models.Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, models.Chunk{
			Content:  piece,
			ChunkID:  fmt.Sprintf("%s_%d", metadata.Platform, i),
			Metadata: metadata,
		})
	}

	return chunks
}

// split greedily accumulates sentences until adding the next one would exceed
// ChunkSize, then closes the chunk and re-seeds the next one with trailing
// sentences whose cumulative length fits inside ChunkOverlap. A single
// sentence longer than ChunkSize still forms its own chunk; sentences are
// never split mid-way.
func (c *Chunker) split(text string) []string {
	sentences := SplitSentences(text)

	var chunks []string
	var current []string
	size := 0

	for _, sentence := range sentences {
		if size+len(sentence) > c.config.ChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))

			// Seed the next chunk with the closed chunk's tail, preserving
			// sentence order.
			var overlap []string
			overlapSize := 0
			for i := len(current) - 1; i >= 0; i-- {
				if overlapSize+len(current[i]) > c.config.ChunkOverlap {
					break
				}
				overlap = append([]string{current[i]}, overlap...)
				overlapSize += len(current[i])
			}
			current = overlap
			size = overlapSize
		}

		current = append(current, sentence)
		size += len(sentence)
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// SplitSentences splits text on sentence-ending punctuation followed by
// whitespace. The trailing fragment is kept even without a terminator.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}
