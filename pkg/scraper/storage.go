package scraper

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xhad/cdpchat/internal/models"
)

// SaveDocuments writes one JSON file per platform under dir, creating the
// directory if needed.
func SaveDocuments(dir, platform string, documents []models.Document) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding documents: %w", err)
	}

	path := filepath.Join(dir, platform+"_docs.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return nil
}

// LoadDocuments reads a platform's saved documents back from dir.
func LoadDocuments(dir, platform string) ([]models.Document, error) {
	path := filepath.Join(dir, platform+"_docs.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}

	var documents []models.Document
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", path, err)
	}
	return documents, nil
}
