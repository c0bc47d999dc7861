package chunker

import (
	"strings"

	"github.com/xhad/cdpchat/internal/models"
)

func deriveMetadata(doc models.Document) models.Metadata {
	return models.Metadata{
		Platform:         doc.Platform,
		Title:            doc.Title,
		URL:              doc.URL,
		HeadingHierarchy: headingHierarchy(doc.Headings),
		DocType:          docType(doc.Title),
	}
}

// docType guesses the document type from title keywords.
func docType(title string) string {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "how to") || strings.Contains(lower, "guide"):
		return models.DocTypeHowTo
	case strings.Contains(lower, "api") || strings.Contains(lower, "reference"):
		return models.DocTypeReference
	case strings.Contains(lower, "overview") || strings.Contains(lower, "introduction"):
		return models.DocTypeOverview
	default:
		return models.DocTypeUnknown
	}
}

// headingHierarchy walks headings in document order, keeping a stack keyed by
// heading level: a heading at level L truncates the stack to L-1 entries
// before pushing its text. Every heading yields one breadcrumb string.
func headingHierarchy(headings []models.Heading) []string {
	var hierarchy []string
	var stack []string

	for _, h := range headings {
		depth := h.Level - 1
		if depth < 0 {
			depth = 0
		}
		if depth < len(stack) {
			stack = stack[:depth]
		}
		stack = append(stack, h.Text)
		hierarchy = append(hierarchy, strings.Join(stack, " > "))
	}

	return hierarchy
}
