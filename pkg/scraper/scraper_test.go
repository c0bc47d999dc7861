package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/cdpchat/internal/models"
)

func TestScraperConfig(t *testing.T) {
	config := ScraperConfig{
		BaseURL:        "https://segment.com/docs/",
		Platform:       models.PlatformSegment,
		MaxDepth:       5,
		RateLimit:      1.0,
		IgnorePatterns: []string{"/ignore/", "private"},
		Timeout:        10 * time.Second,
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)
	assert.Equal(t, config.BaseURL, s.config.BaseURL)
	assert.Equal(t, config.MaxDepth, s.config.MaxDepth)
	assert.Equal(t, 200, s.config.MaxPages)
}

func TestShouldProcessURL(t *testing.T) {
	config := ScraperConfig{
		BaseURL:        "https://docs.lytics.com/",
		Platform:       models.PlatformLytics,
		IgnorePatterns: []string{"/ignore/", "private"},
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://docs.lytics.com/audiences/", true},
		{"https://docs.lytics.com/page.html", true},
		{"https://docs.lytics.com/ignore/page.html", false},
		{"https://other-domain.com/page.html", false},
		{"https://docs.lytics.com/file.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			result := s.shouldProcessURL(tt.url)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestScrapeWithMockServer(t *testing.T) {
	// Create a mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html>
				<head><title>Sources Overview</title></head>
				<body>
					<main>
						<h1>Connections</h1>
						<h2>Sources</h2>
						<p>Sources send data into your workspace.</p>
						<a href="/page2.html">Link</a>
					</main>
				</body>
			</html>
		`))
	}))
	defer server.Close()

	config := ScraperConfig{
		BaseURL:   server.URL,
		Platform:  models.PlatformSegment,
		MaxDepth:  1,
		RateLimit: 10,
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)

	docs, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	require.NotEmpty(t, docs)

	doc := docs[0]
	assert.Equal(t, server.URL, doc.URL)
	assert.Equal(t, "Sources Overview", doc.Title)
	assert.Equal(t, models.PlatformSegment, doc.Platform)
	assert.Contains(t, doc.Content, "Sources send data into your workspace")

	require.Len(t, doc.Headings, 2)
	assert.Equal(t, models.Heading{Level: 1, Text: "Connections"}, doc.Headings[0])
	assert.Equal(t, models.Heading{Level: 2, Text: "Sources"}, doc.Headings[1])
}

func TestScrapeRespectsMaxPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>Page</title></head><body><main>
			<a href="/a.html">a</a><a href="/b.html">b</a><a href="/c.html">c</a>
		</main></body></html>`))
	}))
	defer server.Close()

	s, err := NewWithConfig(ScraperConfig{
		BaseURL:   server.URL,
		Platform:  models.PlatformZeotap,
		MaxDepth:  3,
		MaxPages:  2,
		RateLimit: 100,
	})
	require.NoError(t, err)

	docs, err := s.Scrape(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestSaveAndLoadDocuments(t *testing.T) {
	dir := t.TempDir()

	docs := []models.Document{
		{
			URL:      "https://docs.mparticle.com/inputs",
			Title:    "Inputs Overview",
			Content:  "Inputs collect event data.",
			Headings: []models.Heading{{Level: 1, Text: "Inputs"}},
			Platform: models.PlatformMParticle,
		},
	}

	require.NoError(t, SaveDocuments(dir, models.PlatformMParticle, docs))

	loaded, err := LoadDocuments(dir, models.PlatformMParticle)
	require.NoError(t, err)
	assert.Equal(t, docs, loaded)
}

func TestLoadDocumentsMissingFile(t *testing.T) {
	_, err := LoadDocuments(t.TempDir(), models.PlatformSegment)
	assert.Error(t, err)
}
