package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xhad/cdpchat/internal/models"
	"github.com/xhad/cdpchat/pkg/chatbot"
	"github.com/xhad/cdpchat/pkg/classify"
	"github.com/xhad/cdpchat/pkg/retriever"
	"github.com/xhad/cdpchat/pkg/store"
	"github.com/xhad/cdpchat/server"
)

func floatPtr(f float64) *float64 { return &f }

type stubIndex struct {
	results []models.RetrievalResult
}

func (s *stubIndex) Add(ctx context.Context, chunks []models.Chunk) error { return nil }

func (s *stubIndex) Query(ctx context.Context, text string, k int, filter store.Filter) ([]models.RetrievalResult, error) {
	return s.results, nil
}

func newTestServer(idx store.Index) *server.Server {
	r := retriever.NewWithConfig(idx, classify.New(nil), retriever.Config{}, nil)
	bot := chatbot.New(r, nil)
	return server.New(server.Config{}, bot, nil)
}

func postChat(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	idx := &stubIndex{
		results: []models.RetrievalResult{
			{
				ID:       "segment_0",
				Content:  "Sources send data from your apps into the Segment workspace for routing.",
				Distance: floatPtr(0.1),
				Metadata: models.Metadata{
					Platform: models.PlatformSegment,
					Title:    "Sources",
					URL:      "https://segment.com/docs/sources/",
				},
			},
		},
	}
	srv := newTestServer(idx)

	rec := postChat(t, srv.Handler(), `{"message": "what is a source in segment"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "text", resp.Response.Type)
	assert.Contains(t, resp.Response.Content, "Here's information about that from Segment")
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.MessageID)
}

func TestChatEndpointPreservesConversationID(t *testing.T) {
	srv := newTestServer(&stubIndex{})

	rec := postChat(t, srv.Handler(), `{"message": "how do audiences work", "conversation_id": "conv-42"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp server.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "conv-42", resp.ConversationID)
}

func TestChatEndpointMissingMessage(t *testing.T) {
	srv := newTestServer(&stubIndex{})

	for _, body := range []string{`{}`, `{"conversation_id": "x"}`, `not json`} {
		rec := postChat(t, srv.Handler(), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&stubIndex{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&stubIndex{})

	// Generate one observation so the counter shows up.
	postChat(t, srv.Handler(), `{"message": "how do audiences work"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "cdpchat_chat_queries_total"))
}
