package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, embedding []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var payload struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotEmpty(t, payload.Model)
		assert.NotEmpty(t, payload.Prompt)

		json.NewEncoder(w).Encode(map[string]interface{}{"embedding": embedding})
	}))
}

func TestEmbed(t *testing.T) {
	ctx := context.Background()

	t.Run("returns vector from server response", func(t *testing.T) {
		srv := newTestServer(t, []float32{0.1, 0.2, 0.3})
		defer srv.Close()

		e := NewTextEmbedder(srv.URL, "nomic-embed-text")
		vec, err := e.Embed(ctx, "coffee at Starbucks")
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec.Slice())
	})

	t.Run("empty text rejected before any request", func(t *testing.T) {
		e := NewTextEmbedder("http://localhost:1", "nomic-embed-text")
		_, err := e.Embed(ctx, "   ")
		assert.Error(t, err)
	})

	t.Run("server error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		e := NewTextEmbedder(srv.URL, "missing-model")
		_, err := e.Embed(ctx, "coffee")
		assert.ErrorContains(t, err, "ollama API error")
	})

	t.Run("empty embedding rejected", func(t *testing.T) {
		srv := newTestServer(t, []float32{})
		defer srv.Close()

		e := NewTextEmbedder(srv.URL, "nomic-embed-text")
		_, err := e.Embed(ctx, "coffee")
		assert.ErrorContains(t, err, "empty embedding")
	})
}

func TestEmbedBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("embeds each text", func(t *testing.T) {
		srv := newTestServer(t, []float32{0.4, 0.5})
		defer srv.Close()

		e := NewTextEmbedder(srv.URL, "nomic-embed-text")
		vecs, err := e.EmbedBatch(ctx, []string{"coffee", "lunch", "hike"})
		require.NoError(t, err)
		require.Len(t, vecs, 3)
		for _, v := range vecs {
			assert.Equal(t, []float32{0.4, 0.5}, v.Slice())
		}
	})

	t.Run("empty input returns nil", func(t *testing.T) {
		e := NewTextEmbedder("", "")
		vecs, err := e.EmbedBatch(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, vecs)
	})
}
