package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hyperjump/bunsho/pkg/utils"
)

// OllamaEmbedder produces embeddings through an Ollama server's
// /api/embeddings endpoint.
type OllamaEmbedder struct {
	baseURL    string
	model      string
	dimensions int
	cache      *Cache
	client     *http.Client
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewOllamaEmbedder creates an Ollama-backed embedder. dimensions is
// advisory: the server decides the actual vector size and Dimensions reports
// the configured value until the first embedding confirms it.
func NewOllamaEmbedder(baseURL, model string, dimensions, cacheSize int) *OllamaEmbedder {
	return &OllamaEmbedder{
		baseURL:    baseURL,
		model:      model,
		dimensions: dimensions,
		cache:      NewCache(cacheSize),
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

// Embed requests an embedding from Ollama and normalizes it to unit length.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string, isQuery bool) ([]float32, error) {
	input := prefixed(text, isQuery)
	if cached, ok := e.cache.Get(input); ok {
		return cached, nil
	}

	body, err := json.Marshal(ollamaEmbeddingRequest{Model: e.model, Prompt: input})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embedding error: status %d, body: %s", resp.StatusCode, string(msg))
	}

	var parsed ollamaEmbeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding for model %q", e.model)
	}

	embedding := make([]float32, len(parsed.Embedding))
	for i, v := range parsed.Embedding {
		embedding[i] = float32(v)
	}
	utils.NormalizeL2(embedding)

	e.dimensions = len(embedding)
	e.cache.Set(input, embedding)
	return embedding, nil
}

// EmbedBatch calls Embed for each text.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string, isQuery bool) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text, isQuery)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for OllamaEmbedder.
func (e *OllamaEmbedder) Close() error {
	return nil
}
