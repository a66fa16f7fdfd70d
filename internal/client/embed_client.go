package client

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/summarizer/api/internal/config"
)

// EmbedClient produces embeddings through an OpenAI-compatible endpoint
// (NVIDIA NIM and vLLM both expose one).
type EmbedClient struct {
	api       *openai.Client
	model     string
	batchSize int
	vectorDim int
}

// NewEmbedClient creates an embedding client
func NewEmbedClient(cfg config.EmbedderConfig) *EmbedClient {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 16
	}

	return &EmbedClient{
		api:       openai.NewClientWithConfig(apiCfg),
		model:     cfg.Model,
		batchSize: batch,
		vectorDim: cfg.VectorDim,
	}
}

// IsConfigured returns true if an embedding endpoint is set
func (c *EmbedClient) IsConfigured() bool {
	return c.model != ""
}

// VectorDim returns the dimensionality of produced embeddings
func (c *EmbedClient) VectorDim() int {
	return c.vectorDim
}

// Embed returns one embedding per input text, batching requests to the
// configured batch size.
func (c *EmbedClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Model: openai.EmbeddingModel(c.model),
			Input: texts[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != end-start {
			return nil, fmt.Errorf("embedding count mismatch: got %d, want %d", len(resp.Data), end-start)
		}

		for _, d := range resp.Data {
			out = append(out, d.Embedding)
		}
	}

	return out, nil
}
