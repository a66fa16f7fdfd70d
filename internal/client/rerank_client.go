package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/summarizer/api/internal/config"
)

// RerankClient reorders retrieved passages by relevance through an NVIDIA
// ranking endpoint. The ranking API is not OpenAI-compatible, so this is a
// plain HTTP client.
type RerankClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	topN       int
}

type rerankRequest struct {
	Model    string       `json:"model"`
	Query    rerankText   `json:"query"`
	Passages []rerankText `json:"passages"`
	Truncate string       `json:"truncate"`
}

type rerankText struct {
	Text string `json:"text"`
}

type rerankResponse struct {
	Rankings []struct {
		Index int     `json:"index"`
		Logit float64 `json:"logit"`
	} `json:"rankings"`
}

// RankedPassage is one passage with its relevance score
type RankedPassage struct {
	Text  string
	Score float64
}

// NewRerankClient creates a reranker client. Returns nil when reranking is
// disabled so callers can treat the reranker as optional.
func NewRerankClient(cfg config.RerankerConfig) *RerankClient {
	if !cfg.Enabled {
		return nil
	}

	topN := cfg.TopN
	if topN <= 0 {
		topN = 5
	}

	return &RerankClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		topN:    topN,
	}
}

// IsConfigured returns true if the client has an endpoint to talk to
func (c *RerankClient) IsConfigured() bool {
	return c != nil && c.baseURL != ""
}

// Rerank returns the top-N passages ordered by relevance to the query
func (c *RerankClient) Rerank(ctx context.Context, query string, passages []string) ([]RankedPassage, error) {
	body := rerankRequest{
		Model:    c.model,
		Query:    rerankText{Text: query},
		Truncate: "END",
	}
	for _, p := range passages {
		body.Passages = append(body.Passages, rerankText{Text: p})
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ranking", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rerank API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var rankResp rerankResponse
	if err := json.Unmarshal(respBody, &rankResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	out := make([]RankedPassage, 0, c.topN)
	for i, r := range rankResp.Rankings {
		if i >= c.topN {
			break
		}
		if r.Index < 0 || r.Index >= len(passages) {
			continue
		}
		out = append(out, RankedPassage{Text: passages[r.Index], Score: r.Logit})
	}
	return out, nil
}
