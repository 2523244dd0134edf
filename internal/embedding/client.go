// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package embedding

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kinoscope/kinoscope/internal/config"
)

const defaultHTTPTimeout = 30 * time.Second

// HTTPClient talks to an OpenAI-compatible /v1/embeddings endpoint
// (OpenAI itself, Ollama, LocalAI, vLLM all speak this shape).
type HTTPClient struct {
	url    string
	model  string
	dims   int
	client *http.Client
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// NewHTTPClient builds a client for cfg. The URL may point at either
// the server root or the full /v1/embeddings path.
func NewHTTPClient(cfg *config.EmbeddingConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	url := strings.TrimSuffix(cfg.URL, "/")
	if !strings.HasSuffix(url, "/v1/embeddings") {
		url += "/v1/embeddings"
	}
	return &HTTPClient{
		url:    url,
		model:  cfg.Model,
		dims:   cfg.Dimensions,
		client: &http.Client{Timeout: timeout},
	}
}

// Dimensions implements Provider.
func (c *HTTPClient) Dimensions() int { return c.dims }

// Embed implements Provider.
func (c *HTTPClient) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: c.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding endpoint returned %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("embedding endpoint returned no vectors")
	}

	vec := parsed.Data[0].Embedding
	if c.dims > 0 && len(vec) != c.dims {
		return nil, fmt.Errorf("embedding dimension mismatch: got %d, want %d", len(vec), c.dims)
	}
	return vec, nil
}
