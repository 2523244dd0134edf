// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package embedding turns free text into dense vectors for similarity
// search. Two providers are available: a deterministic in-process
// hashing embedder that needs no external service, and an HTTP client
// for any OpenAI-compatible /v1/embeddings endpoint.
package embedding

import (
	"context"
	"fmt"

	"github.com/kinoscope/kinoscope/internal/config"
)

// Provider produces a fixed-dimension embedding for a piece of text.
type Provider interface {
	// Embed returns the vector for text. Implementations must return
	// vectors of Dimensions() length for every input, including empty
	// strings.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions reports the vector length this provider produces.
	Dimensions() int
}

// New builds the provider selected by cfg.
func New(cfg *config.EmbeddingConfig) (Provider, error) {
	switch cfg.Provider {
	case config.EmbeddingStatic:
		return NewStatic(cfg.Dimensions), nil
	case config.EmbeddingHTTP:
		return NewHTTPClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
