// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package vector

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/embedding"
	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/metrics"
)

// Searcher embeds a query and returns semantically similar catalog
// content. Embedding or index failures degrade to an empty result
// rather than failing the search.
type Searcher struct {
	index    *Index
	embedder embedding.Provider
	topK     int
	logger   zerolog.Logger
}

// NewSearcher wires a searcher over index and embedder.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSearcher(index *Index, embedder embedding.Provider, topK int, logger zerolog.Logger) *Searcher {
	if topK <= 0 {
		topK = 10
	}
	return &Searcher{
		index:    index,
		embedder: embedder,
		topK:     topK,
		logger:   logger.With().Str("component", "vector").Logger(),
	}
}

// Search returns candidates ordered by similarity, best first. A
// failed embedding yields an empty slice, never an error; retrieval
// tiers remain the authoritative source and semantic hits are a
// bonus signal.
func (s *Searcher) Search(ctx context.Context, query string) []media.CandidateResult {
	start := time.Now()
	defer func() {
		metrics.VectorSearchDuration.Observe(time.Since(start).Seconds())
	}()

	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		metrics.EmbeddingFailures.Inc()
		s.logger.Warn().Err(err).Str("query", query).Msg("Embedding failed, skipping vector search")
		return nil
	}

	neighbors := s.index.Search(vec, s.topK)
	out := make([]media.CandidateResult, 0, len(neighbors))
	for _, n := range neighbors {
		out = append(out, media.CandidateResult{
			Content:         n.Content,
			SimilarityScore: n.Similarity,
			MatchReasons:    []string{"Semantic similarity"},
		})
	}
	return out
}

// Seed embeds each item and inserts it into the index. Individual
// failures are logged and skipped so a flaky embedding endpoint does
// not abort catalog indexing.
func Seed(ctx context.Context, ix *Index, embedder embedding.Provider, items []media.Content) int {
	logger := logging.Ctx(ctx).With().Str("component", "vector").Logger()

	indexed := 0
	for _, item := range items {
		if ctx.Err() != nil {
			return indexed
		}
		vec, err := embedder.Embed(ctx, embeddingText(item))
		if err != nil {
			metrics.EmbeddingFailures.Inc()
			logger.Warn().Err(err).Str("title", item.Title).Msg("Failed to embed content")
			continue
		}
		if err := ix.Upsert(item, vec); err != nil {
			logger.Warn().Err(err).Str("title", item.Title).Msg("Failed to index content")
			continue
		}
		indexed++
	}

	logger.Debug().Int("indexed", indexed).Int("total", len(items)).Msg("Seeded vector index")
	return indexed
}

// embeddingText builds the text embedded for a piece of content.
// Title and overview carry the semantic signal.
func embeddingText(c media.Content) string {
	var sb strings.Builder
	sb.WriteString(c.Title)
	if c.Overview != "" {
		sb.WriteString(". ")
		sb.WriteString(c.Overview)
	}
	return sb.String()
}
