// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package search is the façade over the query pipeline: intent
// parsing, tiered retrieval plus vector search, fusion, and the
// result cache.
package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/cache"
	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/metrics"
	"github.com/kinoscope/kinoscope/internal/ranking"
	"github.com/kinoscope/kinoscope/internal/retrieval"
)

// VectorSearcher is the semantic-search collaborator. It degrades to
// an empty result internally and never fails.
type VectorSearcher interface {
	Search(ctx context.Context, query string) []media.CandidateResult
}

// Engine wires the pipeline together. It owns the result cache; the
// intent cache lives inside the parser.
type Engine struct {
	parser    *intent.Parser
	retriever *retrieval.Retriever
	vector    VectorSearcher
	ranker    *ranking.Ranker
	results   *cache.Tiered[[]media.MergedResult]
	logger    zerolog.Logger
}

// New builds an engine. vector may be nil when no index is configured.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(parser *intent.Parser, retriever *retrieval.Retriever, vector VectorSearcher, ranker *ranking.Ranker, results *cache.Tiered[[]media.MergedResult], logger zerolog.Logger) *Engine {
	return &Engine{
		parser:    parser,
		retriever: retriever,
		vector:    vector,
		ranker:    ranker,
		results:   results,
		logger:    logger.With().Str("component", "search").Logger(),
	}
}

// Search answers a free-text query with a ranked result list. The
// only caller-visible failure mode is an empty list when every
// retrieval source, including the fallback tier, failed; no error is
// returned for that case because the pipeline treats collaborator
// failures as degraded results, not request failures.
func (e *Engine) Search(ctx context.Context, query string, prefGenres []int, opts media.QueryOptions) []media.MergedResult {
	start := time.Now()
	defer func() {
		metrics.SearchDuration.Observe(time.Since(start).Seconds())
	}()

	key := resultCacheKey(query, prefGenres, opts)
	if cached, ok := e.results.Get(ctx, key); ok {
		metrics.SearchRequestsTotal.WithLabelValues("true").Inc()
		return cached
	}
	metrics.SearchRequestsTotal.WithLabelValues("false").Inc()

	it := e.parser.Parse(ctx, query)

	// Retrieval tiers and vector search are independent sources; they
	// run concurrently and both always run to completion.
	var (
		wg         sync.WaitGroup
		tierHits   []media.CandidateResult
		vectorHits []media.CandidateResult
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		tierHits = e.retriever.Retrieve(ctx, query, &it, opts)
	}()
	if e.vector != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vectorHits = e.vector.Search(ctx, query)
		}()
	}
	wg.Wait()

	wantsNew := intent.HasRecencyTerm(strings.ToLower(query))
	merged := e.ranker.Fuse(tierHits, vectorHits, &it, wantsNew, prefGenres)

	if len(merged) == 0 {
		metrics.ExhaustedFallbacks.Inc()
		e.logger.Error().Str("query", query).Str("session_id", opts.SessionID).Msg("Every retrieval source failed, returning empty result set")
		return []media.MergedResult{}
	}

	e.results.Set(ctx, key, merged)
	metrics.SearchResultsReturned.Observe(float64(len(merged)))
	return merged
}

// ParseIntent exposes intent parsing without running retrieval.
func (e *Engine) ParseIntent(ctx context.Context, query string) intent.Intent {
	return e.parser.Parse(ctx, query)
}

// resultCacheKey folds the preference genres and the region-affecting
// options into the key because they change the cached list. The
// session id stays out; it never influences results.
func resultCacheKey(query string, prefGenres []int, opts media.QueryOptions) string {
	key := strings.ToLower(strings.TrimSpace(query))
	if len(prefGenres) > 0 {
		genres := append([]int(nil), prefGenres...)
		sort.Ints(genres)
		parts := make([]string, 0, len(genres))
		for _, g := range genres {
			parts = append(parts, strconv.Itoa(g))
		}
		key += "|" + strings.Join(parts, ",")
	}
	if opts.Region != "" {
		key += "|r=" + strings.ToLower(opts.Region)
	}
	if len(opts.Services) > 0 {
		services := append([]string(nil), opts.Services...)
		sort.Strings(services)
		key += "|s=" + strings.ToLower(strings.Join(services, ","))
	}
	return key
}
