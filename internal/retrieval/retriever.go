// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package retrieval runs the ordered candidate-retrieval tiers against
// the metadata provider. Tiers execute sequentially because later
// tiers read state derived from earlier ones; a tier's failure is
// logged and contributes zero candidates instead of aborting the
// request.
package retrieval

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/metrics"
)

// Retriever coordinates the retrieval tiers.
type Retriever struct {
	provider media.Provider
	cfg      *config.SearchConfig
	logger   zerolog.Logger
}

// request carries the raw query alongside its parsed intent and the
// caller's per-request options. The text and similar-to tiers search
// on the raw text; everything else keys off the intent.
type request struct {
	query string
	it    *intent.Intent
	opts  media.QueryOptions
}

// tier is one retrieval strategy. enabled decides whether the tier
// runs for this request; run returns the tier's candidates or an error
// the coordinator downgrades to zero candidates.
type tier struct {
	name    string
	enabled func(req request) bool
	run     func(ctx context.Context, req request) ([]media.CandidateResult, error)
}

// New builds a retriever over provider.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(provider media.Provider, cfg *config.SearchConfig, logger zerolog.Logger) *Retriever {
	return &Retriever{
		provider: provider,
		cfg:      cfg,
		logger:   logger.With().Str("component", "retrieval").Logger(),
	}
}

// Retrieve runs every applicable tier in priority order and returns
// the concatenated candidate list. The fallback tier runs only when
// all prior tiers together produced nothing; if even the fallback
// comes back empty the caller receives an empty slice and decides how
// to report it.
func (r *Retriever) Retrieve(ctx context.Context, query string, it *intent.Intent, opts media.QueryOptions) []media.CandidateResult {
	req := request{query: query, it: it, opts: opts}

	tiers := []tier{
		{
			name:    "person",
			enabled: func(req request) bool { return req.it.Metadata.DetectedPerson != "" },
			run:     r.personTier,
		},
		{
			name:    "award",
			enabled: func(req request) bool { return req.it.Metadata.DetectedAward != "" },
			run:     r.awardTier,
		},
		{
			name:    "trending",
			enabled: func(req request) bool { return req.it.Metadata.IsTrending },
			run:     r.trendingTier,
		},
		{
			name:    "recency",
			enabled: func(req request) bool { return req.it.Metadata.IsRecent },
			run:     r.recencyTier,
		},
		{
			// The person tier owns the query text when a person was
			// detected; running free-text search on top of it would
			// surface biography titles over the filmography.
			name:    "text",
			enabled: func(req request) bool { return req.it.Metadata.DetectedPerson == "" },
			run:     r.textTier,
		},
		{
			name:    "similar",
			enabled: func(req request) bool { return len(req.it.SimilarTo) > 0 },
			run:     r.similarTier,
		},
		{
			name:    "genre",
			enabled: func(req request) bool { return len(req.it.GenreIDs) > 0 },
			run:     r.genreTier,
		},
	}

	var out []media.CandidateResult
	for _, t := range tiers {
		if !t.enabled(req) {
			continue
		}
		out = append(out, r.runTier(ctx, t, req)...)
	}

	if len(out) == 0 {
		metrics.FallbackActivations.Inc()
		r.logger.Info().Str("query", query).Msg("All tiers empty, activating fallback")
		out = r.runTier(ctx, tier{name: "fallback", run: r.fallbackTier}, req)
	}

	return out
}

func (r *Retriever) runTier(ctx context.Context, t tier, req request) []media.CandidateResult {
	candidates, err := t.run(ctx, req)
	if err != nil {
		metrics.TierFailures.WithLabelValues(t.name).Inc()
		r.logger.Warn().Err(err).Str("tier", t.name).Msg("Tier failed, treating as zero candidates")
		return nil
	}
	metrics.TierCandidates.WithLabelValues(t.name).Add(float64(len(candidates)))
	r.logger.Debug().Str("tier", t.name).Int("candidates", len(candidates)).Msg("Tier complete")
	return candidates
}

// positional returns a score that starts at base and decays per list
// position, never dropping below floor.
func positional(base, decay, floor float64, position int) float64 {
	score := base - decay*float64(position)
	if score < floor {
		return floor
	}
	return score
}
