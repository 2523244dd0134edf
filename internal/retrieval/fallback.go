// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package retrieval

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kinoscope/kinoscope/internal/media"
)

// Fallback scores sit below every real tier so fallback content never
// outranks a genuine match after fusion.
const (
	fallbackTrendingBase = 0.75
	fallbackRatedBase    = 0.70
	fallbackDecay        = 0.01
	fallbackFloor        = 0.5
	fallbackRatingMin    = 7.0
	fallbackVotesMin     = 1000
)

// fallbackTier is the non-emptiness guarantee. It fans out to
// trending, top-rated movies, and top-rated shows concurrently and
// returns whatever subset succeeded. Sub-fetch failures are logged
// here rather than propagated; an entirely empty return is possible
// only when all three fetches fail.
func (r *Retriever) fallbackTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	var trending, movies, shows []media.Content

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		trending, err = r.provider.Trending(gctx, media.MediaTypeAll, media.TrendingWeek)
		if err != nil {
			r.logger.Warn().Err(err).Msg("Fallback trending fetch failed")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		movies, err = r.provider.Discover(gctx, media.DiscoverFilter{
			Type:      media.MediaTypeMovie,
			RatingMin: fallbackRatingMin,
			VotesMin:  fallbackVotesMin,
			SortBy:    "popularity.desc",
			Region:    req.opts.Region,
		})
		if err != nil {
			r.logger.Warn().Err(err).Msg("Fallback movie fetch failed")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		shows, err = r.provider.Discover(gctx, media.DiscoverFilter{
			Type:      media.MediaTypeTV,
			RatingMin: fallbackRatingMin,
			VotesMin:  fallbackVotesMin,
			SortBy:    "popularity.desc",
			Region:    req.opts.Region,
		})
		if err != nil {
			r.logger.Warn().Err(err).Msg("Fallback show fetch failed")
		}
		return nil
	})
	_ = g.Wait()

	var out []media.CandidateResult
	for i, c := range trending {
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(fallbackTrendingBase, fallbackDecay, fallbackFloor, i),
			MatchReasons:   []string{"Popular & Trending"},
		})
	}
	for i, c := range movies {
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(fallbackRatedBase, fallbackDecay, fallbackFloor, i),
			MatchReasons:   []string{"Highly rated & Popular"},
		})
	}
	for i, c := range shows {
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(fallbackRatedBase, fallbackDecay, fallbackFloor, i),
			MatchReasons:   []string{"Highly rated & Popular"},
		})
	}
	return out, nil
}
