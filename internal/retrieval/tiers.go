// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package retrieval

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/kinoscope/kinoscope/internal/media"
)

const (
	// Text-match scores. The exact and substring grades reward
	// queries that name a title outright.
	textExact     = 1.0
	textSubstring = 0.95
	textTopThree  = 0.85
	textDefault   = 0.8

	// Similar-to scores. The referenced title itself ranks near the
	// top; its neighbors sit below every direct match grade.
	similarRef      = 0.98
	similarNeighbor = 0.75
	similarMaxRefs  = 3

	genreScore = 0.7

	// Rating floors for the award tier. Television awards imply a
	// stricter floor because episodic ratings skew higher.
	awardFilmFloor = 7.5
	awardTVFloor   = 8.0
)

// awardTier discovers highly rated content matching the detected
// award's medium. Emmys are a television award; everything else is
// treated as a film award.
func (r *Retriever) awardTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	award := req.it.Metadata.DetectedAward

	mt := media.MediaTypeMovie
	floor := awardFilmFloor
	if award == "emmy" {
		mt = media.MediaTypeTV
		floor = awardTVFloor
	}

	results, err := r.provider.Discover(ctx, media.DiscoverFilter{
		Type:      mt,
		RatingMin: floor,
		VotesMin:  r.cfg.MinVoteCount,
		SortBy:    "vote_average.desc",
		Region:    req.opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("discover for award %q: %w", award, err)
	}

	reason := fmt.Sprintf("%s caliber", capitalizeWords(award))
	var out []media.CandidateResult
	for i, c := range results {
		if c.Popularity < r.cfg.MinPopularity {
			continue
		}
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(0.9, 0.01, 0.7, i),
			MatchReasons:   []string{reason},
		})
	}
	return out, nil
}

func (r *Retriever) trendingTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	results, err := r.provider.Trending(ctx, req.it.MediaType, media.TrendingWeek)
	if err != nil {
		return nil, fmt.Errorf("trending: %w", err)
	}

	var out []media.CandidateResult
	for i, c := range results {
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(0.85, 0.01, 0.6, i),
			MatchReasons:   []string{"Trending now"},
		})
	}
	return out, nil
}

func (r *Retriever) recencyTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	results, err := r.provider.RecentReleases(ctx, req.it.MediaType)
	if err != nil {
		return nil, fmt.Errorf("recent releases: %w", err)
	}

	var out []media.CandidateResult
	for i, c := range results {
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(0.85, 0.01, 0.6, i),
			MatchReasons:   []string{"Recently released"},
		})
	}
	return out, nil
}

// textTier searches the raw query text. Position and title overlap
// with the query decide the grade.
func (r *Retriever) textTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	results, err := r.provider.SearchText(ctx, req.query, media.SearchFilter{Type: req.it.MediaType})
	if err != nil {
		return nil, fmt.Errorf("text search: %w", err)
	}

	query := strings.ToLower(strings.TrimSpace(req.query))
	var out []media.CandidateResult
	for i, c := range results {
		title := strings.ToLower(c.Title)
		var score float64
		var reason string
		switch {
		case title == query:
			score, reason = textExact, "Exact title match"
		case strings.Contains(title, query) || strings.Contains(query, title):
			score, reason = textSubstring, "Title match"
		case i < 3:
			score, reason = textTopThree, "Top match"
		default:
			score, reason = textDefault, "Text match"
		}
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: score,
			MatchReasons:   []string{reason},
		})
	}
	return out, nil
}

// similarTier expands "like X" references. Each reference resolves via
// text search; the reference itself is added once, then its similar
// content follows at a lower score.
func (r *Retriever) similarTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	refs := req.it.SimilarTo
	if len(refs) > similarMaxRefs {
		refs = refs[:similarMaxRefs]
	}

	seen := make(map[media.Key]bool)
	var out []media.CandidateResult
	for _, ref := range refs {
		matches, err := r.provider.SearchText(ctx, ref, media.SearchFilter{Type: req.it.MediaType})
		if err != nil {
			r.logger.Warn().Err(err).Str("reference", ref).Msg("Failed to resolve similar-to reference")
			continue
		}
		if len(matches) == 0 {
			continue
		}
		anchor := matches[0]

		if !seen[anchor.Key()] {
			seen[anchor.Key()] = true
			out = append(out, media.CandidateResult{
				Content:        anchor,
				RelevanceScore: similarRef,
				MatchReasons:   []string{"Mentioned in query"},
			})
		}

		neighbors, err := r.provider.Similar(ctx, anchor.ID, anchor.Type)
		if err != nil {
			r.logger.Warn().Err(err).Str("reference", ref).Msg("Failed to fetch similar content")
			continue
		}
		reason := fmt.Sprintf("Similar to %q", ref)
		for _, c := range neighbors {
			if seen[c.Key()] {
				continue
			}
			seen[c.Key()] = true
			out = append(out, media.CandidateResult{
				Content:        c,
				RelevanceScore: similarNeighbor,
				MatchReasons:   []string{reason},
			})
		}
	}
	return out, nil
}

// genreTier discovers by genre filter. Discovery endpoints take one
// concrete media type, so an unrestricted query fans out to both.
func (r *Retriever) genreTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	types := []media.MediaType{req.it.MediaType}
	if req.it.MediaType == media.MediaTypeAll {
		types = []media.MediaType{media.MediaTypeMovie, media.MediaTypeTV}
	}

	var results []media.Content
	for _, mt := range types {
		page, err := r.provider.Discover(ctx, media.DiscoverFilter{
			GenreIDs: req.it.GenreIDs,
			Type:     mt,
			VotesMin: r.cfg.MinVoteCount,
			SortBy:   "popularity.desc",
			Region:   req.opts.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("genre discover %s: %w", mt, err)
		}
		results = append(results, page...)
	}

	var out []media.CandidateResult
	for _, c := range results {
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: genreScore,
			MatchReasons:   []string{"Genre match"},
		})
	}
	return out, nil
}

func capitalizeWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
