// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package ranking fuses candidates from the retrieval tiers and the
// vector searcher into one deduplicated, boosted, ranked list.
package ranking

import (
	"sort"
	"time"

	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/media"
)

// Boost magnitudes. All boosts are additive and the score is clamped
// to [0, 1] after every step.
const (
	themeBoost   = 0.10
	qualityBoost = 0.05
	prefBoost    = 0.10

	qualityRatingFloor = 7.5
	qualityVotesFloor  = 1000

	// vectorWeight scales how much a semantic confirmation reinforces
	// an existing score.
	vectorWeight = 0.5
)

// Ranker fuses and ranks candidates. maxResults bounds the final list.
type Ranker struct {
	maxResults int
	now        func() time.Time
}

// New builds a ranker. now is injectable for tests; nil uses the clock.
func New(maxResults int, now func() time.Time) *Ranker {
	if maxResults <= 0 {
		maxResults = 50
	}
	if now == nil {
		now = time.Now
	}
	return &Ranker{maxResults: maxResults, now: now}
}

// Fuse merges tier and vector candidates by identity, applies intent,
// quality, recency, and preference boosts, and returns the ranked
// list. wantsNew marks queries that asked for recent content and
// steepens the recency boost. The sort is stable so candidates from
// earlier tiers keep their relative order on score ties.
func (r *Ranker) Fuse(tierCandidates, vectorCandidates []media.CandidateResult, it *intent.Intent, wantsNew bool, prefGenres []int) []media.MergedResult {
	type slot struct {
		result media.MergedResult
		order  int
	}

	merged := make(map[media.Key]*slot, len(tierCandidates))
	order := make([]media.Key, 0, len(tierCandidates))

	for _, c := range tierCandidates {
		key := c.Content.Key()
		s, ok := merged[key]
		if !ok {
			merged[key] = &slot{
				result: media.MergedResult{
					Content:        c.Content,
					RelevanceScore: media.ClampScore(c.RelevanceScore),
					MatchReasons:   append([]string(nil), c.MatchReasons...),
				},
				order: len(order),
			}
			order = append(order, key)
			continue
		}
		// Duplicate from another tier: scores combine by maximum.
		if c.RelevanceScore > s.result.RelevanceScore {
			s.result.RelevanceScore = media.ClampScore(c.RelevanceScore)
		}
		s.result.MatchReasons = append(s.result.MatchReasons, c.MatchReasons...)
	}

	// Semantic confirmation reinforces an existing score instead of
	// competing with it; unseen vector hits enter at their similarity.
	for _, c := range vectorCandidates {
		key := c.Content.Key()
		s, ok := merged[key]
		if !ok {
			merged[key] = &slot{
				result: media.MergedResult{
					Content:        c.Content,
					RelevanceScore: media.ClampScore(c.SimilarityScore),
					MatchReasons:   append([]string(nil), c.MatchReasons...),
				},
				order: len(order),
			}
			order = append(order, key)
			continue
		}
		s.result.RelevanceScore = media.ClampScore(
			s.result.RelevanceScore + c.SimilarityScore*vectorWeight)
		s.result.MatchReasons = append(s.result.MatchReasons, c.MatchReasons...)
	}

	themeGenres := intent.GenresForThemes(it.Themes)

	out := make([]media.MergedResult, 0, len(order))
	for _, key := range order {
		s := merged[key]
		res := s.result

		if intersects(themeGenres, res.Content.GenreIDs) {
			res.RelevanceScore = media.ClampScore(res.RelevanceScore + themeBoost)
			res.MatchReasons = append(res.MatchReasons, "Theme match")
		}

		if res.Content.VoteAverage >= qualityRatingFloor && res.Content.VoteCount > qualityVotesFloor {
			res.RelevanceScore = media.ClampScore(res.RelevanceScore + qualityBoost)
		}

		res = r.applyRecencyBoost(res, wantsNew)

		if intersects(prefGenres, res.Content.GenreIDs) {
			res.RelevanceScore = media.ClampScore(res.RelevanceScore + prefBoost)
			res.MatchReasons = append(res.MatchReasons, "Matches your preferences")
		}

		res.MatchReasons = media.DedupReasons(res.MatchReasons)
		out = append(out, res)
	}

	// Stable sort keeps earlier-tier candidates first on ties, which
	// the out slice already encodes by construction order.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})

	if len(out) > r.maxResults {
		out = out[:r.maxResults]
	}
	return out
}

// applyRecencyBoost applies the coarse release-age step function.
// Queries that explicitly asked for new content get the steeper grades.
func (r *Ranker) applyRecencyBoost(res media.MergedResult, wantsNew bool) media.MergedResult {
	release := res.Content.ReleaseDate
	if release.IsZero() {
		return res
	}

	now := r.now()
	age := now.Sub(release)
	day := 24 * time.Hour

	var boost float64
	var tag string
	switch {
	case age < 0:
		boost = 0.02
	case age <= 30*day:
		boost, tag = 0.08, "New release"
		if wantsNew {
			boost = 0.15
		}
	case age <= 90*day:
		boost, tag = 0.05, "Recent release"
		if wantsNew {
			boost = 0.10
		}
	case age <= 365*day:
		boost = 0.02
		if wantsNew {
			boost = 0.05
		}
	}

	if boost > 0 {
		res.RelevanceScore = media.ClampScore(res.RelevanceScore + boost)
		if tag != "" {
			res.MatchReasons = append(res.MatchReasons, tag)
		}
	}

	if age >= 0 && age <= 90*day && res.Content.Popularity > 100 {
		res.RelevanceScore = media.ClampScore(res.RelevanceScore + 0.03)
		res.MatchReasons = append(res.MatchReasons, "Trending")
	}

	return res
}

func intersects(a, b []int) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[int]struct{}, len(a))
	for _, x := range a {
		set[x] = struct{}{}
	}
	for _, x := range b {
		if _, ok := set[x]; ok {
			return true
		}
	}
	return false
}
