// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package intent

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/cache"
	"github.com/kinoscope/kinoscope/internal/metrics"
)

// Understander is the optional external text-understanding collaborator.
// It augments heuristic parsing with richer mood/theme/setting analysis.
// Failures degrade the parse to heuristic-only; they are never surfaced.
type Understander interface {
	Understand(ctx context.Context, query string) (Augmentation, error)
}

// Parser turns raw query text into an Intent. It never fails.
//
// The parser owns nothing mutable except the injected cache; a given
// normalized query always maps to the same Intent for the cache TTL.
type Parser struct {
	cache        *cache.Tiered[Intent]
	understander Understander
	logger       zerolog.Logger
}

// NewParser creates a Parser. understander may be nil for heuristic-only
// operation.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewParser(c *cache.Tiered[Intent], u Understander, logger zerolog.Logger) *Parser {
	return &Parser{
		cache:        c,
		understander: u,
		logger:       logger.With().Str("component", "intent").Logger(),
	}
}

// CacheKey normalizes a query into its intent cache key.
func CacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Parse produces the Intent for a query. Identical normalized queries
// return structurally identical Intents; the second call is served from
// cache. The returned Intent must be treated as immutable; copy before
// deriving.
func (p *Parser) Parse(ctx context.Context, query string) Intent {
	key := CacheKey(query)

	if cached, ok := p.cache.Get(ctx, key); ok {
		metrics.IntentParses.WithLabelValues("cache").Inc()
		return cached
	}

	in, source := p.parse(ctx, query, key)
	metrics.IntentParses.WithLabelValues(source).Inc()

	p.cache.Set(ctx, key, in)
	return in
}

// parse runs the detectors and optional augmentation. Returns the intent
// and the metrics source label ("heuristic" or "augmented").
func (p *Parser) parse(ctx context.Context, query, lowerQuery string) (Intent, string) {
	in := Intent{
		MediaType: detectMediaType(query),
		Metadata: Metadata{
			DetectedPerson: detectPerson(query),
			DetectedAward:  detectAward(query),
			IsTrending:     detectTrending(query),
			IsRecent:       HasRecencyTerm(query),
			Platform:       detectPlatform(query),
		},
	}

	source := "heuristic"
	if p.understander != nil {
		aug, err := p.understander.Understand(ctx, query)
		if err != nil {
			// ParseDegradation: fall back to heuristics, not an error.
			p.logger.Debug().Err(err).Msg("understander unavailable, heuristic-only parse")
		} else {
			applyAugmentation(&in, aug)
			source = "augmented"
		}
	}

	p.applyHeuristics(&in, lowerQuery)

	in.Metadata.HasSpecificIntent = len(in.GenreIDs) > 0 ||
		in.Metadata.DetectedPerson != "" ||
		in.Metadata.DetectedAward != ""

	return in, source
}

// applyHeuristics unions the mood table and direct genre-name lookups
// into the intent. Runs after augmentation so collaborator output is
// enriched, never replaced.
func (p *Parser) applyHeuristics(in *Intent, lowerQuery string) {
	m := matchMoods(lowerQuery)
	in.Mood = unionStrings(in.Mood, m.moods)
	in.Themes = unionStrings(in.Themes, m.themes)
	if in.Pacing == "" {
		in.Pacing = m.pacing
	}

	genreIDs := m.genreIDs
	names, directIDs := matchGenreNames(lowerQuery)
	in.Genres = unionStrings(in.Genres, names)
	genreIDs = append(genreIDs, directIDs...)

	// Genres contributed by the understander arrive as names; resolve
	// them so the genre-discovery tier can use them.
	for _, name := range in.Genres {
		if id, ok := ResolveGenreName(name); ok {
			genreIDs = append(genreIDs, id)
		}
	}
	in.GenreIDs = unionInts(in.GenreIDs, genreIDs)
}

// applyAugmentation copies collaborator output into the intent.
func applyAugmentation(in *Intent, aug Augmentation) {
	in.Mood = unionStrings(in.Mood, aug.Mood)
	in.Themes = unionStrings(in.Themes, aug.Themes)
	if in.Pacing == "" {
		in.Pacing = aug.Pacing
	}
	if in.Era == "" {
		in.Era = aug.Era
	}
	in.Setting = unionStrings(in.Setting, aug.Setting)
	in.SimilarTo = unionStrings(in.SimilarTo, aug.SimilarTo)
	in.Avoid = unionStrings(in.Avoid, aug.Avoid)
	in.Genres = unionStrings(in.Genres, aug.Genres)
}

// unionStrings appends items from add not already in base, preserving order.
func unionStrings(base, add []string) []string {
	if len(add) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range add {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}

// unionInts appends ids from add not already in base, preserving order.
func unionInts(base, add []int) []int {
	if len(add) == 0 {
		return base
	}
	seen := make(map[int]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range add {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		base = append(base, v)
	}
	return base
}
