// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package media defines the core domain types shared by the intent parser,
// the retrieval tiers, the vector searcher and the ranker, plus the
// Provider interface that abstracts the external metadata catalog.
//
// The package has no dependencies on other internal packages so that every
// layer of the engine can import it without creating circular imports.
package media

import (
	"context"
	"fmt"
	"time"
)

// MediaType identifies the kind of content a title refers to.
type MediaType string

const (
	// MediaTypeMovie is feature-film content.
	MediaTypeMovie MediaType = "movie"
	// MediaTypeTV is episodic content.
	MediaTypeTV MediaType = "tv"
	// MediaTypeAll matches both movies and TV.
	MediaTypeAll MediaType = "all"
)

// Valid reports whether the media type is one of the known values.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeAll:
		return true
	default:
		return false
	}
}

// Content is a catalog title as returned by the metadata provider.
// It is read-only to this engine; nothing here mutates it.
type Content struct {
	// ID is the provider's unique identifier for the title.
	ID int `json:"id"`

	// Type is movie or tv. Together with ID it forms the identity key
	// used for deduplication across retrieval sources.
	Type MediaType `json:"media_type"`

	// Title is the display title.
	Title string `json:"title"`

	// GenreIDs are the provider's genre identifiers for the title.
	GenreIDs []int `json:"genre_ids"`

	// VoteAverage is the mean audience rating on a 0-10 scale.
	VoteAverage float64 `json:"vote_average"`

	// VoteCount is the number of votes behind VoteAverage.
	VoteCount int `json:"vote_count"`

	// Popularity is the provider's popularity index (unbounded).
	Popularity float64 `json:"popularity"`

	// ReleaseDate is the first release date; zero if unknown.
	ReleaseDate time.Time `json:"release_date"`

	// Overview is the short synopsis, used for embedding text.
	Overview string `json:"overview,omitempty"`
}

// Key returns the (mediaType, id) identity key for deduplication.
func (c Content) Key() Key {
	return Key{Type: c.Type, ID: c.ID}
}

// HasGenre reports whether the content carries the given provider genre id.
func (c Content) HasGenre(genreID int) bool {
	for _, id := range c.GenreIDs {
		if id == genreID {
			return true
		}
	}
	return false
}

// Key is the identity of a title: a (mediaType, id) pair.
// A Key appears at most once in any result list the engine returns.
type Key struct {
	Type MediaType
	ID   int
}

// String renders the key for logging and cache keys.
func (k Key) String() string {
	return fmt.Sprintf("%s:%d", k.Type, k.ID)
}

// Person is a cast or crew member known to the metadata provider.
type Person struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Popularity float64   `json:"popularity"`
	KnownFor   []Content `json:"known_for"`
}

// Credits is a person's full filmography split by role.
type Credits struct {
	Cast []Content `json:"cast"`
	Crew []Content `json:"crew"`
}

// TrendingWindow selects the aggregation window for trending lists.
type TrendingWindow string

const (
	// TrendingDay aggregates over the last 24 hours.
	TrendingDay TrendingWindow = "day"
	// TrendingWeek aggregates over the last 7 days.
	TrendingWeek TrendingWindow = "week"
)

// QueryOptions carries per-request settings alongside the query text.
// The zero value disables all of them.
type QueryOptions struct {
	// Region is an ISO 3166-1 alpha-2 country code applied to
	// region-aware catalog discovery.
	Region string

	// Services lists streaming-service names the caller wants results
	// narrowed to. Carried for providers that support it; ignored by
	// providers that do not.
	Services []string

	// SessionID identifies the caller's session for log correlation.
	// It never influences retrieval or caching.
	SessionID string
}

// SearchFilter narrows free-text catalog searches.
type SearchFilter struct {
	// Type restricts results to one media type; MediaTypeAll searches both.
	Type MediaType
}

// DiscoverFilter drives filtered catalog discovery.
type DiscoverFilter struct {
	// GenreIDs restricts results to titles carrying any of these genres.
	GenreIDs []int

	// Type selects movie or tv discovery. MediaTypeAll is not valid here;
	// callers issue one discovery per concrete type.
	Type MediaType

	// RatingMin is the minimum vote average (0 disables the floor).
	RatingMin float64

	// VotesMin is the minimum vote count (0 disables the floor).
	VotesMin int

	// SortBy is a provider sort key such as "popularity.desc".
	SortBy string

	// Region is an ISO 3166-1 alpha-2 country code; empty means global.
	Region string
}

// Provider abstracts the external metadata catalog (TMDB in the shipped
// configuration). Implementations must be safe for concurrent use. Every
// method is an I/O boundary and may fail; callers at tier boundaries treat
// failures as zero candidates.
type Provider interface {
	// SearchText runs a free-text title search.
	SearchText(ctx context.Context, query string, filter SearchFilter) ([]Content, error)

	// Discover returns titles matching the filter, provider-sorted.
	Discover(ctx context.Context, filter DiscoverFilter) ([]Content, error)

	// SearchPerson resolves a person name to catalog people.
	SearchPerson(ctx context.Context, name string) ([]Person, error)

	// PersonCredits returns the person's full filmography.
	PersonCredits(ctx context.Context, personID int) (Credits, error)

	// Similar returns titles similar to the given one.
	Similar(ctx context.Context, id int, mediaType MediaType) ([]Content, error)

	// Trending returns the trending list for the window.
	Trending(ctx context.Context, mediaType MediaType, window TrendingWindow) ([]Content, error)

	// RecentReleases returns titles released within the last 90 days.
	RecentReleases(ctx context.Context, mediaType MediaType) ([]Content, error)
}

// CandidateResult is a scored title produced by a single retrieval source.
// Candidates with the same Key are merged during fusion.
type CandidateResult struct {
	// Content is the referenced title.
	Content Content `json:"content"`

	// RelevanceScore is the source's confidence in [0, 1].
	RelevanceScore float64 `json:"relevance_score"`

	// MatchReasons are human-readable explanations, deduplicated in order
	// of first appearance.
	MatchReasons []string `json:"match_reasons"`

	// SimilarityScore is set only by the vector searcher, in [0, 1].
	SimilarityScore float64 `json:"similarity_score,omitempty"`
}

// MergedResult is a candidate after fusion: the combined score of all
// contributing sources plus ranking boosts, clamped to [0, 1].
type MergedResult struct {
	Content        Content  `json:"content"`
	RelevanceScore float64  `json:"relevance_score"`
	MatchReasons   []string `json:"match_reasons"`
}

// DedupReasons returns reasons with duplicates removed, preserving the
// order of first appearance.
func DedupReasons(reasons []string) []string {
	if len(reasons) <= 1 {
		return reasons
	}
	seen := make(map[string]struct{}, len(reasons))
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

// ClampScore clamps a score to the [0, 1] invariant.
func ClampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
