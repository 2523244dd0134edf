// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package search

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/cache"
	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/ranking"
	"github.com/kinoscope/kinoscope/internal/retrieval"
)

// stubProvider serves fixed lists and counts calls so cache behavior
// is observable.
type stubProvider struct {
	calls    atomic.Int64
	trending []media.Content
	popular  []media.Content
	titles   []media.Content
	fail     bool
}

func (s *stubProvider) err() error {
	if s.fail {
		return errors.New("provider down")
	}
	return nil
}

func (s *stubProvider) SearchText(context.Context, string, media.SearchFilter) ([]media.Content, error) {
	s.calls.Add(1)
	return s.titles, s.err()
}

func (s *stubProvider) Discover(context.Context, media.DiscoverFilter) ([]media.Content, error) {
	s.calls.Add(1)
	return s.popular, s.err()
}

func (s *stubProvider) SearchPerson(context.Context, string) ([]media.Person, error) {
	s.calls.Add(1)
	return nil, s.err()
}

func (s *stubProvider) PersonCredits(context.Context, int) (media.Credits, error) {
	s.calls.Add(1)
	return media.Credits{}, s.err()
}

func (s *stubProvider) Similar(context.Context, int, media.MediaType) ([]media.Content, error) {
	s.calls.Add(1)
	return nil, s.err()
}

func (s *stubProvider) Trending(context.Context, media.MediaType, media.TrendingWindow) ([]media.Content, error) {
	s.calls.Add(1)
	return s.trending, s.err()
}

func (s *stubProvider) RecentReleases(context.Context, media.MediaType) ([]media.Content, error) {
	s.calls.Add(1)
	return s.trending, s.err()
}

type stubVector struct {
	results []media.CandidateResult
}

func (s *stubVector) Search(context.Context, string) []media.CandidateResult {
	return s.results
}

func newEngine(t *testing.T, p media.Provider, v VectorSearcher) *Engine {
	t.Helper()
	logger := zerolog.Nop()
	intents := cache.NewTiered[intent.Intent]("intent", 100, 30*time.Minute, time.Hour, nil, logger)
	results := cache.NewTiered[[]media.MergedResult]("result", 100, 5*time.Minute, time.Hour, nil, logger)
	parser := intent.NewParser(intents, nil, logger)
	cfg := &config.SearchConfig{MaxResults: 50, MinVoteCount: 100, MinPopularity: 5.0}
	retriever := retrieval.New(p, cfg, logger)
	ranker := ranking.New(cfg.MaxResults, nil)
	return New(parser, retriever, v, ranker, results, logger)
}

func popularMovie(id int, title string) media.Content {
	return media.Content{ID: id, Type: media.MediaTypeMovie, Title: title, VoteAverage: 8.0, VoteCount: 5000, Popularity: 80}
}

func TestSearchNeverEmptyWithHealthyFallback(t *testing.T) {
	p := &stubProvider{
		trending: []media.Content{popularMovie(1, "Hot Movie")},
		popular:  []media.Content{popularMovie(2, "Great Movie")},
	}

	for _, query := range []string{"zzyx", "surprise me"} {
		got := newEngine(t, p, nil).Search(context.Background(), query, nil, media.QueryOptions{})
		if len(got) == 0 {
			t.Errorf("Search(%q) returned empty despite healthy fallback sources", query)
		}
	}
}

func TestSearchFallbackReasonTags(t *testing.T) {
	p := &stubProvider{
		trending: []media.Content{popularMovie(1, "Hot Movie")},
		popular:  []media.Content{popularMovie(2, "Great Movie")},
	}

	got := newEngine(t, p, nil).Search(context.Background(), "surprise me", nil, media.QueryOptions{})
	for _, r := range got {
		tagged := false
		for _, reason := range r.MatchReasons {
			if strings.Contains(reason, "Popular & Trending") || strings.Contains(reason, "Highly rated & Popular") {
				tagged = true
			}
		}
		if !tagged {
			t.Errorf("result %d reasons = %v, want fallback-only tags", r.Content.ID, r.MatchReasons)
		}
	}
}

func TestSearchExhaustedFallbackReturnsEmpty(t *testing.T) {
	p := &stubProvider{fail: true}

	got := newEngine(t, p, nil).Search(context.Background(), "anything at all", nil, media.QueryOptions{})
	if len(got) != 0 {
		t.Fatalf("len = %d, want 0 when every source fails", len(got))
	}
}

func TestSearchResultCache(t *testing.T) {
	p := &stubProvider{titles: []media.Content{popularMovie(1, "Inception")}}
	e := newEngine(t, p, nil)

	first := e.Search(context.Background(), "Inception", nil, media.QueryOptions{})
	callsAfterFirst := p.calls.Load()
	second := e.Search(context.Background(), "  INCEPTION ", nil, media.QueryOptions{})

	if p.calls.Load() != callsAfterFirst {
		t.Errorf("provider called on cached query: %d -> %d", callsAfterFirst, p.calls.Load())
	}
	if len(first) != len(second) || first[0].Content.ID != second[0].Content.ID {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

func TestSearchCacheKeyedByPreferences(t *testing.T) {
	p := &stubProvider{titles: []media.Content{popularMovie(1, "Inception")}}
	e := newEngine(t, p, nil)

	e.Search(context.Background(), "Inception", nil, media.QueryOptions{})
	callsAfterFirst := p.calls.Load()
	e.Search(context.Background(), "Inception", []int{28}, media.QueryOptions{})

	if p.calls.Load() == callsAfterFirst {
		t.Error("different preferences served from the same cache entry")
	}
}

func TestSearchVectorBoostsRanking(t *testing.T) {
	p := &stubProvider{titles: []media.Content{
		popularMovie(1, "Plain Result"),
		popularMovie(2, "Boosted Result"),
	}}
	v := &stubVector{results: []media.CandidateResult{{
		Content:         popularMovie(2, "Boosted Result"),
		SimilarityScore: 0.9,
		MatchReasons:    []string{"Semantic similarity"},
	}}}

	got := newEngine(t, p, v).Search(context.Background(), "boosted", nil, media.QueryOptions{})
	if len(got) < 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Content.ID != 2 {
		t.Errorf("semantically confirmed result did not rank first: %+v", got)
	}
}

func TestParseIntentIdempotent(t *testing.T) {
	p := &stubProvider{}
	e := newEngine(t, p, nil)

	a := e.ParseIntent(context.Background(), "funny movies with Tom Hanks")
	b := e.ParseIntent(context.Background(), "funny movies with Tom Hanks")
	if a.Metadata.DetectedPerson != "Tom Hanks" || b.Metadata.DetectedPerson != "Tom Hanks" {
		t.Errorf("detected person = %q / %q", a.Metadata.DetectedPerson, b.Metadata.DetectedPerson)
	}
	if len(a.GenreIDs) != len(b.GenreIDs) {
		t.Errorf("parse not idempotent: %v vs %v", a.GenreIDs, b.GenreIDs)
	}
}

func TestResultCacheKey(t *testing.T) {
	none := media.QueryOptions{}
	if resultCacheKey("  Foo ", nil, none) != "foo" {
		t.Errorf("key = %q, want foo", resultCacheKey("  Foo ", nil, none))
	}
	a := resultCacheKey("foo", []int{35, 28}, none)
	b := resultCacheKey("foo", []int{28, 35}, none)
	if a != b {
		t.Errorf("preference order changed the key: %q vs %q", a, b)
	}
	if a == resultCacheKey("foo", nil, none) {
		t.Error("preferences did not change the key")
	}
}

func TestResultCacheKeyFoldsOptions(t *testing.T) {
	none := media.QueryOptions{}
	us := media.QueryOptions{Region: "US"}

	if resultCacheKey("foo", nil, us) == resultCacheKey("foo", nil, none) {
		t.Error("region did not change the key")
	}
	if resultCacheKey("foo", nil, us) != resultCacheKey("foo", nil, media.QueryOptions{Region: "us"}) {
		t.Error("region casing changed the key")
	}

	a := resultCacheKey("foo", nil, media.QueryOptions{Services: []string{"netflix", "hulu"}})
	b := resultCacheKey("foo", nil, media.QueryOptions{Services: []string{"hulu", "netflix"}})
	if a != b {
		t.Errorf("service order changed the key: %q vs %q", a, b)
	}
	if a == resultCacheKey("foo", nil, none) {
		t.Error("services did not change the key")
	}

	if resultCacheKey("foo", nil, media.QueryOptions{SessionID: "abc"}) != resultCacheKey("foo", nil, none) {
		t.Error("session id leaked into the key")
	}
}

func TestSearchCacheKeyedByRegion(t *testing.T) {
	p := &stubProvider{titles: []media.Content{popularMovie(1, "Inception")}}
	e := newEngine(t, p, nil)

	e.Search(context.Background(), "Inception", nil, media.QueryOptions{Region: "US"})
	callsAfterFirst := p.calls.Load()
	e.Search(context.Background(), "Inception", nil, media.QueryOptions{Region: "DE"})

	if p.calls.Load() == callsAfterFirst {
		t.Error("different regions served from the same cache entry")
	}
}
