// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package intent

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/cache"
	"github.com/kinoscope/kinoscope/internal/media"
)

// mockUnderstander implements Understander for testing.
type mockUnderstander struct {
	aug   Augmentation
	err   error
	calls int
}

func (m *mockUnderstander) Understand(ctx context.Context, query string) (Augmentation, error) {
	m.calls++
	if m.err != nil {
		return Augmentation{}, m.err
	}
	return m.aug, nil
}

func newTestParser(u Understander) *Parser {
	c := cache.NewTiered[Intent]("intent", 100, time.Minute, time.Hour, nil, zerolog.Nop())
	return NewParser(c, u, zerolog.Nop())
}

func TestParseIdempotentAndCached(t *testing.T) {
	u := &mockUnderstander{}
	p := newTestParser(u)
	ctx := context.Background()

	first := p.Parse(ctx, "movies with Tom Hanks")
	second := p.Parse(ctx, "movies with Tom Hanks")

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Parse not structurally identical:\nfirst:  %+v\nsecond: %+v", first, second)
	}
	if u.calls != 1 {
		t.Errorf("understander called %d times, want 1 (second parse must hit cache)", u.calls)
	}
}

func TestParseCacheKeyNormalization(t *testing.T) {
	u := &mockUnderstander{}
	p := newTestParser(u)
	ctx := context.Background()

	p.Parse(ctx, "  Funny Movies  ")
	p.Parse(ctx, "funny movies")

	if u.calls != 1 {
		t.Errorf("understander called %d times, want 1 (keys must normalize to lowercase+trim)", u.calls)
	}
	if CacheKey("  Funny Movies  ") != "funny movies" {
		t.Errorf("CacheKey = %q, want %q", CacheKey("  Funny Movies  "), "funny movies")
	}
}

func TestParsePersonQuery(t *testing.T) {
	p := newTestParser(nil)
	in := p.Parse(context.Background(), "movies with Tom Hanks")

	if in.Metadata.DetectedPerson != "Tom Hanks" {
		t.Errorf("DetectedPerson = %q, want %q", in.Metadata.DetectedPerson, "Tom Hanks")
	}
	if !in.Metadata.HasSpecificIntent {
		t.Error("HasSpecificIntent = false, want true for person query")
	}
	if in.MediaType != media.MediaTypeMovie {
		t.Errorf("MediaType = %v, want movie", in.MediaType)
	}
}

func TestParseAwardQuery(t *testing.T) {
	p := newTestParser(nil)
	in := p.Parse(context.Background(), "an Oscar winner movie")

	if in.Metadata.DetectedAward != "oscar" {
		t.Errorf("DetectedAward = %q, want %q", in.Metadata.DetectedAward, "oscar")
	}
	if !in.Metadata.HasSpecificIntent {
		t.Error("HasSpecificIntent = false, want true for award query")
	}
}

func TestParseTrendingQuery(t *testing.T) {
	p := newTestParser(nil)
	in := p.Parse(context.Background(), "what's trending")

	if !in.Metadata.IsTrending {
		t.Error("IsTrending = false, want true")
	}
}

func TestParseNoSignalQuery(t *testing.T) {
	// "surprise me" carries no mood, person, award or trending signal:
	// the resulting intent is valid and routes to the fallback tier.
	p := newTestParser(nil)
	in := p.Parse(context.Background(), "surprise me")

	if in.Metadata.HasSpecificIntent {
		t.Error("HasSpecificIntent = true, want false")
	}
	if in.Metadata.DetectedPerson != "" || in.Metadata.DetectedAward != "" {
		t.Errorf("unexpected detections: person=%q award=%q",
			in.Metadata.DetectedPerson, in.Metadata.DetectedAward)
	}
	if in.Metadata.IsTrending || in.Metadata.IsRecent {
		t.Error("unexpected trending/recency flags")
	}
	if len(in.Mood) != 0 || len(in.GenreIDs) != 0 {
		t.Errorf("unexpected mood/genres: %v %v", in.Mood, in.GenreIDs)
	}
	if in.MediaType != media.MediaTypeAll {
		t.Errorf("MediaType = %v, want all", in.MediaType)
	}
}

func TestParseMoodAccumulation(t *testing.T) {
	p := newTestParser(nil)
	in := p.Parse(context.Background(), "something dark and scary with a twist")

	// All matching mood keywords accumulate; genres are a union.
	wantGenres := map[int]bool{GenreThriller: true, GenreCrime: true, GenreHorror: true, GenreMystery: true}
	for _, id := range in.GenreIDs {
		delete(wantGenres, id)
	}
	if len(wantGenres) != 0 {
		t.Errorf("missing genres %v in %v", wantGenres, in.GenreIDs)
	}
	if !in.Metadata.HasSpecificIntent {
		t.Error("HasSpecificIntent = false, want true when genres resolved")
	}
}

func TestMoodKeywordsMatchWholeWords(t *testing.T) {
	p := newTestParser(nil)

	// "award" must not trigger the "war" keyword embedded in it.
	in := p.Parse(context.Background(), "award winning movies")
	for _, id := range in.GenreIDs {
		if id == GenreWar || id == GenreHistory {
			t.Errorf("war genre %d detected inside %q", id, "award")
		}
	}

	in = p.Parse(context.Background(), "war movies")
	found := false
	for _, id := range in.GenreIDs {
		if id == GenreWar {
			found = true
		}
	}
	if !found {
		t.Errorf("war genre missing for direct mention: %v", in.GenreIDs)
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		s, phrase string
		want      bool
	}{
		{"award winning", "war", false},
		{"cold war drama", "war", true},
		{"war", "war", true},
		{"the war.", "war", true},
		{"postwar era", "war", false},
		{"feel-good comedy", "feel-good", true},
		{"sci-fi stuff", "sci-fi", true},
		{"no match here", "war", false},
	}
	for _, tt := range tests {
		if got := containsWord(tt.s, tt.phrase); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.s, tt.phrase, got, tt.want)
		}
	}
}

func TestParseFirstSeenPacingWins(t *testing.T) {
	p := newTestParser(nil)
	// "creepy" (slow) appears before "slasher" (fast) in the mood table;
	// table order decides, not query order.
	in := p.Parse(context.Background(), "slasher but also creepy")

	if in.Pacing != PacingSlow {
		t.Errorf("Pacing = %q, want %q (first-seen in table order)", in.Pacing, PacingSlow)
	}
}

func TestParseUnderstanderAugments(t *testing.T) {
	u := &mockUnderstander{aug: Augmentation{
		Mood:      []string{"wistful"},
		Themes:    []string{"memory"},
		Pacing:    PacingSlow,
		SimilarTo: []string{"Eternal Sunshine of the Spotless Mind"},
		Genres:    []string{"drama"},
	}}
	p := newTestParser(u)
	in := p.Parse(context.Background(), "something wistful")

	if len(in.SimilarTo) != 1 {
		t.Fatalf("SimilarTo = %v, want 1 entry", in.SimilarTo)
	}
	if in.Pacing != PacingSlow {
		t.Errorf("Pacing = %q, want slow", in.Pacing)
	}
	// Collaborator genre names resolve to provider ids.
	found := false
	for _, id := range in.GenreIDs {
		if id == GenreDrama {
			found = true
		}
	}
	if !found {
		t.Errorf("GenreIDs = %v, want to include drama (%d)", in.GenreIDs, GenreDrama)
	}
}

func TestParseUnderstanderFailureDegrades(t *testing.T) {
	u := &mockUnderstander{err: errors.New("model unavailable")}
	p := newTestParser(u)

	// Must not panic or surface the error, and heuristics still apply.
	in := p.Parse(context.Background(), "funny movies")
	if len(in.GenreIDs) == 0 {
		t.Error("heuristic genres missing after understander failure")
	}
}

func TestParseRecentWithYear(t *testing.T) {
	p := newTestParser(nil)
	in := p.Parse(context.Background(), "movies that came out in 2025")

	if !in.Metadata.IsRecent {
		t.Error("IsRecent = false, want true for year mention")
	}
}
