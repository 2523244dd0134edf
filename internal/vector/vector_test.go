// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/embedding"
	"github.com/kinoscope/kinoscope/internal/media"
)

func testIndex(t *testing.T, dims int) *Index {
	t.Helper()
	return NewIndex(&config.VectorConfig{M: 16, EfSearch: 20, TopK: 10}, dims)
}

func unitVec(dims, hot int) []float32 {
	v := make([]float32, dims)
	v[hot] = 1
	return v
}

func TestIndexUpsertAndSearch(t *testing.T) {
	ix := testIndex(t, 4)

	a := media.Content{ID: 1, Type: media.MediaTypeMovie, Title: "Alpha"}
	b := media.Content{ID: 2, Type: media.MediaTypeMovie, Title: "Beta"}
	if err := ix.Upsert(a, unitVec(4, 0)); err != nil {
		t.Fatalf("Upsert a: %v", err)
	}
	if err := ix.Upsert(b, unitVec(4, 1)); err != nil {
		t.Fatalf("Upsert b: %v", err)
	}
	if ix.Len() != 2 {
		t.Fatalf("Len = %d, want 2", ix.Len())
	}

	got := ix.Search(unitVec(4, 0), 2)
	if len(got) == 0 {
		t.Fatal("Search returned nothing")
	}
	if got[0].Content.Title != "Alpha" {
		t.Errorf("best = %q, want Alpha", got[0].Content.Title)
	}
	if got[0].Similarity < 0.99 {
		t.Errorf("similarity = %f, want ~1.0 for identical vector", got[0].Similarity)
	}
}

func TestIndexUpsertReplaces(t *testing.T) {
	ix := testIndex(t, 4)
	c := media.Content{ID: 1, Type: media.MediaTypeMovie, Title: "Old Title"}
	if err := ix.Upsert(c, unitVec(4, 0)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	c.Title = "New Title"
	if err := ix.Upsert(c, unitVec(4, 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if ix.Len() != 1 {
		t.Fatalf("Len = %d, want 1 after re-upsert", ix.Len())
	}

	got := ix.Search(unitVec(4, 1), 5)
	for _, n := range got {
		if n.Content.Title == "Old Title" {
			t.Error("search surfaced an orphaned entry")
		}
	}
}

func TestIndexDimensionMismatch(t *testing.T) {
	ix := testIndex(t, 4)
	err := ix.Upsert(media.Content{ID: 1, Type: media.MediaTypeMovie}, make([]float32, 3))
	if err == nil {
		t.Fatal("Upsert = nil error, want dimension mismatch")
	}
}

func TestIndexEmptySearch(t *testing.T) {
	ix := testIndex(t, 4)
	if got := ix.Search(unitVec(4, 0), 5); got != nil {
		t.Errorf("Search on empty index = %v, want nil", got)
	}
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("endpoint down")
}
func (failingEmbedder) Dimensions() int { return 4 }

func TestSearcherDegradesOnEmbedFailure(t *testing.T) {
	ix := testIndex(t, 4)
	s := NewSearcher(ix, failingEmbedder{}, 5, zerolog.Nop())

	got := s.Search(context.Background(), "anything")
	if len(got) != 0 {
		t.Errorf("Search = %d results, want 0 on embed failure", len(got))
	}
}

func TestSearcherReturnsCandidates(t *testing.T) {
	dims := 64
	emb := embedding.NewStatic(dims)
	ix := testIndex(t, dims)

	items := []media.Content{
		{ID: 1, Type: media.MediaTypeMovie, Title: "Deep Space Voyage", Overview: "astronauts explore a distant galaxy"},
		{ID: 2, Type: media.MediaTypeMovie, Title: "Country Kitchen", Overview: "a chef opens a rural restaurant"},
	}
	if n := Seed(context.Background(), ix, emb, items); n != 2 {
		t.Fatalf("Seed = %d, want 2", n)
	}

	got := NewSearcher(ix, emb, 5, zerolog.Nop()).Search(context.Background(), "astronauts exploring a distant galaxy in deep space")
	if len(got) == 0 {
		t.Fatal("Search returned nothing")
	}
	if got[0].Content.Title != "Deep Space Voyage" {
		t.Errorf("best = %q, want Deep Space Voyage", got[0].Content.Title)
	}
	if got[0].SimilarityScore <= 0 {
		t.Errorf("similarity = %f, want positive", got[0].SimilarityScore)
	}
	if len(got[0].MatchReasons) == 0 || got[0].MatchReasons[0] != "Semantic similarity" {
		t.Errorf("reasons = %v", got[0].MatchReasons)
	}
}
