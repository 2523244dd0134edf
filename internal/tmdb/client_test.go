// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/media"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.TMDBConfig{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	})
}

func TestSearchTextMovie(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("path = %q, want /search/movie", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "inception" {
			t.Errorf("query = %q, want inception", got)
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want test-key", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":27205,"title":"Inception","genre_ids":[28,878],"vote_average":8.4,"vote_count":34000,"popularity":90.5,"release_date":"2010-07-15"}
		]}`))
	})

	got, err := c.SearchText(context.Background(), "inception", media.SearchFilter{Type: media.MediaTypeMovie})
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != 27205 || got[0].Type != media.MediaTypeMovie || got[0].Title != "Inception" {
		t.Errorf("unexpected content: %+v", got[0])
	}
	if got[0].ReleaseDate.Year() != 2010 {
		t.Errorf("ReleaseDate = %v, want 2010", got[0].ReleaseDate)
	}
}

func TestSearchTextMultiDropsPeople(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/multi" {
			t.Errorf("path = %q, want /search/multi", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[
			{"id":1,"media_type":"movie","title":"A Movie"},
			{"id":2,"media_type":"tv","name":"A Show"},
			{"id":3,"media_type":"person","name":"Some Actor"}
		]}`))
	})

	got, err := c.SearchText(context.Background(), "a", media.SearchFilter{Type: media.MediaTypeAll})
	if err != nil {
		t.Fatalf("SearchText: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (person entries dropped)", len(got))
	}
	if got[0].Type != media.MediaTypeMovie || got[1].Type != media.MediaTypeTV {
		t.Errorf("types = %v/%v, want movie/tv", got[0].Type, got[1].Type)
	}
	if got[1].Title != "A Show" {
		t.Errorf("TV title = %q, want name field", got[1].Title)
	}
}

func TestDiscoverParams(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("with_genres"); got != "28,53" {
			t.Errorf("with_genres = %q, want 28,53", got)
		}
		if got := q.Get("vote_average.gte"); got != "7.0" {
			t.Errorf("vote_average.gte = %q, want 7.0", got)
		}
		if got := q.Get("sort_by"); got != "popularity.desc" {
			t.Errorf("sort_by = %q, want popularity.desc", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	})

	_, err := c.Discover(context.Background(), media.DiscoverFilter{
		GenreIDs:  []int{28, 53},
		Type:      media.MediaTypeMovie,
		RatingMin: 7.0,
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
}

func TestPersonCredits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/person/31/combined_credits" {
			t.Errorf("path = %q, want /person/31/combined_credits", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"cast":[{"id":13,"media_type":"movie","title":"Forrest Gump","vote_count":27000}],
			"crew":[{"id":591,"media_type":"movie","title":"That Thing You Do!"}]
		}`))
	})

	got, err := c.PersonCredits(context.Background(), 31)
	if err != nil {
		t.Fatalf("PersonCredits: %v", err)
	}
	if len(got.Cast) != 1 || len(got.Crew) != 1 {
		t.Fatalf("cast/crew = %d/%d, want 1/1", len(got.Cast), len(got.Crew))
	}
	if got.Cast[0].Title != "Forrest Gump" {
		t.Errorf("cast[0] = %+v", got.Cast[0])
	}
}

func TestTrendingEndpoint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trending/all/week" {
			t.Errorf("path = %q, want /trending/all/week", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":9,"media_type":"tv","name":"Hot Show"}]}`))
	})

	got, err := c.Trending(context.Background(), media.MediaTypeAll, media.TrendingWeek)
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(got) != 1 || got[0].Type != media.MediaTypeTV {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestRecentReleasesWindow(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/discover/tv" {
			t.Errorf("path = %q, want /discover/tv", r.URL.Path)
		}
		since := r.URL.Query().Get("first_air_date.gte")
		parsed, err := time.Parse("2006-01-02", since)
		if err != nil {
			t.Fatalf("first_air_date.gte = %q not a date", since)
		}
		age := time.Since(parsed)
		if age < 89*24*time.Hour || age > 91*24*time.Hour {
			t.Errorf("window = %v, want ~90 days", age)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[]}`))
	})

	if _, err := c.RecentReleases(context.Background(), media.MediaTypeTV); err != nil {
		t.Fatalf("RecentReleases: %v", err)
	}
}

func TestErrorStatusSurfaced(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	})

	_, err := c.SearchText(context.Background(), "x", media.SearchFilter{Type: media.MediaTypeMovie})
	if err == nil {
		t.Fatal("SearchText = nil error, want failure on 401")
	}
}
