// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/kinoscope/kinoscope/internal/cache"
	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/intent"
	"github.com/kinoscope/kinoscope/internal/media"
	"github.com/kinoscope/kinoscope/internal/ranking"
	"github.com/kinoscope/kinoscope/internal/retrieval"
	"github.com/kinoscope/kinoscope/internal/search"
)

// fixedProvider serves one title so any query resolves.
type fixedProvider struct{}

func (fixedProvider) SearchText(context.Context, string, media.SearchFilter) ([]media.Content, error) {
	return []media.Content{{ID: 1, Type: media.MediaTypeMovie, Title: "Found"}}, nil
}
func (fixedProvider) Discover(context.Context, media.DiscoverFilter) ([]media.Content, error) {
	return nil, nil
}
func (fixedProvider) SearchPerson(context.Context, string) ([]media.Person, error) {
	return nil, nil
}
func (fixedProvider) PersonCredits(context.Context, int) (media.Credits, error) {
	return media.Credits{}, nil
}
func (fixedProvider) Similar(context.Context, int, media.MediaType) ([]media.Content, error) {
	return nil, nil
}
func (fixedProvider) Trending(context.Context, media.MediaType, media.TrendingWindow) ([]media.Content, error) {
	return nil, nil
}
func (fixedProvider) RecentReleases(context.Context, media.MediaType) ([]media.Content, error) {
	return nil, nil
}

func testRouter(t *testing.T) *Router {
	t.Helper()
	logger := zerolog.Nop()
	intents := cache.NewTiered[intent.Intent]("intent", 10, time.Minute, time.Hour, nil, logger)
	results := cache.NewTiered[[]media.MergedResult]("result", 10, time.Minute, time.Hour, nil, logger)
	cfg := &config.SearchConfig{MaxResults: 50, MinVoteCount: 100, MinPopularity: 5.0}
	engine := search.New(
		intent.NewParser(intents, nil, logger),
		retrieval.New(fixedProvider{}, cfg, logger),
		nil,
		ranking.New(cfg.MaxResults, nil),
		results,
		logger,
	)
	return NewRouter(engine, logger)
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSearchEndpoint(t *testing.T) {
	h := testRouter(t).Handler()

	rec := postJSON(t, h, "/api/v1/search", SearchRequest{Query: "Found"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp SearchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count == 0 || len(resp.Results) == 0 {
		t.Fatalf("empty response: %s", rec.Body.String())
	}
	if resp.Results[0].Content.Title != "Found" {
		t.Errorf("title = %q", resp.Results[0].Content.Title)
	}
}

func TestSearchEndpointValidation(t *testing.T) {
	h := testRouter(t).Handler()

	tests := []struct {
		name string
		body any
	}{
		{"empty query", SearchRequest{Query: ""}},
		{"negative genre", SearchRequest{Query: "ok", PreferredGenres: []int{-1}}},
		{"bad region", SearchRequest{Query: "ok", Region: "USA"}},
		{"empty service name", SearchRequest{Query: "ok", Services: []string{""}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postJSON(t, h, "/api/v1/search", tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestSearchEndpointAcceptsOptions(t *testing.T) {
	h := testRouter(t).Handler()

	rec := postJSON(t, h, "/api/v1/search", SearchRequest{
		Query:     "Found",
		Region:    "US",
		Services:  []string{"netflix"},
		SessionID: "sess-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestSearchEndpointBadJSON(t *testing.T) {
	h := testRouter(t).Handler()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestIntentEndpoint(t *testing.T) {
	h := testRouter(t).Handler()

	rec := postJSON(t, h, "/api/v1/intent", SearchRequest{Query: "funny movies with Tom Hanks"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp IntentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Intent.Metadata.DetectedPerson != "Tom Hanks" {
		t.Errorf("detected person = %q", resp.Intent.Metadata.DetectedPerson)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := testRouter(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := testRouter(t).Handler()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
