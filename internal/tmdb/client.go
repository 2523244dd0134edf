// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package tmdb implements the media.Provider interface against the TMDB
// v3 REST API. The client carries its own rate limiter and is usually
// wrapped in the circuit breaker from breaker.go.
//
// API reference: https://developer.themoviedb.org/reference
package tmdb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/kinoscope/kinoscope/internal/config"
	"github.com/kinoscope/kinoscope/internal/media"
)

// recentWindow is how far back RecentReleases looks.
const recentWindow = 90 * 24 * time.Hour

// Client is a TMDB v3 API client. Safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ media.Provider = (*Client)(nil)

// NewClient creates a TMDB client from configuration.
func NewClient(cfg *config.TMDBConfig) *Client {
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), int(cfg.RateLimit))
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: limiter,
	}
}

// SearchText runs a free-text title search. MediaTypeAll uses the multi
// search endpoint and keeps only movie/tv entries.
func (c *Client) SearchText(ctx context.Context, query string, filter media.SearchFilter) ([]media.Content, error) {
	var endpoint string
	switch filter.Type {
	case media.MediaTypeMovie:
		endpoint = "/search/movie"
	case media.MediaTypeTV:
		endpoint = "/search/tv"
	default:
		endpoint = "/search/multi"
	}

	params := url.Values{"query": {query}}
	var page contentPage
	if err := c.get(ctx, endpoint, params, &page); err != nil {
		return nil, fmt.Errorf("tmdb search %q: %w", query, err)
	}
	return page.toContent(typeForEndpoint(filter.Type)), nil
}

// Discover returns titles matching the filter, provider-sorted.
func (c *Client) Discover(ctx context.Context, filter media.DiscoverFilter) ([]media.Content, error) {
	endpoint := "/discover/movie"
	if filter.Type == media.MediaTypeTV {
		endpoint = "/discover/tv"
	}

	params := url.Values{}
	if len(filter.GenreIDs) > 0 {
		ids := make([]string, len(filter.GenreIDs))
		for i, id := range filter.GenreIDs {
			ids[i] = strconv.Itoa(id)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if filter.RatingMin > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(filter.RatingMin, 'f', 1, 64))
	}
	if filter.VotesMin > 0 {
		params.Set("vote_count.gte", strconv.Itoa(filter.VotesMin))
	}
	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	params.Set("sort_by", sortBy)
	if filter.Region != "" {
		params.Set("region", filter.Region)
	}

	var page contentPage
	if err := c.get(ctx, endpoint, params, &page); err != nil {
		return nil, fmt.Errorf("tmdb discover: %w", err)
	}
	return page.toContent(filter.Type), nil
}

// SearchPerson resolves a person name to catalog people.
func (c *Client) SearchPerson(ctx context.Context, name string) ([]media.Person, error) {
	var page personPage
	if err := c.get(ctx, "/search/person", url.Values{"query": {name}}, &page); err != nil {
		return nil, fmt.Errorf("tmdb person search %q: %w", name, err)
	}

	people := make([]media.Person, 0, len(page.Results))
	for _, p := range page.Results {
		people = append(people, media.Person{
			ID:         p.ID,
			Name:       p.Name,
			Popularity: p.Popularity,
			KnownFor:   toContentList(p.KnownFor, media.MediaTypeAll),
		})
	}
	return people, nil
}

// PersonCredits returns the person's combined movie and TV filmography.
func (c *Client) PersonCredits(ctx context.Context, personID int) (media.Credits, error) {
	endpoint := fmt.Sprintf("/person/%d/combined_credits", personID)

	var page creditsPage
	if err := c.get(ctx, endpoint, nil, &page); err != nil {
		return media.Credits{}, fmt.Errorf("tmdb credits for person %d: %w", personID, err)
	}
	return media.Credits{
		Cast: toContentList(page.Cast, media.MediaTypeAll),
		Crew: toContentList(page.Crew, media.MediaTypeAll),
	}, nil
}

// Similar returns titles similar to the given one.
func (c *Client) Similar(ctx context.Context, id int, mediaType media.MediaType) ([]media.Content, error) {
	kind := "movie"
	if mediaType == media.MediaTypeTV {
		kind = "tv"
	}
	endpoint := fmt.Sprintf("/%s/%d/similar", kind, id)

	var page contentPage
	if err := c.get(ctx, endpoint, nil, &page); err != nil {
		return nil, fmt.Errorf("tmdb similar to %s %d: %w", kind, id, err)
	}
	return page.toContent(mediaType), nil
}

// Trending returns the trending list for the window.
func (c *Client) Trending(ctx context.Context, mediaType media.MediaType, window media.TrendingWindow) ([]media.Content, error) {
	kind := "all"
	switch mediaType {
	case media.MediaTypeMovie:
		kind = "movie"
	case media.MediaTypeTV:
		kind = "tv"
	}
	endpoint := fmt.Sprintf("/trending/%s/%s", kind, window)

	var page contentPage
	if err := c.get(ctx, endpoint, nil, &page); err != nil {
		return nil, fmt.Errorf("tmdb trending %s: %w", kind, err)
	}
	return page.toContent(typeForEndpoint(mediaType)), nil
}

// RecentReleases returns titles released within the last 90 days,
// newest first.
func (c *Client) RecentReleases(ctx context.Context, mediaType media.MediaType) ([]media.Content, error) {
	since := time.Now().Add(-recentWindow).Format("2006-01-02")
	today := time.Now().Format("2006-01-02")

	endpoint := "/discover/movie"
	params := url.Values{
		"primary_release_date.gte": {since},
		"primary_release_date.lte": {today},
		"sort_by":                  {"popularity.desc"},
	}
	resolved := media.MediaTypeMovie
	if mediaType == media.MediaTypeTV {
		endpoint = "/discover/tv"
		params = url.Values{
			"first_air_date.gte": {since},
			"first_air_date.lte": {today},
			"sort_by":            {"popularity.desc"},
		}
		resolved = media.MediaTypeTV
	}

	var page contentPage
	if err := c.get(ctx, endpoint, params, &page); err != nil {
		return nil, fmt.Errorf("tmdb recent releases: %w", err)
	}
	return page.toContent(resolved), nil
}

// get performs one rate-limited API request and decodes the response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)

	reqURL := c.baseURL + endpoint + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if readErr != nil {
			return fmt.Errorf("status %d (failed to read body)", resp.StatusCode)
		}
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// typeForEndpoint is the media type stamped onto results when the
// endpoint itself fixes it; MediaTypeAll defers to the per-item
// media_type field.
func typeForEndpoint(t media.MediaType) media.MediaType {
	if t == media.MediaTypeMovie || t == media.MediaTypeTV {
		return t
	}
	return media.MediaTypeAll
}
