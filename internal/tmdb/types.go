// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package tmdb

import (
	"time"

	"github.com/kinoscope/kinoscope/internal/media"
)

// wireContent is a TMDB result item. Movies use title/release_date,
// TV uses name/first_air_date; multi endpoints add media_type.
type wireContent struct {
	ID           int     `json:"id"`
	MediaType    string  `json:"media_type"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	GenreIDs     []int   `json:"genre_ids"`
	VoteAverage  float64 `json:"vote_average"`
	VoteCount    int     `json:"vote_count"`
	Popularity   float64 `json:"popularity"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	Overview     string  `json:"overview"`
}

// contentPage is a paginated TMDB list response.
type contentPage struct {
	Page         int           `json:"page"`
	Results      []wireContent `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// wirePerson is a TMDB person search result.
type wirePerson struct {
	ID         int           `json:"id"`
	Name       string        `json:"name"`
	Popularity float64       `json:"popularity"`
	KnownFor   []wireContent `json:"known_for"`
}

// personPage is a paginated person search response.
type personPage struct {
	Page    int          `json:"page"`
	Results []wirePerson `json:"results"`
}

// creditsPage is a combined-credits response.
type creditsPage struct {
	Cast []wireContent `json:"cast"`
	Crew []wireContent `json:"crew"`
}

// toContent maps a page to domain content. fallbackType stamps items
// when the endpoint fixes the type; items from multi endpoints carry
// their own media_type and entries that are neither movie nor tv
// (people in multi search) are dropped.
func (p contentPage) toContent(fallbackType media.MediaType) []media.Content {
	return toContentList(p.Results, fallbackType)
}

func toContentList(items []wireContent, fallbackType media.MediaType) []media.Content {
	out := make([]media.Content, 0, len(items))
	for _, item := range items {
		c, ok := item.toContent(fallbackType)
		if !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (w wireContent) toContent(fallbackType media.MediaType) (media.Content, bool) {
	mt := fallbackType
	switch w.MediaType {
	case "movie":
		mt = media.MediaTypeMovie
	case "tv":
		mt = media.MediaTypeTV
	case "":
		// Endpoint-typed payload; infer TV from the name field when
		// the endpoint did not narrow the type.
		if mt == media.MediaTypeAll {
			if w.Name != "" && w.Title == "" {
				mt = media.MediaTypeTV
			} else {
				mt = media.MediaTypeMovie
			}
		}
	default:
		return media.Content{}, false
	}

	title := w.Title
	if title == "" {
		title = w.Name
	}

	var release time.Time
	dateStr := w.ReleaseDate
	if dateStr == "" {
		dateStr = w.FirstAirDate
	}
	if dateStr != "" {
		if t, err := time.Parse("2006-01-02", dateStr); err == nil {
			release = t
		}
	}

	return media.Content{
		ID:          w.ID,
		Type:        mt,
		Title:       title,
		GenreIDs:    w.GenreIDs,
		VoteAverage: w.VoteAverage,
		VoteCount:   w.VoteCount,
		Popularity:  w.Popularity,
		ReleaseDate: release,
		Overview:    w.Overview,
	}, true
}
