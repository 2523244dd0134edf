// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package intent turns free-text media queries into a structured Intent
// using ordered heuristic matchers, optionally augmented by an external
// text-understanding collaborator. Parsing never fails: on any internal
// error it degrades to heuristic-only detection.
package intent

import (
	"github.com/kinoscope/kinoscope/internal/media"
)

// Pacing is the desired narrative pace.
type Pacing string

const (
	PacingSlow   Pacing = "slow"
	PacingMedium Pacing = "medium"
	PacingFast   Pacing = "fast"
)

// Metadata holds the discrete signals detected in a query.
type Metadata struct {
	// DetectedPerson is the extracted person name, if any.
	DetectedPerson string `json:"detected_person,omitempty"`

	// DetectedAward is the normalized award token, if any.
	DetectedAward string `json:"detected_award,omitempty"`

	// IsTrending is set when the query asks for trending content.
	IsTrending bool `json:"is_trending"`

	// IsRecent is set when the query asks for recent releases.
	IsRecent bool `json:"is_recent"`

	// Platform is the normalized streaming platform name, if mentioned.
	Platform string `json:"platform,omitempty"`

	// HasSpecificIntent is true when genres were resolved or a person
	// or award was detected. A query without specific intent triggers
	// the retriever's fallback tier.
	HasSpecificIntent bool `json:"has_specific_intent"`
}

// Intent is the structured interpretation of a free-text query.
// Every field defaults to absent; detectors populate them once during
// Parse and the value is never mutated afterwards (the parser caches it,
// so consumers must copy before deriving).
type Intent struct {
	Mood      []string        `json:"mood,omitempty"`
	Themes    []string        `json:"themes,omitempty"`
	Pacing    Pacing          `json:"pacing,omitempty"`
	Era       string          `json:"era,omitempty"`
	Setting   []string        `json:"setting,omitempty"`
	SimilarTo []string        `json:"similar_to,omitempty"`
	Avoid     []string        `json:"avoid,omitempty"`
	Genres    []string        `json:"genres,omitempty"`
	Keywords  []string        `json:"keywords,omitempty"`
	MediaType media.MediaType `json:"media_type"`

	// GenreIDs are Genres resolved to provider genre identifiers,
	// consumed by the genre-discovery tier.
	GenreIDs []int `json:"genre_ids,omitempty"`

	Metadata Metadata `json:"metadata"`
}

// Augmentation is the optional contribution of the external
// text-understanding collaborator. Fields are unioned with the
// heuristic detections.
type Augmentation struct {
	Mood      []string
	Themes    []string
	Pacing    Pacing
	Era       string
	Setting   []string
	SimilarTo []string
	Avoid     []string
	Genres    []string
}
