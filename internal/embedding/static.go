// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Static is a deterministic hash-based embedder. It trades semantic
// quality for zero external dependencies: the same text always maps to
// the same vector, which keeps tests and single-binary deployments
// simple.
type Static struct {
	dims int
}

// Token and character n-gram contributions. Tokens carry most of the
// signal; trigrams add robustness against typos and inflections.
const (
	tokenWeight = 0.7
	ngramWeight = 0.3
	ngramSize   = 3
)

// stopWords are dropped before hashing. These carry no discriminating
// signal for media queries.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "of": true, "in": true,
	"on": true, "to": true, "for": true, "with": true, "and": true,
	"or": true, "me": true, "some": true, "show": true, "movie": true,
	"movies": true, "film": true, "films": true, "watch": true,
	"something": true, "like": true,
}

var tokenRe = regexp.MustCompile(`[a-zA-Z0-9]+`)

// NewStatic returns a hashing embedder producing dims-length vectors.
func NewStatic(dims int) *Static {
	return &Static{dims: dims}
}

// Dimensions implements Provider.
func (s *Static) Dimensions() int { return s.dims }

// Embed implements Provider. It never fails; empty input yields the
// zero vector.
func (s *Static) Embed(_ context.Context, text string) ([]float32, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return make([]float32, s.dims), nil
	}

	vec := make([]float32, s.dims)

	for _, tok := range tokenRe.FindAllString(strings.ToLower(trimmed), -1) {
		if stopWords[tok] {
			continue
		}
		vec[hashToIndex(tok, s.dims)] += tokenWeight
	}

	joined := strings.Join(tokenRe.FindAllString(strings.ToLower(trimmed), -1), " ")
	for _, gram := range ngrams(joined, ngramSize) {
		vec[hashToIndex(gram, s.dims)] += ngramWeight
	}

	return normalize(vec), nil
}

func hashToIndex(s string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return int(h.Sum32() % uint32(dims))
}

func ngrams(s string, n int) []string {
	runes := []rune(s)
	if len(runes) < n {
		return nil
	}
	out := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		out = append(out, string(runes[i:i+n]))
	}
	return out
}

// normalize scales vec to unit length so cosine distance behaves.
func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
