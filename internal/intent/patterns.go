// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package intent

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kinoscope/kinoscope/internal/media"
)

// nameGroup matches one-or-more capitalized tokens, including accented
// capitals and a trailing punctuation mark after a token; validation of
// the captured text happens separately in looksLikePersonName.
const nameGroup = `((?:\p{Lu}[\p{L}\p{N}'.-]*[,;:!?]?(?:\s+|$))+)`

// personPattern pairs a compiled matcher with its priority position.
// Patterns are evaluated strictly in slice order and the first pattern
// that yields a plausible name wins; reordering two patterns changes
// behavior on ambiguous inputs, so the order is locked by tests.
type personPattern struct {
	name string
	re   *regexp.Regexp
}

// personPatterns in priority order. Within one pattern, capture groups
// are scanned left to right and the first plausible name is accepted.
var personPatterns = []personPattern{
	{"with-starring", regexp.MustCompile(`(?:\b(?i:with|starring|by|featuring)\s+)` + nameGroup)},
	{"name-media", regexp.MustCompile(nameGroup + `\s*(?i:movies?|films?|shows?|series)\b`)},
	{"role-name", regexp.MustCompile(`\b(?i:actor|actress|director)\s+` + nameGroup)},
	{"something-played", regexp.MustCompile(`\b(?i:something)\s+` + nameGroup + `\s*(?i:played|was\s+in|acted)\b`)},
	{"directed-by", regexp.MustCompile(`\b(?i:directed\s+by)\s+` + nameGroup)},
	{"name-directed", regexp.MustCompile(nameGroup + `\s*(?i:directed)\b`)},
}

// detectPerson runs the ordered person patterns against the raw query.
// Returns the first plausible name, or "".
//
// With multiple names in one query ("Tom Hanks and Meg Ryan movies") the
// earliest match of the first matching pattern wins.
func detectPerson(query string) string {
	for _, p := range personPatterns {
		m := p.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		for _, group := range m[1:] {
			if name, ok := looksLikePersonName(group); ok {
				return name
			}
		}
	}
	return ""
}

// looksLikePersonName reports whether the captured text is plausibly a
// person name: at least two whitespace-separated tokens, each starting
// with an uppercase letter in any script. Trailing non-capitalized
// tokens are trimmed rather than rejected so greedy captures still
// validate, and clause punctuation after a token is stripped.
func looksLikePersonName(s string) (string, bool) {
	fields := strings.Fields(s)
	capitalized := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimRight(f, ",;:!?")
		if f == "" {
			break
		}
		r, _ := utf8.DecodeRuneInString(f)
		if !unicode.IsUpper(r) {
			break
		}
		capitalized = append(capitalized, f)
	}
	if len(capitalized) < 2 {
		return "", false
	}
	return strings.Join(capitalized, " "), true
}

// awardPattern pairs a matcher with the normalized token it produces.
// An empty token means the first capture group is used (lowercased).
type awardPattern struct {
	re    *regexp.Regexp
	token string
}

var awardPatterns = []awardPattern{
	{regexp.MustCompile(`(?i)\b(?:oscars?|academy awards?)\b`), "oscar"},
	{regexp.MustCompile(`(?i)\bemmys?\b`), "emmy"},
	{regexp.MustCompile(`(?i)\bgolden globes?\b`), "golden globe"},
	{regexp.MustCompile(`(?i)\bbaftas?\b`), "bafta"},
	{regexp.MustCompile(`(?i)\b(?:sag awards?|screen actors guild)\b`), "sag"},
	{regexp.MustCompile(`(?i)\bwon (?:a|an|the)\s+([a-z]+)\b`), ""},
	{regexp.MustCompile(`(?i)\b([a-z]+)[- ]winning\b`), ""},
}

// detectAward returns the normalized award token, or "".
func detectAward(query string) string {
	for _, p := range awardPatterns {
		m := p.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		if p.token != "" {
			return p.token
		}
		if len(m) > 1 && m[1] != "" {
			return strings.ToLower(m[1])
		}
	}
	return ""
}

var (
	trendingRe = regexp.MustCompile(`(?i)\b(?:trending|popular|hot|what'?s new|latest|recent|just released)\b`)
	recencyRe  = regexp.MustCompile(`(?i)\b(?:latest|recent|new|just released|came out)\b|\b(?:19|20)\d{2}\b`)
)

// detectTrending reports whether the query asks for trending content.
func detectTrending(query string) bool {
	return trendingRe.MatchString(query)
}

// HasRecencyTerm reports whether the raw text contains an explicit
// recency term. The ranker uses this as the wantsNew signal for the
// recency boost.
func HasRecencyTerm(text string) bool {
	return recencyRe.MatchString(text)
}

// platformPattern maps a matcher to the normalized platform name.
type platformPattern struct {
	re   *regexp.Regexp
	name string
}

var platformPatterns = []platformPattern{
	{regexp.MustCompile(`(?i)\bnetflix\b`), "netflix"},
	{regexp.MustCompile(`(?i)\bhulu\b`), "hulu"},
	{regexp.MustCompile(`(?i)\bdisney(?:\+| plus)?\b`), "disney"},
	{regexp.MustCompile(`(?i)\b(?:amazon )?prime(?: video)?\b`), "prime"},
	{regexp.MustCompile(`(?i)\bhbo(?: max)?\b`), "hbo"},
	{regexp.MustCompile(`(?i)\bapple tv\+?\b`), "apple tv"},
}

// detectPlatform returns the normalized platform name, or "".
func detectPlatform(query string) string {
	for _, p := range platformPatterns {
		if p.re.MatchString(query) {
			return p.name
		}
	}
	return ""
}

var (
	movieRe = regexp.MustCompile(`(?i)\b(?:movies?|films?|cinema)\b`)
	tvRe    = regexp.MustCompile(`(?i)\b(?:shows?|series|tv|television|episodes?)\b`)
)

// detectMediaType infers the requested media type from the query text.
func detectMediaType(query string) media.MediaType {
	isMovie := movieRe.MatchString(query)
	isTV := tvRe.MatchString(query)
	switch {
	case isMovie && !isTV:
		return media.MediaTypeMovie
	case isTV && !isMovie:
		return media.MediaTypeTV
	default:
		return media.MediaTypeAll
	}
}
