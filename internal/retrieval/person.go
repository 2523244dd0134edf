// Kinoscope - Query Understanding and Multi-Source Ranking for Media Discovery
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package retrieval

import (
	"context"
	"fmt"

	"github.com/kinoscope/kinoscope/internal/media"
)

// Person tier scoring. Cast roles outrank crew roles and both decay
// slightly by credits position so lead work surfaces above cameos.
const (
	personCastBase  = 0.95
	personCrewBase  = 0.85
	personDecay     = 0.005
	personFloor     = 0.6
	personKnownFor  = 0.8
	relaxVoteFactor = 10
)

// personTier resolves the detected person and turns their filmography
// into candidates. Threshold filtering is relaxed once if it removes
// everything; if the filmography still yields nothing the person's
// known-for list is used at a fixed score.
func (r *Retriever) personTier(ctx context.Context, req request) ([]media.CandidateResult, error) {
	name := req.it.Metadata.DetectedPerson

	people, err := r.provider.SearchPerson(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("search person %q: %w", name, err)
	}
	if len(people) == 0 {
		return nil, nil
	}
	person := people[0]

	credits, err := r.provider.PersonCredits(ctx, person.ID)
	if err != nil {
		return nil, fmt.Errorf("credits for %q: %w", name, err)
	}

	out := r.creditCandidates(credits, req.it.MediaType, person.Name, r.cfg.MinVoteCount, r.cfg.MinPopularity)
	if len(out) == 0 {
		out = r.creditCandidates(credits, req.it.MediaType, person.Name, r.cfg.MinVoteCount/relaxVoteFactor, 0)
	}
	if len(out) == 0 {
		for _, c := range person.KnownFor {
			out = append(out, media.CandidateResult{
				Content:        c,
				RelevanceScore: personKnownFor,
				MatchReasons:   []string{fmt.Sprintf("Known for %s", person.Name)},
			})
		}
	}
	return out, nil
}

func (r *Retriever) creditCandidates(credits media.Credits, mt media.MediaType, name string, minVotes int, minPopularity float64) []media.CandidateResult {
	var out []media.CandidateResult

	keep := func(c media.Content) bool {
		if mt != media.MediaTypeAll && c.Type != mt {
			return false
		}
		return c.VoteCount >= minVotes && c.Popularity >= minPopularity
	}

	for i, c := range credits.Cast {
		if !keep(c) {
			continue
		}
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(personCastBase, personDecay, personFloor, i),
			MatchReasons:   []string{fmt.Sprintf("Starring %s", name)},
		})
	}
	for i, c := range credits.Crew {
		if !keep(c) {
			continue
		}
		out = append(out, media.CandidateResult{
			Content:        c,
			RelevanceScore: positional(personCrewBase, personDecay, personFloor, i),
			MatchReasons:   []string{fmt.Sprintf("From %s", name)},
		})
	}
	return out
}
