// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package tracking

import (
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// Match weights, exact strongest. Glob ranks below substring because a
// pattern match is the loosest signal.
const (
	matchExact     = 4
	matchPrefix    = 3
	matchSubstring = 2
	matchGlob      = 1
)

// SearchResult is one ranked hit of the search overlay.
type SearchResult struct {
	Exposure *Exposure
	Rank     int
}

// Search ranks exposures against a query in a single pass, case-insensitive.
// Queries containing glob metacharacters ('*', '?', '[') additionally match
// as patterns. Results order by rank descending, then most recent tried_at,
// then food name, so the order is deterministic. An empty query returns nil.
func Search(exposures []*Exposure, query string) []SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var pattern glob.Glob
	if strings.ContainsAny(q, "*?[") {
		// A malformed pattern simply doesn't participate in matching.
		if compiled, err := glob.Compile(q); err == nil {
			pattern = compiled
		}
	}

	var results []SearchResult
	for _, e := range exposures {
		name := strings.ToLower(e.FoodName)
		rank := 0
		switch {
		case name == q:
			rank = matchExact
		case strings.HasPrefix(name, q):
			rank = matchPrefix
		case strings.Contains(name, q):
			rank = matchSubstring
		case pattern != nil && pattern.Match(name):
			rank = matchGlob
		}
		if rank > 0 {
			results = append(results, SearchResult{Exposure: e, Rank: rank})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank > results[j].Rank
		}
		if !results[i].Exposure.TriedAt.Equal(results[j].Exposure.TriedAt) {
			return results[i].Exposure.TriedAt.After(results[j].Exposure.TriedAt)
		}
		return strings.ToLower(results[i].Exposure.FoodName) < strings.ToLower(results[j].Exposure.FoodName)
	})
	return results
}
