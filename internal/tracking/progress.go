// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package tracking

import (
	"sort"
	"strings"
	"time"
)

// Summary is the dashboard progress read model.
type Summary struct {
	TotalExposures int
	DistinctFoods  int
	ByCategory     map[string]int // distinct foods per category
	AllergensTried int            // distinct allergen foods introduced
	StreakDays     int            // consecutive days ending today with >= 1 exposure
}

// Summarize computes the progress summary in a single pass over exposures.
// Deterministic: depends only on the input slice and the reference time.
func Summarize(exposures []*Exposure, now time.Time) Summary {
	s := Summary{ByCategory: make(map[string]int)}
	s.TotalExposures = len(exposures)

	foods := make(map[string]struct{})
	allergens := make(map[string]struct{})
	categoryFoods := make(map[string]map[string]struct{})
	days := make(map[string]struct{})

	for _, e := range exposures {
		food := strings.ToLower(e.FoodName)
		foods[food] = struct{}{}
		if e.Allergen {
			allergens[food] = struct{}{}
		}
		if e.Category != "" {
			if categoryFoods[e.Category] == nil {
				categoryFoods[e.Category] = make(map[string]struct{})
			}
			categoryFoods[e.Category][food] = struct{}{}
		}
		days[e.TriedAt.Format(time.DateOnly)] = struct{}{}
	}

	s.DistinctFoods = len(foods)
	s.AllergensTried = len(allergens)
	for category, set := range categoryFoods {
		s.ByCategory[category] = len(set)
	}

	// Walk backwards from today until the first day without an exposure.
	for day := now; ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[day.Format(time.DateOnly)]; !ok {
			break
		}
		s.StreakDays++
	}

	return s
}

// FoodRank is one entry of the preference ranking.
type FoodRank struct {
	FoodName  string
	Exposures int
	Score     int // sum of reaction scores across exposures
}

// RankPreferences ranks foods by aggregated reaction score, highest first.
// Ties break by exposure count (more first), then food name (ascending) so the
// order is deterministic.
func RankPreferences(exposures []*Exposure) []FoodRank {
	byFood := make(map[string]*FoodRank)
	for _, e := range exposures {
		key := strings.ToLower(e.FoodName)
		rank, ok := byFood[key]
		if !ok {
			rank = &FoodRank{FoodName: e.FoodName}
			byFood[key] = rank
		}
		rank.Exposures++
		rank.Score += e.Reaction.Score()
	}

	ranks := make([]FoodRank, 0, len(byFood))
	for _, r := range byFood {
		ranks = append(ranks, *r)
	}
	sort.Slice(ranks, func(i, j int) bool {
		if ranks[i].Score != ranks[j].Score {
			return ranks[i].Score > ranks[j].Score
		}
		if ranks[i].Exposures != ranks[j].Exposures {
			return ranks[i].Exposures > ranks[j].Exposures
		}
		return strings.ToLower(ranks[i].FoodName) < strings.ToLower(ranks[j].FoodName)
	})
	return ranks
}
