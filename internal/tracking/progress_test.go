// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package tracking_test

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
)

// exposure builds a test exposure without going through validation, so tests
// control every field directly.
func exposure(food, category string, reaction tracking.Reaction, allergen bool, triedAt time.Time) *tracking.Exposure {
	return &tracking.Exposure{
		ID:        ulid.Make(),
		AccountID: ulid.Make(),
		FoodName:  food,
		Category:  category,
		Texture:   tracking.TexturePuree,
		Reaction:  reaction,
		Allergen:  allergen,
		TriedAt:   triedAt,
		CreatedAt: triedAt,
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	day := func(daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo) }

	t.Run("empty input", func(t *testing.T) {
		s := tracking.Summarize(nil, now)
		assert.Zero(t, s.TotalExposures)
		assert.Zero(t, s.DistinctFoods)
		assert.Zero(t, s.AllergensTried)
		assert.Zero(t, s.StreakDays)
		assert.Empty(t, s.ByCategory)
	})

	t.Run("counts distinct foods case-insensitively", func(t *testing.T) {
		s := tracking.Summarize([]*tracking.Exposure{
			exposure("Carrot", "vegetable", tracking.ReactionLoved, false, day(0)),
			exposure("carrot", "vegetable", tracking.ReactionLiked, false, day(0)),
			exposure("Banana", "fruit", tracking.ReactionLoved, false, day(0)),
		}, now)
		assert.Equal(t, 3, s.TotalExposures)
		assert.Equal(t, 2, s.DistinctFoods)
		assert.Equal(t, map[string]int{"vegetable": 1, "fruit": 1}, s.ByCategory)
	})

	t.Run("allergens counted as distinct foods", func(t *testing.T) {
		s := tracking.Summarize([]*tracking.Exposure{
			exposure("Peanut Butter", "protein", tracking.ReactionNeutral, true, day(0)),
			exposure("peanut butter", "protein", tracking.ReactionLiked, true, day(1)),
			exposure("Egg", "protein", tracking.ReactionLoved, true, day(2)),
			exposure("Carrot", "vegetable", tracking.ReactionLoved, false, day(0)),
		}, now)
		assert.Equal(t, 2, s.AllergensTried)
	})

	t.Run("streak counts consecutive days ending today", func(t *testing.T) {
		s := tracking.Summarize([]*tracking.Exposure{
			exposure("Carrot", "vegetable", tracking.ReactionLoved, false, day(0)),
			exposure("Banana", "fruit", tracking.ReactionLoved, false, day(1)),
			exposure("Oatmeal", "grain", tracking.ReactionNeutral, false, day(2)),
			// Gap at day(3) ends the streak.
			exposure("Yogurt", "dairy", tracking.ReactionLiked, false, day(4)),
		}, now)
		assert.Equal(t, 3, s.StreakDays)
	})

	t.Run("streak is zero without an exposure today", func(t *testing.T) {
		s := tracking.Summarize([]*tracking.Exposure{
			exposure("Carrot", "vegetable", tracking.ReactionLoved, false, day(1)),
			exposure("Banana", "fruit", tracking.ReactionLoved, false, day(2)),
		}, now)
		assert.Zero(t, s.StreakDays)
	})

	t.Run("uncategorized foods still count as foods", func(t *testing.T) {
		s := tracking.Summarize([]*tracking.Exposure{
			exposure("Mystery Puree", "", tracking.ReactionNeutral, false, day(0)),
		}, now)
		assert.Equal(t, 1, s.DistinctFoods)
		assert.Empty(t, s.ByCategory)
	})
}

func TestRankPreferences(t *testing.T) {
	now := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	t.Run("aggregates scores per food", func(t *testing.T) {
		ranks := tracking.RankPreferences([]*tracking.Exposure{
			exposure("Carrot", "vegetable", tracking.ReactionLoved, false, now),   // +2
			exposure("carrot", "vegetable", tracking.ReactionLiked, false, now),   // +1
			exposure("Banana", "fruit", tracking.ReactionLoved, false, now),       // +2
			exposure("Broccoli", "vegetable", tracking.ReactionRefused, false, now), // -2
		})
		require.Len(t, ranks, 3)
		assert.Equal(t, "Carrot", ranks[0].FoodName)
		assert.Equal(t, 3, ranks[0].Score)
		assert.Equal(t, 2, ranks[0].Exposures)
		assert.Equal(t, "Banana", ranks[1].FoodName)
		assert.Equal(t, "Broccoli", ranks[2].FoodName)
		assert.Equal(t, -2, ranks[2].Score)
	})

	t.Run("score ties break by exposure count then name", func(t *testing.T) {
		ranks := tracking.RankPreferences([]*tracking.Exposure{
			// Oatmeal: two neutrals, score 0.
			exposure("Oatmeal", "grain", tracking.ReactionNeutral, false, now),
			exposure("Oatmeal", "grain", tracking.ReactionNeutral, false, now),
			// Apple and Pear: one neutral each, score 0.
			exposure("Pear", "fruit", tracking.ReactionNeutral, false, now),
			exposure("Apple", "fruit", tracking.ReactionNeutral, false, now),
		})
		require.Len(t, ranks, 3)
		assert.Equal(t, "Oatmeal", ranks[0].FoodName)
		assert.Equal(t, "Apple", ranks[1].FoodName)
		assert.Equal(t, "Pear", ranks[2].FoodName)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, tracking.RankPreferences(nil))
	})
}
