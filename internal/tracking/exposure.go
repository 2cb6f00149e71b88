// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package tracking

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Reaction is how the infant received a food.
type Reaction string

// Reactions, from most to least enthusiastic.
const (
	ReactionLoved    Reaction = "loved"
	ReactionLiked    Reaction = "liked"
	ReactionNeutral  Reaction = "neutral"
	ReactionDisliked Reaction = "disliked"
	ReactionRefused  Reaction = "refused"
)

// Score maps a reaction onto a signed preference weight.
func (r Reaction) Score() int {
	switch r {
	case ReactionLoved:
		return 2
	case ReactionLiked:
		return 1
	case ReactionDisliked:
		return -1
	case ReactionRefused:
		return -2
	default:
		return 0
	}
}

// Valid reports whether r is a known reaction.
func (r Reaction) Valid() bool {
	switch r {
	case ReactionLoved, ReactionLiked, ReactionNeutral, ReactionDisliked, ReactionRefused:
		return true
	}
	return false
}

// TextureStage is a coarse food-texture progression step.
type TextureStage string

// Texture stages in progression order.
const (
	TexturePuree      TextureStage = "puree"
	TextureMashed     TextureStage = "mashed"
	TextureSoftLumps  TextureStage = "soft_lumps"
	TextureFingerFood TextureStage = "finger_food"
)

// textureOrder is the progression rank of each stage.
var textureOrder = map[TextureStage]int{
	TexturePuree:      0,
	TextureMashed:     1,
	TextureSoftLumps:  2,
	TextureFingerFood: 3,
}

// Rank returns the progression index of the stage, or -1 if unknown.
func (t TextureStage) Rank() int {
	if rank, ok := textureOrder[t]; ok {
		return rank
	}
	return -1
}

// Valid reports whether t is a known texture stage.
func (t TextureStage) Valid() bool {
	return t.Rank() >= 0
}

// Exposure is one recorded food introduction event.
type Exposure struct {
	ID        ulid.ULID
	AccountID ulid.ULID
	FoodName  string
	Category  string // vegetable, fruit, grain, protein, dairy, ...
	Texture   TextureStage
	Reaction  Reaction
	Allergen  bool // true if the food is a tracked common allergen
	Notes     string
	TriedAt   time.Time
	CreatedAt time.Time
}

// NewExposure creates a validated Exposure.
func NewExposure(accountID ulid.ULID, foodName, category string, texture TextureStage, reaction Reaction, allergen bool, notes string, triedAt time.Time) (*Exposure, error) {
	if accountID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("EXPOSURE_INVALID_ACCOUNT").Errorf("account ID cannot be zero")
	}
	name := strings.TrimSpace(foodName)
	if name == "" {
		return nil, oops.Code("EXPOSURE_INVALID_FOOD").Errorf("food name cannot be empty")
	}
	if !texture.Valid() {
		return nil, oops.Code("EXPOSURE_INVALID_TEXTURE").Errorf("unknown texture stage: %s", texture)
	}
	if !reaction.Valid() {
		return nil, oops.Code("EXPOSURE_INVALID_REACTION").Errorf("unknown reaction: %s", reaction)
	}
	if triedAt.IsZero() {
		triedAt = time.Now()
	}

	return &Exposure{
		ID:        ulid.Make(),
		AccountID: accountID,
		FoodName:  name,
		Category:  strings.TrimSpace(category),
		Texture:   texture,
		Reaction:  reaction,
		Allergen:  allergen,
		Notes:     notes,
		TriedAt:   triedAt,
		CreatedAt: time.Now(),
	}, nil
}

// ExposureRepository manages exposure persistence.
type ExposureRepository interface {
	// Create stores a new exposure.
	Create(ctx context.Context, exposure *Exposure) error

	// GetByID retrieves an exposure by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Exposure, error)

	// ListByAccount retrieves all exposures for an account, most recent
	// tried_at first.
	ListByAccount(ctx context.Context, accountID ulid.ULID) ([]*Exposure, error)

	// Update replaces the mutable fields of an exposure.
	Update(ctx context.Context, exposure *Exposure) error

	// Delete removes an exposure.
	Delete(ctx context.Context, id ulid.ULID) error
}
