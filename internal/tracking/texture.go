// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package tracking

// TextureAdvice is the texture coach read model.
type TextureAdvice struct {
	// Current is the most advanced stage already accepted (not refused),
	// or empty when nothing has been accepted yet.
	Current TextureStage

	// Target is the stage the age band suggests working toward.
	Target TextureStage

	// Ready is true when the infant has accepted the stage directly below
	// the target (or the target itself).
	Ready bool
}

// ageTarget returns the texture stage typically appropriate for an age band.
// Bands follow common weaning guidance: purees from 4-6 months, mashed
// around 6-8, soft lumps 8-10, finger foods from 10 on.
func ageTarget(ageMonths int) TextureStage {
	switch {
	case ageMonths < 6:
		return TexturePuree
	case ageMonths < 8:
		return TextureMashed
	case ageMonths < 10:
		return TextureSoftLumps
	default:
		return TextureFingerFood
	}
}

// TextureTargets computes the texture coach suggestion in a single pass.
// Deterministic: depends only on exposures and ageMonths.
func TextureTargets(exposures []*Exposure, ageMonths int) TextureAdvice {
	advice := TextureAdvice{Target: ageTarget(ageMonths)}

	best := -1
	for _, e := range exposures {
		if e.Reaction == ReactionRefused {
			continue
		}
		if rank := e.Texture.Rank(); rank > best {
			best = rank
			advice.Current = e.Texture
		}
	}

	advice.Ready = best >= advice.Target.Rank()-1
	return advice
}
