// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/PourroyJean/babymiam-sub000/internal/tracking"
)

// credentialsForm is the login and signup payload.
type credentialsForm struct {
	Email    string
	Password string
}

func parseCredentialsForm(r *http.Request) (credentialsForm, error) {
	if err := r.ParseForm(); err != nil {
		return credentialsForm{}, oops.Code("FORM_PARSE_FAILED").Wrap(err)
	}
	f := credentialsForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	if f.Email == "" {
		return f, oops.Code("FORM_MISSING_EMAIL").Errorf("email is required")
	}
	if f.Password == "" {
		return f, oops.Code("FORM_MISSING_PASSWORD").Errorf("password is required")
	}
	return f, nil
}

// exposureForm is the create/update payload for a food exposure.
type exposureForm struct {
	FoodName string
	Category string
	Texture  tracking.TextureStage
	Reaction tracking.Reaction
	Allergen bool
	Notes    string
	TriedAt  time.Time
}

func parseExposureForm(r *http.Request) (exposureForm, error) {
	if err := r.ParseForm(); err != nil {
		return exposureForm{}, oops.Code("FORM_PARSE_FAILED").Wrap(err)
	}
	f := exposureForm{
		FoodName: strings.TrimSpace(r.PostFormValue("food_name")),
		Category: strings.TrimSpace(r.PostFormValue("category")),
		Texture:  tracking.TextureStage(r.PostFormValue("texture")),
		Reaction: tracking.Reaction(r.PostFormValue("reaction")),
		Allergen: r.PostFormValue("allergen") == "1",
		Notes:    strings.TrimSpace(r.PostFormValue("notes")),
	}
	if f.FoodName == "" {
		return f, oops.Code("FORM_MISSING_FOOD").Errorf("food name is required")
	}
	if !f.Texture.Valid() {
		return f, oops.Code("FORM_INVALID_TEXTURE").Errorf("unknown texture stage")
	}
	if !f.Reaction.Valid() {
		return f, oops.Code("FORM_INVALID_REACTION").Errorf("unknown reaction")
	}
	if raw := r.PostFormValue("tried_at"); raw != "" {
		triedAt, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return f, oops.Code("FORM_INVALID_DATE").With("tried_at", raw).Wrap(err)
		}
		f.TriedAt = triedAt
	}
	return f, nil
}

// formMessage maps an internal error to the user-visible sentence. Anything
// unmapped becomes a generic failure so internals never leak into the page.
func formMessage(code string) string {
	switch code {
	case "FORM_MISSING_EMAIL":
		return "Please enter your email address."
	case "FORM_MISSING_PASSWORD":
		return "Please enter a password."
	case "PASSWORD_TOO_SHORT":
		return "Passwords need at least 8 characters."
	case "ACCOUNT_EMAIL_TAKEN":
		return "That email is already in use."
	case "AUTH_INVALID_CREDENTIALS":
		return "Incorrect email or password."
	case "AUTH_RATE_LIMITED":
		return "Too many attempts. Please wait a few minutes and try again."
	case "TOKEN_INVALID":
		return "That link is invalid or has expired."
	case "FORM_MISSING_FOOD":
		return "Please name the food."
	case "FORM_INVALID_TEXTURE", "FORM_INVALID_REACTION", "FORM_INVALID_DATE":
		return "Some fields look wrong. Please check the form."
	default:
		return "Something went wrong. Please try again."
	}
}
