// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

// Package tracking holds the food-introduction domain: exposure records and
// the read models computed from them (progress summary, preference ranking,
// texture coach, search).
//
// Read models are pure, deterministic, single-pass functions over
// already-fetched rows. They hold no state and perform no I/O; callers fetch
// an account's exposures once and derive every view from that slice.
package tracking
