// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package tracking

import "errors"

// ErrNotFound is returned when a requested exposure does not exist.
var ErrNotFound = errors.New("not found")
