// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

// Package web serves the server-rendered application: authentication flows,
// the tracking dashboard, and the public share page. Private routes require
// a valid session cookie; everything else redirects to /login.
package web
