// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 BabyMiam Contributors

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeURL(t *testing.T) {
	tests := []struct {
		name string
		addr string
		path string
		want string
	}{
		{
			name: "wildcard host gets localhost",
			addr: ":9090",
			path: "/healthz/liveness",
			want: "http://localhost:9090/healthz/liveness",
		},
		{
			name: "explicit host passes through",
			addr: "10.0.0.5:9090",
			path: "/healthz/readiness",
			want: "http://10.0.0.5:9090/healthz/readiness",
		},
		{
			name: "hostname passes through",
			addr: "babymiam.local:9090",
			path: "/metrics",
			want: "http://babymiam.local:9090/metrics",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, probeURL(tt.addr, tt.path))
		})
	}
}

func TestProbe(t *testing.T) {
	t.Run("200 is healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		assert.True(t, probe(context.Background(), srv.URL))
	})

	t.Run("non-200 is unhealthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		assert.False(t, probe(context.Background(), srv.URL))
	})

	t.Run("unreachable server is unhealthy", func(t *testing.T) {
		assert.False(t, probe(context.Background(), "http://127.0.0.1:1/healthz/liveness"))
	})
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "ok", yesNo(true))
	assert.Equal(t, "unreachable", yesNo(false))
}
