// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 pokeRNCP Contributors

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Flags(t *testing.T) {
	cmd := NewStatusCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "--json", "Help missing --json flag")
}

func TestQueryServerStatus(t *testing.T) {
	t.Run("healthy server", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/healthz/liveness", "/healthz/readiness":
				w.WriteHeader(http.StatusOK)
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		status := queryServerStatus(strings.TrimPrefix(srv.URL, "http://"))
		assert.True(t, status.Running)
		assert.True(t, status.Alive)
		assert.True(t, status.Ready)
		assert.Empty(t, status.Error)
	})

	t.Run("alive but not ready", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz/readiness" {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		status := queryServerStatus(strings.TrimPrefix(srv.URL, "http://"))
		assert.True(t, status.Running)
		assert.True(t, status.Alive)
		assert.False(t, status.Ready)
	})

	t.Run("unreachable server", func(t *testing.T) {
		status := queryServerStatus("127.0.0.1:1")
		assert.False(t, status.Running)
		assert.NotEmpty(t, status.Error)
	})
}

func TestFormatStatusTable(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		out := formatStatusTable(ServerStatus{
			Addr:    ":9090",
			Running: true,
			Alive:   true,
			Ready:   true,
		})
		assert.Contains(t, out, "running")
		assert.Contains(t, out, ":9090")
	})

	t.Run("stopped", func(t *testing.T) {
		out := formatStatusTable(ServerStatus{
			Addr:  ":9090",
			Error: "failed to connect: refused",
		})
		assert.Contains(t, out, "stopped")
		assert.Contains(t, out, "failed to connect")
	})
}
