package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSendsBearerAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(HealthResult{Status: "ok", Storage: "redis"})
	}))
	defer server.Close()

	var got HealthResult
	require.NoError(t, NewClient(server.URL+"/", "tok").Get(context.Background(), "/api/v1/health", &got))
	assert.Equal(t, "redis", got.Storage)
}

func TestClientReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":{"code":"ALREADY_PLAYED_TODAY","message":"come back later","details":{"day":"2025-03-10"}}}`))
	}))
	defer server.Close()

	err := NewClient(server.URL, "").Post(context.Background(), "/api/v1/daily/complete", map[string]int{"points": 1}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "ALREADY_PLAYED_TODAY", apiErr.Code)
	assert.Equal(t, "2025-03-10", apiErr.Details["day"])
	assert.Equal(t, "come back later (ALREADY_PLAYED_TODAY)", err.Error())
}

func TestClientNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewClient(server.URL, "").Get(context.Background(), "/", nil)
	assert.ErrorContains(t, err, "HTTP 502")
}

func TestClientTrace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var trace bytes.Buffer
	c := NewClient(server.URL, "")
	c.SetTrace(&trace)
	require.NoError(t, c.Post(context.Background(), "/api/v1/players/logout", nil, nil))

	assert.Contains(t, trace.String(), "> POST "+server.URL+"/api/v1/players/logout")
	assert.Contains(t, trace.String(), "< 204 No Content")
}
