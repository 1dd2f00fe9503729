package matric

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, slog.New(slog.DiscardHandler))
}

func TestAllocate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/matric/allocate", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "CS", req["prefix"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matric_no":"CS/2025/0001"}`))
	})

	matricNo, err := client.Allocate(context.Background(), "CS")
	require.NoError(t, err)
	assert.Equal(t, "CS/2025/0001", matricNo)
}

func TestAllocate_EmptyResultIsError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"matric_no":""}`))
	})

	_, err := client.Allocate(context.Background(), "CS")
	assert.Error(t, err)
}

func TestAllocate_UpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Allocate(context.Background(), "CS")
	assert.Error(t, err)
}
