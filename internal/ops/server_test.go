package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(context.Context) error { return m.err }

func doRequest(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestLiveness(t *testing.T) {
	srv := NewServer("8080", &mockPinger{})

	rec := doRequest(srv, "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "uptime")
}

func TestReadiness_Healthy(t *testing.T) {
	srv := NewServer("8080", &mockPinger{})

	rec := doRequest(srv, "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_DatabaseDown(t *testing.T) {
	srv := NewServer("8080", &mockPinger{err: errors.New("database locked")})

	rec := doRequest(srv, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unhealthy", body["status"])
	assert.Equal(t, "database", body["failed_check"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer("8080", &mockPinger{})

	rec := doRequest(srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
