package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/newthinker/copyhub/internal/app"
	"github.com/newthinker/copyhub/internal/core"
	"github.com/newthinker/copyhub/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource []core.Provider

func (s staticSource) Providers(context.Context, core.ProviderQuery) ([]core.Provider, error) {
	return s, nil
}

func newTestServer(t *testing.T, apiKey string) *httptest.Server {
	t.Helper()
	a, err := app.New(app.Deps{
		Source:  staticSource{{ID: "p1", Name: "Alpha", Quote: "USDT"}},
		Metrics: metrics.NewRegistry(),
	}, time.Minute)
	require.NoError(t, err)

	s := NewServer(Config{Host: "127.0.0.1", Port: 8080, APIKey: apiKey, MetricsPath: "/metrics", Version: "test"}, a, nil)
	assert.Equal(t, "127.0.0.1:8080", s.Addr())

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, apiKey, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer_Routes(t *testing.T) {
	ts := newTestServer(t, "secret")

	tests := []struct {
		method string
		path   string
		key    string
		body   string
		want   int
	}{
		{"GET", "/api/health", "", "", http.StatusOK},
		{"GET", "/api/v1/providers", "", "", http.StatusUnauthorized},
		{"GET", "/api/v1/providers", "secret", "", http.StatusOK},
		{"GET", "/api/v1/providers/options", "secret", "", http.StatusOK},
		{"DELETE", "/api/v1/providers/filters", "secret", "", http.StatusOK},
		{"DELETE", "/api/v1/providers/sort", "secret", "", http.StatusOK},
		{"POST", "/api/v1/positions/entry", "secret", `{"price":"10"}`, http.StatusOK},
		{"POST", "/api/v1/providers", "secret", "", http.StatusMethodNotAllowed},
		{"GET", "/api/v1/unknown", "secret", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := do(t, tt.method, ts.URL+tt.path, tt.key, tt.body)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestServer_RequestIDAndMetrics(t *testing.T) {
	ts := newTestServer(t, "")

	resp := do(t, "GET", ts.URL+"/api/v1/providers", "", "")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = do(t, "GET", ts.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="GET /api/v1/providers",status="2xx"} 1`)
	assert.Contains(t, string(body), "copyhub_provider_fetches_total")
}
