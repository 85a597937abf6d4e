package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/clanker-launchpad/internal/utils/metrics"
)

func getRequest(url string) RequestFunc {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func newTestClient(t *testing.T, retries int) *Client {
	return New(nil, retries, zaptest.NewLogger(t), nil).WithRetryInterval(time.Millisecond)
}

func TestDoJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Meme"}`))
	}))
	defer srv.Close()

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, newTestClient(t, 0).DoJSON(context.Background(), "test", getRequest(srv.URL), &out))
	assert.Equal(t, "Meme", out.Name)
}

func TestDoJSONRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, 3).DoJSON(context.Background(), "test", getRequest(srv.URL), nil))
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoJSONClientErrorsAreTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestClient(t, 3).DoJSON(context.Background(), "moralis", getRequest(srv.URL), nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "moralis", upErr.Service)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "bad key")
	assert.False(t, upErr.Temporary())
}

func TestDoJSONGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := newTestClient(t, 2).DoJSON(context.Background(), "alchemy", getRequest(srv.URL), nil)
	upErr, ok := AsError(err)
	require.True(t, ok)
	assert.True(t, upErr.Temporary())
	assert.Equal(t, int32(3), calls.Load())
}

func TestDoJSONBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := newTestClient(t, 2).DoJSON(context.Background(), "test", getRequest(srv.URL), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestDoJSONRecordsEveryAttempt(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	collector := metrics.NewCollector()
	client := New(nil, 2, zaptest.NewLogger(t), collector).WithRetryInterval(time.Millisecond)
	require.NoError(t, client.DoJSON(context.Background(), "pinata", getRequest(srv.URL), nil))

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `clanker_launchpad_upstream_requests_total{service="pinata",status="failure"} 1`)
	assert.Contains(t, string(body), `clanker_launchpad_upstream_requests_total{service="pinata",status="success"} 1`)
	assert.Contains(t, string(body), `clanker_launchpad_upstream_latency_seconds_count{service="pinata"} 2`)
}
