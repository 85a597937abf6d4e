package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.RecordEstimate("dev_buy")
	a.RecordEstimate("dev_buy")

	assert.Equal(t, 2.0, testutil.ToFloat64(a.estimates.WithLabelValues("dev_buy")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.estimates.WithLabelValues("dev_buy")))
}

func TestRecordUpstream(t *testing.T) {
	c := NewCollector()

	require.NoError(t, c.MeasureUpstream("pinata", func() error { return nil }))
	require.Error(t, c.MeasureUpstream("pinata", func() error { return errors.New("boom") }))
	c.RecordUpstream("moralis", time.Millisecond, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.upstreamRequests.WithLabelValues("pinata", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upstreamRequests.WithLabelValues("pinata", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upstreamRequests.WithLabelValues("moralis", "success")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("/api/estimate/dev-buy", "POST", 200, 3*time.Millisecond)
	c.RecordRateLimited()
	c.RecordUpload(2048)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `clanker_launchpad_http_requests_total{method="POST",route="/api/estimate/dev-buy",status="200"} 1`)
	assert.Contains(t, string(body), "clanker_launchpad_rate_limited_total 1")
	assert.Contains(t, string(body), "clanker_launchpad_upload_size_bytes_count 1")
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordRequest("/", "GET", 200, time.Millisecond)
		c.RecordUpstream("rpc", time.Millisecond, nil)
		c.RecordEstimate("quick")
		c.RecordRateLimited()
		c.RecordUpload(1)
		assert.NoError(t, c.MeasureUpstream("rpc", func() error { return nil }))
	})
}
