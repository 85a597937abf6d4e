// internal/utils/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"
)

// RecordRequest records one handled API request
func (c *Collector) RecordRequest(route, method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordUpstream records a call to an external service. err == nil counts
// as success.
func (c *Collector) RecordUpstream(service string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	c.upstreamRequests.WithLabelValues(service, status).Inc()
	c.upstreamLatency.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordUpload records the size of an accepted image
func (c *Collector) RecordUpload(size int64) {
	if c == nil {
		return
	}
	c.uploadBytes.Observe(float64(size))
}

// RecordEstimate counts one computed estimate of the given kind
func (c *Collector) RecordEstimate(kind string) {
	if c == nil {
		return
	}
	c.estimates.WithLabelValues(kind).Inc()
}

// RecordRateLimited counts one rejected request
func (c *Collector) RecordRateLimited() {
	if c == nil {
		return
	}
	c.rateLimited.Inc()
}

// MeasureUpstream runs f and records its latency under service
func (c *Collector) MeasureUpstream(service string, f func() error) error {
	start := time.Now()
	err := f()
	c.RecordUpstream(service, time.Since(start), err)
	return err
}
