// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus instruments for the extraction
// pipeline and upload surface, plus dto-based readers so the status endpoint
// and tests can inspect values without scraping /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	extractTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparkledex_extract_total",
		Help: "Total number of extraction passes performed",
	})

	extractDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sparkledex_extract_duration_seconds",
		Help:    "Wall time of one extraction pass",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	extractNames = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sparkledex_extract_names",
		Help:    "Names found per extraction pass",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"kind"}) // kind=unique|duplicate

	extractInputBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sparkledex_extract_input_bytes",
		Help:    "Size of submitted transcripts in bytes",
		Buckets: prometheus.ExponentialBuckets(64, 4, 12),
	})

	uploadRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sparkledex_upload_rejected_total",
		Help: "Uploads rejected before extraction, by reason",
	}, []string{"reason"}) // reason=too_large|rate_limited|bad_multipart
)

// Upload rejection reasons.
const (
	ReasonTooLarge     = "too_large"
	ReasonRateLimited  = "rate_limited"
	ReasonBadMultipart = "bad_multipart"
)

// RecordExtraction records one extraction pass.
func RecordExtraction(inputBytes int, unique, duplicates int, elapsed time.Duration) {
	extractTotal.Inc()
	extractDuration.Observe(elapsed.Seconds())
	extractInputBytes.Observe(float64(inputBytes))
	extractNames.WithLabelValues("unique").Observe(float64(unique))
	extractNames.WithLabelValues("duplicate").Observe(float64(duplicates))
}

// RecordUploadRejected counts a rejected upload.
func RecordUploadRejected(reason string) {
	uploadRejected.WithLabelValues(reason).Inc()
}

// ExtractionsServed returns the total number of extraction passes so far
// (for the status endpoint and tests).
func ExtractionsServed() float64 {
	return counterValue(extractTotal)
}

// UploadsRejected returns the rejection count for one reason.
func UploadsRejected(reason string) float64 {
	c, err := uploadRejected.GetMetricWithLabelValues(reason)
	if err != nil {
		return 0
	}
	return counterValue(c)
}

// NamesObserved returns count and sum of the per-pass name histogram for one
// kind ("unique" or "duplicate").
func NamesObserved(kind string) (count uint64, sum float64) {
	h, err := extractNames.GetMetricWithLabelValues(kind)
	if err != nil {
		return 0, 0
	}
	var m dto.Metric
	if err := h.(prometheus.Histogram).Write(&m); err != nil {
		return 0, 0
	}
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
