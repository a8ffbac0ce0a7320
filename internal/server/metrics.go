package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbatch_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "qrbatch_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Rendering metrics
	qrRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbatch_qr_requests_total",
			Help: "Total number of QR render requests",
		},
		[]string{"status"}, // status: success, invalid, too_long, error
	)

	qrRenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrbatch_qr_render_duration_seconds",
			Help:    "Time spent encoding, rasterizing and compressing one code",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	qrSymbolVersion = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrbatch_qr_symbol_version",
			Help:    "QR version of rendered symbols",
			Buckets: []float64{1, 2, 3, 5, 10, 15, 20, 25, 30, 40},
		},
	)

	qrPayloadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qrbatch_qr_payload_bytes",
			Help:    "Size of requested payloads in bytes",
			Buckets: []float64{16, 32, 64, 128, 256, 512, 1024, 2048, 4096},
		},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qrbatch_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests
	)
)
