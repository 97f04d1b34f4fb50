package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the video ingest service.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	uploadsTotal        prometheus.Counter
	videosStoredTotal   prometheus.Counter
	streamRequestsTotal prometheus.Counter
	bytesStreamedTotal  prometheus.Counter
	errorsTotal         prometheus.Counter
	storedAssets        prometheus.Gauge
}

// New creates and registers Prometheus metrics for the service.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "video_requests_total",
		Help: "Total number of HTTP requests received",
	})
	uploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "video_uploads_transcribed_total",
		Help: "Total number of uploads successfully transcribed",
	})
	videosStoredTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "video_stored_total",
		Help: "Total number of videos stored for streaming",
	})
	streamRequestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "video_stream_requests_total",
		Help: "Total number of partial-content responses served",
	})
	bytesStreamedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "video_stream_bytes_total",
		Help: "Total bytes delivered by range responses",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "video_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	storedAssets := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "video_stored_assets",
		Help: "Number of assets currently in the blob store",
	})

	registry.MustRegister(
		requestsTotal,
		uploadsTotal,
		videosStoredTotal,
		streamRequestsTotal,
		bytesStreamedTotal,
		errorsTotal,
		storedAssets,
	)

	return &Metrics{
		registry:            registry,
		requestsTotal:       requestsTotal,
		uploadsTotal:        uploadsTotal,
		videosStoredTotal:   videosStoredTotal,
		streamRequestsTotal: streamRequestsTotal,
		bytesStreamedTotal:  bytesStreamedTotal,
		errorsTotal:         errorsTotal,
		storedAssets:        storedAssets,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncUploads increments the transcribed uploads counter.
func (m *Metrics) IncUploads() {
	m.uploadsTotal.Inc()
}

// IncVideosStored increments the stored videos counter.
func (m *Metrics) IncVideosStored() {
	m.videosStoredTotal.Inc()
}

// IncStreamRequests increments the partial-content responses counter.
func (m *Metrics) IncStreamRequests() {
	m.streamRequestsTotal.Inc()
}

// AddBytesStreamed adds n to the streamed bytes counter.
func (m *Metrics) AddBytesStreamed(n int64) {
	m.bytesStreamedTotal.Add(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// SetStoredAssets sets the stored assets gauge.
func (m *Metrics) SetStoredAssets(n int) {
	m.storedAssets.Set(float64(n))
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values
// (e.g. the stored asset count).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
