package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	interactionsTotal    *prometheus.CounterVec
	busEventsTotal       *prometheus.CounterVec
	busHandlerFailures   *prometheus.CounterVec
	storeErrorsTotal     *prometheus.CounterVec
	malformedRecords     *prometheus.CounterVec
	galleryRequestsTotal *prometheus.CounterVec
	galleryLatency       prometheus.Histogram
	streamConnections    prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used across the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fotoowl_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		interactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_interactions_total",
			Help: "Reactions and comments created, by backend.",
		}, []string{"type", "backend"})

		busEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_bus_events_total",
			Help: "Events dispatched on the local bus, by origin.",
		}, []string{"kind", "origin"})

		busHandlerFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_bus_handler_failures_total",
			Help: "Bus handlers that returned an error or panicked.",
		}, []string{"kind"})

		storeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_store_errors_total",
			Help: "Durable store operations that failed.",
		}, []string{"op"})

		malformedRecords = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_malformed_records_total",
			Help: "Stored or received records discarded because they did not parse.",
		}, []string{"source"})

		galleryRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fotoowl_gallery_requests_total",
			Help: "Gallery page requests by result.",
		}, []string{"result"})

		galleryLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fotoowl_gallery_latency_seconds",
			Help:    "Latency of gallery page lookups.",
			Buckets: prometheus.DefBuckets,
		})

		streamConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fotoowl_stream_connections",
			Help: "Open websocket interaction streams.",
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			interactionsTotal, busEventsTotal, busHandlerFailures,
			storeErrorsTotal, malformedRecords,
			galleryRequestsTotal, galleryLatency, streamConnections,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Interactions counts created reactions and comments.
func Interactions() *prometheus.CounterVec {
	RegisterMetrics()
	return interactionsTotal
}

// BusEvents counts dispatched bus events.
func BusEvents() *prometheus.CounterVec {
	RegisterMetrics()
	return busEventsTotal
}

// BusHandlerFailures counts isolated handler failures.
func BusHandlerFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return busHandlerFailures
}

// StoreErrors counts failed store reads and writes.
func StoreErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return storeErrorsTotal
}

// MalformedRecords counts discarded records.
func MalformedRecords() *prometheus.CounterVec {
	RegisterMetrics()
	return malformedRecords
}

// GalleryRequests counts gallery page lookups.
func GalleryRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return galleryRequestsTotal
}

// GalleryLatency exposes the gallery lookup histogram.
func GalleryLatency() prometheus.Histogram {
	RegisterMetrics()
	return galleryLatency
}

// StreamConnections tracks open websocket streams.
func StreamConnections() prometheus.Gauge {
	RegisterMetrics()
	return streamConnections
}
