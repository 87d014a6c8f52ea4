package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Listener metrics
	datagramsReceivedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pitwall_datagrams_received_total",
		Help: "Total UDP datagrams read from the telemetry socket",
	})

	datagramBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pitwall_datagram_bytes_total",
		Help: "Total bytes read from the telemetry socket",
	})

	datagramSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pitwall_datagram_size_bytes",
		Help:    "Size of received datagrams",
		Buckets: []float64{32, 149, 843, 1104, 1143, 1343, 1347},
	})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pitwall_datagrams_rate_limited_total",
		Help: "Datagrams dropped by the per-source rate limiter",
	})

	readErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pitwall_socket_read_errors_total",
		Help: "Socket read errors other than deadline expiry",
	})

	// Decoder metrics
	packetsDecodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_packets_decoded_total",
		Help: "Packets decoded per packet type",
	}, []string{"type"})

	packetsIgnoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_packets_ignored_total",
		Help: "Datagrams dropped by the decoder per reason",
	}, []string{"reason"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_events_total",
		Help: "Game events decoded per event kind",
	}, []string{"kind"})

	lastFrameID = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pitwall_last_frame_id",
		Help: "Frame id of the most recent packet per type",
	}, []string{"type"})

	decodeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pitwall_decode_duration_seconds",
		Help:    "Time spent decoding one datagram",
		Buckets: prometheus.ExponentialBuckets(0.000001, 4, 8), // 1µs to ~16ms
	})

	// History metrics
	historyEvictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_history_evictions_total",
		Help: "Records evicted from the history ring per packet type",
	}, []string{"type"})

	historySize = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pitwall_history_records",
		Help: "Records held in the history ring per packet type",
	}, []string{"type"})

	// Session metrics
	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pitwall_sessions_active",
		Help: "Game sessions that sent a datagram within the session timeout",
	})

	sessionsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pitwall_sessions_started_total",
		Help: "Game sessions seen for the first time",
	})

	// Publish metrics
	publishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_published_total",
		Help: "Records published to Redis per packet type",
	}, []string{"type"})

	publishErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_publish_errors_total",
		Help: "Failed Redis publishes per packet type",
	}, []string{"type"})

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitwall_http_requests_total",
		Help: "HTTP requests per route and status",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pitwall_http_request_duration_seconds",
		Help:    "HTTP request latency per route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// RecordDatagram counts a datagram read from the socket
func RecordDatagram(size int) {
	datagramsReceivedTotal.Inc()
	datagramBytesTotal.Add(float64(size))
	datagramSize.Observe(float64(size))
}

// IncrementRateLimited counts a datagram dropped by the rate limiter
func IncrementRateLimited() {
	rateLimitedTotal.Inc()
}

// IncrementReadError counts a failed socket read
func IncrementReadError() {
	readErrorsTotal.Inc()
}

// RecordDecoded counts a decoded packet and tracks its frame id
func RecordDecoded(packetType string, frameID uint32) {
	packetsDecodedTotal.WithLabelValues(packetType).Inc()
	lastFrameID.WithLabelValues(packetType).Set(float64(frameID))
}

// IncrementIgnored counts a dropped datagram
func IncrementIgnored(reason string) {
	packetsIgnoredTotal.WithLabelValues(reason).Inc()
}

// IncrementEvent counts a decoded game event
func IncrementEvent(kind string) {
	eventsTotal.WithLabelValues(kind).Inc()
}

// ObserveDecodeDuration records the time spent in the decoder
func ObserveDecodeDuration(seconds float64) {
	decodeDuration.Observe(seconds)
}

// IncrementHistoryEviction counts a record evicted from a history ring
func IncrementHistoryEviction(packetType string) {
	historyEvictionsTotal.WithLabelValues(packetType).Inc()
}

// SetHistorySize sets the number of records held for a packet type
func SetHistorySize(packetType string, n int) {
	historySize.WithLabelValues(packetType).Set(float64(n))
}

// SetActiveSessions sets the number of active game sessions
func SetActiveSessions(count int) {
	sessionsActive.Set(float64(count))
}

// IncrementSessionsStarted counts a newly seen game session
func IncrementSessionsStarted() {
	sessionsStartedTotal.Inc()
}

// IncrementPublished counts a published record
func IncrementPublished(packetType string) {
	publishedTotal.WithLabelValues(packetType).Inc()
}

// IncrementPublishError counts a failed publish
func IncrementPublishError(packetType string) {
	publishErrorsTotal.WithLabelValues(packetType).Inc()
}

// RecordHTTPRequest records one served HTTP request
func RecordHTTPRequest(method, route, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}
