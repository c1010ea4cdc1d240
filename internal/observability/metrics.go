package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccview",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ccview",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	decodedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccview",
			Subsystem: "protocol",
			Name:      "messages_decoded_total",
			Help:      "Messages produced by protocol reads.",
		},
		[]string{"protocol", "message"},
	)
	invalidMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccview",
			Subsystem: "protocol",
			Name:      "messages_invalid_total",
			Help:      "Invalid messages produced by protocol reads.",
		},
		[]string{"protocol", "reason"},
	)
	encodedMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccview",
			Subsystem: "protocol",
			Name:      "messages_encoded_total",
			Help:      "Messages serialized by protocol writes.",
		},
		[]string{"protocol", "message"},
	)
	pipelineBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccview",
			Subsystem: "pipeline",
			Name:      "bytes_total",
			Help:      "Bytes moved through a pipeline stage.",
		},
		[]string{"stage", "direction"},
	)
	pipelineErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ccview",
			Subsystem: "pipeline",
			Name:      "errors_total",
			Help:      "Errors reported by sockets and filters.",
		},
		[]string{"stage"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests, httpDuration,
			decodedMessages, invalidMessages, encodedMessages,
			pipelineBytes, pipelineErrors,
		)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

func RecordDecoded(protocol, message string) {
	RegisterMetrics()
	decodedMessages.WithLabelValues(protocol, message).Inc()
}

func RecordInvalid(protocol, reason string) {
	RegisterMetrics()
	invalidMessages.WithLabelValues(protocol, reason).Inc()
}

func RecordEncoded(protocol, message string) {
	RegisterMetrics()
	encodedMessages.WithLabelValues(protocol, message).Inc()
}

// RecordBytes counts n bytes through stage. Direction is "in" or "out".
func RecordBytes(stage, direction string, n int) {
	if n <= 0 {
		return
	}
	RegisterMetrics()
	pipelineBytes.WithLabelValues(stage, direction).Add(float64(n))
}

func RecordPipelineError(stage string) {
	RegisterMetrics()
	pipelineErrors.WithLabelValues(stage).Inc()
}
