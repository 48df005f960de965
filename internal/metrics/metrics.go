package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "controlnest_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	mediaOps     *prometheus.CounterVec
	mediaLatency *prometheus.HistogramVec

	pushDeliveries *prometheus.CounterVec
	pushDropped    prometheus.Counter
)

// Init registers the service collectors. db may be nil.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		)

		mediaOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "media_operations_total",
				Help: "Total media host operations by kind and result",
			},
			[]string{"op", "result"},
		)
		mediaLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "media_operation_duration_seconds",
				Help:    "Media host operation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		)

		pushDeliveries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "push_deliveries_total",
				Help: "Total web push deliveries by result",
			},
			[]string{"result"},
		)
		pushDropped = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "push_events_dropped_total",
				Help: "Device status events dropped because the queue was full",
			},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			mediaOps,
			mediaLatency,
			pushDeliveries,
			pushDropped,
		)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "controlnest"))
		}
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTP records one served request.
func ObserveHTTP(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route, method).Observe(duration.Seconds())
	}
}

// ObserveMedia records an upload or delete against the media host.
func ObserveMedia(op string, err error, duration time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if mediaOps != nil {
		mediaOps.WithLabelValues(op, result).Inc()
	}
	if mediaLatency != nil {
		mediaLatency.WithLabelValues(op).Observe(duration.Seconds())
	}
}

// IncPushDelivery counts one web push attempt by result.
func IncPushDelivery(result string) {
	if result == "" {
		result = "unknown"
	}
	if pushDeliveries != nil {
		pushDeliveries.WithLabelValues(result).Inc()
	}
}

// IncPushDropped counts a status event that could not be queued.
func IncPushDropped() {
	if pushDropped != nil {
		pushDropped.Inc()
	}
}
