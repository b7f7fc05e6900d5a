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
	metricPrefix = "cafe_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	reportOperations *prometheus.CounterVec
	loginAttempts    *prometheus.CounterVec
)

// Init registers service metrics. db may be nil (in-memory store).
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		)
		reportOperations = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_operations_total",
				Help: "Daily report ledger operations by operation and result",
			},
			[]string{"operation", "result"},
		)
		loginAttempts = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			reportOperations,
			loginAttempts,
		)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "cafe"))
		}
	})
}

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}

// ObserveReportOperation counts a ledger operation outcome.
func ObserveReportOperation(operation string, err error) {
	if reportOperations != nil {
		reportOperations.WithLabelValues(operation, result(err)).Inc()
	}
}

// ObserveLogin counts a login attempt.
func ObserveLogin(err error) {
	if loginAttempts != nil {
		loginAttempts.WithLabelValues(result(err)).Inc()
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
