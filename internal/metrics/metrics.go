// Package metrics exposes Prometheus collectors for ledger operations and HTTP traffic.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"guild-economy-api/pkg/apierror"
)

var (
	// Registry holds every collector in this package. It is separate from the
	// default registry so tests and embedders get a clean set.
	Registry = prometheus.NewRegistry()

	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "economy",
			Name:      "ledger_operations_total",
			Help:      "Ledger operations by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	rewardsGranted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "economy",
			Name:      "rewards_granted_total",
			Help:      "Timed rewards collected by type.",
		},
		[]string{"type"},
	)

	rewardAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "economy",
			Name:      "reward_amount_total",
			Help:      "Currency paid out by timed rewards.",
		},
		[]string{"type"},
	)

	guildsNormalized = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "economy",
			Name:      "guilds_normalized_total",
			Help:      "Guild documents rewritten by the maintenance pass.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "economy",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "economy",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

func init() {
	Registry.MustRegister(
		ledgerOperations,
		rewardsGranted,
		rewardAmount,
		guildsNormalized,
		httpRequests,
		httpDuration,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		if apiErr.Reason != "" {
			return strings.ToLower(apiErr.Reason)
		}
		return strings.ToLower(apiErr.Code)
	}
	return "error"
}

// RecordOperation counts one ledger operation.
func RecordOperation(op string, err error) {
	ledgerOperations.WithLabelValues(op, Outcome(err)).Inc()
}

// RecordReward counts a granted reward and its amount.
func RecordReward(rewardType string, amount int64) {
	rewardsGranted.WithLabelValues(rewardType).Inc()
	rewardAmount.WithLabelValues(rewardType).Add(float64(amount))
}

// RecordNormalized counts guild documents repaired by maintenance.
func RecordNormalized(n int) {
	guildsNormalized.Add(float64(n))
}

// RecordHTTP records one served request.
func RecordHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
