// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequests counts handled requests by route pattern and status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytravel",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	// HTTPDuration observes request latency by route pattern
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "familytravel",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// UsersCreated counts new users by how their family was chosen
	UsersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytravel",
		Name:      "users_created_total",
		Help:      "Users created, by new_family or existing_family.",
	}, []string{"family"})

	// VisitsRecorded counts visit attempts by outcome
	VisitsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "familytravel",
		Name:      "visits_recorded_total",
		Help:      "Visit attempts by outcome: recorded, duplicate, not_found.",
	}, []string{"outcome"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one finished request
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
