package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestapp_gateway_requests_total",
			Help: "Total number of requests handled by the gateway",
		},
		[]string{"route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contestapp_gateway_request_duration_seconds",
			Help:    "Duration of gateway request handling in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// Authentication metrics
	AuthOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestapp_gateway_auth_outcomes_total",
			Help: "Total number of authentication decisions by outcome",
		},
		[]string{"outcome"},
	)

	RefreshAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestapp_gateway_refresh_attempts_total",
			Help: "Total number of transparent token refresh attempts",
		},
		[]string{"result"},
	)

	// Proxy metrics
	ProxyErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contestapp_gateway_proxy_errors_total",
			Help: "Total number of downstream forwarding failures",
		},
		[]string{"route"},
	)

	RoutesUnmatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "contestapp_gateway_routes_unmatched_total",
			Help: "Total number of requests with no matching route",
		},
	)
)
