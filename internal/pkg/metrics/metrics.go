package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SwapsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaslessgate_swaps_total",
		Help: "Swaps that reached a terminal state, by outcome",
	}, []string{"status"})

	PhaseDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gaslessgate_phase_duration_seconds",
		Help:    "Time spent in each swap phase",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"phase"})

	PollAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaslessgate_poll_attempts_total",
		Help: "Status poll attempts by outcome",
	}, []string{"outcome"})

	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gaslessgate_upstream_requests_total",
		Help: "Requests sent to the gasless API",
	}, []string{"endpoint", "code"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gaslessgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
