package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "debateboard"

type Metrics struct {
	// VotesTotal counts vote toggles by outcome (registered, changed, removed).
	VotesTotal *prometheus.CounterVec

	// TreeFetchSeconds measures tree assembly, storage round trips included.
	TreeFetchSeconds prometheus.Histogram

	// RequestsTotal counts HTTP requests by route template and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestSeconds measures HTTP request latency by route template.
	RequestSeconds *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VotesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "votes_total",
				Help:      "Vote toggles by outcome",
			},
			[]string{"outcome"},
		),
		TreeFetchSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "tree_fetch_seconds",
				Help:      "Time to assemble one page of an argument tree",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		RequestSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_seconds",
				Help:      "HTTP request latency by route",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}
