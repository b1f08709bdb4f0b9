package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts catalog fetches.
	// Labels: result (success, network, status, decode)
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "projectdeck",
			Subsystem: "catalog",
			Name:      "fetch_total",
			Help:      "Total number of catalog fetches by result",
		},
		[]string{"result"},
	)

	// FetchDuration tracks how long catalog fetches take.
	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "projectdeck",
			Subsystem: "catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of catalog fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// FetchedProjects is the size of the last successfully fetched catalog.
	FetchedProjects = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "projectdeck",
			Subsystem: "catalog",
			Name:      "fetched_projects",
			Help:      "Number of projects in the last successful fetch",
		},
	)
)
