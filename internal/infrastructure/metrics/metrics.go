package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DirectoryLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "directory_loads_total",
			Help: "Total number of profile directory loads",
		},
		[]string{"status"},
	)

	DirectoryLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "directory_load_duration_seconds",
			Help:    "Duration of profile directory loads",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProfileEdits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_edits_total",
			Help: "Total number of profile edit attempts",
		},
		[]string{"status"},
	)

	DescriptionSuggestions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "description_suggestions_total",
			Help: "Total number of description suggestion requests",
		},
		[]string{"source"},
	)
)

// Outcome labels shared by the counters above.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusDenied  = "denied"
	StatusInvalid = "invalid"
)
