package tile

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloomwatch_tile_outcomes_total",
		Help: "Tile pipeline completions, by outcome (success or failure kind).",
	}, []string{"outcome"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bloomwatch_tile_duration_seconds",
		Help:    "Wall time of successful tile pipeline runs.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)
