package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	strategyAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloomwatch_catalog_strategy_attempts_total",
		Help: "Catalog search strategy attempts, by strategy name.",
	}, []string{"strategy"})

	strategyFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloomwatch_catalog_strategy_failures_total",
		Help: "Catalog search strategy transport or parse failures, by strategy name.",
	}, []string{"strategy"})

	strategyWins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloomwatch_catalog_strategy_wins_total",
		Help: "Catalog searches resolved by each strategy.",
	}, []string{"strategy"})
)
