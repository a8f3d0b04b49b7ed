package pricing

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metrics

var (
	quotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_quotes_total",
			Help: "Number of price quotes by outcome",
		},
		[]string{"outcome"},
	)

	rulesApplied = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pricing_rules_applied_total",
			Help: "Number of pricing rules applied to quotes",
		},
	)

	penaltiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_penalties_total",
			Help: "Number of non-zero penalties charged on return",
		},
		[]string{"kind"},
	)
)
