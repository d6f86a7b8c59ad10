package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics
var (
	quotesIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftvault_quotes_issued_total",
		Help: "Total quotes issued",
	})

	payoutsComputedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "giftvault_payouts_computed_total",
		Help: "Total payouts computed against locked quotes",
	})

	alertsFiredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftvault_alerts_fired_total",
		Help: "Total rate alerts fired",
	}, []string{"kind"})
)
