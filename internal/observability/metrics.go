package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	pairsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricer_pairs_total",
			Help: "Product/site pairs processed, by outcome",
		},
		[]string{"site", "outcome"},
	)

	pairSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pricer_pair_seconds",
			Help:    "Time spent on one product/site pair",
			Buckets: []float64{1, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"site"},
	)
)

func init() {
	registry.MustRegister(pairsTotal, pairSeconds)
}

// Handler serves the pricer metrics in the prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
