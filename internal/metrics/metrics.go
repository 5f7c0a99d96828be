// Package metrics collects and exposes Prometheus metrics for the
// storefront engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	fetchesStarted *prometheus.CounterVec
	fetchErrors    *prometheus.CounterVec
	staleDropped   *prometheus.CounterVec
	cartMutations  *prometheus.CounterVec
}

// NewCollector creates the collectors and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_catalog_fetches_total",
			Help: "Catalog fetches started, by slot.",
		}, []string{"slot"}),
		fetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_catalog_fetch_errors_total",
			Help: "Catalog fetches settled with an error, by slot.",
		}, []string{"slot"}),
		staleDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_catalog_stale_responses_dropped_total",
			Help: "Responses discarded because a newer request superseded them.",
		}, []string{"slot"}),
		cartMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart ledger mutations applied, by operation.",
		}, []string{"op"}),
	}
	reg.MustRegister(c.fetchesStarted, c.fetchErrors, c.staleDropped, c.cartMutations)
	return c
}

func (c *Collector) RecordFetchStarted(slot string) {
	c.fetchesStarted.WithLabelValues(slot).Inc()
}

func (c *Collector) RecordFetchError(slot string) {
	c.fetchErrors.WithLabelValues(slot).Inc()
}

func (c *Collector) RecordStaleDropped(slot string) {
	c.staleDropped.WithLabelValues(slot).Inc()
}

func (c *Collector) RecordCartMutation(op string) {
	c.cartMutations.WithLabelValues(op).Inc()
}

// SetupMetricsRoute returns the handler serving the registry at /metrics.
func SetupMetricsRoute(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}
