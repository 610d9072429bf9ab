// Package metrics exposes prometheus counters for the enhancement pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EnhancementsCompleted counts todos moved to a terminal status, by outcome.
	EnhancementsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todoapp_enhancements_completed_total",
		Help: "Enhancement tasks that reached a terminal status, by outcome.",
	}, []string{"outcome"})

	// EnhancementsDropped counts tasks lost before completion: queue full on
	// dispatch, or abandoned in the queue at shutdown.
	EnhancementsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "todoapp_enhancements_dropped_total",
		Help: "Enhancement tasks dropped before reaching a terminal status.",
	}, []string{"reason"})

	// EnhancementsStuck counts todos left pending forever because both
	// terminal writes failed. The one unrecoverable degraded state.
	EnhancementsStuck = promauto.NewCounter(prometheus.CounterOpts{
		Name: "todoapp_enhancements_stuck_pending_total",
		Help: "Todos left pending because the terminal status write failed twice.",
	})
)

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
