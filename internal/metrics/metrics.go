// Package metrics exposes Prometheus counters for the conflict outcomes
// the repositories detect. Counters are registered on the default
// registry; serve them with promhttp if a scrape endpoint is wanted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Conflict kinds reported by the repositories.
const (
	KindStamp    = "stamp"
	KindCounter  = "counter"
	KindUnique   = "unique"
	KindLockWait = "lock_wait"
)

var conflicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rowguard",
	Name:      "conflicts_total",
	Help:      "Write conflicts detected, by table and kind.",
}, []string{"table", "kind"})

var failures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rowguard",
	Name:      "failures_total",
	Help:      "Unexpected repository failures, by table.",
}, []string{"table"})

// Conflict records one detected write conflict.
func Conflict(table, kind string) {
	conflicts.WithLabelValues(table, kind).Inc()
}

// Failure records one unexpected repository failure.
func Failure(table string) {
	failures.WithLabelValues(table).Inc()
}
