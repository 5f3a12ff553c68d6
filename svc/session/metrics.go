package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "geodash",
	Subsystem: "session",
	Name:      "operations_total",
	Help:      "Session operations by outcome.",
}, []string{"operation", "outcome"})

// observe counts one operation outcome.
func observe(op string, err error) {
	operationsTotal.WithLabelValues(op, outcome(err)).Inc()
}
