package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PipewrightRevalidations counts full validation passes
	PipewrightRevalidations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipewright_revalidations_total",
			Help: "Total number of full validation passes over the graph",
		},
	)

	// PipewrightInvalidSegments tracks the number of overloaded segments
	PipewrightInvalidSegments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipewright_invalid_segments",
			Help: "Number of pipe segments whose flow exceeds capacity",
		},
	)

	// PipewrightNodes tracks the current node count by type
	PipewrightNodes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pipewright_nodes",
			Help: "Current number of nodes in the layout",
		},
		[]string{"type"},
	)

	// PipewrightEdges tracks the current segment count
	PipewrightEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipewright_edges",
			Help: "Current number of pipe segments in the layout",
		},
	)

	// PipewrightAuditTotal counts audit runs by outcome
	PipewrightAuditTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipewright_audit_total",
			Help: "Total number of audit report requests",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(PipewrightRevalidations)
	prometheus.MustRegister(PipewrightInvalidSegments)
	prometheus.MustRegister(PipewrightNodes)
	prometheus.MustRegister(PipewrightEdges)
	prometheus.MustRegister(PipewrightAuditTotal)
}
