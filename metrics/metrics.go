package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stocktake_scans_total",
		Help: "Classified codes by dialect.",
	}, []string{"dialect"})

	ResolveMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocktake_resolve_misses_total",
		Help: "Scans that matched no catalog article.",
	})

	ImportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stocktake_catalog_imports_total",
		Help: "Completed catalog replacements.",
	})

	ExportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stocktake_exports_total",
		Help: "Exported session workbooks by kind.",
	}, []string{"kind"})
)
