// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics exposes Prometheus counters and histograms for pipeline
// stages. Metrics are registered on a caller-supplied registerer so tests and
// embedded servers can keep their own registries.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage names used as label values.
const (
	StageResearch  = "research"
	StageSynthesis = "synthesis"
	StageEditing   = "editing"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeDegraded = "degraded"
)

// Metrics holds the pipeline collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	stageOutcomes *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	reports       prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		stageOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "report_engine",
			Name:      "stage_outcomes_total",
			Help:      "Pipeline stage completions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "report_engine",
			Name:      "stage_duration_seconds",
			Help:      "Wall time of each pipeline stage, including the completion call.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		reports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "report_engine",
			Name:      "reports_total",
			Help:      "Reports produced by the pipeline.",
		}),
	}
	for _, c := range []prometheus.Collector{m.stageOutcomes, m.stageDuration, m.reports} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveStage records one stage run.
func (m *Metrics) ObserveStage(stage string, degraded bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if degraded {
		outcome = OutcomeDegraded
	}
	m.stageOutcomes.WithLabelValues(stage, outcome).Inc()
	m.stageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ReportProduced counts one finished pipeline run.
func (m *Metrics) ReportProduced() {
	if m == nil {
		return
	}
	m.reports.Inc()
}
