package metrics

import (
    "sync"
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    stageResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
        Name:    "docqa_stage_results",
        Help:    "Number of hits returned by a retrieval stage",
        Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
    }, []string{"stage"})

    turnLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
        Name:    "docqa_turn_latency_ms",
        Help:    "End to end latency of one question turn in milliseconds",
        Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
    }, []string{"query_type"})

    fallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "docqa_fallback_total",
        Help: "Fallback tier activations by tier name",
    }, []string{"tier"})

    synthesisMode = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "docqa_synthesis_mode_total",
        Help: "Synthesis mode usage",
    }, []string{"mode"})

    turnOutcome = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "docqa_turn_outcome_total",
        Help: "Turn outcomes (ok/degraded/failed)",
    }, []string{"outcome"})
)

func ensureRegistered() {
    once.Do(func() {
        prometheus.MustRegister(stageResults, turnLatency, fallbackTotal, synthesisMode, turnOutcome)
    })
}

// ObserveStage records the hit count of one retrieval stage.
func ObserveStage(stage string, results int) {
    ensureRegistered()
    stageResults.WithLabelValues(stage).Observe(float64(results))
}

// ObserveTurn records the latency of one completed turn.
func ObserveTurn(queryType string, start time.Time) {
    ensureRegistered()
    turnLatency.WithLabelValues(queryType).Observe(float64(time.Since(start).Milliseconds()))
}

// IncFallback increments the counter for a fallback tier.
func IncFallback(tier string) {
    ensureRegistered()
    fallbackTotal.WithLabelValues(tier).Inc()
}

// IncSynthesisMode counts a synthesis mode invocation.
func IncSynthesisMode(mode string) {
    ensureRegistered()
    synthesisMode.WithLabelValues(mode).Inc()
}

// IncOutcome counts a turn outcome.
func IncOutcome(outcome string) {
    ensureRegistered()
    turnOutcome.WithLabelValues(outcome).Inc()
}

// Collectors exposes all collectors for external registration with a custom registry.
func Collectors() []prometheus.Collector {
    return []prometheus.Collector{
        stageResults, turnLatency, fallbackTotal, synthesisMode, turnOutcome,
    }
}
