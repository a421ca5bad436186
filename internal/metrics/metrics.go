// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package metrics collects per-run counters for bridge calls, retries, cache
// lookups and pull duration, and writes them in the Prometheus text format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rosetta"

// Metrics holds the collectors for one CLI invocation.
type Metrics struct {
	registry *prometheus.Registry

	bridgeCalls    *prometheus.CounterVec
	bridgeDuration *prometheus.HistogramVec
	retryAttempts  *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	pullDuration   *prometheus.HistogramVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bridgeCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "calls_total",
			Help:      "Worker invocations by function and outcome.",
		}, []string{"function", "outcome"}),
		bridgeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bridge",
			Name:      "call_duration_seconds",
			Help:      "Wall time of one worker process, spawn to exit.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"function"}),
		retryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "retry",
			Name:      "attempts_total",
			Help:      "Retry coordinator attempts by result.",
		}, []string{"result"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Pull cache lookups by result.",
		}, []string{"result"}),
		pullDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pull",
			Name:      "duration_seconds",
			Help:      "End-to-end pull pipeline duration.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
	}
	m.registry.MustRegister(m.bridgeCalls, m.bridgeDuration, m.retryAttempts, m.cacheLookups, m.pullDuration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveBridge matches the bridge observer signature.
func (m *Metrics) ObserveBridge(function string, elapsed time.Duration, outcome string) {
	m.bridgeCalls.WithLabelValues(function, outcome).Inc()
	m.bridgeDuration.WithLabelValues(function).Observe(elapsed.Seconds())
}

// ObserveCache counts one cache lookup.
func (m *Metrics) ObserveCache(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRetry counts one attempt result: failed, succeeded or exhausted.
func (m *Metrics) ObserveRetry(result string) {
	m.retryAttempts.WithLabelValues(result).Inc()
}

// ObservePull records a finished pull served from source ("cache" or "remote").
func (m *Metrics) ObservePull(source string, elapsed time.Duration) {
	m.pullDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// WriteFile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
