// Copyright 2025 Certen Protocol
//
// Prometheus gauges and counters for the follower and the HTTP read API,
// exposed via promhttp on /metrics.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

// Metrics is the registry of gauges/counters this service exposes.
type Metrics struct {
	registry *prometheus.Registry

	FollowerHeight    prometheus.Gauge
	FollowerSyncMode  prometheus.Gauge // 0 = catching_up, 1 = at_tip
	FollowerErrStreak prometheus.Gauge
	BlocksProcessed   prometheus.Counter
	RecordsInserted   prometheus.Counter
	RecordsRetired    prometheus.Counter
	DecodeSkipped     prometheus.Counter

	// HTTPRequests is registered and exported, but no code in this module
	// increments it, so it stays at zero.
	HTTPRequests *prometheus.CounterVec
}

// New constructs a Metrics registry with all series registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		FollowerHeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "didindexer_follower_height",
			Help: "Next height the follower will process.",
		}),
		FollowerSyncMode: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "didindexer_follower_sync_mode",
			Help: "Follower sync mode: 0 = catching_up, 1 = at_tip.",
		}),
		FollowerErrStreak: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "didindexer_follower_err_streak",
			Help: "Consecutive failed follower iterations.",
		}),
		BlocksProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "didindexer_blocks_processed_total",
			Help: "Total blocks processed by the follower.",
		}),
		RecordsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "didindexer_records_inserted_total",
			Help: "Total did records inserted into the live table.",
		}),
		RecordsRetired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "didindexer_records_retired_total",
			Help: "Total did records retired (moved live to tombstone).",
		}),
		DecodeSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "didindexer_decode_skipped_total",
			Help: "Total outputs skipped due to decode, validation, DID derivation, re-encode or insert failure.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "didindexer_http_requests_total",
			Help: "Total HTTP requests by route and status.",
		}, []string{"route", "status"}),
	}

	reg.MustRegister(
		m.FollowerHeight,
		m.FollowerSyncMode,
		m.FollowerErrStreak,
		m.BlocksProcessed,
		m.RecordsInserted,
		m.RecordsRetired,
		m.DecodeSkipped,
		m.HTTPRequests,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetSyncMode records the follower's current sync mode.
func (m *Metrics) SetSyncMode(atTip bool) {
	if atTip {
		m.FollowerSyncMode.Set(1)
		return
	}
	m.FollowerSyncMode.Set(0)
}
