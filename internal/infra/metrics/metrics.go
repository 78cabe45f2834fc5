// Package metrics provides Prometheus metrics for the flipbook player.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Labels are limited to pack names, segment names and states; all are bounded by the manifest.

var (
	// FramesRequestedTotal counts frame decode requests issued by the asset cache.
	FramesRequestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flipbook_frames_requested_total",
		Help: "Total number of frame load requests, by pack and segment.",
	}, []string{"pack", "segment"})

	// FramesResolvedTotal counts resolved frame requests by result (ok/failed).
	FramesResolvedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flipbook_frames_resolved_total",
		Help: "Total number of resolved frame load requests, by pack, segment and result.",
	}, []string{"pack", "segment", "result"})

	// StateTransitionsTotal counts playback state transitions.
	StateTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flipbook_state_transitions_total",
		Help: "Total number of playback state transitions, by source and target state.",
	}, []string{"from", "to"})

	// PackSwitchesTotal counts completed pack switches.
	PackSwitchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flipbook_pack_switches_total",
		Help: "Total number of pack switches after an outro.",
	})

	// TicksTotal counts session ticks.
	TicksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flipbook_ticks_total",
		Help: "Total number of playback ticks.",
	})

	// CurrentPack tracks the index of the pack being played.
	CurrentPack = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flipbook_current_pack",
		Help: "Index of the pack currently being played.",
	})
)

// Result labels for FramesResolvedTotal.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)
