// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "doorbell"

var (
	// TicksTotal counts host ticks the plugin handled, inside a house or while a
	// timed silence runs down.
	TicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticks_total",
		Help:      "Total number of host ticks handled by the plugin",
	})

	// PresenceEventsTotal counts presence transitions by kind.
	PresenceEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "presence_events_total",
		Help:      "Total number of presence events detected",
	}, []string{"kind"})

	// AlertsSuppressedTotal counts events not dispatched because of silence.
	AlertsSuppressedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_suppressed_total",
		Help:      "Total number of alerts suppressed while silenced",
	}, []string{"kind"})

	// SoundFailuresTotal counts sound resolution, decode and playback failures.
	SoundFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sound_failures_total",
		Help:      "Total number of alert sounds that failed to load or play",
	}, []string{"alert"})

	// JournalDroppedTotal counts visit records dropped on a full queue.
	JournalDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "journal_dropped_total",
		Help:      "Total number of visit records dropped because the journal queue was full",
	})

	// TrackedOccupants reports the current tracked occupant count.
	TrackedOccupants = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "tracked_occupants",
		Help:      "Number of occupants currently tracked in the house",
	})

	// SilenceActive is 1 while alerts are silenced.
	SilenceActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "silence_active",
		Help:      "Whether alerts are currently silenced (1) or not (0)",
	})
)

// Collectors returns every application collector.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		TicksTotal,
		PresenceEventsTotal,
		AlertsSuppressedTotal,
		SoundFailuresTotal,
		JournalDroppedTotal,
		TrackedOccupants,
		SilenceActive,
	}
}

// Register adds the application collectors to registry.
func Register(registry prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// BoolGauge converts a flag to a gauge value.
func BoolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
