package alert

import (
	"context"

	"github.com/AccelByte/extend-doorbell/pkg/metrics"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/sirupsen/logrus"
)

// Gate decides whether alerts may fire right now.
type Gate interface {
	IsActive() bool
}

// Dispatcher routes presence events to the alert slot for their kind.
type Dispatcher struct {
	gate   Gate
	alerts map[presence.Kind]*Alert
}

// NewDispatcher wires one alert per event kind. While gate is active every
// dispatch is suppressed.
func NewDispatcher(gate Gate, entered, left, alreadyHere *Alert) *Dispatcher {
	return &Dispatcher{
		gate: gate,
		alerts: map[presence.Kind]*Alert{
			presence.Entered:     entered,
			presence.Left:        left,
			presence.AlreadyHere: alreadyHere,
		},
	}
}

// Alert returns the slot for kind, or nil.
func (d *Dispatcher) Alert(kind presence.Kind) *Alert {
	return d.alerts[kind]
}

// Dispatch fires the alert for ev unless silenced. Returns whether the alert
// was dispatched.
func (d *Dispatcher) Dispatch(ctx context.Context, ev presence.Event) bool {
	if d.gate != nil && d.gate.IsActive() {
		metrics.AlertsSuppressedTotal.WithLabelValues(ev.Kind.String()).Inc()
		logrus.Debugf("alert for %s %s suppressed while silenced", ev.Occupant.Name, ev.Kind)
		return false
	}

	a := d.alerts[ev.Kind]
	if a == nil {
		logrus.Warnf("no alert configured for event kind %s", ev.Kind)
		return false
	}

	a.Fire(ctx, Target{
		Name:      ev.Occupant.Name,
		WorldID:   ev.Occupant.WorldID,
		WorldName: ev.Occupant.WorldName,
	})
	return true
}

// Apply pushes new configuration into each slot.
func (d *Dispatcher) Apply(configs map[presence.Kind]Config) {
	for kind, cfg := range configs {
		if a := d.alerts[kind]; a != nil {
			a.SetConfig(cfg)
		}
	}
}

// Close releases every slot's sound.
func (d *Dispatcher) Close() {
	for _, kind := range presence.Kinds {
		if a := d.alerts[kind]; a != nil {
			a.Close()
		}
	}
}
