package silence

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MinSessionForExitClear is how long a zone session must have run before
// leaving it clears an indefinite silence.
const MinSessionForExitClear = time.Second

// State is a snapshot of the silence timer.
type State struct {
	Silenced bool
	Since    time.Time
	// Expiry is zero for an indefinite silence.
	Expiry time.Duration
}

// Indefinite reports whether the silence lasts until zone exit or unsilence.
func (s State) Indefinite() bool {
	return s.Silenced && s.Expiry == 0
}

// Timer gates alert dispatch. Presence tracking keeps running while silenced.
type Timer struct {
	mu    sync.RWMutex
	state State
	now   func() time.Time
}

// NewTimer creates an unsilenced timer. now defaults to time.Now.
func NewTimer(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now}
}

// Silence mutes alerts. A zero or negative d mutes until the player leaves
// the zone or Unsilence is called; otherwise alerts resume once d elapsed.
// Silencing again replaces the previous silence.
func (t *Timer) Silence(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if d < 0 {
		d = 0
	}
	t.state = State{Silenced: true, Since: t.now(), Expiry: d}
	if d == 0 {
		logrus.Infof("alerts silenced until zone exit")
	} else {
		logrus.Infof("alerts silenced for %v", d)
	}
}

// Unsilence clears any silence. Returns false when nothing was silenced.
func (t *Timer) Unsilence() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.clearLocked("unsilenced")
}

// IsActive reports whether alerts are currently suppressed. A timed silence
// past its expiry counts as inactive even before Tick clears it.
func (t *Timer) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.state.Silenced {
		return false
	}
	if t.state.Expiry == 0 {
		return true
	}
	return t.now().Sub(t.state.Since) < t.state.Expiry
}

// Tick clears an expired timed silence. Returns true when this call ended
// the silence.
func (t *Timer) Tick() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Silenced || t.state.Expiry == 0 {
		return false
	}
	if t.now().Sub(t.state.Since) < t.state.Expiry {
		return false
	}
	return t.clearLocked("expired")
}

// OnZoneExit applies the zone exit rule: an indefinite silence is cleared if
// the session lasted longer than MinSessionForExitClear. Timed silences are
// untouched. Returns true when the silence was cleared.
func (t *Timer) OnZoneExit(sessionElapsed time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.state.Indefinite() || sessionElapsed <= MinSessionForExitClear {
		return false
	}
	return t.clearLocked("zone exit")
}

// Remaining returns the time left on a timed silence, or zero.
func (t *Timer) Remaining() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if !t.state.Silenced || t.state.Expiry == 0 {
		return 0
	}
	left := t.state.Expiry - t.now().Sub(t.state.Since)
	if left < 0 {
		return 0
	}
	return left
}

// State returns a snapshot of the timer.
func (t *Timer) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *Timer) clearLocked(reason string) bool {
	if !t.state.Silenced {
		return false
	}
	logrus.Infof("alerts no longer silenced (%s)", reason)
	t.state = State{}
	return true
}
