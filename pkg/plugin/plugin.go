package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/AccelByte/extend-doorbell/pkg/command"
	"github.com/AccelByte/extend-doorbell/pkg/host"
	"github.com/AccelByte/extend-doorbell/pkg/journal"
	"github.com/AccelByte/extend-doorbell/pkg/metrics"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/settings"
	"github.com/AccelByte/extend-doorbell/pkg/silence"
	"github.com/AccelByte/extend-doorbell/pkg/zone"
	"github.com/hako/durafmt"
	"github.com/sirupsen/logrus"
)

// Chat lines printed in response to silence changes.
const (
	msgSilencedUntilExit = "Alerts silenced until you leave the house. Use /doorbell silence again to unsilence."
	msgUnsilenced        = "Alerts are no longer silenced."
)

// Host groups the services the plugin consumes.
type Host struct {
	Framework   host.Framework
	ClientState host.ClientState
	Objects     host.ObjectTable
	Chat        host.ChatSink
	Commands    host.CommandManager
	UI          host.SettingsUI
}

func (h Host) validate() error {
	switch {
	case h.Framework == nil:
		return errors.New("framework is required")
	case h.ClientState == nil:
		return errors.New("client state is required")
	case h.Objects == nil:
		return errors.New("object table is required")
	case h.Chat == nil:
		return errors.New("chat sink is required")
	case h.Commands == nil:
		return errors.New("command manager is required")
	}
	return nil
}

// State is the per-install context shared by every callback. It is created
// at startup and torn down by Dispose.
type State struct {
	Settings     *settings.Settings
	SettingsPath string
	Tracker      *presence.Tracker
	Silence      *silence.Timer
	Dispatcher   *alert.Dispatcher
	Journal      journal.Journal
	Now          func() time.Time
}

// Plugin reacts to zone changes and host ticks, turning object table
// snapshots into alerts.
type Plugin struct {
	host  Host
	state State
	ctx   context.Context

	mu                  sync.Mutex
	session             *zone.Session
	unregisterTick      func()
	unregisterTerritory func()
	commandRegistered   bool
	started             bool
	disposed            bool
}

// New validates the host and state and returns an unstarted plugin.
func New(h Host, state State) (*Plugin, error) {
	if err := h.validate(); err != nil {
		return nil, fmt.Errorf("invalid host: %w", err)
	}
	if state.Tracker == nil || state.Silence == nil || state.Dispatcher == nil {
		return nil, errors.New("tracker, silence timer and dispatcher are required")
	}
	if state.Settings == nil {
		state.Settings = settings.Default()
	}
	if state.Journal == nil {
		state.Journal = journal.Nop{}
	}
	if state.Now == nil {
		state.Now = time.Now
	}

	return &Plugin{
		host:  h,
		state: state,
		ctx:   context.Background(),
	}, nil
}

// Start hooks the plugin into the host and evaluates the current zone.
func (p *Plugin) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started || p.disposed {
		p.mu.Unlock()
		return errors.New("plugin already started")
	}
	p.started = true
	p.ctx = ctx
	p.mu.Unlock()

	if err := p.host.Commands.AddHandler(command.Name, command.HelpMessage, func(_, args string) {
		p.HandleCommand(args)
	}); err != nil {
		return fmt.Errorf("failed to register %s: %w", command.Name, err)
	}

	p.mu.Lock()
	p.commandRegistered = true
	p.unregisterTerritory = p.host.ClientState.AddTerritoryHandler(p.onZoneChange)
	p.mu.Unlock()

	p.onZoneChange(p.host.ClientState.Territory())
	logrus.Infof("doorbell started")
	return nil
}

// InHouse reports whether a house session is active.
func (p *Plugin) InHouse() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session != nil
}

// Session returns the active house session, or nil.
func (p *Plugin) Session() *zone.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

// Settings returns the settings in effect.
func (p *Plugin) Settings() *settings.Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Settings
}

// ApplySettings pushes new settings into the alerts and persists them when a
// settings path is configured.
func (p *Plugin) ApplySettings(s *settings.Settings) error {
	s.Normalize()

	p.mu.Lock()
	p.state.Settings = s
	path := p.state.SettingsPath
	p.mu.Unlock()

	p.state.Dispatcher.Apply(s.ByKind())

	if path == "" {
		return nil
	}
	if err := settings.Save(path, s); err != nil {
		logrus.Errorf("failed to save settings: %v", err)
		return err
	}
	return nil
}

// TestSound plays the sound configured for kind without a chat line.
func (p *Plugin) TestSound(kind presence.Kind) error {
	a := p.state.Dispatcher.Alert(kind)
	if a == nil {
		return fmt.Errorf("no alert configured for %s", kind)
	}
	if !a.Config().SoundEnabled {
		return fmt.Errorf("sound is disabled for %s", kind)
	}
	a.TestSound()
	return nil
}

func (p *Plugin) onZoneChange(territory uint16) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return
	}

	now := p.state.Now()
	if p.session != nil {
		elapsed := p.session.Elapsed(now)
		logrus.Infof("left %s after %v", p.session.Territory, elapsed)
		if p.state.Silence.OnZoneExit(elapsed) {
			p.host.Chat.Print(alert.Message(msgUnsilenced))
		}
		p.session = nil
	}

	p.state.Tracker.Reset()
	metrics.TrackedOccupants.Set(0)

	if t, ok := zone.Lookup(territory); ok {
		p.session = zone.NewSession(t, now)
		logrus.Infof("entered %s, session %s", t, p.session.ID)
	} else {
		logrus.Debugf("territory %d is not a house, tracking paused", territory)
	}
	p.syncTickLocked()
}

// syncTickLocked keeps the tick handler registered while a house session is
// active or a timed silence still has to expire.
func (p *Plugin) syncTickLocked() {
	state := p.state.Silence.State()
	need := p.session != nil || (state.Silenced && !state.Indefinite())

	switch {
	case need && p.unregisterTick == nil:
		p.unregisterTick = p.host.Framework.AddTickHandler(p.onTick)
	case !need && p.unregisterTick != nil:
		p.unregisterTick()
		p.unregisterTick = nil
	}
}

func (p *Plugin) onTick() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return
	}

	metrics.TicksTotal.Inc()
	now := p.state.Now()

	if p.state.Silence.Tick() {
		p.host.Chat.Print(alert.Message(msgUnsilenced))
	}
	metrics.SilenceActive.Set(metrics.BoolGauge(p.state.Silence.IsActive()))

	if p.session == nil {
		p.syncTickLocked()
		return
	}

	events := p.state.Tracker.Update(p.host.Objects.Entities(), p.session.Elapsed(now))
	metrics.TrackedOccupants.Set(float64(p.state.Tracker.Len()))

	for _, ev := range events {
		metrics.PresenceEventsTotal.WithLabelValues(ev.Kind.String()).Inc()
		p.state.Journal.Record(ev, p.session, now)
		p.state.Dispatcher.Dispatch(p.ctx, ev)
	}
}

// HandleCommand executes the arguments that followed /doorbell.
func (p *Plugin) HandleCommand(args string) {
	cmd, err := command.Parse(args)
	if err != nil {
		logrus.Debugf("rejected command %q: %v", args, err)
		for _, line := range command.Usage {
			p.host.Chat.PrintError(host.TextLine(line))
		}
		return
	}

	switch cmd.Action {
	case command.ToggleSettings:
		if p.host.UI == nil {
			p.host.Chat.PrintError(alert.Message("No settings window is available."))
			return
		}
		p.host.UI.Toggle()
	case command.ToggleSilence:
		if p.state.Silence.IsActive() {
			p.state.Silence.Unsilence()
			p.host.Chat.Print(alert.Message(msgUnsilenced))
			return
		}
		p.state.Silence.Silence(0)
		p.host.Chat.Print(alert.Message(msgSilencedUntilExit))
	case command.SilenceFor:
		p.state.Silence.Silence(cmd.Duration)
		p.host.Chat.Print(alert.Message(fmt.Sprintf("Alerts silenced for %s.", FormatDuration(cmd.Duration))))
	}
	metrics.SilenceActive.Set(metrics.BoolGauge(p.state.Silence.IsActive()))

	p.mu.Lock()
	if !p.disposed {
		p.syncTickLocked()
	}
	p.mu.Unlock()
}

// FormatDuration renders d for chat, e.g. "5 minutes" or "1 hour 30 minutes".
func FormatDuration(d time.Duration) string {
	return durafmt.Parse(d.Round(time.Second)).LimitFirstN(2).String()
}

// Dispose unhooks the plugin and releases alerts and the journal. Safe to call
// more than once.
func (p *Plugin) Dispose() error {
	p.mu.Lock()
	if p.disposed {
		p.mu.Unlock()
		return nil
	}
	p.disposed = true

	if p.unregisterTick != nil {
		p.unregisterTick()
		p.unregisterTick = nil
	}
	if p.unregisterTerritory != nil {
		p.unregisterTerritory()
		p.unregisterTerritory = nil
	}
	if p.commandRegistered {
		p.host.Commands.RemoveHandler(command.Name)
		p.commandRegistered = false
	}
	p.session = nil
	p.state.Tracker.Reset()
	p.mu.Unlock()

	p.state.Dispatcher.Close()
	if err := p.state.Journal.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}
	logrus.Infof("doorbell disposed")
	return nil
}
