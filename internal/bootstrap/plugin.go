// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/AccelByte/extend-doorbell/pkg/host/replay"
	"github.com/AccelByte/extend-doorbell/pkg/journal"
	"github.com/AccelByte/extend-doorbell/pkg/plugin"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/settings"
	"github.com/AccelByte/extend-doorbell/pkg/silence"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// PluginOptions groups what InitPlugin needs besides the host.
type PluginOptions struct {
	Settings     *settings.Settings
	SettingsPath string
	Tracker      presence.Options
	Opener       alert.Opener
	AssetsDir    string
	Journal      journal.Journal
}

// InitPlugin builds the per-install state and the plugin on top of the
// replay host.
//
// ============================================================
// DEVELOPER: Plugin wiring
// ============================================================
// The silence timer is both the plugin's command target and
// the dispatcher's gate, so the same instance is passed to
// both. The replay host implements every host service; a real
// game client would provide its own implementations of the
// pkg/host interfaces instead.
// ============================================================
func InitPlugin(h *replay.Host, opts PluginOptions) (*plugin.Plugin, error) {
	opts.Tracker.WorldNames = h

	timer := silence.NewTimer(nil)
	dispatcher := InitDispatcher(opts.Settings, timer, h.Chat(), opts.Opener, opts.AssetsDir)

	p, err := plugin.New(plugin.Host{
		Framework:   h,
		ClientState: h,
		Objects:     h,
		Chat:        h.Chat(),
		Commands:    h,
		UI:          h,
	}, plugin.State{
		Settings:     opts.Settings,
		SettingsPath: opts.SettingsPath,
		Tracker:      presence.NewTracker(opts.Tracker),
		Silence:      timer,
		Dispatcher:   dispatcher,
		Journal:      opts.Journal,
	})
	if err != nil {
		dispatcher.Close()
		return nil, fmt.Errorf("failed to create plugin: %w", err)
	}

	window := &settingsWindow{plugin: p, timer: timer}
	if r, ok := opts.Journal.(journal.Reader); ok {
		window.journal = r
	}
	h.SetSettingsWindow(window)

	logrus.Infof("initialized plugin (absence threshold %d ticks, arrival grace %v)",
		opts.Tracker.AbsenceThreshold, opts.Tracker.ArrivalGrace)
	return p, nil
}

const (
	recentVisitorsShown = 5
	journalReadTimeout  = 250 * time.Millisecond
)

// settingsWindow connects the replay host's settings window to the plugin.
type settingsWindow struct {
	plugin  *plugin.Plugin
	timer   *silence.Timer
	journal journal.Reader
}

func (w *settingsWindow) View() string {
	view := SettingsView(w.plugin.Settings(), w.timer)

	session := w.plugin.Session()
	if w.journal == nil || session == nil {
		return view
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalReadTimeout)
	defer cancel()
	visitors, err := RecentVisitors(ctx, w.journal, session.Territory.ID, recentVisitorsShown)
	if err != nil {
		logrus.Warnf("failed to read recent visitors: %v", err)
		return view
	}
	return view + "\n" + visitors
}

// Save applies doc over the current settings and persists the result.
func (w *settingsWindow) Save(doc []byte) error {
	s, err := settings.Parse(doc, w.plugin.Settings())
	if err != nil {
		return err
	}
	return w.plugin.ApplySettings(s)
}

func (w *settingsWindow) TestSound(slot string) error {
	kind, ok := presence.ParseKind(slot)
	if !ok {
		return fmt.Errorf("unknown alert %q", slot)
	}
	return w.plugin.TestSound(kind)
}

// RecentVisitors renders the newest journal entries for a territory with
// each occupant's visit count.
func RecentVisitors(ctx context.Context, r journal.Reader, territory uint16, n int64) (string, error) {
	entries, err := r.Recent(ctx, territory, n)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("recent visitors:")
	if len(entries) == 0 {
		b.WriteString(" none")
	}
	for _, e := range entries {
		visits, err := r.VisitCount(ctx, territory, e.OccupantID)
		if err != nil {
			return "", err
		}
		name := e.Name
		if e.WorldName != "" {
			name += "@" + e.WorldName
		}
		fmt.Fprintf(&b, "\n  %s %s at %s (visits: %d)", name, e.Kind, e.At.Local().Format("15:04:05"), visits)
	}
	return b.String(), nil
}

// SettingsView renders the settings window body.
func SettingsView(s *settings.Settings, timer *silence.Timer) string {
	var b strings.Builder

	data, err := yaml.Marshal(s)
	if err != nil {
		fmt.Fprintf(&b, "failed to render settings: %v\n", err)
	} else {
		b.Write(data)
	}

	state := timer.State()
	switch {
	case !timer.IsActive():
		b.WriteString("silenced: no")
	case state.Indefinite():
		b.WriteString("silenced: until you leave the house")
	default:
		fmt.Fprintf(&b, "silenced: %s remaining", plugin.FormatDuration(timer.Remaining()))
	}
	return b.String()
}
