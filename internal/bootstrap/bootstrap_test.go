// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/AccelByte/extend-doorbell/pkg/host/replay"
	"github.com/AccelByte/extend-doorbell/pkg/journal"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/settings"
	"github.com/AccelByte/extend-doorbell/pkg/silence"
	"github.com/AccelByte/extend-doorbell/pkg/zone"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

const scenario = `
tick_rate: 60
worlds:
  73: Adamantoise
steps:
  - at: 0
    territory: 282
    entities:
      - {id: 1, kind: player, index: 0, name: Me Myself, world: 73}
      - {id: 2, kind: player, index: 2, name: Alice Doe, world: 73}
  - at: 90
    entities:
      - {id: 1, kind: player, index: 0, name: Me Myself, world: 73}
      - {id: 2, kind: player, index: 2, name: Alice Doe, world: 73}
      - {id: 3, kind: player, index: 4, name: Bob Roe, world: 73}
  - at: 100
    command: /doorbell silence
  - at: 110
    entities:
      - {id: 1, kind: player, index: 0, name: Me Myself, world: 73}
      - {id: 2, kind: player, index: 2, name: Alice Doe, world: 73}
      - {id: 3, kind: player, index: 4, name: Bob Roe, world: 73}
      - {id: 4, kind: player, index: 6, name: Carol Poe, world: 73}
`

const settingsScenario = `
steps:
  - at: 0
    territory: 339
    command: /doorbell
  - at: 1
    settings:
      left:
        chat_enabled: true
        chat_format: <link> slipped out.
    save_and_close: true
  - at: 2
    test_sound: entered
  - at: 3
    test_sound: doorbell
`

// countingOpener hands out silent sounds and counts opens
type countingOpener struct {
	mu    sync.Mutex
	opens []alert.Source
}

func (o *countingOpener) Open(_ context.Context, src alert.Source, _ float64) (alert.Sound, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens = append(o.opens, src)
	return silentSound{}, nil
}

type silentSound struct{}

func (silentSound) Restart() error { return nil }
func (silentSound) Close() error   { return nil }

func TestInitPlugin_SettingsWindow(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(settingsScenario))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}

	assets := t.TempDir()
	if err := os.WriteFile(filepath.Join(assets, alert.DefaultSoundFile), []byte("RIFF"), 0644); err != nil {
		t.Fatalf("failed to write sound file: %v", err)
	}
	path := filepath.Join(t.TempDir(), "doorbell.yaml")
	opener := &countingOpener{}

	var out bytes.Buffer
	h := replay.New(sc, &out)
	p, err := InitPlugin(h, PluginOptions{
		Settings:     settings.Default(),
		SettingsPath: path,
		Tracker:      presence.DefaultOptions(),
		Opener:       opener,
		AssetsDir:    assets,
		Journal:      journal.Nop{},
	})
	if err != nil {
		t.Fatalf("InitPlugin() error = %v", err)
	}
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	for i := 0; i < 4; i++ {
		h.Step()
	}
	if err := p.Dispose(); err != nil {
		t.Fatalf("Dispose() error = %v", err)
	}

	saved, err := settings.Load(path)
	if err != nil {
		t.Fatalf("settings were not saved: %v", err)
	}
	if !saved.Left.ChatEnabled || saved.Left.ChatFormat != "<link> slipped out." {
		t.Errorf("saved left alert = %+v", saved.Left)
	}
	if saved.Entered.ChatFormat != "<link> has come inside." {
		t.Errorf("fields left out of the document must keep their values, got %q", saved.Entered.ChatFormat)
	}
	if p.Settings().Left.ChatFormat != "<link> slipped out." {
		t.Error("saved settings should be in effect")
	}
	if h.SettingsOpen() {
		t.Error("save_and_close should close the window")
	}

	if len(opener.opens) != 1 || opener.opens[0].Path != filepath.Join(assets, alert.DefaultSoundFile) {
		t.Errorf("test sound opens = %+v, expected the bundled sound once", opener.opens)
	}
	if !strings.Contains(out.String(), `unknown alert "doorbell"`) {
		t.Errorf("expected error for unknown slot, got:\n%s", out.String())
	}
}

func TestInitJournal_DisabledWithoutClient(t *testing.T) {
	j := InitJournal(nil, JournalOptions{})
	if _, ok := j.(journal.Nop); !ok {
		t.Errorf("expected Nop journal, got %T", j)
	}
}

func TestInitPlugin_EndToEnd(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(scenario))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}

	var out bytes.Buffer
	h := replay.New(sc, &out)

	s := settings.Default()
	s.AlreadyHere.ChatEnabled = true

	opts := presence.DefaultOptions()
	p, err := InitPlugin(h, PluginOptions{
		Settings: s,
		Tracker:  opts,
		Journal:  journal.Nop{},
	})
	if err != nil {
		t.Fatalf("InitPlugin() error = %v", err)
	}
	defer p.Dispose()

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// The arrival grace is wall-clock time; wait it out before Bob arrives.
	for h.Tick() < 90 {
		h.Step()
	}
	time.Sleep(presence.DefaultArrivalGrace + 100*time.Millisecond)
	for h.Tick() < 120 {
		h.Step()
	}

	got := out.String()
	if !strings.Contains(got, "Alice Doe") || !strings.Contains(got, "was here when you arrived.") {
		t.Errorf("expected already-here line for Alice, got:\n%s", got)
	}
	if !strings.Contains(got, "Bob Roe") || !strings.Contains(got, "has come inside.") {
		t.Errorf("expected entered line for Bob, got:\n%s", got)
	}
	if strings.Contains(got, "Carol Poe") {
		t.Errorf("Carol arrived while silenced and must not be announced, got:\n%s", got)
	}
	if strings.Contains(got, "Me Myself") {
		t.Errorf("local player must never be announced, got:\n%s", got)
	}
}

func TestSettingsView(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	timer := silence.NewTimer(func() time.Time { return now })

	view := SettingsView(settings.Default(), timer)
	if !strings.Contains(view, "chat_format: <link> has come inside.") {
		t.Errorf("view should include the entered template, got:\n%s", view)
	}
	if !strings.HasSuffix(view, "silenced: no") {
		t.Errorf("expected unsilenced status, got:\n%s", view)
	}

	timer.Silence(0)
	if view := SettingsView(settings.Default(), timer); !strings.HasSuffix(view, "silenced: until you leave the house") {
		t.Errorf("expected indefinite status, got:\n%s", view)
	}

	timer.Silence(5 * time.Minute)
	if view := SettingsView(settings.Default(), timer); !strings.HasSuffix(view, "silenced: 5 minutes remaining") {
		t.Errorf("expected timed status, got:\n%s", view)
	}
}

func newTestJournal(t *testing.T) *journal.RedisJournal {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return journal.NewRedisJournal(client, journal.RedisJournalConfig{Workers: 1})
}

func TestRecentVisitors(t *testing.T) {
	j := newTestJournal(t)
	territory, _ := zone.Lookup(282)
	at := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	alice := presence.Occupant{ID: 2, Name: "Alice Doe", WorldID: 73, WorldName: "Adamantoise"}

	for i := 0; i < 2; i++ {
		session := zone.NewSession(territory, at)
		j.Record(presence.Event{Kind: presence.Entered, Occupant: alice}, session, at)
		j.Record(presence.Event{Kind: presence.Left, Occupant: alice}, session, at.Add(time.Minute))
		at = at.Add(time.Hour)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	ctx := context.Background()
	got, err := RecentVisitors(ctx, j, 282, 3)
	if err != nil {
		t.Fatalf("RecentVisitors() error = %v", err)
	}
	lines := strings.Split(got, "\n")
	if len(lines) != 4 || lines[0] != "recent visitors:" {
		t.Fatalf("unexpected listing:\n%s", got)
	}
	if !strings.Contains(lines[1], "Alice Doe@Adamantoise left") || !strings.HasSuffix(lines[1], "(visits: 2)") {
		t.Errorf("newest entry = %q", lines[1])
	}

	empty, err := RecentVisitors(ctx, j, 283, 3)
	if err != nil {
		t.Fatalf("RecentVisitors() error = %v", err)
	}
	if empty != "recent visitors: none" {
		t.Errorf("empty territory listing = %q", empty)
	}
}

func TestInitPlugin_SettingsPanelShowsVisitors(t *testing.T) {
	sc, err := replay.ParseScenario([]byte(`
steps:
  - at: 0
    territory: 282
  - at: 1
    command: /doorbell
`))
	if err != nil {
		t.Fatalf("ParseScenario() error = %v", err)
	}

	var out bytes.Buffer
	h := replay.New(sc, &out)
	p, err := InitPlugin(h, PluginOptions{
		Settings: settings.Default(),
		Tracker:  presence.DefaultOptions(),
		Journal:  newTestJournal(t),
	})
	if err != nil {
		t.Fatalf("InitPlugin() error = %v", err)
	}
	defer p.Dispose()
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	h.Step()
	h.Step()

	if !strings.Contains(out.String(), "recent visitors: none") {
		t.Errorf("expected visitor listing in the settings panel, got:\n%s", out.String())
	}
}
