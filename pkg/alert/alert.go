package alert

import (
	"context"
	"errors"
	"sync"

	"github.com/AccelByte/extend-doorbell/pkg/common"
	"github.com/AccelByte/extend-doorbell/pkg/host"
	"github.com/AccelByte/extend-doorbell/pkg/metrics"
	"github.com/sirupsen/logrus"
)

// Alert is one configured alert slot: an optional chat line and an optional
// sound. The config may be edited from another goroutine; the last write
// wins. The decoded sound handle belongs to the Alert and is released
// whenever the sound settings change.
type Alert struct {
	name       string
	chat       host.ChatSink
	opener     Opener
	defaultDir string

	cfgMu sync.RWMutex
	cfg   Config

	// soundMu serialises loading, restarting and releasing the handle, and
	// guards closed and every wg.Add.
	soundMu sync.Mutex
	sound   Sound
	closed  bool

	wg sync.WaitGroup
}

// New creates an alert slot. chat and opener may be nil, which disables the
// respective channel. defaultDir holds the bundled DefaultSoundFile.
func New(name string, cfg Config, chat host.ChatSink, opener Opener, defaultDir string) *Alert {
	return &Alert{
		name:       name,
		cfg:        cfg,
		chat:       chat,
		opener:     opener,
		defaultDir: defaultDir,
	}
}

// Name returns the slot name used in logs and metrics.
func (a *Alert) Name() string {
	return a.name
}

// Config returns a copy of the current configuration.
func (a *Alert) Config() Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.cfg
}

// SetConfig replaces the configuration, releasing the decoded sound when the
// sound file, volume or enablement changed.
func (a *Alert) SetConfig(cfg Config) {
	a.cfgMu.Lock()
	changed := a.cfg.soundChanged(cfg)
	a.cfg = cfg
	a.cfgMu.Unlock()

	if changed {
		a.soundMu.Lock()
		a.releaseSoundLocked()
		a.soundMu.Unlock()
	}
}

// Fire prints the chat line and plays the sound for target. Failures are
// logged and never returned: one broken channel does not affect the other.
func (a *Alert) Fire(ctx context.Context, target Target) {
	scope := common.NewScope(ctx, "alert.fire")
	defer scope.Finish()
	scope.Tag("alert", a.name)
	scope.Tag("occupant", target.Name)
	scope.Tag("world_id", target.WorldID)

	a.PrintChat(target)
	a.playSound(scope.Ctx)
}

// PrintChat sends the formatted chat line if chat is enabled.
func (a *Alert) PrintChat(target Target) {
	cfg := a.Config()
	if !cfg.ChatEnabled || a.chat == nil {
		return
	}
	a.chat.Print(Format(cfg.ChatFormat, target))
}

// TestSound plays the configured sound without a chat line, as the settings
// window test button does.
func (a *Alert) TestSound() {
	a.playSound(context.Background())
}

// playSound hands loading and playback to a background goroutine; the caller
// never waits for it.
func (a *Alert) playSound(ctx context.Context) {
	if !a.Config().SoundEnabled || a.opener == nil {
		return
	}

	a.soundMu.Lock()
	if a.closed {
		a.soundMu.Unlock()
		return
	}
	a.wg.Add(1)
	a.soundMu.Unlock()

	go func() {
		defer a.wg.Done()

		scope := common.NewScope(ctx, "alert.play_sound")
		defer scope.Finish()

		a.soundMu.Lock()
		defer a.soundMu.Unlock()

		if a.closed {
			return
		}
		if a.sound == nil {
			a.setupSoundLocked(scope)
		}
		if a.sound == nil {
			return
		}
		if err := a.sound.Restart(); err != nil && !errors.Is(err, ErrSoundClosed) {
			metrics.SoundFailuresTotal.WithLabelValues(a.name).Inc()
			scope.Fail(err)
			scope.Log.Errorf("alert %s: sound playback failed: %v", a.name, err)
		}
	}()
}

// setupSoundLocked resolves and decodes the configured sound. On failure the
// handle stays nil and this trigger plays nothing.
func (a *Alert) setupSoundLocked(parent *common.Scope) {
	cfg := a.Config()
	if !cfg.SoundEnabled {
		return
	}

	scope := parent.Child("alert.load_sound")
	defer scope.Finish()
	scope.Tag("sound_file", cfg.SoundFile)

	src, err := ResolveSource(cfg.SoundFile, a.defaultDir)
	if err != nil {
		metrics.SoundFailuresTotal.WithLabelValues(a.name).Inc()
		scope.Fail(err)
		scope.Log.Warnf("alert %s: %v", a.name, err)
		return
	}

	volume := src.ClampVolume(cfg.SoundVolume)
	sound, err := a.opener.Open(scope.Ctx, src, volume)
	if err != nil {
		metrics.SoundFailuresTotal.WithLabelValues(a.name).Inc()
		scope.Fail(err)
		scope.Log.Errorf("alert %s: error initializing sound: %v", a.name, err)
		return
	}

	scope.Event("sound loaded")
	scope.Tag("volume", volume)
	scope.Log.Debugf("alert %s: loaded sound %s at volume %.2f", a.name, src, volume)
	a.sound = sound
}

func (a *Alert) releaseSoundLocked() {
	if a.sound == nil {
		return
	}
	if err := a.sound.Close(); err != nil {
		logrus.Warnf("alert %s: failed to release sound: %v", a.name, err)
	}
	a.sound = nil
}

// Wait blocks until every pending playback request has been handled.
func (a *Alert) Wait() {
	a.wg.Wait()
}

// Close releases the sound handle once pending playback requests are done.
// Later triggers play nothing.
func (a *Alert) Close() {
	a.soundMu.Lock()
	a.closed = true
	a.soundMu.Unlock()

	a.wg.Wait()

	a.soundMu.Lock()
	defer a.soundMu.Unlock()
	a.releaseSoundLocked()
}
