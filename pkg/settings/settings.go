package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AccelByte/extend-doorbell/pkg/alert"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 1

// ErrConfigLoad indicates the persisted settings were missing or unreadable
// and defaults were used instead.
var ErrConfigLoad = errors.New("failed to load settings")

// Settings is the persisted user configuration.
type Settings struct {
	Version     int          `yaml:"version"`
	Entered     alert.Config `yaml:"entered"`
	Left        alert.Config `yaml:"left"`
	AlreadyHere alert.Config `yaml:"already_here"`
}

// Default returns the settings a fresh install starts with.
func Default() *Settings {
	return &Settings{
		Version: CurrentVersion,
		Entered: alert.Config{
			ChatEnabled:  true,
			ChatFormat:   "<link> has come inside.",
			SoundEnabled: true,
			SoundVolume:  1,
		},
		Left: alert.Config{
			ChatFormat:  "<link> has left the house.",
			SoundVolume: 1,
		},
		AlreadyHere: alert.Config{
			ChatFormat:  "<link> was here when you arrived.",
			SoundVolume: 1,
		},
	}
}

// ForKind returns the alert configuration for an event kind.
func (s *Settings) ForKind(kind presence.Kind) alert.Config {
	switch kind {
	case presence.Entered:
		return s.Entered
	case presence.Left:
		return s.Left
	case presence.AlreadyHere:
		return s.AlreadyHere
	default:
		return alert.Config{}
	}
}

// ByKind returns every alert configuration keyed by event kind.
func (s *Settings) ByKind() map[presence.Kind]alert.Config {
	out := make(map[presence.Kind]alert.Config, len(presence.Kinds))
	for _, kind := range presence.Kinds {
		out[kind] = s.ForKind(kind)
	}
	return out
}

// Normalize clamps values into range and upgrades older schema versions.
func (s *Settings) Normalize() {
	for _, cfg := range []*alert.Config{&s.Entered, &s.Left, &s.AlreadyHere} {
		if cfg.SoundVolume < 0 {
			cfg.SoundVolume = 0
		}
		if cfg.SoundVolume > alert.MaxFileVolume {
			cfg.SoundVolume = alert.MaxFileVolume
		}
		cfg.SoundFile = strings.TrimSpace(cfg.SoundFile)
	}
	if s.Version < CurrentVersion {
		s.Version = CurrentVersion
	}
}

// Load reads settings from a YAML file. Environment variables in the form
// ${VAR} or ${VAR:default} are expanded. A missing or corrupt file yields
// the defaults together with an error wrapping ErrConfigLoad; callers log it
// and carry on.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("%w: read %s: %v", ErrConfigLoad, path, err)
	}

	s, err := Parse(data, Default())
	if err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrConfigLoad, path, err)
	}
	return s, nil
}

// Parse decodes a settings document on top of a copy of base. Fields the
// document leaves out keep base's values.
func Parse(data []byte, base *Settings) (*Settings, error) {
	if base == nil {
		base = Default()
	}
	s := *base

	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &s); err != nil {
		return nil, fmt.Errorf("parse settings: %w", err)
	}
	if s.Version > CurrentVersion {
		return nil, fmt.Errorf("unsupported settings version %d", s.Version)
	}

	s.Normalize()
	return &s, nil
}

// Save writes settings to path atomically.
func Save(path string, s *Settings) error {
	s.Normalize()

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create settings dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		parts := strings.SplitN(key, ":", 2)
		value := os.Getenv(parts[0])
		if value == "" && len(parts) == 2 {
			return parts[1]
		}
		return value
	})
}
