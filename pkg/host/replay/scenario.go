package replay

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AccelByte/extend-doorbell/pkg/host"
	"gopkg.in/yaml.v3"
)

// DefaultTickRate is the number of ticks per second when a scenario does not
// set one.
const DefaultTickRate = 60

// Scenario is a scripted sequence of zone changes, object table snapshots
// and commands.
type Scenario struct {
	TickRate int               `yaml:"tick_rate"`
	Worlds   map[uint32]string `yaml:"worlds"`
	// EndAt stops the replay at that tick. Zero runs until cancelled.
	EndAt int    `yaml:"end_at"`
	Steps []Step `yaml:"steps"`
}

// Step applies changes at a given tick. Nil fields leave state unchanged;
// an empty entity list clears the object table.
//
// Settings, SaveAndClose and TestSound act on the settings window: Settings
// is a document saved as if typed into the window, SaveAndClose closes the
// window afterwards and TestSound names the alert slot to preview.
type Step struct {
	At           int           `yaml:"at"`
	Territory    *uint16       `yaml:"territory,omitempty"`
	Entities     *[]EntitySpec `yaml:"entities,omitempty"`
	Command      string        `yaml:"command,omitempty"`
	Settings     *yaml.Node    `yaml:"settings,omitempty"`
	SaveAndClose bool          `yaml:"save_and_close,omitempty"`
	TestSound    string        `yaml:"test_sound,omitempty"`
}

// EntitySpec is the scenario form of an object table entry.
type EntitySpec struct {
	ID    uint64 `yaml:"id"`
	Kind  string `yaml:"kind"`
	Index int    `yaml:"index"`
	Name  string `yaml:"name"`
	World uint32 `yaml:"world"`
}

var kindNames = map[string]host.Kind{
	"player":     host.KindPlayer,
	"battle_npc": host.KindBattleNpc,
	"event_npc":  host.KindEventNpc,
	"companion":  host.KindCompanion,
}

// Entity converts the spec into a host entity. Unknown kinds map to
// KindUnknown.
func (e EntitySpec) Entity() host.Entity {
	return host.Entity{
		ID:         e.ID,
		Kind:       kindNames[strings.ToLower(e.Kind)],
		TableIndex: e.Index,
		Name:       e.Name,
		WorldID:    e.World,
	}
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

// Validate checks the scenario and orders its steps by tick.
func (s *Scenario) Validate() error {
	if s.TickRate < 0 {
		return errors.New("tick_rate must not be negative")
	}
	if s.TickRate == 0 {
		s.TickRate = DefaultTickRate
	}
	if s.EndAt < 0 {
		return errors.New("end_at must not be negative")
	}

	for i, step := range s.Steps {
		if step.At < 0 {
			return fmt.Errorf("step %d: at must not be negative", i)
		}
		if step.Command != "" && !strings.HasPrefix(step.Command, "/") {
			return fmt.Errorf("step %d: command %q must start with /", i, step.Command)
		}
		if step.SaveAndClose && step.Settings == nil {
			return fmt.Errorf("step %d: save_and_close needs settings", i)
		}
		if step.Entities == nil {
			continue
		}
		for _, e := range *step.Entities {
			if _, ok := kindNames[strings.ToLower(e.Kind)]; !ok {
				return fmt.Errorf("step %d: entity %d has unknown kind %q", i, e.ID, e.Kind)
			}
		}
	}

	sort.SliceStable(s.Steps, func(i, j int) bool { return s.Steps[i].At < s.Steps[j].At })
	return nil
}
