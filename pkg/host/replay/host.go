package replay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/host"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// SettingsWindow backs the settings window: the panel body and its Save and
// Test Sound buttons.
type SettingsWindow interface {
	View() string
	Save(doc []byte) error
	TestSound(slot string) error
}

type tickEntry struct {
	id int
	h  host.TickHandler
}

type territoryEntry struct {
	id int
	h  host.TerritoryHandler
}

// Host plays a scenario against the host interfaces. Handlers always run on
// the goroutine calling Step, never while Host holds its lock.
type Host struct {
	scenario *Scenario
	term     *Terminal

	mu                sync.Mutex
	tick              int
	nextStep          int
	nextID            int
	territory         uint16
	entities          []host.Entity
	tickHandlers      []tickEntry
	territoryHandlers []territoryEntry
	commands          map[string]host.CommandHandler
	pending           []string
	settingsOpen      bool
	window            SettingsWindow
}

// New creates a host for scenario writing chat to out.
func New(scenario *Scenario, out io.Writer) *Host {
	h := &Host{
		scenario: scenario,
		commands: make(map[string]host.CommandHandler),
	}
	h.term = NewTerminal(out, h)
	return h
}

// Chat returns the terminal chat sink.
func (h *Host) Chat() *Terminal {
	return h.term
}

// SetSettingsWindow sets what the settings window shows and edits.
func (h *Host) SetSettingsWindow(w SettingsWindow) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.window = w
}

func (h *Host) AddTickHandler(handler host.TickHandler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.tickHandlers = append(h.tickHandlers, tickEntry{id: id, h: handler})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, e := range h.tickHandlers {
			if e.id == id {
				h.tickHandlers = append(h.tickHandlers[:i:i], h.tickHandlers[i+1:]...)
				return
			}
		}
	}
}

func (h *Host) Territory() uint16 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.territory
}

func (h *Host) AddTerritoryHandler(handler host.TerritoryHandler) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.territoryHandlers = append(h.territoryHandlers, territoryEntry{id: id, h: handler})

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		for i, e := range h.territoryHandlers {
			if e.id == id {
				h.territoryHandlers = append(h.territoryHandlers[:i:i], h.territoryHandlers[i+1:]...)
				return
			}
		}
	}
}

func (h *Host) Entities() []host.Entity {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]host.Entity(nil), h.entities...)
}

func (h *Host) WorldName(id uint32) (string, bool) {
	name, ok := h.scenario.Worlds[id]
	return name, ok
}

func (h *Host) AddHandler(command, help string, handler host.CommandHandler) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	command = strings.ToLower(command)
	if _, exists := h.commands[command]; exists {
		return fmt.Errorf("command %s is already registered", command)
	}
	h.commands[command] = handler
	logrus.Debugf("registered command %s: %s", command, help)
	return nil
}

func (h *Host) RemoveHandler(command string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.commands, strings.ToLower(command))
}

// Toggle opens or closes the settings window.
func (h *Host) Toggle() {
	h.mu.Lock()
	h.settingsOpen = !h.settingsOpen
	open := h.settingsOpen
	w := h.window
	h.mu.Unlock()

	if !open {
		h.term.Print(host.TextLine("Settings window closed."))
		return
	}
	body := "No settings available."
	if w != nil {
		body = w.View()
	}
	h.term.Panel("Doorbell Settings", body)
}

// SettingsOpen reports whether the settings window is shown.
func (h *Host) SettingsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.settingsOpen
}

// SaveSettings presses Save (or Save & Close) with doc as the window contents.
func (h *Host) SaveSettings(doc []byte, closeWindow bool) error {
	h.mu.Lock()
	w := h.window
	h.mu.Unlock()

	if w == nil {
		return h.windowError(fmt.Errorf("no settings window"))
	}
	if err := w.Save(doc); err != nil {
		return h.windowError(fmt.Errorf("settings not saved: %w", err))
	}
	h.term.Print(host.TextLine("Settings saved."))

	if closeWindow && h.SettingsOpen() {
		h.Toggle()
	}
	return nil
}

// TestSound presses the Test Sound button of slot.
func (h *Host) TestSound(slot string) error {
	h.mu.Lock()
	w := h.window
	h.mu.Unlock()

	if w == nil {
		return h.windowError(fmt.Errorf("no settings window"))
	}
	if err := w.TestSound(slot); err != nil {
		return h.windowError(fmt.Errorf("test sound: %w", err))
	}
	return nil
}

func (h *Host) windowError(err error) error {
	h.term.PrintError(host.TextLine(err.Error()))
	return err
}

// Enqueue schedules a slash command to run on the next tick.
func (h *Host) Enqueue(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pending = append(h.pending, line)
}

// Tick returns the number of ticks played so far.
func (h *Host) Tick() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tick
}

// Step plays one tick: scenario steps due now, queued commands, then tick
// handlers. Returns true once the scenario has ended.
func (h *Host) Step() bool {
	h.mu.Lock()
	now := h.tick
	var due []Step
	for h.nextStep < len(h.scenario.Steps) && h.scenario.Steps[h.nextStep].At <= now {
		due = append(due, h.scenario.Steps[h.nextStep])
		h.nextStep++
	}
	h.mu.Unlock()

	for _, step := range due {
		h.apply(step)
	}

	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	for _, line := range pending {
		h.execute(line)
	}

	h.mu.Lock()
	handlers := make([]host.TickHandler, 0, len(h.tickHandlers))
	for _, e := range h.tickHandlers {
		handlers = append(handlers, e.h)
	}
	h.mu.Unlock()

	for _, handler := range handlers {
		handler()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.tick++
	return h.scenario.EndAt > 0 && h.tick >= h.scenario.EndAt
}

func (h *Host) apply(step Step) {
	if step.Entities != nil {
		entities := make([]host.Entity, 0, len(*step.Entities))
		for _, spec := range *step.Entities {
			entities = append(entities, spec.Entity())
		}
		h.mu.Lock()
		h.entities = entities
		h.mu.Unlock()
	}

	if step.Territory != nil {
		territory := *step.Territory
		h.mu.Lock()
		changed := territory != h.territory
		h.territory = territory
		handlers := make([]host.TerritoryHandler, 0, len(h.territoryHandlers))
		for _, e := range h.territoryHandlers {
			handlers = append(handlers, e.h)
		}
		h.mu.Unlock()

		if changed {
			logrus.Infof("tick %d: territory changed to %d", step.At, territory)
			for _, handler := range handlers {
				handler(territory)
			}
		}
	}

	if step.Settings != nil {
		if doc, err := yaml.Marshal(step.Settings); err != nil {
			h.windowError(fmt.Errorf("step at %d: invalid settings: %w", step.At, err))
		} else {
			h.SaveSettings(doc, step.SaveAndClose)
		}
	}

	if step.TestSound != "" {
		h.TestSound(step.TestSound)
	}

	if step.Command != "" {
		h.execute(step.Command)
	}
}

// execute runs a slash command, or a settings window action:
//
//	:save <file>   save the settings document in file
//	:test <slot>   play the sound of an alert slot
func (h *Host) execute(line string) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	name = strings.ToLower(name)
	args = strings.TrimSpace(args)

	switch name {
	case ":save":
		doc, err := os.ReadFile(args)
		if err != nil {
			h.windowError(fmt.Errorf("settings not saved: %w", err))
			return
		}
		h.SaveSettings(doc, false)
		return
	case ":test":
		h.TestSound(args)
		return
	}

	h.mu.Lock()
	handler, ok := h.commands[name]
	h.mu.Unlock()

	if !ok {
		h.term.PrintError(host.TextLine(fmt.Sprintf("Unknown command: %s", name)))
		return
	}
	handler(name, args)
}

// Run plays the scenario at its tick rate until ctx is cancelled or the
// scenario ends.
func (h *Host) Run(ctx context.Context) error {
	rate := h.scenario.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if h.Step() {
				logrus.Infof("scenario finished after %d ticks", h.Tick())
				return nil
			}
		}
	}
}

// ReadCommands queues every line read from r until EOF or ctx is cancelled.
func (h *Host) ReadCommands(ctx context.Context, r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		h.Enqueue(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		logrus.Warnf("stopped reading commands: %v", err)
	}
}
