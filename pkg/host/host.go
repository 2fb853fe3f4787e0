package host

// Host services the plugin consumes. The game client (or the replay host
// used by the standalone binary) implements these; the plugin core only ever
// talks to these interfaces.

// Kind classifies an entry of the object table.
type Kind int

const (
	KindUnknown Kind = iota
	KindPlayer
	KindBattleNpc
	KindEventNpc
	KindCompanion
)

// MaxPlayerIndex bounds the object table slots that hold player characters.
// Slot 0 is always the local player.
const MaxPlayerIndex = 200

// Entity is one visible object in the current frame's object table.
type Entity struct {
	ID         uint64
	Kind       Kind
	TableIndex int
	Name       string
	WorldID    uint32
}

// IsOtherPlayer reports whether the entity is a player character other than
// the local player.
func (e Entity) IsOtherPlayer() bool {
	return e.Kind == KindPlayer && e.TableIndex > 0 && e.TableIndex < MaxPlayerIndex
}

// TickHandler is invoked once per host frame.
type TickHandler func()

// TerritoryHandler is invoked when the local player changes zone.
type TerritoryHandler func(territory uint16)

// CommandHandler receives the argument string following a slash command.
type CommandHandler func(command, args string)

// Framework drives the per-frame update loop.
type Framework interface {
	// AddTickHandler registers h and returns a function that unregisters it.
	AddTickHandler(h TickHandler) (unregister func())
}

// ClientState exposes the local player's zone.
type ClientState interface {
	Territory() uint16
	// AddTerritoryHandler registers h and returns a function that unregisters it.
	AddTerritoryHandler(h TerritoryHandler) (unregister func())
}

// ObjectTable returns the entities visible this frame.
type ObjectTable interface {
	Entities() []Entity
}

// WorldNames resolves a home world id to its display name.
type WorldNames interface {
	WorldName(id uint32) (string, bool)
}

// ChatSink prints lines into the game chat log.
type ChatSink interface {
	Print(line ChatLine)
	PrintError(line ChatLine)
}

// CommandManager owns slash command registration.
type CommandManager interface {
	AddHandler(command, help string, h CommandHandler) error
	RemoveHandler(command string)
}

// SettingsUI is the settings editor window.
type SettingsUI interface {
	Toggle()
}
