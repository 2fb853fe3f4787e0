package presence

import "fmt"

// Occupant is another player tracked inside the current zone session.
type Occupant struct {
	ID        uint64
	Name      string
	WorldID   uint32
	WorldName string

	// LastSeen counts consecutive ticks the occupant was missing from the
	// object table. Zero means seen this tick.
	LastSeen int

	seq uint64
}

// FallbackWorldName is used when a world id cannot be resolved.
func FallbackWorldName(id uint32) string {
	return fmt.Sprintf("World_%d", id)
}
