package presence

import "fmt"

// Kind identifies a presence transition.
type Kind int

const (
	// Entered is an occupant arriving after the local player settled in.
	Entered Kind = iota + 1
	// Left is an occupant unseen for longer than the absence threshold.
	Left
	// AlreadyHere is an occupant found while the zone session was brand new.
	AlreadyHere
)

// Kinds lists every event kind in a stable order.
var Kinds = []Kind{Entered, Left, AlreadyHere}

func (k Kind) String() string {
	switch k {
	case Entered:
		return "entered"
	case Left:
		return "left"
	case AlreadyHere:
		return "already_here"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind returns the kind whose String form is name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if k.String() == name {
			return k, true
		}
	}
	return 0, false
}

// Event is a single presence transition for one occupant.
type Event struct {
	Kind     Kind
	Occupant Occupant
}
