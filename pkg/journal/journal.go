package journal

import (
	"context"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/zone"
)

// Journal records presence events for later inspection. Record must not
// block the caller.
type Journal interface {
	Record(ev presence.Event, session *zone.Session, at time.Time)
	Close() error
}

// Reader reads back what a Journal recorded.
type Reader interface {
	// Recent returns up to n of the newest entries for a territory, newest first.
	Recent(ctx context.Context, territory uint16, n int64) ([]Entry, error)
	VisitCount(ctx context.Context, territory uint16, occupantID uint64) (int64, error)
}

// Entry is one persisted presence event.
type Entry struct {
	Kind       string    `json:"kind"`
	OccupantID uint64    `json:"occupantId"`
	Name       string    `json:"name"`
	WorldID    uint32    `json:"worldId"`
	WorldName  string    `json:"worldName"`
	Territory  uint16    `json:"territory"`
	District   string    `json:"district"`
	SessionID  string    `json:"sessionId"`
	At         time.Time `json:"at"`
}

// NewEntry builds the persisted form of ev.
func NewEntry(ev presence.Event, session *zone.Session, at time.Time) Entry {
	entry := Entry{
		Kind:       ev.Kind.String(),
		OccupantID: ev.Occupant.ID,
		Name:       ev.Occupant.Name,
		WorldID:    ev.Occupant.WorldID,
		WorldName:  ev.Occupant.WorldName,
		At:         at.UTC(),
	}
	if session != nil {
		entry.Territory = session.Territory.ID
		entry.District = string(session.Territory.District)
		entry.SessionID = session.ID
	}
	return entry
}

// Nop discards everything.
type Nop struct{}

func (Nop) Record(presence.Event, *zone.Session, time.Time) {}

func (Nop) Close() error { return nil }
