package presence

import (
	"sort"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/host"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultAbsenceThreshold is the number of consecutive unseen ticks after
	// which an occupant is considered gone (about one second of frames).
	DefaultAbsenceThreshold = 60

	// DefaultArrivalGrace is how long after zone entry newly observed
	// occupants are classified as already present.
	DefaultArrivalGrace = time.Second
)

// Options tunes the tracker.
type Options struct {
	AbsenceThreshold int
	ArrivalGrace     time.Duration

	// MaxEvictionsPerTick bounds how many Left events one Update emits.
	// Zero evicts every expired occupant in the same tick.
	MaxEvictionsPerTick int

	// WorldNames resolves home world names for events. Optional.
	WorldNames host.WorldNames
}

// DefaultOptions returns the standard tracker tuning.
func DefaultOptions() Options {
	return Options{
		AbsenceThreshold: DefaultAbsenceThreshold,
		ArrivalGrace:     DefaultArrivalGrace,
	}
}

// Tracker diffs successive object table snapshots into presence events.
// It is driven from the host tick and is not safe for concurrent use.
type Tracker struct {
	opts      Options
	occupants map[uint64]*Occupant
	nextSeq   uint64
}

// NewTracker creates a tracker with an empty occupant set.
func NewTracker(opts Options) *Tracker {
	if opts.AbsenceThreshold <= 0 {
		opts.AbsenceThreshold = DefaultAbsenceThreshold
	}
	if opts.ArrivalGrace < 0 {
		opts.ArrivalGrace = 0
	}
	return &Tracker{
		opts:      opts,
		occupants: make(map[uint64]*Occupant),
	}
}

// Update consumes one tick's entity snapshot. sinceEntry is the time spent
// in the zone so far and decides whether new occupants were already present.
// Left events come first (in order of first sighting), then arrivals in
// snapshot order.
func (t *Tracker) Update(entities []host.Entity, sinceEntry time.Duration) []Event {
	present := make(map[uint64]struct{}, len(entities))
	for _, e := range entities {
		if e.IsOtherPlayer() {
			present[e.ID] = struct{}{}
		}
	}

	var events []Event

	var expired []*Occupant
	for id, o := range t.occupants {
		if _, ok := present[id]; ok {
			o.LastSeen = 0
			continue
		}
		o.LastSeen++
		if o.LastSeen > t.opts.AbsenceThreshold {
			expired = append(expired, o)
		}
	}
	if len(expired) > 0 {
		sort.Slice(expired, func(i, j int) bool { return expired[i].seq < expired[j].seq })
		if max := t.opts.MaxEvictionsPerTick; max > 0 && len(expired) > max {
			expired = expired[:max]
		}
		for _, o := range expired {
			delete(t.occupants, o.ID)
			logrus.Debugf("occupant %s (%d) unseen for %d ticks, evicting", o.Name, o.ID, o.LastSeen)
			events = append(events, Event{Kind: Left, Occupant: *o})
		}
	}

	kind := Entered
	if sinceEntry <= t.opts.ArrivalGrace {
		kind = AlreadyHere
	}
	for _, e := range entities {
		if !e.IsOtherPlayer() {
			continue
		}
		if _, tracked := t.occupants[e.ID]; tracked {
			continue
		}
		o := &Occupant{
			ID:        e.ID,
			Name:      e.Name,
			WorldID:   e.WorldID,
			WorldName: t.worldName(e.WorldID),
			seq:       t.nextSeq,
		}
		t.nextSeq++
		t.occupants[e.ID] = o
		logrus.Debugf("occupant %s (%d) observed %v after zone entry: %s", o.Name, o.ID, sinceEntry, kind)
		events = append(events, Event{Kind: kind, Occupant: *o})
	}

	return events
}

// Reset discards every tracked occupant. Called on any zone transition.
func (t *Tracker) Reset() {
	t.occupants = make(map[uint64]*Occupant)
}

// Len returns the number of tracked occupants.
func (t *Tracker) Len() int {
	return len(t.occupants)
}

// Occupant returns a copy of the tracked occupant with the given id.
func (t *Tracker) Occupant(id uint64) (Occupant, bool) {
	o, ok := t.occupants[id]
	if !ok {
		return Occupant{}, false
	}
	return *o, true
}

// Occupants returns copies of the tracked occupants in order of first sighting.
func (t *Tracker) Occupants() []Occupant {
	out := make([]Occupant, 0, len(t.occupants))
	for _, o := range t.occupants {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (t *Tracker) worldName(id uint32) string {
	if t.opts.WorldNames != nil {
		if name, ok := t.opts.WorldNames.WorldName(id); ok && name != "" {
			return name
		}
	}
	return FallbackWorldName(id)
}
