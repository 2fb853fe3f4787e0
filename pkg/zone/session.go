package zone

import (
	"time"

	"github.com/google/uuid"
)

// Session is one visit to a housing interior. A session is never carried
// across zone changes: leaving, or moving house to house, ends it.
type Session struct {
	ID        string
	Territory Territory
	StartedAt time.Time
}

// NewSession starts a session for territory at now.
func NewSession(territory Territory, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		Territory: territory,
		StartedAt: now,
	}
}

// Elapsed returns the time spent in the zone as of now.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if s == nil {
		return 0
	}
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return d
}
