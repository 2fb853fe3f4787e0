package journal

import (
	"context"
	"testing"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/zone"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/remeh/sizedwaitgroup"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

func testSession(t *testing.T) *zone.Session {
	territory, ok := zone.Lookup(282)
	if !ok {
		t.Fatal("territory 282 should be a house")
	}
	return zone.NewSession(territory, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
}

func event(kind presence.Kind, id uint64, name string) presence.Event {
	return presence.Event{
		Kind: kind,
		Occupant: presence.Occupant{
			ID:        id,
			Name:      name,
			WorldID:   73,
			WorldName: "Adamantoise",
		},
	}
}

func TestRedisJournal_RecordAndRecent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	j := NewRedisJournal(client, RedisJournalConfig{Workers: 1})
	session := testSession(t)
	at := session.StartedAt.Add(5 * time.Second)

	j.Record(event(presence.AlreadyHere, 1, "Alice Doe"), session, at)
	j.Record(event(presence.Entered, 2, "Bob Roe"), session, at.Add(time.Second))
	j.Record(event(presence.Left, 1, "Alice Doe"), session, at.Add(2*time.Second))

	if err := j.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	entries, err := j.Recent(context.Background(), 282, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Recent() returned %d entries, expected 3", len(entries))
	}

	newest := entries[0]
	if newest.Kind != "left" || newest.OccupantID != 1 {
		t.Errorf("newest entry = %+v, expected left event for occupant 1", newest)
	}
	if newest.SessionID != session.ID {
		t.Errorf("SessionID = %q, expected %q", newest.SessionID, session.ID)
	}
	if newest.District != "Mist" {
		t.Errorf("District = %q, expected Mist", newest.District)
	}
	if entries[2].Kind != "already_here" {
		t.Errorf("oldest entry kind = %q, expected already_here", entries[2].Kind)
	}
}

func TestRedisJournal_VisitCount(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	j := NewRedisJournal(client, RedisJournalConfig{Workers: 1})
	session := testSession(t)
	at := session.StartedAt

	j.Record(event(presence.Entered, 7, "Carol Poe"), session, at)
	j.Record(event(presence.Left, 7, "Carol Poe"), session, at)
	j.Record(event(presence.Entered, 7, "Carol Poe"), session, at)
	j.Close()

	ctx := context.Background()
	count, err := j.VisitCount(ctx, 282, 7)
	if err != nil {
		t.Fatalf("VisitCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("VisitCount() = %d, expected 2 (Left is not a visit)", count)
	}

	count, err = j.VisitCount(ctx, 282, 99)
	if err != nil {
		t.Fatalf("VisitCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("VisitCount() for unknown occupant = %d, expected 0", count)
	}
}

func TestRedisJournal_TrimAndTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	j := NewRedisJournal(client, RedisJournalConfig{Workers: 1, MaxEntries: 2, TTL: time.Hour})
	session := testSession(t)
	for i := uint64(1); i <= 5; i++ {
		j.Record(event(presence.Entered, i, "Someone"), session, session.StartedAt)
	}
	j.Close()

	entries, err := j.Recent(context.Background(), 282, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected list trimmed to 2 entries, got %d", len(entries))
	}
	if entries[0].OccupantID != 5 {
		t.Errorf("newest entry occupant = %d, expected 5", entries[0].OccupantID)
	}

	ttl := mr.TTL(makeEventsKey(282))
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("events key TTL = %v, expected within 1h", ttl)
	}
}

func TestRedisJournal_DropsWhenQueueFull(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	// No workers are started, so nothing drains the queue.
	j := &RedisJournal{
		client: client,
		cfg:    RedisJournalConfig{MaxEntries: 10, TTL: time.Hour, Workers: 1, QueueSize: 1},
		queue:  make(chan Entry, 1),
		swg:    sizedwaitgroup.New(1),
	}

	session := testSession(t)
	for i := uint64(1); i <= 3; i++ {
		j.Record(event(presence.Entered, i, "Someone"), session, session.StartedAt)
	}

	if len(j.queue) != 1 {
		t.Errorf("queue length = %d, expected 1", len(j.queue))
	}
	if queued := <-j.queue; queued.OccupantID != 1 {
		t.Errorf("queued occupant = %d, expected the first record to be kept", queued.OccupantID)
	}
}

func TestRedisJournal_CloseIsIdempotent(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	j := NewRedisJournal(client, RedisJournalConfig{})
	if err := j.Close(); err != nil {
		t.Fatalf("first Close() error = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	// Recording after close is a no-op rather than a panic.
	j.Record(event(presence.Entered, 1, "Late"), testSession(t), time.Now())
}

func TestRedisJournal_Ping(t *testing.T) {
	client, mr := setupTestRedis(t)

	j := NewRedisJournal(client, RedisJournalConfig{Workers: 1})
	defer j.Close()

	if err := j.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	mr.Close()
	if err := j.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail once Redis is gone")
	}
}

func TestNop(t *testing.T) {
	var j Journal = Nop{}
	j.Record(event(presence.Entered, 1, "Anyone"), nil, time.Now())
	if err := j.Close(); err != nil {
		t.Errorf("Nop.Close() error = %v", err)
	}
}
