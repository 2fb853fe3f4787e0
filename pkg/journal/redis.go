package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/metrics"
	"github.com/AccelByte/extend-doorbell/pkg/presence"
	"github.com/AccelByte/extend-doorbell/pkg/zone"
	"github.com/go-redis/redis/v8"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sirupsen/logrus"
)

const (
	// redisJournalDefaultTTL is how long an idle territory log is retained (30 days)
	redisJournalDefaultTTL = 30 * 24 * time.Hour
	// redisJournalKeyPrefix is the prefix for all journal keys
	redisJournalKeyPrefix = "doorbell:"

	defaultMaxEntries = 500
	defaultWorkers    = 2
	defaultQueueSize  = 256
	writeTimeout      = 2 * time.Second
)

// RedisJournalConfig tunes the Redis journal.
type RedisJournalConfig struct {
	// MaxEntries caps the event list kept per territory.
	MaxEntries int64
	TTL        time.Duration
	Workers    int
	QueueSize  int
}

func (c *RedisJournalConfig) applyDefaults() {
	if c.MaxEntries <= 0 {
		c.MaxEntries = defaultMaxEntries
	}
	if c.TTL <= 0 {
		c.TTL = redisJournalDefaultTTL
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = defaultQueueSize
	}
}

// RedisJournal writes entries to Redis from a small worker pool.
type RedisJournal struct {
	client *redis.Client
	cfg    RedisJournalConfig

	mu     sync.RWMutex
	closed bool
	queue  chan Entry
	swg    sizedwaitgroup.SizedWaitGroup
}

// NewRedisJournal creates a Redis-backed journal and starts its workers.
func NewRedisJournal(client *redis.Client, cfg RedisJournalConfig) *RedisJournal {
	cfg.applyDefaults()

	j := &RedisJournal{
		client: client,
		cfg:    cfg,
		queue:  make(chan Entry, cfg.QueueSize),
		swg:    sizedwaitgroup.New(cfg.Workers),
	}
	for i := 0; i < cfg.Workers; i++ {
		j.swg.Add()
		go j.worker(i)
	}
	logrus.Infof("started %d journal workers (queue size %d)", cfg.Workers, cfg.QueueSize)
	return j
}

// makeEventsKey creates the Redis list key holding a territory's events
func makeEventsKey(territory uint16) string {
	return fmt.Sprintf("%sevents:%d", redisJournalKeyPrefix, territory)
}

// makeVisitsKey creates the Redis hash key counting visits per occupant
func makeVisitsKey(territory uint16) string {
	return fmt.Sprintf("%svisits:%d", redisJournalKeyPrefix, territory)
}

// Record queues ev for writing. A full queue drops the entry.
func (j *RedisJournal) Record(ev presence.Event, session *zone.Session, at time.Time) {
	entry := NewEntry(ev, session, at)

	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return
	}

	select {
	case j.queue <- entry:
	default:
		metrics.JournalDroppedTotal.Inc()
		logrus.Warnf("journal queue full, dropping %s event for %s", entry.Kind, entry.Name)
	}
}

// Close stops accepting entries and waits for queued ones to be written.
func (j *RedisJournal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()

	j.swg.Wait()
	logrus.Info("journal workers stopped")
	return nil
}

func (j *RedisJournal) worker(id int) {
	defer j.swg.Done()

	for entry := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := j.write(ctx, entry); err != nil {
			logrus.Errorf("journal worker %d: %v", id, err)
		}
		cancel()
	}
}

func (j *RedisJournal) write(ctx context.Context, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal journal entry: %w", err)
	}

	eventsKey := makeEventsKey(entry.Territory)
	visitsKey := makeVisitsKey(entry.Territory)

	pipe := j.client.TxPipeline()
	pipe.LPush(ctx, eventsKey, data)
	pipe.LTrim(ctx, eventsKey, 0, j.cfg.MaxEntries-1)
	pipe.Expire(ctx, eventsKey, j.cfg.TTL)
	var visits *redis.IntCmd
	if entry.Kind != presence.Left.String() {
		visits = pipe.HIncrBy(ctx, visitsKey, strconv.FormatUint(entry.OccupantID, 10), 1)
		pipe.Expire(ctx, visitsKey, j.cfg.TTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write journal entry for territory %d: %w", entry.Territory, err)
	}

	if visits != nil {
		logrus.Infof("%s %s territory %d (visit %d)", entry.Name, entry.Kind, entry.Territory, visits.Val())
	} else {
		logrus.Debugf("journaled %s event for %s in territory %d", entry.Kind, entry.Name, entry.Territory)
	}
	return nil
}

var _ Reader = (*RedisJournal)(nil)

// Recent returns up to n of the newest entries for a territory, newest first.
func (j *RedisJournal) Recent(ctx context.Context, territory uint16, n int64) ([]Entry, error) {
	if n <= 0 {
		return nil, nil
	}

	raw, err := j.client.LRange(ctx, makeEventsKey(territory), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var entry Entry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			logrus.Warnf("skipping unreadable journal entry: %v", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// VisitCount returns how many arrivals were recorded for an occupant.
func (j *RedisJournal) VisitCount(ctx context.Context, territory uint16, occupantID uint64) (int64, error) {
	count, err := j.client.HGet(ctx, makeVisitsKey(territory), strconv.FormatUint(occupantID, 10)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read visit count: %w", err)
	}
	return count, nil
}

// Ping performs a Redis health check.
func (j *RedisJournal) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := j.client.Ping(ctx).Err(); err != nil {
		logrus.Errorf("Redis health check failed: %v", err)
		return err
	}
	return nil
}
