// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"time"

	"github.com/AccelByte/extend-doorbell/pkg/journal"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// JournalOptions carries the journal settings from the environment.
type JournalOptions struct {
	Workers    int
	QueueSize  int
	MaxEntries int
	TTL        time.Duration
}

// InitJournal returns the Redis journal when a client is available and the
// no-op journal otherwise.
//
// ============================================================
// DEVELOPER: Visit journal
// ============================================================
// Every presence event is recorded, including events whose
// alert was suppressed by a silence. Writes happen on a small
// worker pool so the tick never waits on Redis.
// ============================================================
func InitJournal(client *redis.Client, opts JournalOptions) journal.Journal {
	if client == nil {
		logrus.Info("visit journal disabled")
		return journal.Nop{}
	}

	return journal.NewRedisJournal(client, journal.RedisJournalConfig{
		MaxEntries: int64(opts.MaxEntries),
		TTL:        opts.TTL,
		Workers:    opts.Workers,
		QueueSize:  opts.QueueSize,
	})
}
