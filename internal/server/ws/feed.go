package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/medialift/medialift/internal/logging"
	"github.com/medialift/medialift/internal/server/repositories/jobs"
)

// Feed consumes worker status updates from a Redis channel, writes them
// through to the jobs table and fans them out to websocket subscribers.
type Feed struct {
	rdb     *redis.Client
	channel string
	hub     *Hub
	jobs    jobs.Repository
	log     logging.Logger
}

func NewFeed(rdb *redis.Client, channel string, hub *Hub, jobsRepo jobs.Repository, log logging.Logger) *Feed {
	return &Feed{rdb: rdb, channel: channel, hub: hub, jobs: jobsRepo, log: log}
}

// Run blocks consuming the channel until ctx is cancelled.
func (f *Feed) Run(ctx context.Context) error {
	sub := f.rdb.Subscribe(ctx, f.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			f.handle(ctx, m.Payload)
		}
	}
}

func (f *Feed) handle(ctx context.Context, payload string) {
	var msg StatusMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil || msg.JobID == "" {
		f.log.Warn(ctx, "malformed status payload", "payload", payload)
		return
	}

	// Persist first so REST snapshots agree with what sockets just saw.
	if err := f.jobs.UpdateStatus(ctx, msg.JobID, msg.Status, msg.Progress, msg.Model); err != nil {
		f.log.Error(ctx, "status write-through failed", "job_id", msg.JobID, "error", err)
	}

	f.hub.Publish(msg)
}
