// Package publisher emits sync events to a Redis stream so other consumers
// (and the websocket fan-out) can follow schedule refreshes and Jopox
// writes without polling the API.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// StreamName is the single event stream for schedule and sync activity.
const StreamName = "igm.sync.events"

// Event types published to the stream.
const (
	EventScheduleRefreshed = "schedule.refreshed"
	EventCompareCompleted  = "compare.completed"
	EventJopoxGameSaved    = "jopox.game.saved"
	EventSyncJobFinished   = "sync.job.finished"
)

// RedisStreamPublisher publishes events to a Redis stream
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a publisher from an existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// Publish appends one event to the stream. The payload is JSON so mixed
// consumers can decode it without sharing Go types.
func (p *RedisStreamPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]interface{}{
			"type":      eventType,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
