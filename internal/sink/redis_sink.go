/**
 * Redis event sink (D1).
 *
 * Publishes each ProcessingEvent as JSON to a pub/sub channel, adapted from
 * the teacher's internal/queue/redis_consumer.go ":events" publish
 * convention in updateJobStatus.
 */

package sink

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/adverant/intake-router/internal/logging"
	"github.com/adverant/intake-router/internal/model"
)

const eventsChannel = "intake:events"

// RedisSink publishes events to a Redis pub/sub channel.
type RedisSink struct {
	client *redis.Client
	log    *logging.Logger
}

// NewRedisSink connects to Redis and verifies reachability.
func NewRedisSink(redisURL string) (*RedisSink, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisSink{client: client, log: logging.NewLogger("sink.redis")}, nil
}

// Emit publishes the event, logging and dropping any failure (§4.8: a sink
// failure must never prevent routing, which has already completed by the
// time Emit is called).
func (s *RedisSink) Emit(event model.ProcessingEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal event", "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Publish(ctx, eventsChannel, data).Err(); err != nil {
		s.log.Error("failed to publish event", "error", err.Error())
	}
}

// Close releases the Redis connection.
func (s *RedisSink) Close() error {
	return s.client.Close()
}
