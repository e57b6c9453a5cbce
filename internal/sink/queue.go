/**
 * Async event delivery (D2).
 *
 * Decouples Emit() from the actual backend write: Emit enqueues the event
 * onto an asynq queue and returns immediately; a separate server drains the
 * queue and forwards each event to the configured backend (Redis, Postgres,
 * or log). Adapted from the teacher's internal/queue/consumer.go
 * client/server/mux setup and its exponential-backoff RetryDelayFunc.
 */

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/adverant/intake-router/internal/logging"
	"github.com/adverant/intake-router/internal/model"
)

const deliverTaskType = "sink:deliver"

// AsyncSink enqueues events for out-of-band delivery rather than writing
// them inline.
type AsyncSink struct {
	client *asynq.Client
	log    *logging.Logger
}

// NewAsyncSink builds an AsyncSink backed by the given Redis URL.
func NewAsyncSink(redisURL string) (*AsyncSink, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, err
	}
	return &AsyncSink{
		client: asynq.NewClient(redisOpt),
		log:    logging.NewLogger("sink.async"),
	}, nil
}

// Emit enqueues the event; a failure to enqueue is logged and dropped,
// same as any other sink failure (§4.8).
func (s *AsyncSink) Emit(event model.ProcessingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal event for async delivery", "error", err.Error())
		return
	}
	if _, err := s.client.Enqueue(asynq.NewTask(deliverTaskType, payload)); err != nil {
		s.log.Error("failed to enqueue event for async delivery", "error", err.Error())
	}
}

// Close releases the asynq client.
func (s *AsyncSink) Close() error {
	return s.client.Close()
}

// NewAsyncServer builds the asynq server that drains the delivery queue and
// forwards each event to backend.
func NewAsyncServer(redisURL string, backend EventSink) (*asynq.Server, *asynq.ServeMux, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, nil, err
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 5,
		Queues:      map[string]int{"default": 1},
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			delay := time.Duration(5*(1<<uint(n))) * time.Second
			if delay > 60*time.Second {
				delay = 60 * time.Second
			}
			return delay
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(deliverTaskType, func(ctx context.Context, task *asynq.Task) error {
		var event model.ProcessingEvent
		if err := json.Unmarshal(task.Payload(), &event); err != nil {
			return fmt.Errorf("failed to unmarshal event: %w", err)
		}
		backend.Emit(event)
		return nil
	})

	return server, mux, nil
}
