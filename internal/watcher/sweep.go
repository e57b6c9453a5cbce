/**
 * Stale-file sweep (D3).
 *
 * A periodic asynq task that wakes the watcher's own process_batch
 * entrypoint on a fixed interval, catching files whose fsnotify create
 * event was missed (e.g. the watcher was down when the scanner wrote it).
 * Adapted from the teacher's internal/queue/consumer.go asynq
 * client/server/mux setup; this package needs none of the per-document job
 * payload or timeout-context plumbing that file carried, since the sweep
 * task takes no payload and simply re-triggers an existing entrypoint.
 */

package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const sweepTaskType = "intake:sweep"

// SweepScheduler periodically enqueues the sweep task.
type SweepScheduler struct {
	scheduler *asynq.Scheduler
}

// NewSweepScheduler builds a scheduler that enqueues the sweep task every
// interval.
func NewSweepScheduler(redisURL string, interval time.Duration) (*SweepScheduler, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, err
	}
	scheduler := asynq.NewScheduler(redisOpt, nil)
	spec := fmt.Sprintf("@every %s", interval.String())
	if _, err := scheduler.Register(spec, asynq.NewTask(sweepTaskType, nil)); err != nil {
		return nil, err
	}
	return &SweepScheduler{scheduler: scheduler}, nil
}

// Run starts the scheduler, blocking until Shutdown is called from another
// goroutine.
func (s *SweepScheduler) Run() error {
	return s.scheduler.Run()
}

// Shutdown stops the scheduler.
func (s *SweepScheduler) Shutdown() {
	s.scheduler.Shutdown()
}

// SweepServer consumes sweep tasks and re-triggers the watcher's single
// worker loop — it does not run a worker of its own (§5's D3 note).
type SweepServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewSweepServer wires a single-concurrency asynq server whose only
// handler calls w.TriggerBatch().
func NewSweepServer(redisURL string, w *Watcher) (*SweepServer, error) {
	redisOpt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, err
	}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{"default": 1},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(sweepTaskType, func(ctx context.Context, task *asynq.Task) error {
		w.TriggerBatch()
		return nil
	})

	return &SweepServer{server: server, mux: mux}, nil
}

// Start runs the sweep server in the background.
func (s *SweepServer) Start() error {
	return s.server.Start(s.mux)
}

// Shutdown stops the sweep server gracefully.
func (s *SweepServer) Shutdown() {
	s.server.Shutdown()
}
