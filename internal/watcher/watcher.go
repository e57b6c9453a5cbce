/**
 * Event Batcher / Watcher (C7)
 *
 * Debounces filesystem create/move bursts into a single `process_batch`
 * pass. Modeled on the debounce-map-plus-ticker pattern in
 * other_examples/527507ae_fardilk-fekeu's watchDirectory, reshaped into a
 * single coalescing-channel consumer: one goroutine owns the pending timer
 * outright (no shared-mutex state is needed since no second goroutine ever
 * touches it), and fires onto a buffered trigger channel the lone worker
 * goroutine drains serially.
 */

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/adverant/intake-router/internal/config"
	"github.com/adverant/intake-router/internal/logging"
	"github.com/adverant/intake-router/internal/model"
	"github.com/adverant/intake-router/internal/router"
)

var acceptedExtensions = map[string]bool{
	"pdf":  true,
	"png":  true,
	"jpg":  true,
	"jpeg": true,
}

// FileHandler performs the full OCR/parse/route sequence for one file
// already confirmed readable, and returns the event to emit for it.
type FileHandler interface {
	Process(path string) model.ProcessingEvent
}

// EventSink is the write-only interface the watcher hands each
// ProcessingEvent to (§4.8 / C8). A failure here must never interrupt
// routing, so Watcher never inspects the outcome of Emit.
type EventSink interface {
	Emit(event model.ProcessingEvent)
}

// Watcher owns the intake directory's fsnotify subscription, the debounce
// timer, and the single serial worker that runs process_batch.
type Watcher struct {
	cfg     *config.Config
	handler FileHandler
	sink    EventSink
	log     *logging.Logger

	triggerCh chan struct{}

	mu      sync.Mutex
	started bool
}

// New constructs a Watcher. Call Run to start it.
func New(cfg *config.Config, handler FileHandler, sink EventSink) *Watcher {
	return &Watcher{
		cfg:       cfg,
		handler:   handler,
		sink:      sink,
		log:       logging.NewLoggerWithLevel("watcher", cfg.LogLevel),
		triggerCh: make(chan struct{}, 1),
	}
}

// TriggerBatch requests a process_batch pass without going through the
// debounce timer. Used by the D3 stale-file sweep (asynq periodic task, see
// sweep.go), which feeds this same entrypoint rather than running a second
// worker, per §5's concurrency note.
func (w *Watcher) TriggerBatch() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
		// a batch is already pending; coalesce
	}
}

// Run starts the fsnotify subscription, the debounce goroutine, and the
// single worker goroutine, blocking until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(w.cfg.IntakeDir); err != nil {
		return err
	}

	w.log.Info("watching intake directory", "dir", w.cfg.IntakeDir)

	go w.debounceLoop(ctx, fsWatcher)

	// Run an initial pass in case files are already waiting in intake.
	w.TriggerBatch()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher shutting down, draining current batch")
			return nil
		case <-w.triggerCh:
			w.processBatch(ctx)
		}
	}
}

// debounceLoop is the single goroutine that owns the pending timer. It
// receives fsnotify events directly (no intermediate channel is needed
// since it is the only reader) and arms/re-arms a 0.5s timer on
// create/move, firing onto triggerCh when the timer elapses. Modify events
// are ignored deliberately (§4.7): scanners emit repeated modifies during
// copy, and create/move suffice to detect new arrivals.
func (w *Watcher) debounceLoop(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.cfg.DebounceInterval)
			timerC = timer.C

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("fsnotify error", "error", err.Error())

		case <-timerC:
			timer = nil
			timerC = nil
			w.TriggerBatch()
		}
	}
}

// processBatch implements §4.7's process_batch: settle, enumerate, and
// read-probe each surviving file before handing it to the router.
func (w *Watcher) processBatch(ctx context.Context) {
	select {
	case <-time.After(w.cfg.SettleDelay):
	case <-ctx.Done():
		return
	}

	names, err := listCandidates(w.cfg.IntakeDir)
	if err != nil {
		w.log.Error("failed to enumerate intake directory", "error", err.Error())
		return
	}

	for _, name := range names {
		path := filepath.Join(w.cfg.IntakeDir, name)
		w.processOne(path)
	}
}

func (w *Watcher) processOne(path string) {
	ok, disappeared := probeReadable(path, w.cfg.ReadProbeRetries, w.cfg.ReadProbeInterval)
	if disappeared {
		// Already consumed by another pass; nothing to report.
		return
	}

	if !ok {
		w.log.Warn("file still locked after read-probe retries, routing to failed", "path", path)
		dest, err := router.ConvertOrMoveToFailed(path, w.cfg.FailedDir)
		if err != nil {
			w.log.Error("retry-fallback move failed", "path", path, "error", err.Error())
			return
		}
		w.sink.Emit(model.ProcessingEvent{
			OriginalFilename: filepath.Base(path),
			FinalFilename:    strPtr(filepath.Base(dest)),
			Status:           string(model.BucketFailed),
			DestinationPath:  strPtr(dest),
			Timestamp:        time.Now(),
		})
		return
	}

	event := w.handler.Process(path)
	w.sink.Emit(event)
}

// probeReadable retries opening path for read and consuming one byte. It
// returns (true, false) once the file is readable, (false, true) if the
// file disappeared mid-loop, and (false, false) if all retries are
// exhausted while the file is still present but locked.
func probeReadable(path string, retries int, interval time.Duration) (ok bool, disappeared bool) {
	buf := make([]byte, 1)
	for attempt := 0; attempt < retries; attempt++ {
		f, err := os.Open(path)
		if err == nil {
			_, _ = f.Read(buf)
			f.Close()
			return true, false
		}
		if os.IsNotExist(err) {
			return false, true
		}
		time.Sleep(interval)
	}
	return false, false
}

// listCandidates enumerates the intake directory, keeping only entries
// matching the accepted extension set and skipping any entry whose name
// contains ".git" (§6).
func listCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.Contains(name, ".git") {
			continue
		}
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
		if !acceptedExtensions[ext] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func strPtr(s string) *string { return &s }
