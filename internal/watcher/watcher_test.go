package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/adverant/intake-router/internal/config"
	"github.com/adverant/intake-router/internal/model"
)

type fakeHandler struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeHandler) Process(path string) model.ProcessingEvent {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()
	return model.ProcessingEvent{
		OriginalFilename: filepath.Base(path),
		Status:           string(model.BucketFullyIndexed),
		Timestamp:        time.Now(),
	}
}

type fakeSink struct {
	mu     sync.Mutex
	events []model.ProcessingEvent
}

func (f *fakeSink) Emit(event model.ProcessingEvent) {
	f.mu.Lock()
	f.events = append(f.events, event)
	f.mu.Unlock()
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Root:               root,
		IntakeDir:          filepath.Join(root, "intake"),
		FullyIndexedDir:    filepath.Join(root, "fully_indexed"),
		PartiallyIndexedDir: filepath.Join(root, "partially_indexed"),
		FailedDir:          filepath.Join(root, "failed"),
		DebounceInterval:   20 * time.Millisecond,
		SettleDelay:        20 * time.Millisecond,
		ReadProbeRetries:   3,
		ReadProbeInterval:  5 * time.Millisecond,
		StaleSweepInterval: time.Minute,
		LogLevel:           "error",
	}
	for _, d := range []string{cfg.IntakeDir, cfg.FullyIndexedDir, cfg.PartiallyIndexedDir, cfg.FailedDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	return cfg
}

// Conservation + event-exactness: a file present at startup is picked up by
// the initial TriggerBatch pass, handed to the handler exactly once, and
// produces exactly one terminal ProcessingEvent.
func TestWatcher_ProcessesExistingFileOnce(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.IntakeDir, "a.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	handler := &fakeHandler{}
	sink := &fakeSink{}
	w := New(cfg, handler, sink)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.Now().Add(400 * time.Millisecond)
	for time.Now().Before(deadline) && sink.count() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done

	handler.mu.Lock()
	callCount := len(handler.calls)
	handler.mu.Unlock()

	if callCount != 1 {
		t.Errorf("handler called %d times, want 1", callCount)
	}
	if sink.count() != 1 {
		t.Errorf("sink received %d events, want 1", sink.count())
	}
}

// Ignores non-accepted extensions and entries whose name contains ".git", per
// listCandidates.
func TestListCandidates_FiltersExtensionsAndGit(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a.pdf", "b.png", "c.txt", ".git", "d.jpg", "e.jpeg"}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}

	got, err := listCandidates(dir)
	if err != nil {
		t.Fatalf("listCandidates: %v", err)
	}
	want := []string{"a.pdf", "b.png", "d.jpg", "e.jpeg"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestProbeReadable_Disappeared(t *testing.T) {
	dir := t.TempDir()
	missing := filepath.Join(dir, "gone.pdf")
	ok, disappeared := probeReadable(missing, 2, time.Millisecond)
	if ok || !disappeared {
		t.Errorf("probeReadable(missing) = (%v, %v), want (false, true)", ok, disappeared)
	}
}

func TestProbeReadable_Readable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	ok, disappeared := probeReadable(path, 2, time.Millisecond)
	if !ok || disappeared {
		t.Errorf("probeReadable(present) = (%v, %v), want (true, false)", ok, disappeared)
	}
}
