package router

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adverant/intake-router/internal/config"
	"github.com/adverant/intake-router/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := &config.Config{
		Root:                root,
		IntakeDir:           filepath.Join(root, "intake"),
		FullyIndexedDir:     filepath.Join(root, "fully_indexed"),
		PartiallyIndexedDir: filepath.Join(root, "partially_indexed"),
		FailedDir:           filepath.Join(root, "failed"),
	}
	for _, d := range []string{cfg.IntakeDir, cfg.FullyIndexedDir, cfg.PartiallyIndexedDir, cfg.FailedDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	return cfg
}

func writeIntakeFile(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	path := filepath.Join(cfg.IntakeDir, name)
	if err := os.WriteFile(path, []byte("dummy pdf content"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func strp(s string) *string { return &s }

func TestRouteFile_S1_FullIndex(t *testing.T) {
	cfg := testConfig(t)
	path := writeIntakeFile(t, cfg, "scan1.pdf")

	fields := model.ExtractedFields{
		Surname:    strp("SMITH"),
		FirstName:  strp("JOHN"),
		OtherNames: strp("K"),
		Account:    strp("34007802837"),
	}

	dest, decision, err := RouteFile(path, fields, "pdf", cfg)
	if err != nil {
		t.Fatalf("RouteFile: %v", err)
	}
	if decision != model.DecisionFull {
		t.Errorf("decision = %v, want Full", decision)
	}
	want := filepath.Join(cfg.FullyIndexedDir, "SMITH JOHN K_34007802837.pdf")
	if dest != want {
		t.Errorf("dest = %q, want %q", dest, want)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("destination file missing: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("source file should be gone after move")
	}
}

func TestRouteFile_S3_Failed(t *testing.T) {
	cfg := testConfig(t)
	path := writeIntakeFile(t, cfg, "unreadable.pdf")

	dest, decision, err := RouteFile(path, model.ExtractedFields{}, "pdf", cfg)
	if err != nil {
		t.Fatalf("RouteFile: %v", err)
	}
	if decision != model.DecisionFailed {
		t.Errorf("decision = %v, want Failed", decision)
	}
	want := filepath.Join(cfg.FailedDir, "unreadable.pdf")
	if dest != want {
		t.Errorf("dest = %q, want %q", dest, want)
	}
}

func TestRouteFile_NoOverwrite_CollisionSuffix(t *testing.T) {
	cfg := testConfig(t)
	fields := model.ExtractedFields{Surname: strp("DOE_1")}

	path1 := writeIntakeFile(t, cfg, "a.pdf")
	dest1, _, err := RouteFile(path1, fields, "pdf", cfg)
	if err != nil {
		t.Fatalf("RouteFile 1: %v", err)
	}

	path2 := writeIntakeFile(t, cfg, "b.pdf")
	dest2, _, err := RouteFile(path2, fields, "pdf", cfg)
	if err != nil {
		t.Fatalf("RouteFile 2: %v", err)
	}

	if dest1 == dest2 {
		t.Fatalf("collision should produce distinct paths, got %q twice", dest1)
	}
	if filepath.Base(dest1) != "DOE_1.pdf" {
		t.Errorf("first dest = %q, want DOE_1.pdf", filepath.Base(dest1))
	}
	if filepath.Base(dest2) != "DOE_1_1.pdf" {
		t.Errorf("second dest = %q, want DOE_1_1.pdf", filepath.Base(dest2))
	}
	if _, err := os.Stat(dest1); err != nil {
		t.Errorf("dest1 missing: %v", err)
	}
	if _, err := os.Stat(dest2); err != nil {
		t.Errorf("dest2 missing: %v", err)
	}
}

func TestResolveCollision_SmallestFreeN(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"x.pdf", "x_1.pdf", "x_2.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	got, err := ResolveCollision(dir, "x.pdf")
	if err != nil {
		t.Fatalf("ResolveCollision: %v", err)
	}
	want := filepath.Join(dir, "x_3.pdf")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOutputFilename_Partial_PrefersName(t *testing.T) {
	fields := model.ExtractedFields{Surname: strp("DOE"), Account: strp("999")}
	got := OutputFilename(model.DecisionPartial, fields, "orig", "pdf")
	want := "DOE.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestOutputFilename_Partial_AccountOnly(t *testing.T) {
	fields := model.ExtractedFields{Account: strp("999")}
	got := OutputFilename(model.DecisionPartial, fields, "orig", "pdf")
	want := "999.pdf"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtOut(t *testing.T) {
	if got := ExtOut(true, "png"); got != "pdf" {
		t.Errorf("image ext_out = %q, want pdf", got)
	}
	if got := ExtOut(false, "pdf"); got != "pdf" {
		t.Errorf("non-image ext_out = %q, want pdf", got)
	}
}

// Idempotent renaming (property 5): routing the already-renamed output
// back through the router produces a new file differing only by the
// collision suffix, never overwriting the first.
func TestRouteFile_IdempotentRenaming(t *testing.T) {
	cfg := testConfig(t)
	fields := model.ExtractedFields{Surname: strp("DOE")}

	path := writeIntakeFile(t, cfg, "a.pdf")
	dest1, _, err := RouteFile(path, fields, "pdf", cfg)
	if err != nil {
		t.Fatalf("RouteFile 1: %v", err)
	}

	reintroduced := filepath.Join(cfg.IntakeDir, filepath.Base(dest1))
	if err := os.Rename(dest1, reintroduced); err != nil {
		t.Fatalf("reintroduce: %v", err)
	}

	dest2, _, err := RouteFile(reintroduced, fields, "pdf", cfg)
	if err != nil {
		t.Fatalf("RouteFile 2: %v", err)
	}

	if dest2 == dest1 {
		t.Fatalf("expected a distinct collision-suffixed destination, got the same path twice")
	}
	if filepath.Base(dest2) != "DOE_1.pdf" {
		t.Errorf("dest2 = %q, want DOE_1.pdf", filepath.Base(dest2))
	}
}
