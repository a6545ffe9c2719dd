package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frcviz/wpilog/internal/logging"
	"github.com/frcviz/wpilog/internal/logtest"
	"github.com/frcviz/wpilog/pkg/wpilog"
)

func writeLog(t *testing.T, path string, samples int) {
	t.Helper()
	b := logtest.New("").Start(1, "speed", "float64", "", 0)
	for i := 0; i < samples; i++ {
		b.Float64(1, int64(i)*1000, float64(i))
	}
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func recvResult(t *testing.T, w *Watcher) Result {
	t.Helper()
	select {
	case r := <-w.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a reload result")
		return Result{}
	}
}

func TestWatcher_InitialLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.wpilog")
	writeLog(t, path, 2)

	w, err := New(path, 10*time.Millisecond, logging.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	r := recvResult(t, w)
	if r.Err != nil {
		t.Fatalf("initial load error = %v", r.Err)
	}
	if n := len(r.Index.Samples("speed", wpilog.LatestGeneration)); n != 2 {
		t.Errorf("initial index has %d samples, want 2", n)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.wpilog")
	writeLog(t, path, 1)

	w, err := New(path, 10*time.Millisecond, logging.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	recvResult(t, w) // initial

	writeLog(t, path, 5)

	deadline := time.Now().Add(5 * time.Second)
	for {
		r := recvResult(t, w)
		if r.Err == nil && len(r.Index.Samples("speed", wpilog.LatestGeneration)) == 5 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("never observed the rewritten log")
		}
	}
}

func TestWatcher_TruncatedFileStillYieldsPartialIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "match.wpilog")
	full := logtest.New("").
		Start(1, "speed", "float64", "", 0).
		Float64(1, 0, 1.5).
		Record(1, 10, make([]byte, 100)).
		Bytes()
	if err := os.WriteFile(path, full[:len(full)-90], 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	w, err := New(path, 10*time.Millisecond, logging.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	r := recvResult(t, w)
	if !errors.Is(r.Err, wpilog.ErrTruncatedInput) {
		t.Fatalf("error = %v, want ErrTruncatedInput", r.Err)
	}
	if r.Index == nil || len(r.Index.Samples("speed", wpilog.LatestGeneration)) != 1 {
		t.Error("partial index not delivered for truncated file")
	}
}

func TestWatcher_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.wpilog")
	w, err := New(path, 10*time.Millisecond, logging.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	r := recvResult(t, w)
	if r.Err == nil {
		t.Error("expected a read error for a missing file")
	}
}
