package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/frcviz/wpilog/internal/logtest"
	"github.com/frcviz/wpilog/pkg/wpilog"
)

func writeLog(t *testing.T, dir, name string, value int64) string {
	t.Helper()
	b := logtest.New("")
	b.Start(1, "/count", "int64", "", 0)
	b.Int64(1, 1000, value)
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAllOrdered(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeLog(t, dir, "a.wpilog", 1),
		writeLog(t, dir, "b.wpilog", 2),
		writeLog(t, dir, "c.wpilog", 3),
	}

	p := New(2)
	defer p.Close()

	results, err := p.LoadAll(context.Background(), paths)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("result %d out of order: got %s want %s", i, r.Path, paths[i])
		}
		if r.Err != nil {
			t.Errorf("result %d: unexpected error %v", i, r.Err)
		}
		samples := r.Index.Samples("/count", wpilog.LatestGeneration)
		if len(samples) != 1 || samples[0].Value.Int != int64(i+1) {
			t.Errorf("result %d: wrong samples %v", i, samples)
		}
	}
}

func TestLoadAllMissingFile(t *testing.T) {
	dir := t.TempDir()
	good := writeLog(t, dir, "good.wpilog", 7)

	p := New(1)
	defer p.Close()

	results, err := p.LoadAll(context.Background(), []string{good, filepath.Join(dir, "missing.wpilog")})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("good file errored: %v", results[0].Err)
	}
	if results[1].Err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadAllTruncated(t *testing.T) {
	dir := t.TempDir()
	b := logtest.New("")
	b.Start(1, "/v", "double", "", 0)
	b.Float64(1, 500, 1.5)
	data := b.Bytes()
	path := filepath.Join(dir, "cut.wpilog")
	if err := os.WriteFile(path, data[:len(data)-3], 0o644); err != nil {
		t.Fatal(err)
	}

	p := New(1)
	defer p.Close()

	results, err := p.LoadAll(context.Background(), []string{path})
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !errors.Is(results[0].Err, wpilog.ErrTruncatedInput) {
		t.Fatalf("expected ErrTruncatedInput, got %v", results[0].Err)
	}
	if results[0].Index == nil {
		t.Fatal("truncated load should still return a partial index")
	}
}

func TestCancelThenClose(t *testing.T) {
	dir := t.TempDir()
	paths := make([]string, 8)
	for i := range paths {
		paths[i] = writeLog(t, dir, fmt.Sprintf("f%d.wpilog", i), int64(i))
	}

	// Cancelling mid-load and then closing must not leave a submission
	// pending on the job channel.
	for iter := 0; iter < 50; iter++ {
		p := New(1)
		ctx, cancel := context.WithCancel(context.Background())
		go cancel()
		_, err := p.LoadAll(ctx, paths)
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Fatalf("LoadAll: %v", err)
		}
		p.Close()
	}
}

func TestSubmitAfterClose(t *testing.T) {
	p := New(1)
	p.Close()
	p.Close() // idempotent

	if _, err := p.LoadAll(context.Background(), []string{"x"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
