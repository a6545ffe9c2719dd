// Package loader reads and indexes multiple log files concurrently.
// Results come back in input order so callers can emit dumps
// deterministically regardless of which file finished first.
package loader

import (
	"context"
	"errors"
	"os"
	"sync"

	"github.com/frcviz/wpilog/pkg/wpilog"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("loader pool is closed")

// Result is the outcome of loading one file. Index may be non-nil
// alongside a truncation error.
type Result struct {
	Path  string
	Index *wpilog.LogIndex
	Err   error
}

// Pool loads files on a fixed set of workers.
type Pool struct {
	workers int
	opts    []wpilog.Option

	mu     sync.Mutex
	closed bool
	jobs   chan job
	wg     sync.WaitGroup
}

type job struct {
	path string
	out  chan<- Result
}

// New creates a pool with the given concurrency. Zero or negative
// workers defaults to 4.
func New(workers int, opts ...wpilog.Option) *Pool {
	if workers <= 0 {
		workers = 4
	}
	p := &Pool{
		workers: workers,
		opts:    opts,
		jobs:    make(chan job),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
	return p
}

func (p *Pool) run() {
	defer p.wg.Done()
	for j := range p.jobs {
		j.out <- p.loadOne(j.path)
	}
}

func (p *Pool) loadOne(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: err}
	}
	idx, err := wpilog.Load(data, p.opts...)
	return Result{Path: path, Index: idx, Err: err}
}

// LoadAll loads every path and returns results in input order. It
// stops submitting when ctx is cancelled; unsubmitted paths get a
// Result carrying the context error.
func (p *Pool) LoadAll(ctx context.Context, paths []string) ([]Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	p.mu.Unlock()

	chans := make([]chan Result, len(paths))
	for i := range chans {
		chans[i] = make(chan Result, 1)
	}

	submitDone := make(chan struct{})
	go func() {
		defer close(submitDone)
		for i, path := range paths {
			select {
			case p.jobs <- job{path: path, out: chans[i]}:
			case <-ctx.Done():
				chans[i] <- Result{Path: path, Err: ctx.Err()}
			}
		}
	}()

	results := make([]Result, len(paths))
	for i, ch := range chans {
		select {
		case results[i] = <-ch:
		case <-ctx.Done():
			// Wait out the submitter so no send on p.jobs is still
			// pending when the caller moves on to Close.
			<-submitDone
			return results[:i], ctx.Err()
		}
	}
	<-submitDone
	return results, nil
}

// Close stops the workers. In-flight loads finish first.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
