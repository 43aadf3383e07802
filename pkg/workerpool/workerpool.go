// Package workerpool provides a fixed-size pool of persistent workers that
// run one batch of tasks at a time behind a counting barrier.
//
// Every task reports back exactly once, whether it succeeded, failed,
// panicked or was skipped because its context was cancelled before it
// started. Tasks that already started always run to completion.
//
// Usage:
//
//	pool, err := workerpool.New(4, 0)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	errs, err := pool.Run(ctx, tasks)
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/golang/glog"
)

var (
	// ErrInvalidSize is returned by New for a worker count below one
	ErrInvalidSize = errors.New("workerpool: worker count must be at least 1")

	// ErrTooManyWorkers is returned by New when the requested worker count
	// exceeds the configured resource ceiling
	ErrTooManyWorkers = errors.New("workerpool: insufficient resources for requested workers")

	// ErrClosed is returned by Run once the pool has been closed
	ErrClosed = errors.New("workerpool: pool is closed")

	// ErrSkipped marks a task that was never started because its context
	// was done when a worker picked it up
	ErrSkipped = errors.New("workerpool: task skipped")
)

// Task is a unit of work. A non-nil error marks the task as failed.
type Task func() error

// Pool is a set of persistent worker goroutines fed through a buffered
// channel. Workers are spawned once at creation and live until Close.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

// workItem is one task of a Run call together with the slot for its result
type workItem struct {
	ctx     context.Context
	index   int
	fn      Task
	errs    []error
	barrier *sync.WaitGroup
}

// New spawns numWorkers workers. maxWorkers is the resource ceiling;
// zero or a negative value disables the check.
func New(numWorkers, maxWorkers int) (*Pool, error) {
	if numWorkers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, numWorkers)
	}
	if maxWorkers > 0 && numWorkers > maxWorkers {
		return nil, fmt.Errorf("%w: requested %d, limit %d", ErrTooManyWorkers, numWorkers, maxWorkers)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	glog.V(2).Infof("workerpool: started %d workers", numWorkers)
	return p, nil
}

func (p *Pool) worker() {
	for item := range p.workC {
		p.execute(item)
	}
}

// execute runs a single item and always releases the barrier, even when
// the task panics
func (p *Pool) execute(item workItem) {
	defer item.barrier.Done()

	if err := item.ctx.Err(); err != nil {
		item.errs[item.index] = fmt.Errorf("%w: %w", ErrSkipped, err)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			item.errs[item.index] = fmt.Errorf("workerpool: task %d panicked: %v", item.index, r)
		}
	}()
	item.errs[item.index] = item.fn()
}

// NumWorkers returns the number of workers in the pool
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close stops the workers after pending work has drained.
// Calling Close multiple times is safe; it must not race with Run.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// Run dispatches every task to the pool and blocks until each of them
// has reported. The returned slice holds one entry per task, nil on
// success. Tasks picked up after ctx is done are not started and report
// an error wrapping ErrSkipped and ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) ([]error, error) {
	if p.closed.Load() {
		return nil, ErrClosed
	}

	errs := make([]error, len(tasks))
	if len(tasks) == 0 {
		return errs, nil
	}

	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, fn := range tasks {
		p.workC <- workItem{
			ctx:     ctx,
			index:   i,
			fn:      fn,
			errs:    errs,
			barrier: &wg,
		}
	}
	wg.Wait()

	return errs, nil
}
