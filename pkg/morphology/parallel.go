package morphology

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/golang/glog"

	"rgbmorph/internal/models"
	"rgbmorph/pkg/workerpool"
)

// Parallel splits the image into one row band per worker and runs the
// bands on a fixed-size worker pool. Its output is identical to
// Sequential for any worker count.
type Parallel struct {
	workers    int
	maxWorkers int
}

// ParallelOption configures a Parallel executor
type ParallelOption func(*Parallel)

// WithMaxWorkers sets the largest pool the executor may start.
// Requesting more workers fails with ErrPoolCreation.
func WithMaxWorkers(n int) ParallelOption {
	return func(p *Parallel) {
		p.maxWorkers = n
	}
}

// NewParallel creates an executor with the given worker count.
// Zero selects runtime.NumCPU().
func NewParallel(workers int, opts ...ParallelOption) (*Parallel, error) {
	if workers < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, workers)
	}
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	p := &Parallel{workers: workers}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Workers returns the number of workers (and bands) per run
func (p *Parallel) Workers() int {
	return p.workers
}

// Process runs op over src. The pool lives for the duration of the call.
//
// If any band fails, Process waits for every other band to report and then
// returns the joined *BandError values with a nil Result. Cancelling ctx
// lets started bands finish while bands not yet started are skipped with
// ErrBandSkipped.
func (p *Parallel) Process(ctx context.Context, src models.Source, op models.Operation, element *StructuringElement) (*Result, error) {
	kernel, err := prepare(src, op, element)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	bands, err := Partition(src.Height(), p.workers)
	if err != nil {
		return nil, err
	}

	pool, err := workerpool.New(p.workers, p.maxWorkers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolCreation, err)
	}
	defer pool.Close()

	dst := models.NewRaster(src.Width(), src.Height())
	sampler := NewSampler(src)
	tasks := make([]workerpool.Task, len(bands))
	for i, band := range bands {
		tasks[i] = func() error {
			glog.V(2).Infof("parallel: %s started", band)
			return processRows(kernel, sampler, dst, band)
		}
	}

	errs, err := pool.Run(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPoolCreation, err)
	}
	elapsed := time.Since(start)

	var failures []error
	for i, e := range errs {
		if e == nil {
			continue
		}
		if errors.Is(e, workerpool.ErrSkipped) {
			e = fmt.Errorf("%w: %w", ErrBandSkipped, e)
		}
		failures = append(failures, &BandError{Band: bands[i], Err: e})
	}
	if len(failures) > 0 {
		glog.V(1).Infof("parallel %s aborted: %d of %d bands failed", op, len(failures), len(bands))
		return nil, errors.Join(failures...)
	}

	glog.V(1).Infof("parallel %s of %dx%d with %d workers finished in %v",
		op, src.Width(), src.Height(), p.workers, elapsed)
	return &Result{
		Raster:  dst,
		Elapsed: elapsed,
		Workers: p.workers,
		Bands:   bands,
	}, nil
}

var (
	_ Processor = (*Sequential)(nil)
	_ Processor = (*Parallel)(nil)
)
