package morphology

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"

	"rgbmorph/internal/models"
)

// Result is the output of one executor run
type Result struct {
	// Raster holds the processed image
	Raster *models.Raster

	// Elapsed is the wall-clock duration of the pass
	Elapsed time.Duration

	// Workers is the number of workers that ran the pass
	Workers int

	// Bands lists the row bands the pass was split into
	Bands []models.RowBand
}

// ElapsedMillis returns Elapsed in whole milliseconds
func (r *Result) ElapsedMillis() int64 {
	return r.Elapsed.Milliseconds()
}

// Processor applies a morphology operation to a source raster
type Processor interface {
	Process(ctx context.Context, src models.Source, op models.Operation, element *StructuringElement) (*Result, error)
}

// Sequential processes every pixel in row-major order on the calling goroutine
type Sequential struct{}

// NewSequential returns the single-threaded baseline executor
func NewSequential() *Sequential {
	return &Sequential{}
}

// Process runs op over src. The context is only checked before the pass starts.
func (s *Sequential) Process(ctx context.Context, src models.Source, op models.Operation, element *StructuringElement) (*Result, error) {
	kernel, err := prepare(src, op, element)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	dst := models.NewRaster(src.Width(), src.Height())
	band := models.RowBand{Index: 0, Start: 0, End: src.Height()}
	if err := processRows(kernel, NewSampler(src), dst, band); err != nil {
		return nil, &BandError{Band: band, Err: err}
	}
	elapsed := time.Since(start)

	glog.V(1).Infof("sequential %s of %dx%d finished in %v", op, src.Width(), src.Height(), elapsed)
	return &Result{
		Raster:  dst,
		Elapsed: elapsed,
		Workers: 1,
		Bands:   []models.RowBand{band},
	}, nil
}

// prepare validates the run inputs shared by both executors
func prepare(src models.Source, op models.Operation, element *StructuringElement) (*Kernel, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	return NewKernel(op, element)
}

// processRows applies the kernel to every pixel of band, reading only from
// the sampler and writing only rows of band into dst. A panic while
// processing a pixel stops the band and is returned as an error.
func processRows(k *Kernel, s *Sampler, dst *models.Raster, band models.RowBand) (err error) {
	x, y := 0, band.Start
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pixel (%d,%d): %v", x, y, r)
		}
	}()

	width := s.Width()
	for y = band.Start; y < band.End; y++ {
		for x = 0; x < width; x++ {
			dst.Set(x, y, k.Apply(x, y, s))
		}
	}
	return nil
}
