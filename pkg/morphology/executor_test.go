package morphology

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rgbmorph/internal/models"
	"rgbmorph/pkg/synth"
	"rgbmorph/pkg/workerpool"
)

// createTestRaster creates a reproducible random raster
func createTestRaster(t *testing.T, width, height int, seed uint64) *models.Raster {
	t.Helper()
	r, err := synth.Generate(width, height, synth.Random, synth.NewRand(seed))
	require.NoError(t, err)
	return r
}

// allElements returns every predefined element plus the extra shapes
func allElements() []*StructuringElement {
	var out []*StructuringElement
	for _, id := range Cases() {
		out = append(out, Build(id))
	}
	return append(out, Identity(), Square3x3())
}

// faultySource panics when a pixel on failRow is read
type faultySource struct {
	*models.Raster
	failRow int
}

func (f faultySource) At(x, y int) models.Pixel {
	if y == f.failRow {
		panic(fmt.Sprintf("corrupt row %d", y))
	}
	return f.Raster.At(x, y)
}

func TestParallelMatchesSequential(t *testing.T) {
	ctx := context.Background()
	src := createTestRaster(t, 37, 23, 1)

	for _, op := range []models.Operation{models.Erosion, models.Dilation} {
		for _, se := range allElements() {
			want, err := NewSequential().Process(ctx, src, op, se)
			require.NoError(t, err)

			for _, n := range []int{1, 2, 3, 4, 7, 16, 23, 40} {
				t.Run(fmt.Sprintf("%s/%s/%d", op, se.Name(), n), func(t *testing.T) {
					par, err := NewParallel(n)
					require.NoError(t, err)

					got, err := par.Process(ctx, src, op, se)
					require.NoError(t, err)
					require.True(t, want.Raster.Equal(got.Raster), "parallel result differs from sequential")
					assert.Equal(t, n, got.Workers)
					assert.Len(t, got.Bands, n)
				})
			}
		}
	}
}

func TestWorkerCountInvariance(t *testing.T) {
	ctx := context.Background()
	src := createTestRaster(t, 64, 48, 7)
	se := Build(6)

	one, err := NewParallel(1)
	require.NoError(t, err)
	base, err := one.Process(ctx, src, models.Dilation, se)
	require.NoError(t, err)

	for k := 2; k <= 12; k++ {
		par, err := NewParallel(k)
		require.NoError(t, err)
		res, err := par.Process(ctx, src, models.Dilation, se)
		require.NoError(t, err)
		assert.True(t, base.Raster.Equal(res.Raster), "workers=%d changed the result", k)
	}
}

func TestSourceNotModified(t *testing.T) {
	src := createTestRaster(t, 20, 20, 3)
	orig := src.Clone()

	par, err := NewParallel(4)
	require.NoError(t, err)
	_, err = par.Process(context.Background(), src, models.Erosion, Square3x3())
	require.NoError(t, err)
	assert.True(t, orig.Equal(src))
}

func TestMonotonicity(t *testing.T) {
	ctx := context.Background()
	src := createTestRaster(t, 30, 17, 11)

	for _, se := range allElements() {
		require.True(t, se.IncludesAnchor())

		eroded, err := NewSequential().Process(ctx, src, models.Erosion, se)
		require.NoError(t, err)
		dilated, err := NewSequential().Process(ctx, src, models.Dilation, se)
		require.NoError(t, err)

		for i := range src.Pix {
			if eroded.Raster.Pix[i] > src.Pix[i] {
				t.Fatalf("%s: erosion increased channel %d: %d > %d", se.Name(), i, eroded.Raster.Pix[i], src.Pix[i])
			}
			if dilated.Raster.Pix[i] < src.Pix[i] {
				t.Fatalf("%s: dilation decreased channel %d: %d < %d", se.Name(), i, dilated.Raster.Pix[i], src.Pix[i])
			}
		}
	}
}

func TestIdentityElement(t *testing.T) {
	ctx := context.Background()
	src := createTestRaster(t, 25, 9, 5)

	for _, op := range []models.Operation{models.Erosion, models.Dilation} {
		seq, err := NewSequential().Process(ctx, src, op, Identity())
		require.NoError(t, err)
		assert.True(t, src.Equal(seq.Raster), "sequential %s", op)

		par, err := NewParallel(4)
		require.NoError(t, err)
		res, err := par.Process(ctx, src, op, Identity())
		require.NoError(t, err)
		assert.True(t, src.Equal(res.Raster), "parallel %s", op)
	}
}

func TestWhiteImageCrossErosion(t *testing.T) {
	src := models.NewUniformRaster(3, 3, white)
	res, err := NewSequential().Process(context.Background(), src, models.Erosion, Build(1))
	require.NoError(t, err)

	// only the centre avoids the black border
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := black
			if x == 1 && y == 1 {
				want = white
			}
			assert.Equal(t, want, res.Raster.At(x, y), "(%d,%d)", x, y)
		}
	}
}

func TestSequentialResult(t *testing.T) {
	src := createTestRaster(t, 8, 5, 2)
	res, err := NewSequential().Process(context.Background(), src, models.Erosion, Build(1))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Workers)
	assert.Equal(t, []models.RowBand{{Index: 0, Start: 0, End: 5}}, res.Bands)
	assert.Equal(t, 8, res.Raster.Width())
	assert.Equal(t, 5, res.Raster.Height())
	assert.GreaterOrEqual(t, res.ElapsedMillis(), int64(0))
}

func TestParallelBandsForTenRows(t *testing.T) {
	src := createTestRaster(t, 4, 10, 9)
	par, err := NewParallel(3)
	require.NoError(t, err)

	res, err := par.Process(context.Background(), src, models.Dilation, Build(5))
	require.NoError(t, err)
	assert.Equal(t, []models.RowBand{
		{Index: 0, Start: 0, End: 3},
		{Index: 1, Start: 3, End: 6},
		{Index: 2, Start: 6, End: 10},
	}, res.Bands)
}

func TestInvalidInputs(t *testing.T) {
	ctx := context.Background()
	src := createTestRaster(t, 4, 4, 1)
	par, err := NewParallel(2)
	require.NoError(t, err)

	for _, p := range []Processor{NewSequential(), par} {
		_, err := p.Process(ctx, nil, models.Erosion, Build(1))
		assert.ErrorIs(t, err, ErrNilSource)

		_, err = p.Process(ctx, src, models.Erosion, nil)
		assert.ErrorIs(t, err, ErrNilElement)

		_, err = p.Process(ctx, src, models.Operation(-1), Build(1))
		assert.ErrorIs(t, err, ErrInvalidOperation)
	}
}

func TestNewParallelWorkers(t *testing.T) {
	_, err := NewParallel(-1)
	require.ErrorIs(t, err, ErrInvalidWorkerCount)

	p, err := NewParallel(0)
	require.NoError(t, err)
	assert.Equal(t, runtime.NumCPU(), p.Workers())
}

func TestPoolCreationFailure(t *testing.T) {
	src := createTestRaster(t, 4, 4, 1)
	par, err := NewParallel(8, WithMaxWorkers(4))
	require.NoError(t, err)

	res, err := par.Process(context.Background(), src, models.Erosion, Build(1))
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrPoolCreation)
	assert.ErrorIs(t, err, workerpool.ErrTooManyWorkers)
}

func TestParallelWorkerFailure(t *testing.T) {
	src := faultySource{Raster: createTestRaster(t, 6, 10, 4), failRow: 4}
	par, err := NewParallel(3)
	require.NoError(t, err)

	res, err := par.Process(context.Background(), src, models.Erosion, Identity())
	require.Error(t, err)
	require.Nil(t, res, "partial result must not be returned")

	var bandErr *BandError
	require.True(t, errors.As(err, &bandErr))
	assert.Equal(t, models.RowBand{Index: 1, Start: 3, End: 6}, bandErr.Band)
	assert.Contains(t, bandErr.Error(), "pixel (0,4)")

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 1, "only the band reading the corrupt row fails")
}

func TestParallelFailureInEveryBand(t *testing.T) {
	// the cross reads the rows above and below, so bands 0 and 1 both touch row 2 or 3
	src := faultySource{Raster: createTestRaster(t, 5, 6, 4), failRow: 3}
	par, err := NewParallel(2)
	require.NoError(t, err)

	_, err = par.Process(context.Background(), src, models.Dilation, Build(1))
	require.Error(t, err)

	joined, ok := err.(interface{ Unwrap() []error })
	require.True(t, ok)
	assert.Len(t, joined.Unwrap(), 2)
}

func TestSequentialWorkerFailure(t *testing.T) {
	src := faultySource{Raster: createTestRaster(t, 6, 10, 4), failRow: 9}
	res, err := NewSequential().Process(context.Background(), src, models.Erosion, Identity())
	require.Nil(t, res)

	var bandErr *BandError
	require.ErrorAs(t, err, &bandErr)
	assert.Contains(t, err.Error(), "corrupt row 9")
}

func TestCancelledBeforeStart(t *testing.T) {
	src := createTestRaster(t, 8, 8, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSequential().Process(ctx, src, models.Erosion, Build(1))
	require.ErrorIs(t, err, context.Canceled)

	par, err := NewParallel(4)
	require.NoError(t, err)
	res, err := par.Process(ctx, src, models.Erosion, Build(1))
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrBandSkipped)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMoreWorkersThanRows(t *testing.T) {
	src := createTestRaster(t, 9, 2, 8)
	want, err := NewSequential().Process(context.Background(), src, models.Erosion, Build(3))
	require.NoError(t, err)

	par, err := NewParallel(5)
	require.NoError(t, err)
	got, err := par.Process(context.Background(), src, models.Erosion, Build(3))
	require.NoError(t, err)
	assert.True(t, want.Raster.Equal(got.Raster))
	assert.Equal(t, 2, got.Bands[4].Rows())
}
