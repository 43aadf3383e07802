// Package report summarizes executor timings and compares result rasters.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"rgbmorph/internal/models"
)

// Timing summarizes repeated runs of one executor
type Timing struct {
	// Runs is the number of samples
	Runs int

	// MeanMillis is the average wall-clock time in milliseconds
	MeanMillis float64

	// StdDevMillis is the sample standard deviation; zero for a single run
	StdDevMillis float64

	// MinMillis is the fastest run
	MinMillis float64
}

// Summarize computes the timing statistics of durations
func Summarize(durations []time.Duration) Timing {
	if len(durations) == 0 {
		return Timing{}
	}

	ms := make([]float64, len(durations))
	for i, d := range durations {
		ms[i] = float64(d) / float64(time.Millisecond)
	}

	t := Timing{Runs: len(ms), MinMillis: ms[0]}
	for _, v := range ms[1:] {
		t.MinMillis = math.Min(t.MinMillis, v)
	}
	if len(ms) == 1 {
		t.MeanMillis = ms[0]
		return t
	}
	t.MeanMillis, t.StdDevMillis = stat.MeanStdDev(ms, nil)
	return t
}

// Comparison holds the timings of the sequential and parallel executors
type Comparison struct {
	Workers    int
	Sequential Timing
	Parallel   Timing
}

// NewComparison summarizes both sets of durations
func NewComparison(workers int, sequential, parallel []time.Duration) Comparison {
	return Comparison{
		Workers:    workers,
		Sequential: Summarize(sequential),
		Parallel:   Summarize(parallel),
	}
}

// Speedup is the sequential mean divided by the parallel mean.
// It is zero when the parallel mean is zero.
func (c Comparison) Speedup() float64 {
	if c.Parallel.MeanMillis <= 0 {
		return 0
	}
	return c.Sequential.MeanMillis / c.Parallel.MeanMillis
}

// Efficiency is the speedup per worker as a percentage
func (c Comparison) Efficiency() float64 {
	if c.Workers <= 0 {
		return 0
	}
	return c.Speedup() / float64(c.Workers) * 100
}

// Write prints the comparison table
func (c Comparison) Write(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	sb.WriteString("PERFORMANCE COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&sb, "Sequential time: %s\n", formatTiming(c.Sequential))
	fmt.Fprintf(&sb, "Parallel time:   %s\n", formatTiming(c.Parallel))
	fmt.Fprintf(&sb, "Workers:         %d\n", c.Workers)
	fmt.Fprintf(&sb, "Speedup:         %.2fx\n", c.Speedup())
	fmt.Fprintf(&sb, "Efficiency:      %.2f%%\n", c.Efficiency())
	_, err := io.WriteString(w, sb.String())
	return err
}

func formatTiming(t Timing) string {
	if t.Runs <= 1 {
		return fmt.Sprintf("%.2f ms", t.MeanMillis)
	}
	return fmt.Sprintf("%.2f ms ± %.2f (min %.2f, %d runs)", t.MeanMillis, t.StdDevMillis, t.MinMillis, t.Runs)
}

// DiffStats describes how two rasters of equal size differ
type DiffStats struct {
	// Pixels is the number of pixels compared
	Pixels int

	// Mismatched counts pixels where any channel differs
	Mismatched int

	// MaxAbs is the largest absolute channel difference
	MaxAbs uint8

	// RMSE is the root mean square channel difference
	RMSE float64
}

// Identical reports whether no pixel differs
func (d DiffStats) Identical() bool {
	return d.Mismatched == 0
}

// Diff compares a and b channel by channel
func Diff(a, b *models.Raster) (DiffStats, error) {
	if a.Width() != b.Width() || a.Height() != b.Height() {
		return DiffStats{}, fmt.Errorf("raster sizes differ: %dx%d vs %dx%d",
			a.Width(), a.Height(), b.Width(), b.Height())
	}

	d := DiffStats{Pixels: a.Width() * a.Height()}
	if d.Pixels == 0 {
		return d, nil
	}

	squared := make([]float64, len(a.Pix))
	for i := range a.Pix {
		diff := int(a.Pix[i]) - int(b.Pix[i])
		if diff < 0 {
			diff = -diff
		}
		d.MaxAbs = max(d.MaxAbs, uint8(diff))
		squared[i] = float64(diff * diff)
	}
	for p := 0; p < len(a.Pix); p += 3 {
		if a.Pix[p] != b.Pix[p] || a.Pix[p+1] != b.Pix[p+1] || a.Pix[p+2] != b.Pix[p+2] {
			d.Mismatched++
		}
	}
	d.RMSE = math.Sqrt(stat.Mean(squared, nil))

	return d, nil
}

// WriteDiff prints the verification line for d
func WriteDiff(w io.Writer, d DiffStats) error {
	if d.Identical() {
		_, err := fmt.Fprintf(w, "Verification: results identical (%d pixels)\n", d.Pixels)
		return err
	}
	_, err := fmt.Fprintf(w, "Verification: %d of %d pixels differ (max %d, RMSE %.4f)\n",
		d.Mismatched, d.Pixels, d.MaxAbs, d.RMSE)
	return err
}
