package models

import (
	"fmt"
	"strings"
)

// Pixel is a single RGB sample, each channel in [0,255]
type Pixel struct {
	R, G, B uint8
}

// Source is the read-only view of an image the morphology engine consumes.
// Implementations must be safe for concurrent reads.
type Source interface {
	// Width is the number of columns
	Width() int

	// Height is the number of rows
	Height() int

	// At returns the pixel at (x, y); callers only ask for in-bounds coordinates
	At(x, y int) Pixel
}

// Raster is a width x height grid of RGB pixels stored row-major,
// three bytes per pixel.
type Raster struct {
	// Pix holds the channel data as R,G,B triples in row-major order
	Pix []uint8

	width  int
	height int
}

// NewRaster allocates a black raster with the given dimensions.
// Negative dimensions are clamped to zero.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Pix:    make([]uint8, width*height*3),
		width:  width,
		height: height,
	}
}

// NewUniformRaster allocates a raster filled with p
func NewUniformRaster(width, height int, p Pixel) *Raster {
	r := NewRaster(width, height)
	for i := 0; i < len(r.Pix); i += 3 {
		r.Pix[i] = p.R
		r.Pix[i+1] = p.G
		r.Pix[i+2] = p.B
	}
	return r
}

// Width returns the number of columns
func (r *Raster) Width() int { return r.width }

// Height returns the number of rows
func (r *Raster) Height() int { return r.height }

// At returns the pixel at (x, y). It panics on out-of-range coordinates,
// like indexing a slice.
func (r *Raster) At(x, y int) Pixel {
	i := r.offset(x, y)
	return Pixel{R: r.Pix[i], G: r.Pix[i+1], B: r.Pix[i+2]}
}

// Set writes the pixel at (x, y)
func (r *Raster) Set(x, y int, p Pixel) {
	i := r.offset(x, y)
	r.Pix[i] = p.R
	r.Pix[i+1] = p.G
	r.Pix[i+2] = p.B
}

func (r *Raster) offset(x, y int) int {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		panic(fmt.Sprintf("models: pixel (%d,%d) out of range %dx%d", x, y, r.width, r.height))
	}
	return (y*r.width + x) * 3
}

// Clone returns a deep copy
func (r *Raster) Clone() *Raster {
	c := &Raster{
		Pix:    make([]uint8, len(r.Pix)),
		width:  r.width,
		height: r.height,
	}
	copy(c.Pix, r.Pix)
	return c
}

// Equal reports whether both rasters have the same dimensions and pixels
func (r *Raster) Equal(o *Raster) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.width != o.width || r.height != o.height {
		return false
	}
	for i := range r.Pix {
		if r.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Operation selects the reduction applied by the morphology kernel
type Operation int

const (
	// Erosion takes the per-channel minimum over the neighbourhood
	Erosion Operation = iota
	// Dilation takes the per-channel maximum over the neighbourhood
	Dilation
)

// String returns the lower-case operation name
func (o Operation) String() string {
	switch o {
	case Erosion:
		return "erosion"
	case Dilation:
		return "dilation"
	default:
		return fmt.Sprintf("operation(%d)", int(o))
	}
}

// Valid reports whether o is Erosion or Dilation
func (o Operation) Valid() bool {
	return o == Erosion || o == Dilation
}

// ParseOperation converts a name such as "EROSION" or "dilate" into an Operation
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "erosion", "erode":
		return Erosion, nil
	case "dilation", "dilate":
		return Dilation, nil
	}
	return 0, fmt.Errorf("unknown operation %q (want erosion or dilation)", s)
}

// RowBand is the half-open row range [Start, End) handled by one worker
type RowBand struct {
	// Index is the position of the band in the partition
	Index int

	Start int
	End   int
}

// Rows returns the number of rows in the band
func (b RowBand) Rows() int { return b.End - b.Start }

// String formats the band as "band 2 [6,10)"
func (b RowBand) String() string {
	return fmt.Sprintf("band %d [%d,%d)", b.Index, b.Start, b.End)
}
