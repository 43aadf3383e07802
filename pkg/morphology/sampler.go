package morphology

import "rgbmorph/internal/models"

// Sentinel is the pixel returned for coordinates outside the source.
// Black pulls erosion down along the borders and never wins a dilation
// maximum; that asymmetry is intended.
var Sentinel = models.Pixel{R: 0, G: 0, B: 0}

// Sampler performs bounds-checked reads against a source raster
type Sampler struct {
	src    models.Source
	width  int
	height int
}

// NewSampler wraps src. The source dimensions are read once.
func NewSampler(src models.Source) *Sampler {
	return &Sampler{
		src:    src,
		width:  src.Width(),
		height: src.Height(),
	}
}

// Sample returns the source pixel at (x, y), or Sentinel when the
// coordinate falls outside the image
func (s *Sampler) Sample(x, y int) models.Pixel {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return Sentinel
	}
	return s.src.At(x, y)
}

// Width returns the source width
func (s *Sampler) Width() int { return s.width }

// Height returns the source height
func (s *Sampler) Height() int { return s.height }
