package morphology

import (
	"fmt"

	"rgbmorph/internal/models"
)

// Kernel binds an operation to a structuring element. It holds no mutable
// state, so one Kernel is shared by every worker of a run.
type Kernel struct {
	op      models.Operation
	element *StructuringElement
}

// NewKernel validates op and element
func NewKernel(op models.Operation, element *StructuringElement) (*Kernel, error) {
	if !op.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, op)
	}
	if element == nil {
		return nil, ErrNilElement
	}
	return &Kernel{op: op, element: element}, nil
}

// Operation returns the kernel's operation
func (k *Kernel) Operation() models.Operation { return k.op }

// Element returns the kernel's structuring element
func (k *Kernel) Element() *StructuringElement { return k.element }

// Apply computes the output pixel at (x, y)
func (k *Kernel) Apply(x, y int, s *Sampler) models.Pixel {
	return Apply(k.op, x, y, k.element, s)
}

// Apply reduces every pixel covered by element when its anchor sits on
// (x, y). Erosion keeps the per-channel minimum starting from 255, dilation
// the per-channel maximum starting from 0. Channels never influence each
// other. An invalid operation is treated as dilation; use NewKernel to
// reject it up front.
func Apply(op models.Operation, x, y int, element *StructuringElement, s *Sampler) models.Pixel {
	if op == models.Erosion {
		out := models.Pixel{R: 255, G: 255, B: 255}
		for _, o := range element.offsets {
			p := s.Sample(x+o.DX, y+o.DY)
			out.R = min(out.R, p.R)
			out.G = min(out.G, p.G)
			out.B = min(out.B, p.B)
		}
		return out
	}

	var out models.Pixel
	for _, o := range element.offsets {
		p := s.Sample(x+o.DX, y+o.DY)
		out.R = max(out.R, p.R)
		out.G = max(out.G, p.G)
		out.B = max(out.B, p.B)
	}
	return out
}
