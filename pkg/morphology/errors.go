package morphology

import (
	"errors"
	"fmt"

	"rgbmorph/internal/models"
)

var (
	// ErrInvalidElement is returned when a structuring element mask or anchor is malformed
	ErrInvalidElement = errors.New("morphology: invalid structuring element")

	// ErrInvalidOperation is returned for an operation other than erosion or dilation
	ErrInvalidOperation = errors.New("morphology: invalid operation")

	// ErrNilElement is returned when no structuring element is supplied
	ErrNilElement = errors.New("morphology: nil structuring element")

	// ErrNilSource is returned when no source raster is supplied
	ErrNilSource = errors.New("morphology: nil source raster")

	// ErrInvalidWorkerCount is returned for a negative worker count
	ErrInvalidWorkerCount = errors.New("morphology: worker count must be at least 1")

	// ErrInvalidPartition is returned when row bands do not tile [0,height) exactly
	ErrInvalidPartition = errors.New("morphology: invalid row partition")

	// ErrPoolCreation is returned when the worker pool cannot be started
	ErrPoolCreation = errors.New("morphology: cannot create worker pool")

	// ErrBandSkipped marks a band that was never started because the run was cancelled
	ErrBandSkipped = errors.New("morphology: band skipped")
)

// BandError reports the failure of one row band during a parallel run.
// Rows of the failing band after the failing pixel are left unwritten.
type BandError struct {
	Band models.RowBand
	Err  error
}

func (e *BandError) Error() string {
	return fmt.Sprintf("morphology: %s failed: %v", e.Band, e.Err)
}

func (e *BandError) Unwrap() error {
	return e.Err
}
