package morphology

import (
	"fmt"

	"rgbmorph/internal/models"
)

// Partition splits [0,height) into n contiguous bands of height/n rows;
// the last band also takes the height%n remainder rows. When height < n
// the leading bands are empty and the last one holds every row.
func Partition(height, n int) ([]models.RowBand, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, n)
	}
	if height < 0 {
		return nil, fmt.Errorf("%w: negative height %d", ErrInvalidPartition, height)
	}

	size := height / n
	bands := make([]models.RowBand, n)
	for i := range bands {
		bands[i] = models.RowBand{Index: i, Start: i * size, End: (i + 1) * size}
	}
	bands[n-1].End = height

	if err := ValidateBands(bands, height); err != nil {
		return nil, err
	}
	return bands, nil
}

// ValidateBands checks that bands are ordered, contiguous and
// non-overlapping and that together they cover exactly [0,height)
func ValidateBands(bands []models.RowBand, height int) error {
	if len(bands) == 0 {
		return fmt.Errorf("%w: no bands", ErrInvalidPartition)
	}

	next := 0
	for i, b := range bands {
		if b.Index != i {
			return fmt.Errorf("%w: band at position %d has index %d", ErrInvalidPartition, i, b.Index)
		}
		if b.Start != next {
			return fmt.Errorf("%w: %s starts at %d, want %d", ErrInvalidPartition, b, b.Start, next)
		}
		if b.End < b.Start {
			return fmt.Errorf("%w: %s is inverted", ErrInvalidPartition, b)
		}
		next = b.End
	}
	if next != height {
		return fmt.Errorf("%w: bands cover [0,%d), want [0,%d)", ErrInvalidPartition, next, height)
	}
	return nil
}
