package morphology

import (
	"fmt"
	"strings"

	"github.com/golang/glog"
)

// DefaultCase is the shape used when Build receives an unsupported case id
const DefaultCase = 1

// Offset is the displacement of an active mask cell relative to the anchor
type Offset struct {
	DX, DY int
}

// StructuringElement is an immutable boolean mask plus the anchor cell that
// is aligned with the pixel under test.
type StructuringElement struct {
	name    string
	caseID  int
	mask    [][]bool
	width   int
	height  int
	anchorX int
	anchorY int

	// offsets lists the active cells relative to the anchor in row-major mask order
	offsets []Offset
}

// NewStructuringElement validates and copies mask. mask is indexed
// [row][col]; every row must have the same length. The anchor must lie
// inside the mask and at least one cell must be active.
func NewStructuringElement(name string, mask [][]bool, anchorX, anchorY int) (*StructuringElement, error) {
	if len(mask) == 0 || len(mask[0]) == 0 {
		return nil, fmt.Errorf("%w: mask must be at least 1x1", ErrInvalidElement)
	}

	height := len(mask)
	width := len(mask[0])
	if anchorX < 0 || anchorX >= width || anchorY < 0 || anchorY >= height {
		return nil, fmt.Errorf("%w: anchor (%d,%d) outside %dx%d mask", ErrInvalidElement, anchorX, anchorY, width, height)
	}

	se := &StructuringElement{
		name:    name,
		mask:    make([][]bool, height),
		width:   width,
		height:  height,
		anchorX: anchorX,
		anchorY: anchorY,
	}
	for row := range mask {
		if len(mask[row]) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidElement, row, len(mask[row]), width)
		}
		se.mask[row] = make([]bool, width)
		copy(se.mask[row], mask[row])
		for col, on := range mask[row] {
			if on {
				se.offsets = append(se.offsets, Offset{DX: col - anchorX, DY: row - anchorY})
			}
		}
	}
	if len(se.offsets) == 0 {
		return nil, fmt.Errorf("%w: mask has no active cells", ErrInvalidElement)
	}

	return se, nil
}

// shape is a predefined element definition
type shape struct {
	name    string
	rows    []string
	anchorX int
	anchorY int
}

// shapes are the six predefined elements keyed by case id. Rows use 'x' for
// active cells.
var shapes = map[int]shape{
	1: {name: "cross", rows: []string{".x.", "xxx", ".x."}, anchorX: 1, anchorY: 1},
	2: {name: "inverted L (down)", rows: []string{"xx", ".x"}, anchorX: 1, anchorY: 0},
	3: {name: "inverted L", rows: []string{".x", "xx"}, anchorX: 1, anchorY: 1},
	4: {name: "horizontal line 3x1", rows: []string{"xxx"}, anchorX: 1, anchorY: 0},
	5: {name: "vertical pair 1x2", rows: []string{"x", "x"}, anchorX: 0, anchorY: 0},
	6: {name: "diagonal X", rows: []string{"x.x", ".x.", "x.x"}, anchorX: 1, anchorY: 1},
}

// Cases returns the supported case ids in ascending order
func Cases() []int {
	return []int{1, 2, 3, 4, 5, 6}
}

// IsSupportedCase reports whether Build knows caseID
func IsSupportedCase(caseID int) bool {
	_, ok := shapes[caseID]
	return ok
}

// Build returns the predefined element for caseID. An unsupported id is not
// an error: a warning is logged and the DefaultCase cross is returned.
// Case reports which shape was actually built.
func Build(caseID int) *StructuringElement {
	s, ok := shapes[caseID]
	if !ok {
		glog.Warningf("morphology: unsupported structuring element case %d, using case %d (%s)",
			caseID, DefaultCase, shapes[DefaultCase].name)
		caseID = DefaultCase
		s = shapes[DefaultCase]
	}

	se, err := NewStructuringElement(s.name, parseRows(s.rows), s.anchorX, s.anchorY)
	if err != nil {
		panic(fmt.Sprintf("morphology: predefined case %d is malformed: %v", caseID, err))
	}
	se.caseID = caseID
	return se
}

// Identity returns the 1x1 element whose only cell is the anchor
func Identity() *StructuringElement {
	se, _ := NewStructuringElement("identity 1x1", [][]bool{{true}}, 0, 0)
	return se
}

// Square3x3 returns the full 3x3 square centred on its anchor
func Square3x3() *StructuringElement {
	se, _ := NewStructuringElement("square 3x3", parseRows([]string{"xxx", "xxx", "xxx"}), 1, 1)
	return se
}

func parseRows(rows []string) [][]bool {
	mask := make([][]bool, len(rows))
	for i, row := range rows {
		mask[i] = make([]bool, len(row))
		for j := range row {
			mask[i][j] = row[j] == 'x'
		}
	}
	return mask
}

// IsActive reports whether the mask cell at (row, col) participates.
// Coordinates outside the mask are inactive.
func (se *StructuringElement) IsActive(row, col int) bool {
	if row < 0 || row >= se.height || col < 0 || col >= se.width {
		return false
	}
	return se.mask[row][col]
}

// Width returns the number of mask columns
func (se *StructuringElement) Width() int { return se.width }

// Height returns the number of mask rows
func (se *StructuringElement) Height() int { return se.height }

// AnchorX returns the anchor column
func (se *StructuringElement) AnchorX() int { return se.anchorX }

// AnchorY returns the anchor row
func (se *StructuringElement) AnchorY() int { return se.anchorY }

// Name returns the human readable shape name
func (se *StructuringElement) Name() string { return se.name }

// Case returns the predefined case id, or 0 for custom elements
func (se *StructuringElement) Case() int { return se.caseID }

// Len returns the number of active cells
func (se *StructuringElement) Len() int { return len(se.offsets) }

// Offsets returns a copy of the active cells relative to the anchor
func (se *StructuringElement) Offsets() []Offset {
	out := make([]Offset, len(se.offsets))
	copy(out, se.offsets)
	return out
}

// IncludesAnchor reports whether the anchor cell itself is active
func (se *StructuringElement) IncludesAnchor() bool {
	return se.mask[se.anchorY][se.anchorX]
}

// String draws the mask, marking the anchor with ■ when active, other
// active cells with □ and inactive cells with a blank.
func (se *StructuringElement) String() string {
	var sb strings.Builder
	if se.caseID != 0 {
		fmt.Fprintf(&sb, "case %d: %s (%d cells)\n", se.caseID, se.name, len(se.offsets))
	} else {
		fmt.Fprintf(&sb, "%s (%d cells)\n", se.name, len(se.offsets))
	}
	for row := 0; row < se.height; row++ {
		sb.WriteString("  ")
		for col := 0; col < se.width; col++ {
			switch {
			case !se.mask[row][col]:
				sb.WriteString("  ")
			case row == se.anchorY && col == se.anchorX:
				sb.WriteString("■ ")
			default:
				sb.WriteString("□ ")
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
