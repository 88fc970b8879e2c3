package layout

import (
	"errors"
	"slices"

	"github.com/seatforge/seatforge/backend-go/internal/ident"
)

// MinSeatPadding is the smallest gap allowed between neighbouring seats and
// between a seat and the section border.
const MinSeatPadding = 15.0

// ErrTooSmall reports that the requested grid cannot fit inside the section
// with at least MinSeatPadding of spacing. The caller's seats are untouched.
var ErrTooSmall = errors.New("section too small for requested seat grid")

// GridFill computes a rows x cols grid of seats for the section, evenly
// spaced in the section's local frame. The grid is rotation-agnostic: it is
// laid out axis-aligned in local coordinates and only rendered rotated.
//
// The returned slice is a full replacement for the section's seats; callers
// must not merge it with existing seats.
func GridFill(sec *Section, rows, cols int, seatSize float64) ([]Seat, error) {
	if rows < 1 || cols < 1 || seatSize <= 0 {
		return nil, ErrTooSmall
	}

	// Spacing that distributes the leftover extent evenly between seats and
	// borders. A negative or sub-padding value means the grid does not fit.
	spacingX := (sec.Width - float64(cols)*seatSize*2) / float64(cols+1)
	spacingY := (sec.Height - float64(rows)*seatSize*2) / float64(rows+1)
	if spacingX < MinSeatPadding || spacingY < MinSeatPadding {
		return nil, ErrTooSmall
	}

	seats := make([]Seat, 0, rows*cols)
	for r := 0; r < rows; r++ {
		label := RowLabel(r)
		for c := 0; c < cols; c++ {
			number := c + 1
			seats = append(seats, Seat{
				ID:        ident.GridSeatID(sec.Name, label, number),
				X:         spacingX + float64(c)*(seatSize*2+spacingX),
				Y:         spacingY + float64(r)*(seatSize*2+spacingY),
				Row:       label,
				Number:    number,
				SectionID: sec.ID,
				SeatSize:  seatSize,
			})
		}
	}
	return seats, nil
}

// RowLabel converts a zero-based row index to its letter label: A..Z, then
// AA, AB, ... in spreadsheet-column style. The label grows a letter whenever
// the index outruns the current width, so every index maps to a unique label.
func RowLabel(i int) string {
	var buf []byte
	for i >= 0 {
		buf = append(buf, byte('A'+i%26))
		i = i/26 - 1
	}
	slices.Reverse(buf)
	return string(buf)
}
