package layout

import (
	"fmt"

	"github.com/seatforge/seatforge/backend-go/internal/geometry"
)

type SectionType string

const (
	// TypeSection is a regular seating block: it can hold individually
	// placed seats and supports grid fill.
	TypeSection SectionType = "section"
	// TypeLabel is a text-only marker (stage, entrance, ...). It never
	// holds seats.
	TypeLabel SectionType = "label"
)

const (
	// DefaultSeatSize is the circle radius given to individually placed seats.
	DefaultSeatSize = 10.0
	// MinSectionExtent is the smallest width/height a resize may produce.
	MinSectionExtent = 50.0
	// DuplicateOffset is added to both axes when duplicating a section so the
	// copy does not land exactly on top of the original.
	DuplicateOffset = 20.0
)

// Seat is a single seating position. X/Y are stored in the owning section's
// local, unrotated coordinate frame (origin at the section's top-left), so
// rotating the section never rewrites seat coordinates.
type Seat struct {
	ID        string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Row       string  `json:"row"`
	Number    int     `json:"number"`
	SectionID string  `json:"sectionId"`
	SeatSize  float64 `json:"seatSize"`
}

// Section is a rectangular area on the chart. X/Y are the top-left corner in
// world coordinates when Rotation is 0; Rotation is degrees around the
// section's own center and is not normalized to any range.
type Section struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Color    string      `json:"color"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Rotation float64     `json:"rotation"`
	Seats    []Seat      `json:"seats"`
	Type     SectionType `json:"type"`
}

// Frame returns the section's placement for coordinate transforms.
func (s *Section) Frame() geometry.Frame {
	return geometry.Frame{
		X:        s.X,
		Y:        s.Y,
		Width:    s.Width,
		Height:   s.Height,
		Rotation: s.Rotation,
	}
}

// Clone deep-copies the section and its seats.
func (s *Section) Clone() Section {
	out := *s
	out.Seats = make([]Seat, len(s.Seats))
	copy(out.Seats, s.Seats)
	return out
}

// Layout is the full chart document. Section order is z-order. Scale is the
// presentation zoom factor and has no effect on stored coordinates.
type Layout struct {
	Sections []Section `json:"sections"`
	Scale    float64   `json:"scale"`
}

// Clone deep-copies the layout. Mutation always operates on a clone so that
// previously published snapshots are never written to.
func (l *Layout) Clone() Layout {
	out := Layout{
		Sections: make([]Section, len(l.Sections)),
		Scale:    l.Scale,
	}
	for i := range l.Sections {
		out.Sections[i] = l.Sections[i].Clone()
	}
	return out
}

// Section returns a pointer to the section with the given id, or nil.
func (l *Layout) Section(id string) *Section {
	for i := range l.Sections {
		if l.Sections[i].ID == id {
			return &l.Sections[i]
		}
	}
	return nil
}

// Seat returns a pointer to the seat with the given id inside the given
// section, or nil if either is missing.
func (l *Layout) Seat(sectionID, seatID string) *Seat {
	sec := l.Section(sectionID)
	if sec == nil {
		return nil
	}
	for i := range sec.Seats {
		if sec.Seats[i].ID == seatID {
			return &sec.Seats[i]
		}
	}
	return nil
}

// TotalSeats counts seats across all sections.
func (l *Layout) TotalSeats() int {
	total := 0
	for i := range l.Sections {
		total += len(l.Sections[i].Seats)
	}
	return total
}

// IDs returns the set of every section and seat id in the layout.
func (l *Layout) IDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for i := range l.Sections {
		ids[l.Sections[i].ID] = struct{}{}
		for j := range l.Sections[i].Seats {
			ids[l.Sections[i].Seats[j].ID] = struct{}{}
		}
	}
	return ids
}

// Validate checks the layout's structural invariants: unique section ids,
// every seat's SectionID pointing at the section that holds it, and no seats
// on label sections.
func (l *Layout) Validate() error {
	sectionIDs := make(map[string]struct{}, len(l.Sections))
	for i := range l.Sections {
		sec := &l.Sections[i]
		if _, dup := sectionIDs[sec.ID]; dup {
			return fmt.Errorf("duplicate section id %q", sec.ID)
		}
		sectionIDs[sec.ID] = struct{}{}

		if sec.Type == TypeLabel && len(sec.Seats) > 0 {
			return fmt.Errorf("label section %q holds %d seats", sec.ID, len(sec.Seats))
		}
		for j := range sec.Seats {
			if sec.Seats[j].SectionID != sec.ID {
				return fmt.Errorf("seat %q in section %q references section %q",
					sec.Seats[j].ID, sec.ID, sec.Seats[j].SectionID)
			}
		}
	}
	return nil
}
