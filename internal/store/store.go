// Package store owns the current layout snapshot and is the only component
// that may replace it. Every command is copy-on-write: it clones the current
// layout, mutates the clone, publishes it as the new snapshot, and notifies
// the registered observer. A published snapshot is never written to again,
// so callers may hold one across commands for comparison or rendering.
//
// Commands whose target section or seat id does not exist are silent no-ops:
// no mutation, no notification. An interactive surface can race a delete
// against a drag of the same element, and that must never corrupt the
// document or crash the session.
//
// The store has no internal locking. It expects a single control thread
// feeding it commands in event order; a multi-threaded host must serialize
// command application externally (the collab package does this per chart).
package store

import (
	"fmt"

	"github.com/seatforge/seatforge/backend-go/internal/ident"
	"github.com/seatforge/seatforge/backend-go/internal/layout"
)

// Observer receives the new snapshot after every applied command.
type Observer func(layout.Layout)

type Store struct {
	current  layout.Layout
	onChange Observer
}

// New creates a store around an initial layout. If initial is nil the
// built-in default layout is used. onChange may be nil.
func New(initial *layout.Layout, onChange Observer) *Store {
	var l layout.Layout
	if initial != nil {
		l = initial.Clone()
	} else {
		l = layout.NewDefaultLayout()
	}
	return &Store{current: l, onChange: onChange}
}

// Layout returns the current snapshot. Callers must treat it as immutable.
func (s *Store) Layout() layout.Layout {
	return s.current
}

// SetObserver replaces the change observer.
func (s *Store) SetObserver(onChange Observer) {
	s.onChange = onChange
}

func (s *Store) publish(next layout.Layout) {
	s.current = next
	if s.onChange != nil {
		s.onChange(next)
	}
}

// MoveSection places the section so that its center sits at the given world
// position. Drags report the element center, the model stores the unrotated
// top-left corner; the conversion is the same regardless of rotation because
// the center is the rotation anchor.
func (s *Store) MoveSection(id string, worldX, worldY float64) bool {
	if s.current.Section(id) == nil {
		return false
	}
	next := s.current.Clone()
	sec := next.Section(id)
	sec.X = worldX - sec.Width/2
	sec.Y = worldY - sec.Height/2
	s.publish(next)
	return true
}

// TransformSection applies the full transform handed back by a resize/rotate
// gesture: center world position, new extents, new rotation. Extents are
// clamped to the minimum section size.
func (s *Store) TransformSection(id string, worldX, worldY, width, height, rotation float64) bool {
	if s.current.Section(id) == nil {
		return false
	}
	next := s.current.Clone()
	sec := next.Section(id)
	sec.Width = max(width, layout.MinSectionExtent)
	sec.Height = max(height, layout.MinSectionExtent)
	sec.X = worldX - sec.Width/2
	sec.Y = worldY - sec.Height/2
	sec.Rotation = rotation
	s.publish(next)
	return true
}

// AddSeat appends a seat at the clicked world position, converted into the
// section's local frame. Label sections never hold seats.
func (s *Store) AddSeat(sectionID string, worldX, worldY float64) bool {
	sec := s.current.Section(sectionID)
	if sec == nil || sec.Type != layout.TypeSection {
		return false
	}
	next := s.current.Clone()
	sec = next.Section(sectionID)
	localX, localY := sec.Frame().WorldToLocal(worldX, worldY)
	sec.Seats = append(sec.Seats, layout.Seat{
		ID:        ident.Fresh(func() string { return ident.SeatID(sec.Name) }, next.IDs()),
		X:         localX,
		Y:         localY,
		Row:       "A",
		Number:    len(sec.Seats) + 1,
		SectionID: sec.ID,
		SeatSize:  layout.DefaultSeatSize,
	})
	s.publish(next)
	return true
}

// MoveSeat stores the world position a seat was dragged to, mapped back into
// the section's local frame through the inverse rotation transform. Because
// the transform pair is exactly inverse, re-rendering reproduces the screen
// position the user released at, whatever the section's rotation.
func (s *Store) MoveSeat(sectionID, seatID string, worldX, worldY float64) bool {
	if s.current.Seat(sectionID, seatID) == nil {
		return false
	}
	next := s.current.Clone()
	sec := next.Section(sectionID)
	seat := next.Seat(sectionID, seatID)
	seat.X, seat.Y = sec.Frame().WorldToLocal(worldX, worldY)
	s.publish(next)
	return true
}

// FillWithSeats replaces the section's seats with a rows x cols grid.
// Returns (false, nil) when the section is missing or is a label, and
// (false, layout.ErrTooSmall) when the grid does not fit; in both cases the
// existing seats are untouched and no notification fires.
func (s *Store) FillWithSeats(sectionID string, rows, cols int, seatSize float64) (bool, error) {
	sec := s.current.Section(sectionID)
	if sec == nil || sec.Type != layout.TypeSection {
		return false, nil
	}
	next := s.current.Clone()
	sec = next.Section(sectionID)
	seats, err := layout.GridFill(sec, rows, cols, seatSize)
	if err != nil {
		return false, err
	}
	sec.Seats = seats
	s.publish(next)
	return true, nil
}

// AddSection appends a new empty seating section with generated id and
// defaults, named after its position in the document.
func (s *Store) AddSection() string {
	next := s.current.Clone()
	sec := layout.NewSection(nextSectionName(&next))
	next.Sections = append(next.Sections, sec)
	s.publish(next)
	return sec.ID
}

// AddLabelSection appends a new label section.
func (s *Store) AddLabelSection() string {
	next := s.current.Clone()
	sec := layout.NewLabelSection("Label")
	next.Sections = append(next.Sections, sec)
	s.publish(next)
	return sec.ID
}

func nextSectionName(l *layout.Layout) string {
	count := 0
	for i := range l.Sections {
		if l.Sections[i].Type == layout.TypeSection {
			count++
		}
	}
	return fmt.Sprintf("Section %d", count+1)
}

// DuplicateSection deep-copies a section and all its seats with fresh ids,
// offset from the original so the copy is visible. Every generated id is
// checked against the full set of ids already in the layout.
func (s *Store) DuplicateSection(id string) string {
	src := s.current.Section(id)
	if src == nil {
		return ""
	}
	next := s.current.Clone()
	taken := next.IDs()

	dup := next.Section(id).Clone()
	if dup.Type == layout.TypeLabel {
		dup.ID = ident.Fresh(ident.NewLabelID, taken)
	} else {
		dup.ID = ident.Fresh(ident.NewSectionID, taken)
	}
	dup.X += layout.DuplicateOffset
	dup.Y += layout.DuplicateOffset
	for i := range dup.Seats {
		dup.Seats[i].ID = ident.Fresh(func() string { return ident.SeatID(dup.Name) }, taken)
		dup.Seats[i].SectionID = dup.ID
	}

	next.Sections = append(next.Sections, dup)
	s.publish(next)
	return dup.ID
}

// DeleteSection removes the section and, because seats are exclusively owned
// by their section, all its seats with it.
func (s *Store) DeleteSection(id string) bool {
	if s.current.Section(id) == nil {
		return false
	}
	next := s.current.Clone()
	kept := next.Sections[:0]
	for i := range next.Sections {
		if next.Sections[i].ID != id {
			kept = append(kept, next.Sections[i])
		}
	}
	next.Sections = kept
	s.publish(next)
	return true
}

// DeleteSeat removes a single seat from its section.
func (s *Store) DeleteSeat(sectionID, seatID string) bool {
	if s.current.Seat(sectionID, seatID) == nil {
		return false
	}
	next := s.current.Clone()
	sec := next.Section(sectionID)
	kept := sec.Seats[:0]
	for i := range sec.Seats {
		if sec.Seats[i].ID != seatID {
			kept = append(kept, sec.Seats[i])
		}
	}
	sec.Seats = kept
	s.publish(next)
	return true
}

// RenameSection sets the section's display name. The name is accepted as-is.
func (s *Store) RenameSection(id, name string) bool {
	if s.current.Section(id) == nil {
		return false
	}
	next := s.current.Clone()
	next.Section(id).Name = name
	s.publish(next)
	return true
}

// RecolorSection sets the section's fill color. The value is accepted as-is;
// color format validation is a UI concern.
func (s *Store) RecolorSection(id, color string) bool {
	if s.current.Section(id) == nil {
		return false
	}
	next := s.current.Clone()
	next.Section(id).Color = color
	s.publish(next)
	return true
}

// RenameSeat sets a seat's id. Deliberately permissive: the new id is not
// checked for collisions with other seats, matching the editor's historical
// behavior of letting operators assign whatever seat codes their venue uses.
func (s *Store) RenameSeat(sectionID, seatID, newID string) bool {
	seat := s.current.Seat(sectionID, seatID)
	if seat == nil {
		return false
	}
	next := s.current.Clone()
	next.Seat(sectionID, seatID).ID = newID
	s.publish(next)
	return true
}
