package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatforge/seatforge/backend-go/internal/layout"
)

const tolerance = 1e-9

// snap returns an addressable copy of the store's current snapshot so the
// pointer-receiver accessors on layout.Layout can be called inline.
func snap(s *Store) *layout.Layout {
	l := s.Layout()
	return &l
}

func testLayout() *layout.Layout {
	return &layout.Layout{
		Scale: 1,
		Sections: []layout.Section{
			{
				ID: "section-main", Name: "Main", Color: "#7eb3ff",
				X: 100, Y: 100, Width: 300, Height: 200,
				Seats: []layout.Seat{
					{ID: "Main-A-1", X: 50, Y: 40, Row: "A", Number: 1, SectionID: "section-main", SeatSize: 8},
				},
				Type: layout.TypeSection,
			},
			{
				ID: "label-stage", Name: "Stage",
				X: 100, Y: 400, Width: 200, Height: 60,
				Seats: []layout.Seat{},
				Type:  layout.TypeLabel,
			},
		},
	}
}

// newTestStore records every notification and checks the structural
// invariants of each published snapshot.
func newTestStore(t *testing.T) (*Store, *[]layout.Layout) {
	t.Helper()
	var notified []layout.Layout
	s := New(testLayout(), func(l layout.Layout) {
		require.NoError(t, l.Validate())
		notified = append(notified, l)
	})
	return s, &notified
}

func TestMoveSection(t *testing.T) {
	s, notified := newTestStore(t)

	ok := s.MoveSection("section-main", 500, 300)
	require.True(t, ok)

	sec := snap(s).Section("section-main")
	assert.Equal(t, 350.0, sec.X) // 500 - 300/2
	assert.Equal(t, 200.0, sec.Y) // 300 - 200/2
	assert.Len(t, *notified, 1)
}

func TestMoveSectionUnknownIDIsNoOp(t *testing.T) {
	s, notified := newTestStore(t)
	before := s.Layout()

	ok := s.MoveSection("section-missing", 500, 300)
	assert.False(t, ok)
	assert.Empty(t, *notified)
	assert.Equal(t, before, s.Layout())
}

func TestSnapshotsAreImmutable(t *testing.T) {
	s, _ := newTestStore(t)
	before := s.Layout()

	require.True(t, s.MoveSection("section-main", 500, 300))
	_, err := s.FillWithSeats("section-main", 3, 4, 8)
	require.NoError(t, err)
	require.True(t, s.DeleteSection("label-stage"))

	// The snapshot captured before the commands still shows the old state.
	assert.Equal(t, 100.0, before.Section("section-main").X)
	assert.Len(t, before.Section("section-main").Seats, 1)
	assert.NotNil(t, before.Section("label-stage"))
}

func TestTransformSectionClampsExtents(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.TransformSection("section-main", 200, 200, 10, 600, 30))

	sec := snap(s).Section("section-main")
	assert.Equal(t, layout.MinSectionExtent, sec.Width)
	assert.Equal(t, 600.0, sec.Height)
	assert.Equal(t, 30.0, sec.Rotation)
	// Top-left derives from the clamped extents
	assert.Equal(t, 200-layout.MinSectionExtent/2, sec.X)
	assert.Equal(t, -100.0, sec.Y)
}

func TestAddSeatStoresLocalPosition(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.TransformSection("section-main", 250, 200, 300, 200, 37))

	worldX, worldY := 260.0, 190.0
	require.True(t, s.AddSeat("section-main", worldX, worldY))

	sec := snap(s).Section("section-main")
	require.Len(t, sec.Seats, 2)
	seat := sec.Seats[1]

	assert.Equal(t, "A", seat.Row)
	assert.Equal(t, 2, seat.Number)
	assert.Equal(t, layout.DefaultSeatSize, seat.SeatSize)
	assert.Equal(t, "section-main", seat.SectionID)

	// Rendering the stored local position must land back on the click point.
	wx, wy := sec.Frame().LocalToWorld(seat.X, seat.Y)
	assert.InDelta(t, worldX, wx, tolerance)
	assert.InDelta(t, worldY, wy, tolerance)
}

func TestAddSeatOnLabelIsNoOp(t *testing.T) {
	s, notified := newTestStore(t)

	assert.False(t, s.AddSeat("label-stage", 150, 420))
	assert.Empty(t, snap(s).Section("label-stage").Seats)
	assert.Empty(t, *notified)
}

func TestMoveSeatRoundTripsThroughRotation(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.TransformSection("section-main", 250, 200, 300, 200, -125))

	worldX, worldY := 300.0, 150.0
	require.True(t, s.MoveSeat("section-main", "Main-A-1", worldX, worldY))

	sec := snap(s).Section("section-main")
	wx, wy := sec.Frame().LocalToWorld(sec.Seats[0].X, sec.Seats[0].Y)
	assert.InDelta(t, worldX, wx, tolerance)
	assert.InDelta(t, worldY, wy, tolerance)
}

func TestMoveSeatUnknownIDIsNoOp(t *testing.T) {
	s, notified := newTestStore(t)

	assert.False(t, s.MoveSeat("section-main", "Main-Z-9", 0, 0))
	assert.False(t, s.MoveSeat("section-missing", "Main-A-1", 0, 0))
	assert.Empty(t, *notified)
}

func TestFillWithSeatsReplacesExisting(t *testing.T) {
	s, notified := newTestStore(t)

	applied, err := s.FillWithSeats("section-main", 3, 4, 8)
	require.NoError(t, err)
	require.True(t, applied)

	sec := snap(s).Section("section-main")
	assert.Len(t, sec.Seats, 12)
	assert.Nil(t, snap(s).Seat("section-main", "Main-A-1"), "fill is destructive, not additive")
	assert.Len(t, *notified, 1)
}

func TestFillWithSeatsTooSmall(t *testing.T) {
	s, notified := newTestStore(t)

	applied, err := s.FillWithSeats("section-main", 10, 10, 8)
	assert.ErrorIs(t, err, layout.ErrTooSmall)
	assert.False(t, applied)

	// Existing seats untouched, no notification
	assert.Len(t, snap(s).Section("section-main").Seats, 1)
	assert.Empty(t, *notified)
}

func TestFillWithSeatsOnLabelIsNoOp(t *testing.T) {
	s, notified := newTestStore(t)

	applied, err := s.FillWithSeats("label-stage", 2, 2, 8)
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, snap(s).Section("label-stage").Seats)
	assert.Empty(t, *notified)
}

func TestAddSection(t *testing.T) {
	s, notified := newTestStore(t)

	id := s.AddSection()
	require.NotEmpty(t, id)

	l := s.Layout()
	require.Len(t, l.Sections, 3)
	added := l.Section(id)
	require.NotNil(t, added)
	assert.Equal(t, layout.TypeSection, added.Type)
	assert.Equal(t, "Section 2", added.Name) // one seating section existed before
	assert.Empty(t, added.Seats)
	assert.Len(t, *notified, 1)
}

func TestAddLabelSection(t *testing.T) {
	s, _ := newTestStore(t)

	id := s.AddLabelSection()
	added := snap(s).Section(id)
	require.NotNil(t, added)
	assert.Equal(t, layout.TypeLabel, added.Type)
	assert.Empty(t, added.Seats)
}

func TestDuplicateSection(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.FillWithSeats("section-main", 3, 4, 8)
	require.NoError(t, err)

	existing := snap(s).IDs()

	dupID := s.DuplicateSection("section-main")
	require.NotEmpty(t, dupID)

	l := s.Layout()
	dup := l.Section(dupID)
	require.NotNil(t, dup)

	src := l.Section("section-main")
	assert.Equal(t, src.X+layout.DuplicateOffset, dup.X)
	assert.Equal(t, src.Y+layout.DuplicateOffset, dup.Y)
	assert.Equal(t, src.Name, dup.Name)
	require.Len(t, dup.Seats, len(src.Seats))

	// Every copied id is disjoint from everything that existed before
	_, taken := existing[dup.ID]
	assert.False(t, taken)
	for _, seat := range dup.Seats {
		_, taken := existing[seat.ID]
		assert.False(t, taken, "seat id %s collides", seat.ID)
		assert.Equal(t, dupID, seat.SectionID)
	}

	// Seat geometry is carried over verbatim
	assert.Equal(t, src.Seats[0].X, dup.Seats[0].X)
	assert.Equal(t, src.Seats[0].Y, dup.Seats[0].Y)

	require.NoError(t, l.Validate())
}

func TestDuplicateLabelSectionKeepsKind(t *testing.T) {
	s, _ := newTestStore(t)

	dupID := s.DuplicateSection("label-stage")
	require.NotEmpty(t, dupID)

	dup := snap(s).Section(dupID)
	assert.Equal(t, layout.TypeLabel, dup.Type)
	assert.Empty(t, dup.Seats)
}

func TestDeleteSectionCascades(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.DeleteSection("section-main"))

	l := s.Layout()
	assert.Nil(t, l.Section("section-main"))
	require.Len(t, l.Sections, 1)
	for _, sec := range l.Sections {
		for _, seat := range sec.Seats {
			assert.NotEqual(t, "section-main", seat.SectionID)
		}
	}
}

func TestDeleteSeat(t *testing.T) {
	s, _ := newTestStore(t)

	require.True(t, s.DeleteSeat("section-main", "Main-A-1"))
	assert.Empty(t, snap(s).Section("section-main").Seats)

	assert.False(t, s.DeleteSeat("section-main", "Main-A-1"))
}

func TestRenameAndRecolor(t *testing.T) {
	s, notified := newTestStore(t)

	require.True(t, s.RenameSection("section-main", "Balcony"))
	require.True(t, s.RecolorSection("section-main", "rebeccapurple"))

	sec := snap(s).Section("section-main")
	assert.Equal(t, "Balcony", sec.Name)
	assert.Equal(t, "rebeccapurple", sec.Color)
	assert.Len(t, *notified, 2)
}

func TestRenameSeatIsPermissive(t *testing.T) {
	s, _ := newTestStore(t)
	require.True(t, s.AddSeat("section-main", 150, 150))

	other := snap(s).Section("section-main").Seats[1].ID

	// Renaming to an id that already exists is allowed; uniqueness of
	// operator-assigned seat codes is the operator's business.
	require.True(t, s.RenameSeat("section-main", "Main-A-1", other))
	assert.Equal(t, other, snap(s).Section("section-main").Seats[0].ID)
}

func TestCommandSequenceKeepsIntegrity(t *testing.T) {
	s, notified := newTestStore(t)

	id := s.AddSection()
	_, err := s.FillWithSeats(id, 2, 3, 8)
	require.NoError(t, err)
	dup := s.DuplicateSection(id)
	require.True(t, s.TransformSection(dup, 600, 500, 300, 200, 45))
	require.True(t, s.MoveSeat(dup, snap(s).Section(dup).Seats[0].ID, 610, 510))
	require.True(t, s.DeleteSection(id))
	require.True(t, s.DeleteSeat(dup, snap(s).Section(dup).Seats[0].ID))

	// Every intermediate snapshot already passed Validate in the observer.
	assert.Len(t, *notified, 7)
	require.NoError(t, snap(s).Validate())
}

func TestDefaultLayoutWhenInitialNil(t *testing.T) {
	s := New(nil, nil)
	l := s.Layout()
	assert.Len(t, l.Sections, 2)
	assert.Equal(t, 1.0, l.Scale)
}
