package collab

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/seatforge/seatforge/backend-go/internal/layout"
	"github.com/seatforge/seatforge/backend-go/internal/store"
)

// ErrNotApplied reports that an operation targeted a section or seat that no
// longer exists. The engine treats that as a silent no-op (delete racing a
// drag must not corrupt anything); the transport layer nacks it so the
// submitting client can drop its optimistic update.
var ErrNotApplied = errors.New("operation target not found")

// ChartState holds the authoritative layout for one chart room. The mutex is
// the external serialization the engine requires: the store itself is
// single-threaded and lock-free, so all command application funnels through
// Apply.
type ChartState struct {
	mu        sync.RWMutex
	store     *store.Store
	serverSeq int64
	opLog     []Operation
	dirty     bool
}

// NewChartState creates state around an initial layout; nil means the
// built-in default.
func NewChartState(initial *layout.Layout) *ChartState {
	return &ChartState{
		store: store.New(initial, nil),
		opLog: make([]Operation, 0),
	}
}

// ChartStateFromJSON decodes a persisted layout document and validates its
// structural invariants before accepting it as authoritative state.
func ChartStateFromJSON(doc json.RawMessage) (*ChartState, error) {
	var l layout.Layout
	if err := json.Unmarshal(doc, &l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout: %w", err)
	}
	return NewChartState(&l), nil
}

// Snapshot returns the current layout. Snapshots are immutable; callers may
// hold them across operations.
func (cs *ChartState) Snapshot() (layout.Layout, int64) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.store.Layout(), cs.serverSeq
}

// Dirty reports whether the layout changed since the last MarkSaved.
func (cs *ChartState) Dirty() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.dirty
}

func (cs *ChartState) MarkSaved() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.dirty = false
}

// Apply runs one operation against the layout store and returns the new
// server sequence. Operations that change nothing (missing target, grid that
// does not fit) return an error and leave the sequence untouched.
func (cs *ChartState) Apply(op Operation) (int64, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if err := cs.applyLocked(op); err != nil {
		return 0, err
	}

	cs.serverSeq++
	cs.opLog = append(cs.opLog, op)
	cs.dirty = true

	return cs.serverSeq, nil
}

func (cs *ChartState) applyLocked(op Operation) error {
	switch op.Type {
	case OpSectionMove:
		x, y, err := point(op)
		if err != nil {
			return err
		}
		if !cs.store.MoveSection(op.SectionID, x, y) {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSectionTransform:
		x, y, err := point(op)
		if err != nil {
			return err
		}
		if op.Width == nil || op.Height == nil || op.Rotation == nil {
			return fmt.Errorf("%s requires width, height, rotation", op.Type)
		}
		if !cs.store.TransformSection(op.SectionID, x, y, *op.Width, *op.Height, *op.Rotation) {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSectionAdd:
		cs.store.AddSection()
	case OpLabelAdd:
		cs.store.AddLabelSection()
	case OpSectionDuplicate:
		if cs.store.DuplicateSection(op.SectionID) == "" {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSectionDelete:
		if !cs.store.DeleteSection(op.SectionID) {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSectionRename:
		if !cs.store.RenameSection(op.SectionID, op.Name) {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSectionRecolor:
		if !cs.store.RecolorSection(op.SectionID, op.Color) {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSectionFill:
		if op.Rows == nil || op.Cols == nil || op.SeatSize == nil {
			return fmt.Errorf("%s requires rows, cols, seatSize", op.Type)
		}
		applied, err := cs.store.FillWithSeats(op.SectionID, *op.Rows, *op.Cols, *op.SeatSize)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSeatAdd:
		x, y, err := point(op)
		if err != nil {
			return err
		}
		if !cs.store.AddSeat(op.SectionID, x, y) {
			return fmt.Errorf("%w: section %s", ErrNotApplied, op.SectionID)
		}
	case OpSeatMove:
		x, y, err := point(op)
		if err != nil {
			return err
		}
		if !cs.store.MoveSeat(op.SectionID, op.SeatID, x, y) {
			return fmt.Errorf("%w: seat %s", ErrNotApplied, op.SeatID)
		}
	case OpSeatDelete:
		if !cs.store.DeleteSeat(op.SectionID, op.SeatID) {
			return fmt.Errorf("%w: seat %s", ErrNotApplied, op.SeatID)
		}
	case OpSeatRename:
		if op.NewSeatID == "" {
			return fmt.Errorf("%s requires newSeatId", op.Type)
		}
		if !cs.store.RenameSeat(op.SectionID, op.SeatID, op.NewSeatID) {
			return fmt.Errorf("%w: seat %s", ErrNotApplied, op.SeatID)
		}
	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
	return nil
}

func point(op Operation) (float64, float64, error) {
	if op.X == nil || op.Y == nil {
		return 0, 0, fmt.Errorf("%s requires x and y", op.Type)
	}
	return *op.X, *op.Y, nil
}

// ServerTimestamp returns the current server timestamp in milliseconds.
func ServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
