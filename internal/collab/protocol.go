package collab

import "encoding/json"

type Message struct {
	Type     string          `json:"type"`
	ChartID  string          `json:"chartId,omitempty"`
	ClientID string          `json:"clientId,omitempty"`
	UserID   string          `json:"userId,omitempty"`
	Seq      int64           `json:"seq,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// PresencePayload carries the transient editor state of one connected user.
// Tool choice, cursor and selection are adapter-owned state: they are shared
// between clients for awareness but never enter the layout document.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	Tool        string     `json:"tool,omitempty"` // one of the Tool* constants
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Full-snapshot sync, sent on join and after reconnect
	TypeLayoutSync = "layout.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// Operation types. One per layout command; the engine applies them in
// arrival order on a single goroutine per chart.
const (
	OpSectionMove      = "section.move"
	OpSectionTransform = "section.transform"
	OpSectionAdd       = "section.add"
	OpLabelAdd         = "label.add"
	OpSectionDuplicate = "section.duplicate"
	OpSectionDelete    = "section.delete"
	OpSectionRename    = "section.rename"
	OpSectionRecolor   = "section.recolor"
	OpSectionFill      = "section.fill"
	OpSeatAdd          = "seat.add"
	OpSeatMove         = "seat.move"
	OpSeatDelete       = "seat.delete"
	OpSeatRename       = "seat.rename"
)

// Operation is one layout mutation submitted by a client. Coordinates are
// world-frame values read off the pointer event; the engine converts them to
// the stored representation.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`

	SectionID string `json:"sectionId,omitempty"`
	SeatID    string `json:"seatId,omitempty"`

	// For section.move / section.transform / seat.add / seat.move
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	// For section.fill
	Rows     *int     `json:"rows,omitempty"`
	Cols     *int     `json:"cols,omitempty"`
	SeatSize *float64 `json:"seatSize,omitempty"`

	// For section.rename / section.recolor / seat.rename
	Name      string `json:"name,omitempty"`
	Color     string `json:"color,omitempty"`
	NewSeatID string `json:"newSeatId,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages.
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages.
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	ServerSeq       int64  `json:"serverSeq"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages.
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages.
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

// LayoutSyncPayload carries a full layout snapshot.
type LayoutSyncPayload struct {
	Layout    json.RawMessage `json:"layout"`
	ServerSeq int64           `json:"serverSeq"`
}
