package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Editor tools a client may advertise through presence. Unknown values are
// coerced to ToolSelect so peers never have to render an unrecognized cursor
// mode.
const (
	ToolSelect     = "select"
	ToolAddSeat    = "add-seat"
	ToolAddSection = "add-section"
)

// roomPresence tracks the transient editor state of every user in one chart
// room: cursor position, selected element ids, active tool. Presence is
// awareness data only; nothing here ever reaches the layout document.
type roomPresence struct {
	mu     sync.RWMutex
	byUser map[string]*PresencePayload
}

func newRoomPresence() *roomPresence {
	return &roomPresence{byUser: make(map[string]*PresencePayload)}
}

// Set stores a user's presence, coercing an unknown tool to ToolSelect.
func (rp *roomPresence) Set(userID string, p *PresencePayload) {
	switch p.Tool {
	case ToolSelect, ToolAddSeat, ToolAddSection:
	default:
		p.Tool = ToolSelect
	}
	rp.mu.Lock()
	rp.byUser[userID] = p
	rp.mu.Unlock()
}

func (rp *roomPresence) Drop(userID string) {
	rp.mu.Lock()
	delete(rp.byUser, userID)
	rp.mu.Unlock()
}

// Snapshot copies the current presence of every user in the room.
func (rp *roomPresence) Snapshot() map[string]*PresencePayload {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	out := make(map[string]*PresencePayload, len(rp.byUser))
	for id, p := range rp.byUser {
		out[id] = p
	}
	return out
}

// StateMessage builds the presence snapshot a joining client receives.
func (rp *roomPresence) StateMessage() *Message {
	payload, err := json.Marshal(PresenceStatePayload{Presences: rp.Snapshot()})
	if err != nil {
		slog.Error("marshal presence state", "error", err)
		return nil
	}
	return &Message{Type: TypePresenceState, Payload: payload}
}
