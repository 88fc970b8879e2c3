package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// LoadFunc fetches the persisted layout for a chart. Returning an error means
// the room starts from the built-in default layout.
type LoadFunc func(chartID string) (json.RawMessage, error)

// SaveFunc persists a layout snapshot for a chart.
type SaveFunc func(chartID string, doc json.RawMessage) error

const saveInterval = 30 * time.Second

type Room struct {
	chartID  string
	clients  map[string]*Client // clientID -> client
	presence *roomPresence
	state    *ChartState
}

func newRoom(chartID string, state *ChartState) *Room {
	return &Room{
		chartID:  chartID,
		clients:  make(map[string]*Client),
		presence: newRoomPresence(),
		state:    state,
	}
}

// Hub routes clients into per-chart rooms and owns each room's ChartState.
// All mutation of a chart funnels through its room, so commands apply in
// arrival order.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // chartID -> room
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopped    chan struct{}
	load       LoadFunc
	save       SaveFunc
}

func NewHub(load LoadFunc, save SaveFunc) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		load:       load,
		save:       save,
	}
}

func (h *Hub) Run() {
	defer close(h.stopped)

	ticker := time.NewTicker(saveInterval)
	defer ticker.Stop()

	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-ticker.C:
			h.saveDirty()
		case <-h.done:
			h.saveDirty()
			return
		}
	}
}

// Stop shuts the hub down and waits for the run loop to flush every unsaved
// chart. The flush happens on the run goroutine so it never overlaps a
// ticker-driven save.
func (h *Hub) Stop() {
	close(h.done)
	<-h.stopped
}

// Register hands a client to the run loop. Returns false once the hub is
// stopping; the caller must close the connection itself.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ChartID]
	if !ok {
		room = newRoom(client.ChartID, h.loadState(client.ChartID))
		h.rooms[client.ChartID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	// Full snapshot first so the client renders before any broadcast lands
	client.Send(&Message{Type: TypeWelcome, ChartID: client.ChartID, ClientID: client.ClientID})
	h.sendLayoutSync(client, room)

	if stateMsg := room.presence.StateMessage(); stateMsg != nil {
		client.Send(stateMsg)
	}

	joinPayload, _ := json.Marshal(PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	h.broadcastToRoom(client.ChartID, &Message{
		Type:    TypePresenceJoin,
		UserID:  client.UserID,
		Payload: joinPayload,
	}, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "chart", client.ChartID)
}

func (h *Hub) loadState(chartID string) *ChartState {
	if h.load == nil {
		return NewChartState(nil)
	}
	doc, err := h.load(chartID)
	if err != nil {
		slog.Warn("load chart failed, starting from default layout", "chart", chartID, "error", err)
		return NewChartState(nil)
	}
	state, err := ChartStateFromJSON(doc)
	if err != nil {
		slog.Error("decode chart layout, starting from default", "chart", chartID, "error", err)
		return NewChartState(nil)
	}
	return state
}

func (h *Hub) sendLayoutSync(client *Client, room *Room) {
	snapshot, seq := room.state.Snapshot()
	doc, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("marshal layout snapshot", "error", err)
		return
	}
	payload, _ := json.Marshal(LayoutSyncPayload{Layout: doc, ServerSeq: seq})
	client.Send(&Message{Type: TypeLayoutSync, ChartID: room.chartID, Seq: seq, Payload: payload})
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.ChartID]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	close(client.send)
	room.presence.Drop(client.UserID)

	empty := len(room.clients) == 0
	if empty {
		delete(h.rooms, client.ChartID)
	}
	h.mu.Unlock()

	if empty {
		h.saveRoom(room)
	}

	leavePayload, _ := json.Marshal(PresenceLeavePayload{UserID: client.UserID})
	h.broadcastToRoom(client.ChartID, &Message{
		Type:    TypePresenceLeave,
		UserID:  client.UserID,
		Payload: leavePayload,
	}, "")

	slog.Info("client left", "user", client.UserID, "chart", client.ChartID)
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName

	h.mu.RLock()
	room, ok := h.rooms[sender.ChartID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Set(sender.UserID, &presence)

	outPayload, _ := json.Marshal(presence)
	h.broadcastToRoom(sender.ChartID, &Message{
		Type:    TypePresenceUpdate,
		UserID:  sender.UserID,
		Payload: outPayload,
	}, sender.ClientID)
}

func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		slog.Warn("invalid op payload", "error", err, "user", sender.UserID)
		return
	}
	op := submit.Operation

	h.mu.RLock()
	room, ok := h.rooms[sender.ChartID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	serverSeq, err := room.state.Apply(op)
	if err != nil {
		nackPayload, _ := json.Marshal(OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		})
		sender.Send(&Message{Type: TypeOpNack, Payload: nackPayload})
		return
	}

	ackPayload, _ := json.Marshal(OperationAckPayload{
		OperationID:     op.ID,
		ServerSeq:       serverSeq,
		ServerTimestamp: ServerTimestamp(),
	})
	sender.Send(&Message{Type: TypeOpAck, Seq: serverSeq, Payload: ackPayload})

	broadcastPayload, _ := json.Marshal(OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		ServerSeq: serverSeq,
	})
	h.broadcastToRoom(sender.ChartID, &Message{
		Type:    TypeOpBroadcast,
		UserID:  sender.UserID,
		Seq:     serverSeq,
		Payload: broadcastPayload,
	}, sender.ClientID)
}

func (h *Hub) broadcastToRoom(chartID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[chartID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.Send(msg)
	}
}

func (h *Hub) saveDirty() {
	h.mu.RLock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.RUnlock()

	for _, room := range rooms {
		if room.state.Dirty() {
			h.saveRoom(room)
		}
	}
}

func (h *Hub) saveRoom(room *Room) {
	if h.save == nil || !room.state.Dirty() {
		return
	}

	snapshot, _ := room.state.Snapshot()
	doc, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("marshal layout for save", "chart", room.chartID, "error", err)
		return
	}

	if err := h.save(room.chartID, doc); err != nil {
		slog.Error("save chart failed", "chart", room.chartID, "error", err)
		return
	}

	room.state.MarkSaved()
	slog.Info("chart saved", "chart", room.chartID)
}
