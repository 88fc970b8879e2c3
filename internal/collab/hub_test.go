package collab

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seatforge/seatforge/backend-go/internal/layout"
)

type saveRecorder struct {
	mu    sync.Mutex
	docs  map[string][]json.RawMessage
	calls int
}

func newSaveRecorder() *saveRecorder {
	return &saveRecorder{docs: make(map[string][]json.RawMessage)}
}

func (sr *saveRecorder) save(chartID string, doc json.RawMessage) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.docs[chartID] = append(sr.docs[chartID], doc)
	sr.calls++
	return nil
}

func (sr *saveRecorder) count() int {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	return sr.calls
}

func (sr *saveRecorder) latest(t *testing.T, chartID string) layout.Layout {
	t.Helper()
	sr.mu.Lock()
	defer sr.mu.Unlock()
	docs := sr.docs[chartID]
	require.NotEmpty(t, docs)

	var l layout.Layout
	require.NoError(t, json.Unmarshal(docs[len(docs)-1], &l))
	return l
}

func startHub(t *testing.T) (*Hub, *saveRecorder) {
	t.Helper()
	rec := newSaveRecorder()
	load := func(chartID string) (json.RawMessage, error) {
		return json.Marshal(stateLayout())
	}

	h := NewHub(load, rec.save)
	go h.Run()
	return h, rec
}

func joinHub(t *testing.T, h *Hub, userID, chartID string) *Client {
	t.Helper()
	c := NewClient(h, nil, userID, userID, chartID, userID+"-client")
	require.True(t, h.Register(c))
	return c
}

func recvMessage(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

// drainJoin consumes the three messages every new room member receives.
func drainJoin(t *testing.T, c *Client) {
	t.Helper()
	assert.Equal(t, TypeWelcome, recvMessage(t, c).Type)
	assert.Equal(t, TypeLayoutSync, recvMessage(t, c).Type)
	assert.Equal(t, TypePresenceState, recvMessage(t, c).Type)
}

func TestHubJoinSendsSnapshotBeforeAnythingElse(t *testing.T) {
	h, _ := startHub(t)
	defer h.Stop()

	c := joinHub(t, h, "user-a", "chart-1")

	welcome := recvMessage(t, c)
	assert.Equal(t, TypeWelcome, welcome.Type)
	assert.Equal(t, "chart-1", welcome.ChartID)

	sync := recvMessage(t, c)
	require.Equal(t, TypeLayoutSync, sync.Type)

	var payload LayoutSyncPayload
	require.NoError(t, json.Unmarshal(sync.Payload, &payload))
	assert.Equal(t, int64(0), payload.ServerSeq)

	var l layout.Layout
	require.NoError(t, json.Unmarshal(payload.Layout, &l))
	require.NotNil(t, l.Section("section-main"))

	assert.Equal(t, TypePresenceState, recvMessage(t, c).Type)
}

func TestHubOpSubmitAcksSenderAndBroadcasts(t *testing.T) {
	h, _ := startHub(t)
	defer h.Stop()

	a := joinHub(t, h, "user-a", "chart-1")
	drainJoin(t, a)
	b := joinHub(t, h, "user-b", "chart-1")
	drainJoin(t, b)
	assert.Equal(t, TypePresenceJoin, recvMessage(t, a).Type)

	payload, err := json.Marshal(OperationSubmitPayload{Operation: Operation{
		ID: "op_1", Type: OpSectionMove, SectionID: "section-main", X: f(400), Y: f(300),
	}})
	require.NoError(t, err)
	h.handleMessage(a, &Message{Type: TypeOpSubmit, ChartID: "chart-1", Payload: payload})

	ack := recvMessage(t, a)
	require.Equal(t, TypeOpAck, ack.Type)
	var ackPayload OperationAckPayload
	require.NoError(t, json.Unmarshal(ack.Payload, &ackPayload))
	assert.Equal(t, "op_1", ackPayload.OperationID)
	assert.Equal(t, int64(1), ackPayload.ServerSeq)

	broadcast := recvMessage(t, b)
	require.Equal(t, TypeOpBroadcast, broadcast.Type)
	var bc OperationBroadcastPayload
	require.NoError(t, json.Unmarshal(broadcast.Payload, &bc))
	assert.Equal(t, "user-a", bc.UserID)
	assert.Equal(t, OpSectionMove, bc.Operation.Type)
}

func TestHubOpSubmitNacksMissingTarget(t *testing.T) {
	h, _ := startHub(t)
	defer h.Stop()

	a := joinHub(t, h, "user-a", "chart-1")
	drainJoin(t, a)

	payload, err := json.Marshal(OperationSubmitPayload{Operation: Operation{
		ID: "op_1", Type: OpSectionDelete, SectionID: "section-gone",
	}})
	require.NoError(t, err)
	h.handleMessage(a, &Message{Type: TypeOpSubmit, ChartID: "chart-1", Payload: payload})

	nack := recvMessage(t, a)
	require.Equal(t, TypeOpNack, nack.Type)
	var nackPayload OperationNackPayload
	require.NoError(t, json.Unmarshal(nack.Payload, &nackPayload))
	assert.Equal(t, "op_1", nackPayload.OperationID)
	assert.NotEmpty(t, nackPayload.Reason)
}

func TestHubPresenceUpdateCoercesToolAndBroadcasts(t *testing.T) {
	h, _ := startHub(t)
	defer h.Stop()

	a := joinHub(t, h, "user-a", "chart-1")
	drainJoin(t, a)
	b := joinHub(t, h, "user-b", "chart-1")
	drainJoin(t, b)
	assert.Equal(t, TypePresenceJoin, recvMessage(t, a).Type)

	payload, err := json.Marshal(PresencePayload{Tool: "laser-pointer", Selection: []string{"section-main"}})
	require.NoError(t, err)
	h.handleMessage(a, &Message{Type: TypePresenceUpdate, ChartID: "chart-1", Payload: payload})

	update := recvMessage(t, b)
	require.Equal(t, TypePresenceUpdate, update.Type)

	var presence PresencePayload
	require.NoError(t, json.Unmarshal(update.Payload, &presence))
	assert.Equal(t, ToolSelect, presence.Tool)
	assert.Equal(t, "user-a", presence.DisplayName)
	assert.Equal(t, []string{"section-main"}, presence.Selection)
}

// Stop must flush the dirty room exactly once, on the run goroutine, before
// returning.
func TestHubStopFlushesDirtyRoomsOnce(t *testing.T) {
	h, rec := startHub(t)

	a := joinHub(t, h, "user-a", "chart-1")
	drainJoin(t, a)

	payload, err := json.Marshal(OperationSubmitPayload{Operation: Operation{
		ID: "op_1", Type: OpSectionMove, SectionID: "section-main", X: f(400), Y: f(300),
	}})
	require.NoError(t, err)
	h.handleMessage(a, &Message{Type: TypeOpSubmit, ChartID: "chart-1", Payload: payload})
	assert.Equal(t, TypeOpAck, recvMessage(t, a).Type)

	h.Stop()

	assert.Equal(t, 1, rec.count())
	saved := rec.latest(t, "chart-1")
	assert.Equal(t, 250.0, saved.Section("section-main").X)
}

func TestHubStopWithCleanRoomsSavesNothing(t *testing.T) {
	h, rec := startHub(t)

	a := joinHub(t, h, "user-a", "chart-1")
	drainJoin(t, a)

	h.Stop()
	assert.Equal(t, 0, rec.count())
}

// Registering against a stopped hub must fail fast instead of blocking on a
// run loop that no longer exists.
func TestHubRegisterAfterStopReturnsFalse(t *testing.T) {
	h, _ := startHub(t)
	h.Stop()

	c := NewClient(h, nil, "user-late", "user-late", "chart-1", "late-client")

	done := make(chan bool, 1)
	go func() { done <- h.Register(c) }()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("Register blocked after Stop")
	}
}

func TestRoomPresenceToolCoercion(t *testing.T) {
	rp := newRoomPresence()

	rp.Set("user-a", &PresencePayload{Tool: "laser-pointer"})
	assert.Equal(t, ToolSelect, rp.Snapshot()["user-a"].Tool)

	rp.Set("user-a", &PresencePayload{Tool: ToolAddSeat})
	assert.Equal(t, ToolAddSeat, rp.Snapshot()["user-a"].Tool)

	rp.Drop("user-a")
	assert.Empty(t, rp.Snapshot())
}
