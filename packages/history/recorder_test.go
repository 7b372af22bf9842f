package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/packages/engine"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/store"
)

func seed(t *testing.T) (store.Store, string, *model.Request) {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	ws := model.NewWorkspace("api", model.ScopeCollection, "")
	req := model.NewRequest("ping", ws.ID, "GET", "https://example.com/ping")
	require.NoError(t, s.Save(ws.ID, &model.Collection{
		Workspace: ws,
		Requests:  []*model.Request{req},
	}))
	return s, ws.ID, req
}

func successOutcome(requestID string, status int) *engine.Outcome {
	return &engine.Outcome{
		RequestID: requestID,
		StartedAt: time.Now().UTC(),
		Duration:  25 * time.Millisecond,
		Response: &engine.Response{
			StatusCode: status,
			StatusText: "OK",
			Body:       []byte(fmt.Sprintf(`{"status": %d}`, status)),
		},
	}
}

func TestRecorderPrependsNewestFirst(t *testing.T) {
	s, colID, req := seed(t)
	r := NewRecorder(s)

	require.NoError(t, r.Record(colID, successOutcome(req.ID, 200)))
	require.NoError(t, r.Record(colID, successOutcome(req.ID, 201)))

	col, err := s.Get(colID)
	require.NoError(t, err)
	history := col.RequestByID(req.ID).History
	require.Len(t, history, 2)
	assert.Equal(t, 201, history[0].Response.StatusCode, "most recent entry comes first")
	assert.Equal(t, 200, history[1].Response.StatusCode)
}

func TestRecorderBoundedAtLimit(t *testing.T) {
	s, colID, req := seed(t)
	r := NewRecorder(s)

	for i := 0; i < Limit+5; i++ {
		require.NoError(t, r.Record(colID, successOutcome(req.ID, 200+i)))
	}

	col, err := s.Get(colID)
	require.NoError(t, err)
	history := col.RequestByID(req.ID).History
	assert.Len(t, history, Limit)
	assert.Equal(t, 200+Limit+4, history[0].Response.StatusCode, "eviction drops the oldest, not the newest")
}

func TestRecorderCustomLimit(t *testing.T) {
	s, colID, req := seed(t)
	r := NewRecorder(s, WithLimit(3))

	for i := 0; i < 10; i++ {
		require.NoError(t, r.Record(colID, successOutcome(req.ID, 200)))
	}

	col, err := s.Get(colID)
	require.NoError(t, err)
	assert.Len(t, col.RequestByID(req.ID).History, 3)
}

func TestRecorderErrorOutcome(t *testing.T) {
	s, colID, req := seed(t)
	r := NewRecorder(s)

	outcome := &engine.Outcome{
		RequestID: req.ID,
		StartedAt: time.Now().UTC(),
		Err:       fmt.Errorf("dial tcp: connection refused"),
	}
	require.NoError(t, r.Record(colID, outcome))

	col, err := s.Get(colID)
	require.NoError(t, err)
	history := col.RequestByID(req.ID).History
	require.Len(t, history, 1)
	require.NotNil(t, history[0].Error)
	assert.Contains(t, history[0].Error.Message, "connection refused")
	assert.Nil(t, history[0].Response)
}

func TestRecorderUnknownRequest(t *testing.T) {
	s, colID, _ := seed(t)
	r := NewRecorder(s)

	err := r.Record(colID, successOutcome("req_ghost", 200))
	assert.Error(t, err)
}

func TestRecorderHookShape(t *testing.T) {
	s, colID, req := seed(t)
	r := NewRecorder(s)

	var hook engine.Hook = r.Hook()
	require.NoError(t, hook(colID, successOutcome(req.ID, 204)))

	col, err := s.Get(colID)
	require.NoError(t, err)
	assert.Len(t, col.RequestByID(req.ID).History, 1)
}
