package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/quiverhq/quiver/packages/engine"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *engine.Result {
	req := model.NewRequest("Get user", "wrk_1", "GET", "https://api.example.com/users/1")
	return &engine.Result{
		CollectionID: "wrk_1",
		Request:      req,
		Outcome: &engine.Outcome{
			RequestID: req.ID,
			StartedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Duration:  42 * time.Millisecond,
			Response: &engine.Response{
				StatusCode: 200,
				StatusText: "OK",
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       []byte(`{"id":1}`),
			},
		},
	}
}

func TestConsoleFormatResult(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatResult(sampleResult())

	out := buf.String()
	assert.Contains(t, out, "GET Get user")
	assert.Contains(t, out, "200 OK")
	assert.Contains(t, out, `{"id":1}`)
	assert.NotContains(t, out, "Content-Type")
}

func TestConsoleFormatResultVerboseHeaders(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatResult(sampleResult())

	assert.Contains(t, buf.String(), "Content-Type: application/json")
}

func TestConsoleFormatResultError(t *testing.T) {
	result := sampleResult()
	result.Outcome.Response = nil
	result.Outcome.Err = errors.New("dial tcp: connection refused")

	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatResult(result)

	assert.Contains(t, buf.String(), "connection refused")
	assert.NotContains(t, buf.String(), "200")
}

func TestConsoleFormatTree(t *testing.T) {
	ws := model.NewWorkspace("Acme", model.ScopeCollection, "")
	folder := model.NewFolder("Users", ws.ID)
	nested := model.NewFolder("Admin", folder.ID)
	req := model.NewRequest("List admins", nested.ID, "GET", "https://api.example.com/admins")
	env := model.NewEnvironment("Staging", ws.ID)
	col := &model.Collection{
		Workspace:    ws,
		Folders:      []*model.Folder{folder, nested},
		Requests:     []*model.Request{req},
		Environments: []*model.Environment{env},
	}

	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatTree(col)

	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Users/")
	assert.Contains(t, out, "Admin/")
	assert.Contains(t, out, "List admins")
	assert.Contains(t, out, "[env] Staging")
}

func TestConsoleFormatHistory(t *testing.T) {
	req := model.NewRequest("Ping", "wrk_1", "GET", "https://api.example.com/ping")
	entries := []model.Execution{
		{
			ID:         model.NewID(model.KindExecution),
			ExecutedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Response:   &model.ResponseSnapshot{StatusCode: 204, DurationMs: 10, Size: 0},
		},
		{
			ID:         model.NewID(model.KindExecution),
			ExecutedAt: time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
			Error:      &model.ErrorSnapshot{Message: "timeout exceeded"},
		},
	}

	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatHistory(req, entries)

	out := buf.String()
	assert.Contains(t, out, "204")
	assert.Contains(t, out, "timeout exceeded")
}

func TestJSONFormatResult(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	require.NoError(t, f.FormatResult(sampleResult()))

	var decoded JSONExecution
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 200, decoded.StatusCode)
	assert.Equal(t, "GET", decoded.Method)
	assert.Equal(t, `{"id":1}`, decoded.Body)
	assert.Empty(t, decoded.Error)
}

func TestJSONFormatResultError(t *testing.T) {
	result := sampleResult()
	result.Outcome.Response = nil
	result.Outcome.Err = errors.New("no such host")

	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	require.NoError(t, f.FormatResult(result))

	var decoded JSONExecution
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "no such host", decoded.Error)
	assert.Zero(t, decoded.StatusCode)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", formatSize(512))
	assert.Equal(t, "2.0KB", formatSize(2048))
	assert.Equal(t, "1.5MB", formatSize(3<<19))
}
