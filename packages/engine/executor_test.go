package engine

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/packages/model"
)

func TestExecutorSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/users", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users": []}`))
	}))
	defer server.Close()

	req := model.NewRequest("list", "wrk_1", "GET", "{{baseUrl}}/users")
	req.Auth = &model.Auth{Type: model.AuthBearer, Token: "{{token}}"}

	ex := NewExecutor(NewHTTPTransport())
	outcome := ex.Execute(context.Background(), req, map[string]any{
		"baseUrl": server.URL,
		"token":   "abc",
	})

	require.False(t, outcome.Failed())
	require.NotNil(t, outcome.Response)
	assert.Equal(t, 200, outcome.Response.StatusCode)
	assert.Equal(t, "OK", outcome.Response.StatusText)
	assert.Equal(t, `{"users": []}`, string(outcome.Response.Body))
	assert.Equal(t, int64(13), outcome.Response.Size())
	assert.GreaterOrEqual(t, outcome.Duration, time.Duration(0))
}

func TestExecutorServerErrorIsNotFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	req := model.NewRequest("err", "wrk_1", "GET", server.URL)
	ex := NewExecutor(nil)
	outcome := ex.Execute(context.Background(), req, nil)

	assert.False(t, outcome.Failed(), "5xx is a transport success")
	assert.Equal(t, 500, outcome.Response.StatusCode)
}

func TestExecutorConnectionRefused(t *testing.T) {
	// Grab a port that nothing is listening on.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	req := model.NewRequest("down", "wrk_1", "GET", url)
	ex := NewExecutor(nil)
	outcome := ex.Execute(context.Background(), req, nil)

	require.True(t, outcome.Failed())
	assert.Nil(t, outcome.Response)
	assert.NotEmpty(t, outcome.Err.Error())
}

func TestExecutorTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()

	req := model.NewRequest("slow", "wrk_1", "GET", server.URL)
	ex := NewExecutor(nil, WithTimeout(50*time.Millisecond))
	outcome := ex.Execute(context.Background(), req, nil)

	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.Err.Error(), "context deadline exceeded")
}

func TestExecutorInvalidURL(t *testing.T) {
	req := model.NewRequest("bad", "wrk_1", "GET", "ftp://example.com")
	ex := NewExecutor(nil)
	outcome := ex.Execute(context.Background(), req, nil)

	require.True(t, outcome.Failed())
	assert.Contains(t, outcome.Err.Error(), "unsupported URL scheme")
}

func TestExecutorSendsBody(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	req := model.NewRequest("create", "wrk_1", "POST", server.URL)
	req.Body = &model.Body{MimeType: model.MimeJSON, Text: `{"id": {{id}}`}

	ex := NewExecutor(nil)
	outcome := ex.Execute(context.Background(), req, map[string]any{"id": float64(5)})

	require.False(t, outcome.Failed())
	assert.Equal(t, `{"id": 5`, string(received), "malformed templated JSON ships verbatim")
}

func TestOutcomeSnapshotSuccess(t *testing.T) {
	outcome := &Outcome{
		RequestID: "req_1",
		StartedAt: time.Now().UTC(),
		Duration:  1500 * time.Millisecond,
		Response: &Response{
			StatusCode: 200,
			StatusText: "OK",
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       []byte("hello"),
		},
	}

	rec := outcome.Snapshot()
	assert.Equal(t, "req_1", rec.RequestID)
	assert.Equal(t, "exc_", rec.ID[:4])
	require.NotNil(t, rec.Response)
	assert.Nil(t, rec.Error)
	assert.Equal(t, 200, rec.Response.StatusCode)
	assert.Equal(t, int64(1500), rec.Response.DurationMs)
	assert.Equal(t, int64(5), rec.Response.Size)
}

func TestOutcomeSnapshotFailure(t *testing.T) {
	outcome := &Outcome{
		RequestID: "req_1",
		StartedAt: time.Now().UTC(),
		Err:       assert.AnError,
	}

	rec := outcome.Snapshot()
	require.NotNil(t, rec.Error)
	assert.Nil(t, rec.Response)
	assert.Equal(t, assert.AnError.Error(), rec.Error.Message)
}

func TestExecutorMultiValueHeadersJoined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("X-Multi", "a")
		w.Header().Add("X-Multi", "b")
	}))
	defer server.Close()

	req := model.NewRequest("multi", "wrk_1", "GET", server.URL)
	outcome := NewExecutor(nil).Execute(context.Background(), req, nil)

	require.False(t, outcome.Failed())
	assert.Equal(t, "a, b", outcome.Response.Headers["X-Multi"])
}
