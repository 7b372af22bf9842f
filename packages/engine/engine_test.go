package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/store"
)

// seedStore writes one collection with a folder, a request, environments at
// every scope, and a sibling global-environment workspace.
func seedStore(t *testing.T, url string) (store.Store, *model.Request) {
	t.Helper()

	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	globalWs := model.NewWorkspace("globals", model.ScopeEnvironment, "prj_1")
	globalEnv := model.NewEnvironment("global", globalWs.ID)
	globalEnv.Data = map[string]any{"baseUrl": url}
	require.NoError(t, s.Save(globalWs.ID, &model.Collection{
		Workspace:    globalWs,
		Environments: []*model.Environment{globalEnv},
	}))

	ws := model.NewWorkspace("api", model.ScopeCollection, "prj_1")
	base := model.NewEnvironment("base", ws.ID)
	base.Data = map[string]any{"token": "abc"}
	folder := model.NewFolder("users", ws.ID)
	folder.Variables = map[string]any{"token": "xyz"}
	req := model.NewRequest("list", folder.ID, "GET", "{{baseUrl}}/users")
	req.Auth = &model.Auth{Type: model.AuthBearer, Token: "{{token}}"}
	require.NoError(t, s.Save(ws.ID, &model.Collection{
		Workspace:    ws,
		Folders:      []*model.Folder{folder},
		Requests:     []*model.Request{req},
		Environments: []*model.Environment{base},
	}))

	return s, req
}

func TestEngineExecuteByID(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	s, req := seedStore(t, server.URL)

	var hooked []*Outcome
	eng := New(s, WithHook(func(collectionID string, outcome *Outcome) error {
		hooked = append(hooked, outcome)
		return nil
	}))

	result, err := eng.ExecuteByID(context.Background(), req.ID, ExecuteOptions{})
	require.NoError(t, err)
	require.False(t, result.Outcome.Failed())
	assert.Equal(t, 200, result.Outcome.Response.StatusCode)
	assert.Equal(t, "Bearer xyz", gotAuth, "folder variable wins over base environment")
	assert.Empty(t, result.Warnings)
	require.Len(t, hooked, 1)
	assert.Equal(t, req.ID, hooked[0].RequestID)
}

func TestEngineExecuteUnknownRequest(t *testing.T) {
	s, _ := seedStore(t, "http://unused")
	eng := New(s)

	_, err := eng.ExecuteByID(context.Background(), "req_nope", ExecuteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestEngineOverridesWin(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer server.Close()

	s, req := seedStore(t, server.URL)
	eng := New(s)

	_, err := eng.ExecuteByID(context.Background(), req.ID, ExecuteOptions{
		Overrides: map[string]any{"token": "forced"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer forced", gotAuth)
}

func TestEngineTransportFailureReachesHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // connection refused from here on

	s, req := seedStore(t, url)

	var hooked *Outcome
	eng := New(s, WithHook(func(collectionID string, outcome *Outcome) error {
		hooked = outcome
		return nil
	}))

	result, err := eng.ExecuteByID(context.Background(), req.ID, ExecuteOptions{})
	require.NoError(t, err, "transport failure is an outcome, not an engine error")
	assert.True(t, result.Outcome.Failed())
	require.NotNil(t, hooked)
	assert.True(t, hooked.Failed())
}

func TestEngineMissingEnvironmentWarns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	s, req := seedStore(t, server.URL)
	eng := New(s)

	result, err := eng.ExecuteByID(context.Background(), req.ID, ExecuteOptions{EnvironmentID: "env_missing"})
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "env_missing", result.Warnings[0].ID)
}

func TestEngineExecuteRepeat(t *testing.T) {
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer server.Close()

	s, req := seedStore(t, server.URL)

	recorded := 0
	eng := New(s, WithHook(func(string, *Outcome) error {
		recorded++
		return nil
	}))

	results, err := eng.ExecuteRepeat(context.Background(), req.ID, ExecuteOptions{}, RepeatOptions{Count: 5})
	require.NoError(t, err)
	assert.Len(t, results, 5)
	assert.Equal(t, 5, hits)
	assert.Equal(t, 5, recorded, "every repeat run is recorded")
}

func TestEngineExecuteRepeatRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	s, req := seedStore(t, server.URL)
	eng := New(s)

	start := time.Now()
	results, err := eng.ExecuteRepeat(context.Background(), req.ID, ExecuteOptions{}, RepeatOptions{Count: 3, Rate: 50})
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Len(t, results, 3)
	// Two paced waits at 50 rps is at least ~40ms.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestEngineMergeVariables(t *testing.T) {
	s, req := seedStore(t, "http://unused")
	eng := New(s)

	all, err := s.GetAll()
	require.NoError(t, err)
	collectionID, col := findRequest(all, req.ID)
	require.NotNil(t, col)

	vars, warnings, err := eng.MergeVariables(collectionID, req.ParentID, ExecuteOptions{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "xyz", vars["token"])
	assert.Equal(t, "http://unused", vars["baseUrl"])
}
