package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverhq/quiver/packages/model"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func archivedRecord(requestID string, status int, durationMs int64, body string) model.Execution {
	return model.Execution{
		ID:         model.NewID(model.KindExecution),
		RequestID:  requestID,
		ExecutedAt: time.Now().UTC(),
		Response: &model.ResponseSnapshot{
			StatusCode: status,
			StatusText: "OK",
			DurationMs: durationMs,
			Size:       int64(len(body)),
			Body:       body,
		},
	}
}

func TestArchiveAppendAndQuery(t *testing.T) {
	a := openTestArchive(t)

	require.NoError(t, a.Append("wrk_1", archivedRecord("req_1", 200, 12, `{"ok":true}`)))
	require.NoError(t, a.Append("wrk_1", archivedRecord("req_1", 404, 7, "")))
	require.NoError(t, a.Append("wrk_1", archivedRecord("req_2", 200, 3, "")))

	records, err := a.ByRequest("req_1", 0)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	limited, err := a.ByRequest("req_1", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestArchiveErrorRecord(t *testing.T) {
	a := openTestArchive(t)

	rec := model.Execution{
		ID:         model.NewID(model.KindExecution),
		RequestID:  "req_1",
		ExecutedAt: time.Now().UTC(),
		Error:      &model.ErrorSnapshot{Message: "connection refused"},
	}
	require.NoError(t, a.Append("wrk_1", rec))

	records, err := a.ByRequest("req_1", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Error)
	assert.Equal(t, "connection refused", records[0].Error.Message)

	errors, err := a.ErrorCount("req_1")
	require.NoError(t, err)
	assert.Equal(t, 1, errors)
}

func TestArchiveStats(t *testing.T) {
	a := openTestArchive(t)

	for _, d := range []int64{10, 20, 30, 40, 100} {
		require.NoError(t, a.Append("wrk_1", archivedRecord("req_1", 200, d, "")))
	}
	require.NoError(t, a.Append("wrk_1", model.Execution{
		ID:         model.NewID(model.KindExecution),
		RequestID:  "req_1",
		ExecutedAt: time.Now().UTC(),
		Error:      &model.ErrorSnapshot{Message: "timeout"},
	}))

	stats, err := a.Stats("req_1")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Count)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 10*time.Millisecond, stats.Min)
	assert.InDelta(t, float64(100*time.Millisecond), float64(stats.Max), float64(time.Millisecond))
	assert.GreaterOrEqual(t, stats.P99, stats.P50)
}

func TestArchiveStatsEmpty(t *testing.T) {
	a := openTestArchive(t)

	stats, err := a.Stats("req_none")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Count)
	assert.Equal(t, time.Duration(0), stats.P50)
}

func TestArchiveBodyValues(t *testing.T) {
	a := openTestArchive(t)

	require.NoError(t, a.Append("wrk_1", archivedRecord("req_1", 200, 5, `{"user":{"id":"u1"}}`)))
	require.NoError(t, a.Append("wrk_1", archivedRecord("req_1", 200, 5, `{"user":{"id":"u2"}}`)))
	require.NoError(t, a.Append("wrk_1", archivedRecord("req_1", 200, 5, `not json`)))

	values, err := a.BodyValues("req_1", "user.id", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, values)

	_, err = a.BodyValues("req_1", "", 0)
	assert.Error(t, err)
}
