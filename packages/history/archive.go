package history

import (
	"database/sql"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/quiverhq/quiver/packages/model"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS executions (
	id            TEXT PRIMARY KEY,
	collection_id TEXT NOT NULL,
	request_id    TEXT NOT NULL,
	executed_at   TIMESTAMP NOT NULL,
	status_code   INTEGER NOT NULL DEFAULT 0,
	status_text   TEXT NOT NULL DEFAULT '',
	duration_ms   INTEGER NOT NULL DEFAULT 0,
	size          INTEGER NOT NULL DEFAULT 0,
	body          TEXT NOT NULL DEFAULT '',
	error         TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_executions_request ON executions(request_id, executed_at DESC);
`

// Archive is the unbounded execution trail behind the bounded per-request
// history, backed by sqlite.
type Archive struct {
	db *sql.DB
}

// OpenArchive opens (creating if needed) the archive database at path.
func OpenArchive(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if _, err := db.Exec(archiveSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Append inserts one execution record.
func (a *Archive) Append(collectionID string, rec model.Execution) error {
	var (
		statusCode int
		statusText string
		durationMs int64
		size       int64
		body       string
		errMsg     string
	)
	if rec.Response != nil {
		statusCode = rec.Response.StatusCode
		statusText = rec.Response.StatusText
		durationMs = rec.Response.DurationMs
		size = rec.Response.Size
		body = rec.Response.Body
	}
	if rec.Error != nil {
		errMsg = rec.Error.Message
	}

	_, err := a.db.Exec(
		`INSERT INTO executions (id, collection_id, request_id, executed_at, status_code, status_text, duration_ms, size, body, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, collectionID, rec.RequestID, rec.ExecutedAt,
		statusCode, statusText, durationMs, size, body, errMsg,
	)
	if err != nil {
		return fmt.Errorf("insert execution: %w", err)
	}
	return nil
}

// ByRequest returns up to limit archived executions for a request, newest
// first. limit <= 0 means no cap.
func (a *Archive) ByRequest(requestID string, limit int) ([]model.Execution, error) {
	query := `SELECT id, request_id, executed_at, status_code, status_text, duration_ms, size, body, error
		FROM executions WHERE request_id = ? ORDER BY executed_at DESC`
	args := []any{requestID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query executions: %w", err)
	}
	defer rows.Close()

	var records []model.Execution
	for rows.Next() {
		var (
			rec        model.Execution
			executedAt time.Time
			statusCode int
			statusText string
			durationMs int64
			size       int64
			body       string
			errMsg     string
		)
		if err := rows.Scan(&rec.ID, &rec.RequestID, &executedAt,
			&statusCode, &statusText, &durationMs, &size, &body, &errMsg); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		rec.ExecutedAt = executedAt
		if errMsg != "" {
			rec.Error = &model.ErrorSnapshot{Message: errMsg}
		}
		if statusCode != 0 || errMsg == "" {
			rec.Response = &model.ResponseSnapshot{
				StatusCode: statusCode,
				StatusText: statusText,
				DurationMs: durationMs,
				Size:       size,
				Body:       body,
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Durations returns the duration of every successful archived execution of a
// request, in milliseconds.
func (a *Archive) Durations(requestID string) ([]int64, error) {
	rows, err := a.db.Query(
		`SELECT duration_ms FROM executions WHERE request_id = ? AND error = ''`,
		requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("query durations: %w", err)
	}
	defer rows.Close()

	var durations []int64
	for rows.Next() {
		var d int64
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		durations = append(durations, d)
	}
	return durations, rows.Err()
}

// ErrorCount returns how many archived executions of a request failed at the
// transport level.
func (a *Archive) ErrorCount(requestID string) (int, error) {
	var count int
	err := a.db.QueryRow(
		`SELECT COUNT(*) FROM executions WHERE request_id = ? AND error <> ''`,
		requestID,
	).Scan(&count)
	return count, err
}
