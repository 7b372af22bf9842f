package history

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/engine"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/store"
)

// Limit is how many executions each request retains in its collection.
const Limit = 20

// Recorder appends execution outcomes to the owning request's bounded log,
// newest first, delegating persistence to the collection store.
type Recorder struct {
	store   store.Store
	limit   int
	archive *Archive
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// NewRecorder creates a recorder over the given store.
func NewRecorder(st store.Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{store: st, limit: Limit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithLimit overrides the retention bound.
func WithLimit(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithArchive additionally appends every record to an unbounded archive.
func WithArchive(a *Archive) RecorderOption {
	return func(r *Recorder) {
		r.archive = a
	}
}

// Record persists one outcome. After it returns, the request's history holds
// at most the limit entries with the newest at index 0.
func (r *Recorder) Record(collectionID string, outcome *engine.Outcome) error {
	rec := outcome.Snapshot()

	err := r.store.Update(collectionID, func(col *model.Collection) error {
		req := col.RequestByID(rec.RequestID)
		if req == nil {
			return fmt.Errorf("request %s not found in collection %s", rec.RequestID, collectionID)
		}
		req.History = append([]model.Execution{rec}, req.History...)
		if len(req.History) > r.limit {
			req.History = req.History[:r.limit]
		}
		return nil
	})
	if err != nil {
		return err
	}

	if r.archive != nil {
		if err := r.archive.Append(collectionID, rec); err != nil {
			return fmt.Errorf("archive execution: %w", err)
		}
	}
	return nil
}

// Hook adapts the recorder to the engine's hook shape.
func (r *Recorder) Hook() engine.Hook {
	return r.Record
}
