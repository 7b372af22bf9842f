package engine

import (
	"context"
	"time"

	"github.com/quiverhq/quiver/packages/model"
)

// Outcome is the result of one execution attempt. Exactly one of Response
// and Err is meaningful for deciding success, though a failure may still
// carry a partial response when one was obtained.
type Outcome struct {
	RequestID string
	StartedAt time.Time
	Duration  time.Duration
	Response  *Response
	Err       error
}

// Failed reports a transport-level failure. HTTP error statuses do not count.
func (o *Outcome) Failed() bool {
	return o.Err != nil
}

// Snapshot converts the outcome into a persistable execution record.
func (o *Outcome) Snapshot() model.Execution {
	rec := model.Execution{
		ID:         model.NewID(model.KindExecution),
		RequestID:  o.RequestID,
		ExecutedAt: o.StartedAt,
	}
	if o.Response != nil {
		rec.Response = &model.ResponseSnapshot{
			StatusCode: o.Response.StatusCode,
			StatusText: o.Response.StatusText,
			Headers:    o.Response.Headers,
			Body:       string(o.Response.Body),
			DurationMs: o.Duration.Milliseconds(),
			Size:       o.Response.Size(),
		}
	}
	if o.Err != nil {
		rec.Error = &model.ErrorSnapshot{Message: o.Err.Error()}
	}
	return rec
}

// Executor dispatches prepared requests over a transport with a fixed
// timeout, measuring wall-clock duration itself around the call.
type Executor struct {
	transport Transport
	timeout   time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor creates an executor. A nil transport gets the default HTTP
// transport.
func NewExecutor(transport Transport, opts ...ExecutorOption) *Executor {
	e := &Executor{
		transport: transport,
		timeout:   DefaultTimeout,
	}
	if e.transport == nil {
		e.transport = NewHTTPTransport()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithTimeout overrides the per-dispatch timeout.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// Execute substitutes vars into the request, dispatches it, and captures the
// outcome. It never returns an error: every failure path becomes an error
// outcome so the caller can record it uniformly.
func (e *Executor) Execute(ctx context.Context, req *model.Request, vars map[string]any) *Outcome {
	prepared, _ := Prepare(req, vars)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	outcome := &Outcome{
		RequestID: req.ID,
		StartedAt: time.Now().UTC(),
	}

	start := time.Now()
	resp, err := e.transport.Send(ctx, prepared)
	outcome.Duration = time.Since(start)
	outcome.Response = resp
	outcome.Err = err
	return outcome
}
