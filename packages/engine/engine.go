package engine

import (
	"context"
	"fmt"

	"github.com/quiverhq/quiver/packages/environ"
	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/store"
)

// Hook observes every execution outcome, success or failure. The history
// recorder hangs off this; the engine itself does not persist.
type Hook func(collectionID string, outcome *Outcome) error

// Engine wires the store, the environment merger, and the executor into the
// full resolve-merge-substitute-execute pipeline.
type Engine struct {
	store    store.Store
	executor *Executor
	hooks    []Hook
}

// Option configures an Engine.
type Option func(*Engine)

// New creates an engine over a collection store.
func New(st store.Store, opts ...Option) *Engine {
	e := &Engine{store: st}
	for _, opt := range opts {
		opt(e)
	}
	if e.executor == nil {
		e.executor = NewExecutor(nil)
	}
	return e
}

// WithExecutor supplies a configured executor (custom transport, timeout).
func WithExecutor(ex *Executor) Option {
	return func(e *Engine) {
		e.executor = ex
	}
}

// WithHook registers an outcome observer. Hooks run in registration order
// after every execution.
func WithHook(h Hook) Option {
	return func(e *Engine) {
		e.hooks = append(e.hooks, h)
	}
}

// ExecuteOptions select the optional execution inputs.
type ExecuteOptions struct {
	// EnvironmentID picks an explicit sub-environment.
	EnvironmentID string
	// Overrides are caller variables with highest precedence.
	Overrides map[string]any
}

// Result is what one engine invocation hands back to the caller.
type Result struct {
	CollectionID string
	Request      *model.Request
	Outcome      *Outcome
	Warnings     []environ.Warning
}

// ExecuteByID locates the request across all stored collections and executes
// it. An unknown request id is the one genuinely user-visible failure; every
// downstream problem degrades into warnings or an error outcome.
func (e *Engine) ExecuteByID(ctx context.Context, requestID string, opts ExecuteOptions) (*Result, error) {
	all, err := e.store.GetAll()
	if err != nil {
		return nil, err
	}

	collectionID, col := findRequest(all, requestID)
	if col == nil {
		return nil, fmt.Errorf("request %s not found in any collection", requestID)
	}
	return e.execute(ctx, all, collectionID, col, requestID, opts)
}

// ExecuteIn executes a request known to live in the given collection.
func (e *Engine) ExecuteIn(ctx context.Context, collectionID, requestID string, opts ExecuteOptions) (*Result, error) {
	all, err := e.store.GetAll()
	if err != nil {
		return nil, err
	}
	col, ok := all[collectionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, collectionID)
	}
	if col.RequestByID(requestID) == nil {
		return nil, fmt.Errorf("request %s not found in collection %s", requestID, collectionID)
	}
	return e.execute(ctx, all, collectionID, col, requestID, opts)
}

func (e *Engine) execute(
	ctx context.Context,
	all map[string]*model.Collection,
	collectionID string,
	col *model.Collection,
	requestID string,
	opts ExecuteOptions,
) (*Result, error) {
	req := col.RequestByID(requestID)

	merger := environ.NewMerger(all)
	vars, warnings := merger.Merge(col, req.ParentID, environ.Options{
		EnvironmentID: opts.EnvironmentID,
		Overrides:     opts.Overrides,
	})

	outcome := e.executor.Execute(ctx, req, vars)

	for _, hook := range e.hooks {
		if err := hook(collectionID, outcome); err != nil {
			return nil, fmt.Errorf("record execution: %w", err)
		}
	}

	return &Result{
		CollectionID: collectionID,
		Request:      req,
		Outcome:      outcome,
		Warnings:     warnings,
	}, nil
}

// MergeVariables exposes the merge step on its own, for inspection commands.
func (e *Engine) MergeVariables(collectionID, parentID string, opts ExecuteOptions) (map[string]any, []environ.Warning, error) {
	all, err := e.store.GetAll()
	if err != nil {
		return nil, nil, err
	}
	col, ok := all[collectionID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", store.ErrNotFound, collectionID)
	}
	merger := environ.NewMerger(all)
	vars, warnings := merger.Merge(col, parentID, environ.Options{
		EnvironmentID: opts.EnvironmentID,
		Overrides:     opts.Overrides,
	})
	return vars, warnings, nil
}

func findRequest(all map[string]*model.Collection, requestID string) (string, *model.Collection) {
	for id, col := range all {
		if col.RequestByID(requestID) != nil {
			return id, col
		}
	}
	return "", nil
}
