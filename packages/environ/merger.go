package environ

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/model"
	"github.com/quiverhq/quiver/packages/resolve"
)

// Warning is a structural warning surfaced by the merge. It shares the
// resolver's shape so callers see one warning stream.
type Warning = resolve.Warning

// Options select the optional merge inputs.
type Options struct {
	// EnvironmentID names an explicit sub-environment to layer on top of the
	// base environment. Unresolvable ids degrade with a warning.
	EnvironmentID string
	// Overrides always win on key collision.
	Overrides map[string]any
}

// Merger computes merged variable maps. all may be nil when global
// environments are not in play (it is only consulted to find the project's
// environment workspace).
type Merger struct {
	all map[string]*model.Collection
}

// NewMerger creates a merger over the full set of stored collections.
func NewMerger(all map[string]*model.Collection) *Merger {
	return &Merger{all: all}
}

// Merge resolves the variable map for a request whose direct parent is
// requestParentID inside col. It never fails: missing scopes fall out of the
// result and surface as warnings where that helps the caller.
func (m *Merger) Merge(col *model.Collection, requestParentID string, opts Options) (map[string]any, []Warning) {
	var warnings []Warning
	vars := make(map[string]any)

	// 1. Global environment of the owning project.
	if global := m.globalEnvironment(col); global != nil {
		vars = overlay(vars, global.Data)
	}

	// 2. Workspace base environment.
	if base := col.BaseEnvironment(); base != nil {
		vars = overlay(vars, base.Data)
	}

	// 3. Explicit sub-environment.
	if opts.EnvironmentID != "" {
		if sub := col.EnvironmentByID(opts.EnvironmentID); sub != nil {
			vars = overlay(vars, sub.Data)
		} else {
			warnings = append(warnings, Warning{
				Type:    resolve.WarnMissingEnvironment,
				ID:      opts.EnvironmentID,
				Message: fmt.Sprintf("environment %s not found; skipped", opts.EnvironmentID),
			})
		}
	}

	// 4. Folder variables, root to leaf.
	chain, chainWarnings := resolve.Ancestors(col, requestParentID)
	warnings = append(warnings, chainWarnings...)
	for _, folder := range resolve.FolderChain(col, chain) {
		if len(folder.Variables) > 0 {
			vars = overlay(vars, folder.Variables)
		}
	}

	// 5. Caller overrides.
	if len(opts.Overrides) > 0 {
		vars = overlay(vars, opts.Overrides)
	}

	return vars, warnings
}

// globalEnvironment finds the base environment of the project's
// environment-scoped workspace, if the project has one.
func (m *Merger) globalEnvironment(col *model.Collection) *model.Environment {
	if col.Workspace == nil || col.Workspace.ProjectID == "" || m.all == nil {
		return nil
	}
	for _, candidate := range m.all {
		ws := candidate.Workspace
		if ws == nil || ws.Scope != model.ScopeEnvironment {
			continue
		}
		if ws.ProjectID != col.Workspace.ProjectID {
			continue
		}
		if env := candidate.BaseEnvironment(); env != nil {
			return env
		}
	}
	return nil
}

// overlay returns a new map with layer's keys written over base's. Neither
// input is mutated, which keeps each precedence step auditable on its own.
func overlay(base, layer map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(layer))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range layer {
		merged[k] = v
	}
	return merged
}
