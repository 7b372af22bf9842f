package resolve

import (
	"fmt"

	"github.com/quiverhq/quiver/packages/model"
)

// Warning describes a non-fatal structural problem found while resolving.
type Warning struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Warning types.
const (
	WarnMissingParent      = "missing-parent"
	WarnCycle              = "cycle"
	WarnMissingEnvironment = "missing-environment"
	WarnMissingBaseEnv     = "missing-base-environment"
	WarnMissingGlobalEnv   = "missing-global-environment"
)

// Ancestors returns the chain from the owning workspace down to the entity's
// immediate parent, ordered root-to-leaf. parentID is the request's (or
// folder's) direct parent id.
//
// The walk keeps a visited set: if an id recurs the chain gathered so far is
// returned with a cycle warning rather than looping. An unresolvable parent
// likewise truncates the chain with a warning.
func Ancestors(col *model.Collection, parentID string) ([]model.EntityRef, []Warning) {
	var (
		upward   []model.EntityRef
		warnings []Warning
	)
	visited := make(map[string]bool)

	cur := parentID
	for cur != "" {
		if visited[cur] {
			warnings = append(warnings, Warning{
				Type:    WarnCycle,
				ID:      cur,
				Message: fmt.Sprintf("parent chain revisits %s; truncating", cur),
			})
			break
		}
		visited[cur] = true

		if col.Workspace != nil && cur == col.Workspace.ID {
			upward = append(upward, model.RefOf(model.KindWorkspace, cur))
			break
		}
		if f := col.FolderByID(cur); f != nil {
			upward = append(upward, model.RefOf(model.KindFolder, cur))
			cur = f.ParentID
			continue
		}

		warnings = append(warnings, Warning{
			Type:    WarnMissingParent,
			ID:      cur,
			Message: fmt.Sprintf("parent %s not found in collection", cur),
		})
		break
	}

	// Collected leaf-to-root; precedence needs root-to-leaf.
	chain := make([]model.EntityRef, 0, len(upward))
	for i := len(upward) - 1; i >= 0; i-- {
		chain = append(chain, upward[i])
	}
	return chain, warnings
}

// FolderChain filters an ancestor chain down to its folders, preserving
// root-to-leaf order.
func FolderChain(col *model.Collection, chain []model.EntityRef) []*model.Folder {
	var folders []*model.Folder
	for _, ref := range chain {
		if ref.Kind != model.KindFolder {
			continue
		}
		if f := col.FolderByID(ref.ID); f != nil {
			folders = append(folders, f)
		}
	}
	return folders
}
