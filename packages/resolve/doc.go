// Package resolve walks a request's parent chain up to its owning workspace.
//
// The chain feeds variable precedence, so ordering matters: results are
// root-to-leaf (workspace first, the folder nearest the request last).
// Malformed data (a cycle in the folder graph, a parent id that resolves to
// nothing) truncates the chain and surfaces a structural warning instead of
// failing.
package resolve
