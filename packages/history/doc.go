// Package history records execution outcomes.
//
// Each request keeps a bounded most-recent-first log inside its collection
// (the store persists it with the request); the recorder enforces the bound
// on every insert. An optional sqlite archive keeps the full unbounded trail
// for latency statistics across runs.
package history
