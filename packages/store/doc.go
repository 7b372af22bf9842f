// Package store persists request collections as JSON files, one file per
// workspace, under a data directory.
//
// The unit of persistence is the whole collection: reads return the full
// structure, writes replace it (last writer wins). Update wraps the
// read-modify-write sequence under the store mutex so concurrent callers in
// one process cannot lose updates. Writes go through a temp file and rename
// so a crash never leaves a half-written collection behind.
package store
