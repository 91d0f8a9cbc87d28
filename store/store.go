// Package store persists chat gateway state as flat JSON files: agent
// profiles, per-chat saved instructions, and full session histories. It is
// the single writer for its data directory; concurrent access within one
// process is serialized per store.
package store

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")
