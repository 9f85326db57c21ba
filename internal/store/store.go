// Package store provides persisted key/value document storage for the
// assistant's process-wide state (assignment snapshots, the sent ledger,
// the watcher cursor). Documents are JSON; backends are selected by
// configuration.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when no document exists for the key.
// Callers treat it as "start empty", not as a failure.
var ErrNotFound = errors.New("store: key not found")

// Store saves and loads JSON documents by key. Save replaces the previous
// document atomically; Load unmarshals into v.
type Store interface {
	Save(ctx context.Context, key string, v any) error
	Load(ctx context.Context, key string, v any) error
}
