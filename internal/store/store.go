// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store provides the durable record store: the sole source of
// truth for records, counters, and the commit log. A write becomes
// visible to other actors only after a successful commit; every backend
// must keep a save crash-atomic. Two backends exist: a YAML file store
// and a SQLite store.
// See docs/ARCHITECTURE § Durable Store.
package store

import (
	"time"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Counters holds the monotonic project counters that are not derivable
// from the current record set.
type Counters struct {
	// DuplicatesRemoved counts merge events recorded during
	// deduplication. Merges change the record count, so this is tracked
	// as a counter rather than derived from count deltas.
	DuplicatesRemoved int `json:"duplicates_removed" yaml:"duplicates_removed"`
}

// Commit is one entry in the durable commit log.
type Commit struct {
	// ID is the commit identifier.
	ID string `json:"id" yaml:"id"`

	// Message is the human-readable summary of the change.
	Message string `json:"message" yaml:"message"`

	// Timestamp is when the commit was created.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Checksum fingerprints the committed state.
	Checksum string `json:"checksum" yaml:"checksum"`
}

// Store is the narrow contract the engine consumes. Implementations
// must be crash-atomic per commit: a failed save leaves the previous
// committed state intact.
type Store interface {
	// LoadAll returns the full record set, keyed by record id. The
	// returned map is a snapshot owned by the caller.
	LoadAll() (map[string]*types.Record, error)

	// Save merges records into the store. When partial is true, only the
	// supplied records are touched and unspecified records are left
	// unchanged; when false the supplied set replaces the record set.
	Save(records map[string]*types.Record, partial bool) error

	// Counters returns the current counters.
	Counters() (Counters, error)

	// SetCounters persists the counters.
	SetCounters(c Counters) error

	// Commit appends a commit summarizing all changes since the last
	// commit.
	Commit(message string) (Commit, error)

	// HasChanges reports whether uncommitted changes exist.
	HasChanges() (bool, error)

	// Commits returns the commit log, oldest first.
	Commits() ([]Commit, error)

	// Close releases backend resources.
	Close() error
}
