// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package records implements the record mutation and commit protocol:
// partial saves, protected-field enforcement, tracked updates with
// provenance, and the one-commit-per-mutating-call discipline.
// See docs/ARCHITECTURE § Mutation Protocol.
package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/pkg/types"
)

// CommitOptions controls the commit side of a mutating call. SkipCommit
// supports batched UI workflows that intend to commit once after
// several calls.
type CommitOptions struct {
	SkipCommit bool
}

// SaveAndCommit merges the supplied records into the store and, unless
// skipped, produces exactly one commit with the given message. The
// commit is elided when the store reports no uncommitted changes, so an
// update that changed nothing does not produce an empty commit.
func SaveAndCommit(p *project.Project, recs map[string]*types.Record, message string, opts CommitOptions) error {
	if err := p.Store.Save(recs, true); err != nil {
		return fmt.Errorf("saving records: %w", err)
	}
	if opts.SkipCommit {
		return nil
	}
	changed, err := p.Store.HasChanges()
	if err != nil {
		return fmt.Errorf("checking for changes: %w", err)
	}
	if !changed {
		return nil
	}
	if _, err := p.Store.Commit(message); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	p.Log.Info().Str("commit", message).Int("records", len(recs)).Msg("committed")
	return nil
}

// Get returns one record from a fresh store snapshot.
func Get(p *project.Project, id string) (*types.Record, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	rec, ok := recs[id]
	if !ok {
		return nil, &types.RecordNotFoundError{ID: id}
	}
	return rec, nil
}

// CheckProtected rejects updates that touch a protected field.
func CheckProtected(fields map[string]string) error {
	for _, name := range types.ProtectedFields {
		if _, ok := fields[name]; ok {
			return &types.ProtectedFieldError{Field: name}
		}
	}
	return nil
}

// UpdateFields applies a generic field update to one record. Protected
// fields are rejected before anything is touched; a status value is
// parsed and assigned directly (the caller is expected to know what it
// is doing, status changes with transition validation go through
// Transition on the record). On success the change is committed as
// "Update record <id>: field, field, ...".
func UpdateFields(p *project.Project, id string, fields map[string]string, opts CommitOptions) (*types.Record, error) {
	if len(fields) == 0 {
		return nil, &types.InvalidParameterError{Param: "fields", Message: "at least one field is required"}
	}
	if err := CheckProtected(fields); err != nil {
		return nil, err
	}

	rec, err := Get(p, id)
	if err != nil {
		return nil, err
	}

	// Field names are sorted so the commit message is stable for the
	// same request regardless of map iteration order.
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := fields[key]
		switch key {
		case types.FieldStatus:
			status, err := types.ParseStatus(value)
			if err != nil {
				return nil, err
			}
			rec.Status = status
		case types.FieldEntryType:
			rec.EntryType = value
		default:
			if rec.Fields == nil {
				rec.Fields = map[string]string{}
			}
			rec.Fields[key] = value
		}
	}

	msg := fmt.Sprintf("Update record %s: %s", id, summarizeFields(keys))
	if err := SaveAndCommit(p, map[string]*types.Record{id: rec}, msg, opts); err != nil {
		return nil, err
	}
	return rec, nil
}

// summarizeFields joins up to three field names for a commit message.
func summarizeFields(fields []string) string {
	if len(fields) > 3 {
		return strings.Join(fields[:3], ", ") + "..."
	}
	return strings.Join(fields, ", ")
}
