// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich retrieves supplementary metadata for records from
// external registries. Enrichers are pluggable; the DOI enricher ships
// as the reference implementation.
package enrich

import (
	"context"
	"errors"

	"github.com/pdiddy/review-engine/pkg/types"
)

// ErrNotEnrichable marks records an enricher cannot work on, for
// example a record without a DOI. Batch callers count these as failures
// without aborting the batch.
var ErrNotEnrichable = errors.New("record cannot be enriched")

// FieldUpdate is one field an enricher wants to add or overwrite,
// together with the provenance source to record for it.
type FieldUpdate struct {
	Field  string
	Value  string
	Source string
}

// Enricher looks up supplementary metadata for one record. It returns
// the field updates to apply; it must not mutate the record itself.
type Enricher interface {
	Name() string
	Enrich(ctx context.Context, rec *types.Record) ([]FieldUpdate, error)
}
