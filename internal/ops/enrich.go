// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/internal/enrich"
	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

// EnrichResult summarizes a batch enrichment run. Errors is keyed by
// record ID for the items that failed.
type EnrichResult struct {
	Enriched int               `json:"enriched_count"`
	Failed   int               `json:"failed_count"`
	Errors   map[string]string `json:"errors,omitempty"`
}

// EnrichBatch enriches the listed records with one enricher. Failures
// are isolated per item: a missing record or a failed lookup is
// reported in the result and the rest of the batch proceeds. All
// successful updates land in a single commit.
func EnrichBatch(ctx context.Context, p *project.Project, enricher enrich.Enricher, ids []string, opts records.CommitOptions) (*EnrichResult, error) {
	if len(ids) == 0 {
		return nil, &types.InvalidParameterError{Param: "ids", Message: "at least one record ID is required"}
	}

	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	res := &EnrichResult{Errors: map[string]string{}}
	changed := map[string]*types.Record{}
	for _, id := range ids {
		rec, ok := recs[id]
		if !ok {
			res.Failed++
			res.Errors[id] = (&types.RecordNotFoundError{ID: id}).Error()
			continue
		}
		updates, err := enricher.Enrich(ctx, rec)
		if err != nil {
			res.Failed++
			res.Errors[id] = err.Error()
			p.Log.Warn().Str("record", id).Err(err).Msg("enrichment failed")
			continue
		}
		for _, u := range updates {
			rec.UpdateField(u.Field, u.Value, u.Source)
		}
		if len(updates) > 0 {
			changed[rec.ID] = rec
		}
		res.Enriched++
	}

	msg := fmt.Sprintf("Enrich records (%s): %d enriched, %d failed", enricher.Name(), res.Enriched, res.Failed)
	if err := records.SaveAndCommit(p, changed, msg, opts); err != nil {
		return nil, err
	}
	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}
