// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

type dataExecutor struct{}

// Run marks every included record as synthesized, the terminal state of
// the pipeline.
func (e *dataExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	changed := map[string]*types.Record{}
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusRevIncluded {
			continue
		}
		if err := rec.Transition(types.StatusRevSynthesized, false); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
	}

	msg := fmt.Sprintf("Data: %d record(s) synthesized", len(changed))
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpData, Processed: len(changed), Message: msg}, nil
}

// Synthesize marks a single included record as synthesized, for
// record-at-a-time data extraction workflows.
func Synthesize(p *project.Project, id string, opts records.CommitOptions) (*types.Record, error) {
	rec, err := records.Get(p, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == types.StatusRevSynthesized {
		return rec, nil
	}
	if rec.Status != types.StatusRevIncluded {
		return nil, &types.InvalidTransitionError{ID: id, From: rec.Status, To: types.StatusRevSynthesized}
	}
	if err := rec.Transition(types.StatusRevSynthesized, false); err != nil {
		return nil, err
	}
	msg := fmt.Sprintf("Synthesize: %s", id)
	if err := records.SaveAndCommit(p, map[string]*types.Record{rec.ID: rec}, msg, opts); err != nil {
		return nil, err
	}
	return rec, nil
}
