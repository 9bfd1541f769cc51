// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

type loadExecutor struct{}

// Run imports every retrieved record into the main record set by
// advancing md_retrieved to md_imported.
func (e *loadExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	changed := map[string]*types.Record{}
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusMdRetrieved {
			continue
		}
		if err := rec.Transition(types.StatusMdImported, false); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
	}

	msg := fmt.Sprintf("Load: %d record(s) imported", len(changed))
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpLoad, Processed: len(changed), Message: msg}, nil
}
