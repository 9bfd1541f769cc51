// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

type prescreenExecutor struct{}

// Run handles the batch side of prescreening. With IncludeAll set every
// processed record is included in one pass; otherwise the run reports
// how many records are waiting for per-record decisions and changes
// nothing.
func (e *prescreenExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	pending := countInStates(recs, types.OpPrescreen.InputStates())
	if !opts.IncludeAll {
		return &Result{
			Operation: types.OpPrescreen,
			Remaining: pending,
			Message:   fmt.Sprintf("%d record(s) awaiting prescreen decisions", pending),
		}, nil
	}

	changed := map[string]*types.Record{}
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusMdProcessed {
			continue
		}
		if err := rec.Transition(types.StatusRevPrescreenIncluded, false); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
	}

	msg := fmt.Sprintf("Prescreen: included all %d record(s)", len(changed))
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpPrescreen, Processed: len(changed), Message: msg}, nil
}

// Queue lists the records currently waiting in an operation's input
// states, in ID order.
func Queue(p *project.Project, op types.Operation) ([]*types.Record, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	var queue []*types.Record
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		for _, s := range op.InputStates() {
			if rec.Status == s {
				queue = append(queue, rec)
				break
			}
		}
	}
	return queue, nil
}

// PrescreenDecision records an include or exclude decision for one
// processed record and returns the record together with the number of
// records still awaiting a decision.
func PrescreenDecision(p *project.Project, id string, include bool, opts records.CommitOptions) (*types.Record, int, error) {
	rec, err := records.Get(p, id)
	if err != nil {
		return nil, 0, err
	}
	target := types.StatusRevPrescreenExcluded
	verb := "exclude"
	if include {
		target = types.StatusRevPrescreenIncluded
		verb = "include"
	}
	if rec.Status != types.StatusMdProcessed && rec.Status != target {
		return nil, 0, &types.InvalidTransitionError{ID: id, From: rec.Status, To: target}
	}
	if err := rec.Transition(target, false); err != nil {
		return nil, 0, err
	}

	msg := fmt.Sprintf("Prescreen %s: %s", verb, id)
	if err := records.SaveAndCommit(p, map[string]*types.Record{rec.ID: rec}, msg, opts); err != nil {
		return nil, 0, err
	}

	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, 0, err
	}
	return rec, countInStates(recs, types.OpPrescreen.InputStates()), nil
}
