// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

type screenExecutor struct{}

// Run handles the batch side of full-text screening. With IncludeAll
// set every record with a prepared PDF is included against all
// configured criteria; otherwise the run reports the decision queue and
// changes nothing.
func (e *screenExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	pending := countInStates(recs, types.OpScreen.InputStates())
	if !opts.IncludeAll {
		return &Result{
			Operation: types.OpScreen,
			Remaining: pending,
			Message:   fmt.Sprintf("%d record(s) awaiting screen decisions", pending),
		}, nil
	}

	decisions := map[string]string{}
	for _, c := range p.Settings.Screen.Criteria {
		decisions[c.Name] = "in"
	}

	changed := map[string]*types.Record{}
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusPdfPrepared {
			continue
		}
		if err := applyScreenDecisions(rec, p.Settings.Screen, decisions); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
	}

	msg := fmt.Sprintf("Screen: included all %d record(s)", len(changed))
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpScreen, Processed: len(changed), Message: msg}, nil
}

// ScreenDecision records the per-criterion decisions for one record
// with a prepared PDF. Every configured criterion needs a decision, and
// a single "out" excludes the record.
func ScreenDecision(p *project.Project, id string, decisions map[string]string, opts records.CommitOptions) (*types.Record, error) {
	rec, err := records.Get(p, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != types.StatusPdfPrepared {
		return nil, &types.InvalidTransitionError{ID: id, From: rec.Status, To: types.StatusRevIncluded}
	}
	if err := applyScreenDecisions(rec, p.Settings.Screen, decisions); err != nil {
		return nil, err
	}

	verb := "include"
	if rec.Status == types.StatusRevExcluded {
		verb = "exclude"
	}
	msg := fmt.Sprintf("Screen %s: %s", verb, id)
	if err := records.SaveAndCommit(p, map[string]*types.Record{rec.ID: rec}, msg, opts); err != nil {
		return nil, err
	}
	return rec, nil
}

// applyScreenDecisions validates the decisions against the configured
// criteria, writes the screening_criteria field in criteria order, and
// moves the record to rev_included or rev_excluded.
func applyScreenDecisions(rec *types.Record, screen types.ScreenSettings, decisions map[string]string) error {
	include := true
	parts := make([]string, 0, len(screen.Criteria))
	for _, c := range screen.Criteria {
		decision, ok := decisions[c.Name]
		if !ok {
			return &types.InvalidParameterError{Param: "decisions", Message: fmt.Sprintf("missing decision for criterion %s", c.Name)}
		}
		if decision != "in" && decision != "out" {
			return &types.InvalidParameterError{Param: "decisions", Message: fmt.Sprintf("decision for %s must be in or out, got %q", c.Name, decision)}
		}
		if decision == "out" {
			include = false
		}
		parts = append(parts, c.Name+"="+decision)
	}
	for name := range decisions {
		if !screenHasCriterion(screen, name) {
			return &types.InvalidParameterError{Param: "decisions", Message: fmt.Sprintf("unknown criterion %s", name)}
		}
	}

	if len(parts) > 0 {
		rec.SetDataField(types.FieldScreeningCriteria, strings.Join(parts, ";"), "screen", "")
	}
	target := types.StatusRevExcluded
	if include {
		target = types.StatusRevIncluded
	}
	return rec.Transition(target, false)
}

func screenHasCriterion(screen types.ScreenSettings, name string) bool {
	for _, c := range screen.Criteria {
		if c.Name == name {
			return true
		}
	}
	return false
}

// screenReversals pairs each screen outcome with its counterpart. Only
// these flips are legal after the fact.
var screenReversals = map[types.Status]types.Status{
	types.StatusRevIncluded:          types.StatusRevExcluded,
	types.StatusRevExcluded:          types.StatusRevIncluded,
	types.StatusRevPrescreenIncluded: types.StatusRevPrescreenExcluded,
	types.StatusRevPrescreenExcluded: types.StatusRevPrescreenIncluded,
}

// UpdateScreenDecisions reverses earlier screen or prescreen outcomes.
// Each listed record flips to the counterpart of its current state when
// the requested direction differs from it; records already in the
// requested state are left alone. Records outside the four screen
// outcome states are rejected before anything is saved.
func UpdateScreenDecisions(p *project.Project, include map[string]bool, opts records.CommitOptions) (int, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return 0, err
	}

	for id := range include {
		if _, ok := recs[id]; !ok {
			return 0, &types.RecordNotFoundError{ID: id}
		}
	}

	changed := map[string]*types.Record{}
	for _, id := range types.SortedIDs(recs) {
		want, ok := include[id]
		if !ok {
			continue
		}
		rec := recs[id]
		counterpart, ok := screenReversals[rec.Status]
		if !ok {
			return 0, &types.InvalidTransitionError{ID: id, From: rec.Status, To: rec.Status}
		}
		target := rec.Status
		if want != isIncludedState(rec.Status) {
			target = counterpart
		}
		if target == rec.Status {
			continue
		}
		if err := rec.Transition(target, true); err != nil {
			return 0, err
		}
		changed[rec.ID] = rec
	}

	if len(changed) == 0 {
		return 0, nil
	}
	msg := fmt.Sprintf("Update screen decisions: %d record(s)", len(changed))
	if err := records.SaveAndCommit(p, changed, msg, opts); err != nil {
		return 0, err
	}
	return len(changed), nil
}

func isIncludedState(s types.Status) bool {
	return s == types.StatusRevIncluded || s == types.StatusRevPrescreenIncluded
}
