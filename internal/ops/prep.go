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

// defectSource labels provenance entries written by the automated
// quality checks so manual fixes can be told apart from machine ones.
const defectSource = "generic_field_requirements"

const defectMissing = "missing"

type prepExecutor struct{}

// Run checks every imported record against the required-field rules for
// its entry type. Clean records advance to md_prepared; records with at
// least one unacknowledged defect are routed to manual preparation with
// the defect codes written to their masterdata provenance notes.
func (e *prepExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	changed := map[string]*types.Record{}
	manual := 0
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusMdImported {
			continue
		}
		applyFieldRequirements(rec, p.Settings.Prep)
		target := types.StatusMdPrepared
		if rec.HasFatalQualityDefects() {
			target = types.StatusMdNeedsManualPreparation
			manual++
		}
		if err := rec.Transition(target, false); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
	}

	msg := fmt.Sprintf("Prep: %d record(s) prepared, %d deferred to manual preparation", len(changed)-manual, manual)
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpPrep, Processed: len(changed), Remaining: manual, Message: msg}, nil
}

// applyFieldRequirements records a missing-field defect for every
// required field that is absent or blank, and clears machine-written
// missing notes for fields that are now filled in. Notes written by
// other sources, including IGNORE: acknowledgements, are left alone.
func applyFieldRequirements(rec *types.Record, prep types.PrepSettings) {
	if rec.MasterdataProvenance == nil {
		rec.MasterdataProvenance = map[string]types.Provenance{}
	}
	for _, field := range prep.RequiredFieldsFor(rec.EntryType) {
		if strings.TrimSpace(rec.Fields[field]) == "" {
			prov := rec.MasterdataProvenance[field]
			if prov.Source == "" {
				prov.Source = defectSource
			}
			if !noteContains(prov.Note, defectMissing) && !noteContains(prov.Note, "IGNORE:"+defectMissing) {
				prov.Note = appendNote(prov.Note, defectMissing)
			}
			rec.MasterdataProvenance[field] = prov
			continue
		}
		if prov, ok := rec.MasterdataProvenance[field]; ok && prov.Source == defectSource {
			prov.Note = removeNote(prov.Note, defectMissing)
			rec.MasterdataProvenance[field] = prov
		}
	}
}

func noteContains(note, code string) bool {
	for _, c := range strings.Split(note, ",") {
		if strings.TrimSpace(c) == code {
			return true
		}
	}
	return false
}

func appendNote(note, code string) string {
	if strings.TrimSpace(note) == "" {
		return code
	}
	return note + "," + code
}

func removeNote(note, code string) string {
	var kept []string
	for _, c := range strings.Split(note, ",") {
		c = strings.TrimSpace(c)
		if c == "" || c == code {
			continue
		}
		kept = append(kept, c)
	}
	return strings.Join(kept, ",")
}

// PrepManUpdate applies a manual metadata fix to one record awaiting
// manual preparation. Updated fields are tracked in the masterdata
// provenance with the given source. The record advances to md_prepared
// only once no unacknowledged defects remain; otherwise it stays put
// and the commit message marks the fix as partial.
func PrepManUpdate(p *project.Project, id string, fields map[string]string, source string, opts records.CommitOptions) (*types.Record, error) {
	rec, err := records.Get(p, id)
	if err != nil {
		return nil, err
	}
	if rec.Status != types.StatusMdNeedsManualPreparation {
		return nil, &types.InvalidTransitionError{ID: id, From: rec.Status, To: types.StatusMdPrepared}
	}
	if err := records.CheckProtected(fields); err != nil {
		return nil, err
	}
	if source == "" {
		source = "prep_man"
	}
	for k, v := range fields {
		rec.UpdateField(k, v, source)
	}
	applyFieldRequirements(rec, p.Settings.Prep)

	msg := fmt.Sprintf("Manual prep (partial): %s", id)
	if !rec.HasFatalQualityDefects() {
		if err := rec.Transition(types.StatusMdPrepared, false); err != nil {
			return nil, err
		}
		msg = fmt.Sprintf("Manual prep: %s", id)
	}
	if err := records.SaveAndCommit(p, map[string]*types.Record{rec.ID: rec}, msg, opts); err != nil {
		return nil, err
	}
	return rec, nil
}
