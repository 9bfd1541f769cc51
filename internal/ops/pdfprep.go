// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

type pdfPrepExecutor struct{}

// Run validates the PDF of every imported record. A readable non-empty
// file advances the record to pdf_prepared; otherwise the record is
// routed to manual preparation with the failure noted on the file
// field's data provenance.
func (e *pdfPrepExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	changed := map[string]*types.Record{}
	manual := 0
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusPdfImported {
			continue
		}
		if code := checkPDF(p, rec); code != "" {
			if rec.DataProvenance == nil {
				rec.DataProvenance = map[string]types.Provenance{}
			}
			rec.DataProvenance[types.FieldFile] = types.Provenance{Source: "pdf_prep", Note: code}
			if err := rec.Transition(types.StatusPdfNeedsManualPreparation, false); err != nil {
				return nil, err
			}
			manual++
		} else {
			if err := rec.Transition(types.StatusPdfPrepared, false); err != nil {
				return nil, err
			}
		}
		changed[rec.ID] = rec
	}

	msg := fmt.Sprintf("PDF preparation: %d PDF(s) prepared, %d deferred to manual preparation", len(changed)-manual, manual)
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpPdfPrep, Processed: len(changed) - manual, Remaining: manual, Message: msg}, nil
}

// checkPDF returns a defect code for the record's PDF, or the empty
// string when the file is usable.
func checkPDF(p *project.Project, rec *types.Record) string {
	path := rec.Fields[types.FieldFile]
	if path == "" {
		return "no-file"
	}
	info, err := os.Stat(p.Abs(path))
	if err != nil {
		return "file-not-found"
	}
	if info.Size() == 0 {
		return "empty-file"
	}
	return ""
}
