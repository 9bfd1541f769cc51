// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

// pdfSource labels provenance for the file field written by the PDF
// retrieval stage.
const pdfSource = "pdf_get"

type pdfGetExecutor struct{}

// Run looks for a PDF for every prescreen-included record. Records
// whose PDF is found under the project's pdf directory (or already
// referenced by their file field) advance to pdf_imported; the rest are
// routed to manual retrieval.
func (e *pdfGetExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	changed := map[string]*types.Record{}
	manual := 0
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusRevPrescreenIncluded && rec.Status != types.StatusPdfNeedsManualRetrieval {
			continue
		}
		path, ok := locatePDF(p, rec)
		if !ok {
			if rec.Status == types.StatusRevPrescreenIncluded {
				if err := rec.Transition(types.StatusPdfNeedsManualRetrieval, false); err != nil {
					return nil, err
				}
				changed[rec.ID] = rec
			}
			manual++
			continue
		}
		rec.SetDataField(types.FieldFile, path, pdfSource, "")
		if err := rec.Transition(types.StatusPdfImported, false); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
	}

	imported := len(changed) - manualTransitions(changed)
	msg := fmt.Sprintf("PDF retrieval: %d PDF(s) imported, %d pending manual retrieval", imported, manual)
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpPdfGet, Processed: imported, Remaining: manual, Message: msg}, nil
}

func manualTransitions(changed map[string]*types.Record) int {
	n := 0
	for _, rec := range changed {
		if rec.Status == types.StatusPdfNeedsManualRetrieval {
			n++
		}
	}
	return n
}

// locatePDF resolves the PDF path for a record: the file field when it
// points at an existing file, otherwise <pdf dir>/<id>.pdf.
func locatePDF(p *project.Project, rec *types.Record) (string, bool) {
	if path := rec.Fields[types.FieldFile]; path != "" {
		if _, err := os.Stat(p.Abs(path)); err == nil {
			return path, true
		}
	}
	rel := filepath.Join("data", "pdfs", rec.ID+".pdf")
	if _, err := os.Stat(p.Abs(rel)); err == nil {
		return rel, true
	}
	return "", false
}

// AttachPDF records a manually supplied PDF path on a record. A record
// waiting for manual retrieval advances to pdf_imported. Re-attaching a
// replacement PDF to a record that failed preparation resets it to
// pdf_imported and drops the machine-written defect note so the file
// can be prepared again.
func AttachPDF(p *project.Project, id, path string, opts records.CommitOptions) (*types.Record, error) {
	rec, err := records.Get(p, id)
	if err != nil {
		return nil, err
	}
	switch rec.Status {
	case types.StatusPdfNeedsManualRetrieval, types.StatusPdfNeedsManualPreparation, types.StatusPdfImported:
	default:
		return nil, &types.InvalidTransitionError{ID: id, From: rec.Status, To: types.StatusPdfImported}
	}
	if _, err := os.Stat(p.Abs(path)); err != nil {
		return nil, &types.InvalidParameterError{Param: "path", Message: fmt.Sprintf("PDF not found at %s", path)}
	}

	rec.SetDataField(types.FieldFile, path, "manual", "")
	if err := rec.Transition(types.StatusPdfImported, true); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Attach PDF: %s", id)
	if err := records.SaveAndCommit(p, map[string]*types.Record{rec.ID: rec}, msg, opts); err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkPdfNotAvailable retires a record whose PDF cannot be obtained.
// Marking a record that is already retired succeeds without a new
// commit.
func MarkPdfNotAvailable(p *project.Project, id string, opts records.CommitOptions) (*types.Record, error) {
	rec, err := records.Get(p, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == types.StatusPdfNotAvailable {
		return rec, nil
	}
	if rec.Status != types.StatusPdfNeedsManualRetrieval {
		return nil, &types.InvalidTransitionError{ID: id, From: rec.Status, To: types.StatusPdfNotAvailable}
	}
	if err := rec.Transition(types.StatusPdfNotAvailable, false); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("PDF not available: %s", id)
	if err := records.SaveAndCommit(p, map[string]*types.Record{rec.ID: rec}, msg, opts); err != nil {
		return nil, err
	}
	return rec, nil
}
