// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"fmt"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Issue is one consistency problem found by Validate.
type Issue struct {
	RecordID string `json:"record_id"`
	Problem  string `json:"problem"`
}

// Validate checks the record set for structural problems: records
// without origins, origins claimed by more than one record, prepared
// records that still carry unacknowledged quality defects, and records
// past PDF retrieval without a file field. It reads only; fixing is up
// to the caller.
func Validate(p *project.Project) ([]Issue, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	var issues []Issue
	originOwner := map[string]string{}
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if len(rec.Origin) == 0 {
			issues = append(issues, Issue{RecordID: id, Problem: "record has no origin"})
		}
		for _, o := range rec.Origin {
			if owner, ok := originOwner[o]; ok {
				issues = append(issues, Issue{RecordID: id, Problem: fmt.Sprintf("origin %s already belongs to %s", o, owner)})
				continue
			}
			originOwner[o] = id
		}
		if !rec.Status.Valid() {
			issues = append(issues, Issue{RecordID: id, Problem: fmt.Sprintf("unknown status %s", rec.Status)})
			continue
		}
		if statusPastPreparation(rec.Status) && rec.HasFatalQualityDefects() {
			issues = append(issues, Issue{RecordID: id, Problem: "prepared record has unacknowledged quality defects"})
		}
		if statusRequiresFile(rec.Status) && rec.Fields[types.FieldFile] == "" {
			issues = append(issues, Issue{RecordID: id, Problem: "record has a PDF state but no file field"})
		}
	}

	p.Log.Info().Int("issues", len(issues)).Msg("validation finished")
	return issues, nil
}

func statusPastPreparation(s types.Status) bool {
	switch s {
	case types.StatusMdRetrieved, types.StatusMdImported, types.StatusMdNeedsManualPreparation:
		return false
	}
	return true
}

func statusRequiresFile(s types.Status) bool {
	switch s {
	case types.StatusPdfImported, types.StatusPdfNeedsManualPreparation, types.StatusPdfPrepared:
		return true
	}
	return false
}
