// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package status

import (
	"fmt"

	"github.com/pdiddy/review-engine/pkg/types"
)

// notRunnableReasons holds the fixed per-stage explanation returned
// when a stage has no pending input records. Callers display these
// verbatim; the wording is part of the caller contract.
var notRunnableReasons = map[types.Operation]string{
	types.OpLoad:      "No records to load (run search first)",
	types.OpPrep:      "No records to prepare (run load first)",
	types.OpDedupe:    "No records to deduplicate (run prep first)",
	types.OpPrescreen: "No records to prescreen (run dedupe first)",
	types.OpPdfGet:    "No records need PDF retrieval (run prescreen first)",
	types.OpPdfPrep:   "No PDFs to prepare (run pdf_get first)",
	types.OpScreen:    "No records to screen (run pdf_prep first)",
	types.OpData:      "No records for data extraction (run screen first)",
}

// CheckRunnable determines whether a stage can run now. For search the
// answer depends on configured sources; for every other stage it
// depends on the sum of records in the stage's input states. The
// returned count is the number of affected records (or sources, for
// search).
func CheckRunnable(op types.Operation, stats *types.StatusStats, sourceCount int) (bool, string, int) {
	if op == types.OpSearch {
		if sourceCount == 0 {
			return false, "No search sources configured", 0
		}
		return true, "", sourceCount
	}

	affected := 0
	for _, s := range op.InputStates() {
		affected += stats.Currently[s]
	}
	if affected == 0 {
		return false, notRunnableReasons[op], 0
	}
	return true, "", affected
}

// StaleCheck reports whether the search stage needs a re-run because
// source configurations drifted from their run history.
type StaleCheck func() (bool, string, error)

// CheckNeedsRerun determines whether a stage needs to be (re-)run. For
// search it delegates to the staleness check across all sources. For
// every other stage "needs a run" simply means pending input records
// exist; this coarse rule is a caller contract, including the wording.
func CheckNeedsRerun(op types.Operation, stats *types.StatusStats, searchStale StaleCheck) (bool, string, error) {
	if op == types.OpSearch {
		return searchStale()
	}

	pending := 0
	for _, s := range op.InputStates() {
		pending += stats.Currently[s]
	}
	if pending > 0 {
		return true, fmt.Sprintf("%d record(s) pending for %s", pending, op), nil
	}
	return false, "", nil
}
