// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package status derives project-wide progress views from a snapshot of
// the record set: per-state counts, completeness, the recommended next
// operation, and per-stage runnability. All functions are read-only
// passes; snapshots must be taken fresh per request and discarded after.
// See docs/ARCHITECTURE § Status Aggregation.
package status

import (
	"strings"

	"github.com/pdiddy/review-engine/pkg/types"
)

// Aggregate computes StatusStats from a record snapshot and the
// persisted duplicates-removed counter.
//
// Overall counts are cumulative: each record contributes to every
// reporting state it has passed through. The overall md_retrieved total
// counts retrieved results rather than unique records, so records
// merged away during deduplication stay counted. The currently
// md_retrieved count is derived by subtracting imported origin entries
// from that total; because a record can hold more origin entries than
// the merge counter accounts for, the raw value can go negative. The
// displayed value is clamped at zero and the raw value is kept in
// RawMdRetrieved for diagnostics.
func Aggregate(records map[string]*types.Record, duplicatesRemoved int) *types.StatusStats {
	stats := &types.StatusStats{
		Overall:             map[types.Status]int{},
		Currently:           map[types.Status]int{},
		DuplicatesRemoved:   duplicatesRemoved,
		ScreeningStatistics: map[string]int{},
	}
	for _, s := range types.AllStatuses() {
		stats.Currently[s] = 0
	}

	advancedRecords := 0
	advancedOrigins := 0
	completed := 0
	complete := true

	for _, rec := range records {
		stats.Currently[rec.Status]++
		stats.NrOrigins += len(rec.Origin)
		completed += rec.Status.CompletedSteps()
		if !rec.Status.Terminal() {
			complete = false
		}
		if rec.Status != types.StatusMdRetrieved {
			advancedRecords++
			advancedOrigins += len(rec.Origin)
		}
		for _, passed := range rec.Status.PassedStates() {
			stats.Overall[passed]++
		}
		countScreeningExclusions(rec, stats.ScreeningStatistics)
	}

	stats.TotalRecords = len(records)
	stats.AtomicSteps = len(records) * types.AtomicStepsPerRecord()
	stats.CompletedAtomicSteps = completed
	stats.CompletenessCondition = complete

	retrievedTotal := stats.Currently[types.StatusMdRetrieved] + advancedRecords + duplicatesRemoved
	stats.Overall[types.StatusMdRetrieved] = retrievedTotal
	stats.RawMdRetrieved = retrievedTotal - advancedOrigins
	if stats.RawMdRetrieved < 0 {
		stats.Currently[types.StatusMdRetrieved] = 0
	} else {
		stats.Currently[types.StatusMdRetrieved] = stats.RawMdRetrieved
	}

	return stats
}

// countScreeningExclusions parses a record's screening_criteria field
// ("criterion=in;criterion=out") and increments the exclusion count per
// criterion marked out.
func countScreeningExclusions(rec *types.Record, counts map[string]int) {
	criteria := rec.Fields[types.FieldScreeningCriteria]
	if criteria == "" {
		return
	}
	for _, part := range strings.Split(criteria, ";") {
		name, outcome, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		if strings.TrimSpace(outcome) == "out" {
			counts[strings.TrimSpace(name)]++
		}
	}
}

// NextOperation scans the stages in pipeline order and returns the
// first whose input states have pending records. When no stage has
// work, "search" is recommended if unsearched sources exist; otherwise
// the empty operation signals that the review is complete or empty.
func NextOperation(stats *types.StatusStats, unsearchedSources int) types.Operation {
	for _, op := range types.Operations() {
		if op == types.OpSearch {
			continue
		}
		pending := 0
		for _, s := range op.InputStates() {
			pending += stats.Currently[s]
		}
		if pending > 0 {
			return op
		}
	}
	if unsearchedSources > 0 {
		return types.OpSearch
	}
	return ""
}
