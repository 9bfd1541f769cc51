// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// StatusStats is the derived, non-persisted view of project progress.
// It is computed from a snapshot of the record set taken at the start of
// a request and must be discarded afterwards.
type StatusStats struct {
	// Overall counts records per state cumulatively: a record advances
	// but stays counted in every reporting state it passed through. The
	// manual side-branch states are not reported here. md_retrieved is
	// counted by origin entries, not unique records.
	Overall map[Status]int `json:"overall"`

	// Currently counts records sitting in each state right now. The
	// md_retrieved entry is clamped at zero for display; see
	// RawMdRetrieved.
	Currently map[Status]int `json:"currently"`

	// RawMdRetrieved is the unclamped currently-retrieved count. It can
	// go negative when multiple origin entries map to one record after
	// certain merge sequences; kept for diagnostics.
	RawMdRetrieved int `json:"raw_md_retrieved"`

	// TotalRecords is the number of active (non-merged-away) records.
	TotalRecords int `json:"total_records"`

	// NrOrigins is the total number of origin entries across records.
	NrOrigins int `json:"nr_origins"`

	// DuplicatesRemoved is the monotonic count of merge events recorded
	// during deduplication.
	DuplicatesRemoved int `json:"duplicates_removed"`

	// CompletenessCondition is true when no record remains in a
	// non-terminal state.
	CompletenessCondition bool `json:"completeness_condition"`

	// AtomicSteps and CompletedAtomicSteps measure pipeline progress in
	// per-record processing steps.
	AtomicSteps          int `json:"atomic_steps"`
	CompletedAtomicSteps int `json:"completed_atomic_steps"`

	// ScreeningStatistics counts exclusions per screening criterion.
	ScreeningStatistics map[string]int `json:"screening_statistics,omitempty"`

	// NextOperation is the recommended next stage, empty when the review
	// is complete or no work is pending.
	NextOperation Operation `json:"next_operation,omitempty"`

	// HasChanges reports uncommitted changes in the durable store.
	HasChanges bool `json:"has_changes"`
}
