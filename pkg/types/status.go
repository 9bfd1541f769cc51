// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Status is the lifecycle state of a record in the review pipeline.
// The zero value is not a valid status; records are created as
// StatusMdRetrieved. All status comparisons in the engine use the typed
// constants below; raw strings are parsed at the external boundary only.
type Status string

// Pipeline states, in pipeline order. The md_* states cover metadata
// processing, pdf_* states cover document retrieval and preparation, and
// rev_* states cover screening and synthesis.
const (
	StatusMdRetrieved               Status = "md_retrieved"
	StatusMdImported                Status = "md_imported"
	StatusMdNeedsManualPreparation  Status = "md_needs_manual_preparation"
	StatusMdPrepared                Status = "md_prepared"
	StatusMdProcessed               Status = "md_processed"
	StatusRevPrescreenExcluded      Status = "rev_prescreen_excluded"
	StatusRevPrescreenIncluded      Status = "rev_prescreen_included"
	StatusPdfNeedsManualRetrieval   Status = "pdf_needs_manual_retrieval"
	StatusPdfImported               Status = "pdf_imported"
	StatusPdfNotAvailable           Status = "pdf_not_available"
	StatusPdfNeedsManualPreparation Status = "pdf_needs_manual_preparation"
	StatusPdfPrepared               Status = "pdf_prepared"
	StatusRevExcluded               Status = "rev_excluded"
	StatusRevIncluded               Status = "rev_included"
	StatusRevSynthesized            Status = "rev_synthesized"
)

// allStatuses lists every state in pipeline order. Aggregation and
// exhaustiveness checks iterate this slice; keep it in sync with the
// const block above.
var allStatuses = []Status{
	StatusMdRetrieved,
	StatusMdImported,
	StatusMdNeedsManualPreparation,
	StatusMdPrepared,
	StatusMdProcessed,
	StatusRevPrescreenExcluded,
	StatusRevPrescreenIncluded,
	StatusPdfNeedsManualRetrieval,
	StatusPdfImported,
	StatusPdfNotAvailable,
	StatusPdfNeedsManualPreparation,
	StatusPdfPrepared,
	StatusRevExcluded,
	StatusRevIncluded,
	StatusRevSynthesized,
}

// transitions is the table of legal forward transitions. States absent
// from the map (the terminal states) have no outgoing transitions.
// Manual-intervention states are side-branches: they are only entered
// from their stage's input state and only left by resolving the blocking
// condition.
var transitions = map[Status][]Status{
	StatusMdRetrieved:               {StatusMdImported},
	StatusMdImported:                {StatusMdNeedsManualPreparation, StatusMdPrepared},
	StatusMdNeedsManualPreparation:  {StatusMdPrepared},
	StatusMdPrepared:                {StatusMdProcessed},
	StatusMdProcessed:               {StatusRevPrescreenExcluded, StatusRevPrescreenIncluded},
	StatusRevPrescreenIncluded:      {StatusPdfNeedsManualRetrieval, StatusPdfImported},
	StatusPdfNeedsManualRetrieval:   {StatusPdfImported, StatusPdfNotAvailable},
	StatusPdfImported:               {StatusPdfNeedsManualPreparation, StatusPdfPrepared},
	StatusPdfNeedsManualPreparation: {StatusPdfPrepared},
	StatusPdfPrepared:               {StatusRevExcluded, StatusRevIncluded},
	StatusRevIncluded:               {StatusRevSynthesized},
}

// AllStatuses returns every defined state in pipeline order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus converts a wire-format string into a Status. It is the
// only place raw status strings enter the engine.
func ParseStatus(s string) (Status, error) {
	for _, st := range allStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", &InvalidParameterError{Param: "status", Message: fmt.Sprintf("unknown status %q", s)}
}

// Valid reports whether s is one of the defined states.
func (s Status) Valid() bool {
	_, ok := passage[s]
	return ok
}

// Terminal reports whether s is a stable dead-end for normal flow:
// rev_synthesized, the exclusion states, and pdf_not_available.
func (s Status) Terminal() bool {
	switch s {
	case StatusRevSynthesized, StatusRevExcluded, StatusRevPrescreenExcluded, StatusPdfNotAvailable:
		return true
	}
	return false
}

// ManualIntervention reports whether s is a manual side-branch state.
func (s Status) ManualIntervention() bool {
	switch s {
	case StatusMdNeedsManualPreparation, StatusPdfNeedsManualRetrieval, StatusPdfNeedsManualPreparation:
		return true
	}
	return false
}

// CanTransitionTo reports whether target is directly reachable from s
// per the transition table. Targeting the current state is allowed and
// treated as a no-op by Transition.
func (s Status) CanTransitionTo(target Status) bool {
	if s == target {
		return true
	}
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// passage maps each state to the overall-reporting states a record in
// that state has passed through. md_retrieved is handled separately by
// the aggregator because retrieved totals are counted by origin entries,
// not by record. The manual side-branch states do not appear in overall
// reporting and so never occur on the right-hand side.
var passage = map[Status][]Status{
	StatusMdRetrieved:               {},
	StatusMdImported:                {StatusMdImported},
	StatusMdNeedsManualPreparation:  {StatusMdImported},
	StatusMdPrepared:                {StatusMdImported, StatusMdPrepared},
	StatusMdProcessed:               {StatusMdImported, StatusMdPrepared, StatusMdProcessed},
	StatusRevPrescreenExcluded:      {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenExcluded},
	StatusRevPrescreenIncluded:      {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded},
	StatusPdfNeedsManualRetrieval:   {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded},
	StatusPdfImported:               {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfImported},
	StatusPdfNotAvailable:           {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfNotAvailable},
	StatusPdfNeedsManualPreparation: {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfImported},
	StatusPdfPrepared:               {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfImported, StatusPdfPrepared},
	StatusRevExcluded:               {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfImported, StatusPdfPrepared, StatusRevExcluded},
	StatusRevIncluded:               {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfImported, StatusPdfPrepared, StatusRevIncluded},
	StatusRevSynthesized:            {StatusMdImported, StatusMdPrepared, StatusMdProcessed, StatusRevPrescreenIncluded, StatusPdfImported, StatusPdfPrepared, StatusRevIncluded, StatusRevSynthesized},
}

// PassedStates returns the overall-reporting states a record currently
// in state s has passed through, including s itself where applicable.
func (s Status) PassedStates() []Status {
	return passage[s]
}

// completedSteps maps each state to the number of atomic pipeline steps
// a record in that state has completed, out of totalAtomicSteps. Dead-end
// states count as fully processed: no further work is pending on them.
var completedSteps = map[Status]int{
	StatusMdRetrieved:               0,
	StatusMdImported:                1,
	StatusMdNeedsManualPreparation:  1,
	StatusMdPrepared:                2,
	StatusMdProcessed:               3,
	StatusRevPrescreenExcluded:      totalAtomicSteps,
	StatusRevPrescreenIncluded:      4,
	StatusPdfNeedsManualRetrieval:   4,
	StatusPdfImported:               5,
	StatusPdfNotAvailable:           totalAtomicSteps,
	StatusPdfNeedsManualPreparation: 5,
	StatusPdfPrepared:               6,
	StatusRevExcluded:               totalAtomicSteps,
	StatusRevIncluded:               7,
	StatusRevSynthesized:            totalAtomicSteps,
}

// totalAtomicSteps is the number of advancements a record makes on the
// full path from md_retrieved to rev_synthesized.
const totalAtomicSteps = 8

// AtomicStepsPerRecord returns the number of pipeline steps counted per
// record when computing progress totals.
func AtomicStepsPerRecord() int { return totalAtomicSteps }

// CompletedSteps returns how many atomic steps a record in state s has
// completed.
func (s Status) CompletedSteps() int { return completedSteps[s] }
