// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		got, err := ParseStatus(string(s))
		if err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", s, err)
		}
		if got != s {
			t.Errorf("ParseStatus(%q) = %q", s, got)
		}
	}

	_, err := ParseStatus("md_bogus")
	if err == nil {
		t.Fatal("ParseStatus accepted unknown status")
	}
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("error = %v, want ErrInvalidParameter", err)
	}
}

// TestTransitionTable pins the forward lattice: for every ordered pair
// of states the table either allows or forbids the move, and the
// allowed set must match this list exactly.
func TestTransitionTable(t *testing.T) {
	allowed := map[Status][]Status{
		StatusMdRetrieved:               {StatusMdImported},
		StatusMdImported:                {StatusMdPrepared, StatusMdNeedsManualPreparation},
		StatusMdNeedsManualPreparation:  {StatusMdPrepared},
		StatusMdPrepared:                {StatusMdProcessed},
		StatusMdProcessed:               {StatusRevPrescreenIncluded, StatusRevPrescreenExcluded},
		StatusRevPrescreenExcluded:      {},
		StatusRevPrescreenIncluded:      {StatusPdfNeedsManualRetrieval, StatusPdfImported},
		StatusPdfNeedsManualRetrieval:   {StatusPdfImported, StatusPdfNotAvailable},
		StatusPdfImported:               {StatusPdfNeedsManualPreparation, StatusPdfPrepared},
		StatusPdfNotAvailable:           {},
		StatusPdfNeedsManualPreparation: {StatusPdfPrepared},
		StatusPdfPrepared:               {StatusRevIncluded, StatusRevExcluded},
		StatusRevExcluded:               {},
		StatusRevIncluded:               {StatusRevSynthesized},
		StatusRevSynthesized:            {},
	}

	for _, from := range AllStatuses() {
		for _, to := range AllStatuses() {
			want := from == to
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusRevSynthesized:       true,
		StatusRevExcluded:          true,
		StatusRevPrescreenExcluded: true,
		StatusPdfNotAvailable:      true,
	}
	for _, s := range AllStatuses() {
		if got := s.Terminal(); got != terminal[s] {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, terminal[s])
		}
	}
}

func TestManualIntervention(t *testing.T) {
	manual := map[Status]bool{
		StatusMdNeedsManualPreparation:  true,
		StatusPdfNeedsManualRetrieval:   true,
		StatusPdfNeedsManualPreparation: true,
	}
	for _, s := range AllStatuses() {
		if got := s.ManualIntervention(); got != manual[s] {
			t.Errorf("%s.ManualIntervention() = %v, want %v", s, got, manual[s])
		}
	}
}

func TestPassedStates(t *testing.T) {
	// Manual side branches never appear as a passed state.
	for _, s := range AllStatuses() {
		for _, passed := range s.PassedStates() {
			if passed.ManualIntervention() {
				t.Errorf("PassedStates(%s) contains manual state %s", s, passed)
			}
			if passed == StatusMdRetrieved {
				t.Errorf("PassedStates(%s) contains md_retrieved, which the aggregator derives separately", s)
			}
		}
	}

	if n := len(StatusRevSynthesized.PassedStates()); n != 8 {
		t.Errorf("rev_synthesized passes through %d states, want 8", n)
	}
	if n := len(StatusMdRetrieved.PassedStates()); n != 0 {
		t.Errorf("md_retrieved passes through %d states, want 0", n)
	}
}

func TestCompletedSteps(t *testing.T) {
	for _, s := range AllStatuses() {
		steps := s.CompletedSteps()
		if steps < 0 || steps > AtomicStepsPerRecord() {
			t.Errorf("%s.CompletedSteps() = %d out of range", s, steps)
		}
		if s.Terminal() && steps != AtomicStepsPerRecord() {
			t.Errorf("%s is terminal but has %d completed steps", s, steps)
		}
	}
	if StatusMdRetrieved.CompletedSteps() != 0 {
		t.Error("md_retrieved should have 0 completed steps")
	}
}
