// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
)

func TestOperationsOrder(t *testing.T) {
	want := []Operation{
		OpSearch, OpLoad, OpPrep, OpDedupe, OpPrescreen,
		OpPdfGet, OpPdfPrep, OpScreen, OpData,
	}
	got := Operations()
	if len(got) != len(want) {
		t.Fatalf("Operations() has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Operations()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOperationTokens(t *testing.T) {
	// These strings are wire format; they must never drift.
	tokens := map[Operation]string{
		OpSearch:    "search",
		OpLoad:      "load",
		OpPrep:      "prep",
		OpDedupe:    "dedupe",
		OpPrescreen: "prescreen",
		OpPdfGet:    "pdf_get",
		OpPdfPrep:   "pdf_prep",
		OpScreen:    "screen",
		OpData:      "data",
	}
	for op, token := range tokens {
		if string(op) != token {
			t.Errorf("operation token = %q, want %q", op, token)
		}
		parsed, err := ParseOperation(token)
		if err != nil {
			t.Errorf("ParseOperation(%q) error: %v", token, err)
		}
		if parsed != op {
			t.Errorf("ParseOperation(%q) = %s", token, parsed)
		}
	}

	if _, err := ParseOperation("pdfget"); err == nil {
		t.Error("ParseOperation accepted an unknown operation")
	}
}

func TestInputStates(t *testing.T) {
	tests := []struct {
		op   Operation
		want []Status
	}{
		{OpLoad, []Status{StatusMdRetrieved}},
		{OpPrep, []Status{StatusMdImported, StatusMdNeedsManualPreparation}},
		{OpDedupe, []Status{StatusMdPrepared}},
		{OpPrescreen, []Status{StatusMdProcessed}},
		{OpPdfGet, []Status{StatusRevPrescreenIncluded, StatusPdfNeedsManualRetrieval}},
		{OpPdfPrep, []Status{StatusPdfImported, StatusPdfNeedsManualPreparation}},
		{OpScreen, []Status{StatusPdfPrepared}},
		{OpData, []Status{StatusRevIncluded}},
	}
	for _, tt := range tests {
		got := tt.op.InputStates()
		if len(got) != len(tt.want) {
			t.Errorf("%s.InputStates() = %v, want %v", tt.op, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("%s.InputStates()[%d] = %s, want %s", tt.op, i, got[i], tt.want[i])
			}
		}
	}
	if len(OpSearch.InputStates()) != 0 {
		t.Error("search should have no input states")
	}
}
