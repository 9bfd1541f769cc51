// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Operation is a named pipeline stage. The vocabulary is fixed and part
// of the wire contract with callers; the tokens below must not change.
type Operation string

const (
	OpSearch    Operation = "search"
	OpLoad      Operation = "load"
	OpPrep      Operation = "prep"
	OpDedupe    Operation = "dedupe"
	OpPrescreen Operation = "prescreen"
	OpPdfGet    Operation = "pdf_get"
	OpPdfPrep   Operation = "pdf_prep"
	OpScreen    Operation = "screen"
	OpData      Operation = "data"
)

// operationOrder lists all operations in pipeline order.
var operationOrder = []Operation{
	OpSearch, OpLoad, OpPrep, OpDedupe, OpPrescreen, OpPdfGet, OpPdfPrep, OpScreen, OpData,
}

// operationDescriptions gives the human-readable summary per operation.
var operationDescriptions = map[Operation]string{
	OpSearch:    "Search configured sources for records",
	OpLoad:      "Import search results into main records file",
	OpPrep:      "Prepare and clean metadata for imported records",
	OpDedupe:    "Identify and merge duplicate records",
	OpPrescreen: "Screen records based on titles and abstracts",
	OpPdfGet:    "Retrieve PDF documents for included records",
	OpPdfPrep:   "Prepare and validate retrieved PDFs",
	OpScreen:    "Full-text screening of records",
	OpData:      "Data extraction and synthesis",
}

// operationInputStates maps each record-processing operation to the
// state(s) it consumes. Stages with a manual side-branch accept both the
// regular input state and the corresponding manual state. Search is
// absent: it processes sources, not records.
var operationInputStates = map[Operation][]Status{
	OpLoad:      {StatusMdRetrieved},
	OpPrep:      {StatusMdImported, StatusMdNeedsManualPreparation},
	OpDedupe:    {StatusMdPrepared},
	OpPrescreen: {StatusMdProcessed},
	OpPdfGet:    {StatusRevPrescreenIncluded, StatusPdfNeedsManualRetrieval},
	OpPdfPrep:   {StatusPdfImported, StatusPdfNeedsManualPreparation},
	OpScreen:    {StatusPdfPrepared},
	OpData:      {StatusRevIncluded},
}

// Operations returns the fixed stage vocabulary in pipeline order.
func Operations() []Operation {
	out := make([]Operation, len(operationOrder))
	copy(out, operationOrder)
	return out
}

// ParseOperation validates a wire-format operation name.
func ParseOperation(s string) (Operation, error) {
	op := Operation(s)
	if _, ok := operationDescriptions[op]; !ok {
		names := make([]string, 0, len(operationOrder))
		for _, o := range operationOrder {
			names = append(names, string(o))
		}
		return "", &InvalidParameterError{
			Param:   "operation",
			Message: fmt.Sprintf("invalid operation %q, valid operations: %s", s, strings.Join(names, ", ")),
		}
	}
	return op, nil
}

// Description returns the human-readable summary of the operation.
func (o Operation) Description() string {
	return operationDescriptions[o]
}

// InputStates returns the record states the operation consumes. Search
// returns nil: it operates on sources.
func (o Operation) InputStates() []Status {
	states := operationInputStates[o]
	out := make([]Status, len(states))
	copy(out, states)
	return out
}
