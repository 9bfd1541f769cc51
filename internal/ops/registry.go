// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ops implements the pipeline operations: a closed registry of
// stage executors keyed by the fixed stage vocabulary, the per-record
// decision operations, batch enrichment, and the status/runnability
// surface. Dispatch goes through an explicit table that is checked for
// exhaustiveness against the stage vocabulary when the registry is
// built.
// See docs/ARCHITECTURE § Operations.
package ops

import (
	"context"
	"fmt"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/pkg/types"
)

// RunOptions carries the common knobs of a stage run.
type RunOptions struct {
	// Source selects one source by results-path filename for search;
	// empty means all sources.
	Source string

	// Rerun forces a search even when the source is not stale.
	Rerun bool

	// IncludeAll lets the batch prescreen/screen executors include every
	// pending record instead of waiting for per-record decisions.
	IncludeAll bool

	// SkipCommit suppresses the per-call commit for batched workflows.
	SkipCommit bool
}

// Result summarizes a stage run.
type Result struct {
	// Operation is the stage that ran.
	Operation types.Operation `json:"operation"`

	// Processed is the number of records (or sources) the run advanced.
	Processed int `json:"processed"`

	// Remaining is the number of records still pending in the stage's
	// input states after the run.
	Remaining int `json:"remaining"`

	// Message is a human-readable summary.
	Message string `json:"message"`
}

// Executor runs one pipeline stage against a project.
type Executor interface {
	Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error)
}

// Registry is the closed dispatch table from stage name to executor.
type Registry struct {
	executors  map[types.Operation]Executor
	connectors map[string]Connector
}

// NewRegistry builds the dispatch table and verifies it covers the
// fixed stage vocabulary exactly. connectors maps platform names to
// search connectors; platforms without a connector fail at search time,
// not at construction.
func NewRegistry(connectors map[string]Connector) (*Registry, error) {
	if connectors == nil {
		connectors = map[string]Connector{}
	}
	r := &Registry{connectors: connectors}
	r.executors = map[types.Operation]Executor{
		types.OpSearch:    &searchExecutor{connectors: connectors},
		types.OpLoad:      &loadExecutor{},
		types.OpPrep:      &prepExecutor{},
		types.OpDedupe:    &dedupeExecutor{},
		types.OpPrescreen: &prescreenExecutor{},
		types.OpPdfGet:    &pdfGetExecutor{},
		types.OpPdfPrep:   &pdfPrepExecutor{},
		types.OpScreen:    &screenExecutor{},
		types.OpData:      &dataExecutor{},
	}

	for _, op := range types.Operations() {
		if _, ok := r.executors[op]; !ok {
			return nil, fmt.Errorf("executor table incomplete: missing %s", op)
		}
	}
	if len(r.executors) != len(types.Operations()) {
		return nil, fmt.Errorf("executor table has %d entries, want %d", len(r.executors), len(types.Operations()))
	}
	return r, nil
}

// Run dispatches a stage by name. Unknown names fail with
// InvalidParameter before any state is touched.
func (r *Registry) Run(ctx context.Context, p *project.Project, op types.Operation, opts RunOptions) (*Result, error) {
	exec, ok := r.executors[op]
	if !ok {
		_, err := types.ParseOperation(string(op))
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no executor registered for %s", op)
	}
	p.Log.Info().Str("operation", string(op)).Msg("running operation")
	res, err := exec.Run(ctx, p, opts)
	if err != nil {
		p.Log.Error().Str("operation", string(op)).Err(err).Msg("operation failed")
		return nil, err
	}
	return res, nil
}

// countInStates counts records currently in any of the given states.
func countInStates(recs map[string]*types.Record, states []types.Status) int {
	n := 0
	for _, rec := range recs {
		for _, s := range states {
			if rec.Status == s {
				n++
				break
			}
		}
	}
	return n
}
