// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/search"
	"github.com/pdiddy/review-engine/internal/status"
	"github.com/pdiddy/review-engine/pkg/types"
)

// ProjectStatus assembles the full project status report: state counts,
// completeness, progress, screening statistics, the recommended next
// operation, and whether uncommitted changes exist.
func ProjectStatus(p *project.Project) (*types.StatusStats, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	counters, err := p.Store.Counters()
	if err != nil {
		return nil, err
	}
	stats := status.Aggregate(recs, counters.DuplicatesRemoved)

	unsearched, err := search.UnsearchedCount(p)
	if err != nil {
		return nil, err
	}
	stats.NextOperation = status.NextOperation(stats, unsearched)

	stats.HasChanges, err = p.Store.HasChanges()
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// OperationInfo describes whether one stage can run right now and
// whether it needs a (re-)run.
type OperationInfo struct {
	Operation   types.Operation `json:"operation"`
	Description string          `json:"description"`
	CanRun      bool            `json:"can_run"`
	Reason      string          `json:"reason,omitempty"`
	NeedsRerun  bool            `json:"needs_rerun"`
	RerunReason string          `json:"rerun_reason,omitempty"`
	Affected    int             `json:"affected"`
}

// CheckOperation evaluates runnability and rerun need for one stage
// against the current record set and source registry.
func CheckOperation(p *project.Project, op types.Operation) (*OperationInfo, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	counters, err := p.Store.Counters()
	if err != nil {
		return nil, err
	}
	stats := status.Aggregate(recs, counters.DuplicatesRemoved)

	canRun, reason, affected := status.CheckRunnable(op, stats, len(p.Settings.Sources))
	needsRerun, rerunReason, err := status.CheckNeedsRerun(op, stats, func() (bool, string, error) {
		return search.CheckAllSources(p)
	})
	if err != nil {
		return nil, err
	}

	return &OperationInfo{
		Operation:   op,
		Description: op.Description(),
		CanRun:      canRun,
		Reason:      reason,
		NeedsRerun:  needsRerun,
		RerunReason: rerunReason,
		Affected:    affected,
	}, nil
}

// CheckAllOperations evaluates every stage in pipeline order.
func CheckAllOperations(p *project.Project) ([]*OperationInfo, error) {
	infos := make([]*OperationInfo, 0, len(types.Operations()))
	for _, op := range types.Operations() {
		info, err := CheckOperation(p, op)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
