// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search manages the source registry and run-history snapshots,
// including the staleness detection that decides whether a source must
// be searched again. Record retrieval itself is performed by connector
// collaborators; this package owns only the configuration side.
// See docs/ARCHITECTURE § Sources and Staleness.
package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Staleness reasons, returned verbatim to callers.
const (
	ReasonNotRun            = "Search has not been run"
	ReasonQueryChanged      = "Search query changed"
	ReasonParametersChanged = "Search parameters changed"
)

// LoadHistory reads a source's run-history snapshot. A missing snapshot
// returns (nil, nil): the source has never been run.
func LoadHistory(p *project.Project, src types.Source) (*types.RunHistory, error) {
	path := p.Abs(src.HistoryPath())
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading run history %s: %w", path, err)
	}
	var history types.RunHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing run history %s: %w", path, err)
	}
	return &history, nil
}

// CheckStaleness compares a source's declared query and parameters
// against its run-history snapshot. A corrupt snapshot counts as
// never-run rather than aborting the check.
func CheckStaleness(p *project.Project, src types.Source) (bool, string, error) {
	history, err := LoadHistory(p, src)
	if err != nil {
		p.Log.Warn().Str("platform", src.Platform).Err(err).Msg("unreadable run history")
		return true, ReasonNotRun, nil
	}
	if history == nil {
		return true, ReasonNotRun, nil
	}
	if history.Query != src.Query {
		return true, ReasonQueryChanged, nil
	}
	if !types.ParametersEqual(history.Parameters, src.Parameters) {
		return true, ReasonParametersChanged, nil
	}
	return false, "", nil
}

// SaveHistory writes the source's run-history snapshot: the full current
// configuration minus the results path, plus the run timestamp (runDate
// when non-zero, else now). The write goes through a temp file and
// rename so a crash never leaves a snapshot for a run that did not
// complete. Writing the snapshot is the only way to clear staleness.
func SaveHistory(p *project.Project, src types.Source, runDate time.Time) error {
	if runDate.IsZero() {
		runDate = time.Now().UTC()
	}
	history := types.RunHistory{
		Platform:   src.Platform,
		SearchType: src.SearchType,
		Query:      src.Query,
		Parameters: src.Parameters,
		LastRun:    runDate.Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling run history: %w", err)
	}

	path := p.Abs(src.HistoryPath())
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating search directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing run history: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming run history: %w", err)
	}
	return nil
}

// CheckAllSources aggregates staleness across every configured source
// into a single needs-rerun answer. One stale source reports its own
// reason; several report only the count.
func CheckAllSources(p *project.Project) (bool, string, error) {
	type stale struct {
		platform string
		reason   string
	}
	var stales []stale
	for _, src := range p.Settings.Sources {
		isStale, reason, err := CheckStaleness(p, src)
		if err != nil {
			return false, "", err
		}
		if isStale {
			stales = append(stales, stale{platform: src.Platform, reason: reason})
		}
	}
	switch len(stales) {
	case 0:
		return false, "", nil
	case 1:
		return true, fmt.Sprintf("%s: %s", stales[0].platform, stales[0].reason), nil
	default:
		return true, fmt.Sprintf("%d sources modified since last run", len(stales)), nil
	}
}

// UnsearchedCount returns how many configured sources have no run
// history at all.
func UnsearchedCount(p *project.Project) (int, error) {
	count := 0
	for _, src := range p.Settings.Sources {
		history, err := LoadHistory(p, src)
		if err != nil {
			return 0, err
		}
		if history == nil {
			count++
		}
	}
	return count, nil
}
