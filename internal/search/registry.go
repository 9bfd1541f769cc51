// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

// AddSource validates and appends a source to the project settings and
// commits the change. An empty results path is derived from the
// platform name.
func AddSource(p *project.Project, src types.Source, opts records.CommitOptions) (*types.Source, error) {
	if src.Platform == "" {
		return nil, &types.InvalidParameterError{Param: "platform", Message: "platform is required"}
	}
	if _, err := types.ParseSearchType(string(src.SearchType)); err != nil {
		return nil, err
	}
	if src.ResultsPath == "" {
		src.ResultsPath = path.Join("data", "search", src.Platform+".bib")
	}
	for _, existing := range p.Settings.Sources {
		if existing.ResultsPath == src.ResultsPath {
			return nil, &types.InvalidParameterError{
				Param:   "results_path",
				Message: fmt.Sprintf("source with results path %q already exists", src.ResultsPath),
			}
		}
	}

	p.Settings.Sources = append(p.Settings.Sources, src)
	if err := p.SaveSettings(); err != nil {
		return nil, err
	}
	if err := commitSettings(p, fmt.Sprintf("Add search source: %s", src.Platform), opts); err != nil {
		return nil, err
	}
	p.Log.Info().Str("platform", src.Platform).Str("results_path", src.ResultsPath).Msg("source added")
	return &src, nil
}

// findSource locates a source by results-path filename, matching either
// the full project-relative path or a suffix of it.
func findSource(p *project.Project, filename string) (int, error) {
	for i, src := range p.Settings.Sources {
		if src.ResultsPath == filename || strings.HasSuffix(src.ResultsPath, filename) {
			return i, nil
		}
	}
	return 0, &types.InvalidParameterError{
		Param:   "filename",
		Message: fmt.Sprintf("source with filename %q not found", filename),
	}
}

// UpdateSource changes a source's query and/or parameters. A changed
// query invalidates the previous results: the results file is cleared
// so the next search starts fresh. Staleness follows automatically
// since the run-history snapshot no longer matches.
func UpdateSource(p *project.Project, filename string, query *string, parameters map[string]any, opts records.CommitOptions) (*types.Source, error) {
	idx, err := findSource(p, filename)
	if err != nil {
		return nil, err
	}
	src := &p.Settings.Sources[idx]

	queryChanged := false
	if query != nil && *query != src.Query {
		src.Query = *query
		queryChanged = true
	}
	if parameters != nil {
		if src.Parameters == nil {
			src.Parameters = map[string]any{}
		}
		for k, v := range parameters {
			src.Parameters[k] = v
		}
	}

	if queryChanged {
		resultsPath := p.Abs(src.ResultsPath)
		if _, err := os.Stat(resultsPath); err == nil {
			if err := os.WriteFile(resultsPath, nil, 0o644); err != nil {
				return nil, fmt.Errorf("clearing results file: %w", err)
			}
			p.Log.Info().Str("platform", src.Platform).Msg("query changed, cleared results file")
		}
	}

	if err := p.SaveSettings(); err != nil {
		return nil, err
	}
	if err := commitSettings(p, fmt.Sprintf("Update search source: %s", filename), opts); err != nil {
		return nil, err
	}
	return src, nil
}

// RemoveSource deletes a source from the settings along with its run
// history snapshot, and optionally its results file. Records already
// imported from the source keep their origin entries.
func RemoveSource(p *project.Project, filename string, deleteFile bool, opts records.CommitOptions) error {
	idx, err := findSource(p, filename)
	if err != nil {
		return err
	}
	src := p.Settings.Sources[idx]
	p.Settings.Sources = append(p.Settings.Sources[:idx], p.Settings.Sources[idx+1:]...)

	historyPath := p.Abs(src.HistoryPath())
	if err := os.Remove(historyPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing run history: %w", err)
	}
	if deleteFile {
		if err := os.Remove(p.Abs(src.ResultsPath)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing results file: %w", err)
		}
	}

	if err := p.SaveSettings(); err != nil {
		return err
	}
	if err := commitSettings(p, fmt.Sprintf("Remove search source: %s", filename), opts); err != nil {
		return err
	}
	p.Log.Info().Str("platform", src.Platform).Msg("source removed")
	return nil
}

// commitSettings records a settings-only change in the durable store.
func commitSettings(p *project.Project, message string, opts records.CommitOptions) error {
	if opts.SkipCommit {
		return nil
	}
	if _, err := p.Store.Commit(message); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}
