// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

func TestAddSource(t *testing.T) {
	p := newTestProject(t)

	src, err := AddSource(p, types.Source{
		Platform:   "pubmed",
		SearchType: types.SearchTypeAPI,
		Query:      "diabetes",
	}, records.CommitOptions{})
	if err != nil {
		t.Fatalf("AddSource: %v", err)
	}
	if src.ResultsPath != "data/search/pubmed.bib" {
		t.Errorf("derived results path = %q", src.ResultsPath)
	}
	if len(p.Settings.Sources) != 1 {
		t.Fatalf("sources = %d", len(p.Settings.Sources))
	}

	// Duplicate results path is rejected.
	_, err = AddSource(p, types.Source{
		Platform:   "pubmed",
		SearchType: types.SearchTypeDB,
	}, records.CommitOptions{})
	if !errors.Is(err, types.ErrInvalidParameter) {
		t.Errorf("duplicate: error = %v", err)
	}

	// Missing platform and bad search type are rejected.
	if _, err := AddSource(p, types.Source{SearchType: types.SearchTypeAPI}, records.CommitOptions{}); err == nil {
		t.Error("empty platform accepted")
	}
	if _, err := AddSource(p, types.Source{Platform: "x", SearchType: "WEB"}, records.CommitOptions{}); err == nil {
		t.Error("unknown search type accepted")
	}
}

func TestAddSourceCommits(t *testing.T) {
	p := newTestProject(t)
	addTestSource(t, p, "pubmed", "q", nil)

	commits, err := p.Store.Commits()
	if err != nil {
		t.Fatal(err)
	}
	last := commits[len(commits)-1]
	if last.Message != "Add search source: pubmed" {
		t.Errorf("commit message = %q", last.Message)
	}
}

func TestUpdateSourceQueryClearsResults(t *testing.T) {
	p := newTestProject(t)
	src := addTestSource(t, p, "pubmed", "diabetes", nil)

	resultsPath := p.Abs(src.ResultsPath)
	if err := os.WriteFile(resultsPath, []byte("previous results"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := SaveHistory(p, src, time.Time{}); err != nil {
		t.Fatal(err)
	}

	newQuery := "diabetes AND exercise"
	updated, err := UpdateSource(p, "pubmed.bib", &newQuery, nil, records.CommitOptions{})
	if err != nil {
		t.Fatalf("UpdateSource: %v", err)
	}
	if updated.Query != newQuery {
		t.Errorf("query = %q", updated.Query)
	}

	data, err := os.ReadFile(resultsPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("results file not cleared: %q", data)
	}

	// The snapshot no longer matches, so the source is stale again.
	stale, reason, err := CheckStaleness(p, *updated)
	if err != nil {
		t.Fatal(err)
	}
	if !stale || reason != ReasonQueryChanged {
		t.Errorf("stale=%v reason=%q", stale, reason)
	}
}

func TestUpdateSourceMergesParameters(t *testing.T) {
	p := newTestProject(t)
	addTestSource(t, p, "pubmed", "q", map[string]any{"years": "2020", "lang": "en"})

	src, err := UpdateSource(p, "pubmed.bib", nil, map[string]any{"years": "2021"}, records.CommitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if src.Parameters["years"] != "2021" || src.Parameters["lang"] != "en" {
		t.Errorf("parameters = %v", src.Parameters)
	}
}

func TestRemoveSource(t *testing.T) {
	p := newTestProject(t)
	src := addTestSource(t, p, "pubmed", "q", nil)
	if err := SaveHistory(p, src, time.Time{}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p.Abs(src.ResultsPath), []byte("results"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RemoveSource(p, "pubmed.bib", false, records.CommitOptions{}); err != nil {
		t.Fatalf("RemoveSource: %v", err)
	}
	if len(p.Settings.Sources) != 0 {
		t.Errorf("sources = %d", len(p.Settings.Sources))
	}
	if _, err := os.Stat(p.Abs(src.HistoryPath())); !os.IsNotExist(err) {
		t.Error("run history not deleted")
	}
	// Results file kept unless deletion is requested.
	if _, err := os.Stat(p.Abs(src.ResultsPath)); err != nil {
		t.Error("results file should survive removal by default")
	}

	if err := RemoveSource(p, "pubmed.bib", false, records.CommitOptions{}); err == nil {
		t.Error("removing a missing source should fail")
	}
}
