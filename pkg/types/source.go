// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
)

// SearchType classifies how a source retrieves records.
type SearchType string

const (
	SearchTypeDB       SearchType = "DB"
	SearchTypeAPI      SearchType = "API"
	SearchTypeBackward SearchType = "BACKWARD"
	SearchTypeForward  SearchType = "FORWARD"
	SearchTypeTOC      SearchType = "TOC"
	SearchTypeOther    SearchType = "OTHER"
	SearchTypeFiles    SearchType = "FILES"
	SearchTypeMD       SearchType = "MD"
)

// searchTypes lists the valid search types.
var searchTypes = []SearchType{
	SearchTypeDB, SearchTypeAPI, SearchTypeBackward, SearchTypeForward,
	SearchTypeTOC, SearchTypeOther, SearchTypeFiles, SearchTypeMD,
}

// ParseSearchType validates a wire-format search type.
func ParseSearchType(s string) (SearchType, error) {
	for _, t := range searchTypes {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, 0, len(searchTypes))
	for _, t := range searchTypes {
		names = append(names, string(t))
	}
	return "", &InvalidParameterError{
		Param:   "search_type",
		Message: fmt.Sprintf("invalid search_type %q, valid types: %s", s, strings.Join(names, ", ")),
	}
}

// Source is one configured origin of records: a database export, an API
// query, or an uploaded file. Sources live in the project settings and
// are mutated only through the source registry.
type Source struct {
	// Platform identifies the connector (e.g. "pubmed", "crossref", "files").
	Platform string `json:"platform" yaml:"platform"`

	// ResultsPath is the project-relative path of the retrieved results
	// file (e.g. "data/search/pubmed.bib").
	ResultsPath string `json:"results_path" yaml:"results_path"`

	// SearchType classifies the retrieval method.
	SearchType SearchType `json:"search_type" yaml:"search_type"`

	// Query is the search specification string.
	Query string `json:"query" yaml:"query"`

	// Parameters holds source-specific search parameters.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// HistoryPath derives the run-history snapshot path from the results
// path: data/search/pubmed.bib -> data/search/pubmed_search_history.json.
func (s Source) HistoryPath() string {
	ext := filepath.Ext(s.ResultsPath)
	return strings.TrimSuffix(s.ResultsPath, ext) + "_search_history.json"
}

// RunHistory is the persisted snapshot of a source's configuration at
// its last successful run. The format is JSON, one file per source,
// colocated with the results file (see Source.HistoryPath). It echoes
// the full source configuration minus the self-referential results path.
type RunHistory struct {
	Platform   string         `json:"platform"`
	SearchType SearchType     `json:"search_type"`
	Query      string         `json:"query"`
	Parameters map[string]any `json:"parameters,omitempty"`

	// LastRun is the ISO-8601 timestamp of the last completed run.
	LastRun string `json:"last_run"`
}

// ParametersEqual compares two parameter mappings by structural
// equality of the full key/value mapping. Empty and nil maps are equal.
func ParametersEqual(a, b map[string]any) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
