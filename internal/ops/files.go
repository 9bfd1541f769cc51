// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/review-engine/pkg/types"
)

// fileEntry is one entry in a manually curated results file.
type fileEntry struct {
	ID        string            `yaml:"id"`
	EntryType string            `yaml:"entry_type"`
	Fields    map[string]string `yaml:"fields"`
}

// FilesConnector reads search results from the source's results file, a
// YAML list of entries exported from a reference manager or curated by
// hand. It serves FILES sources where no platform API is involved.
type FilesConnector struct {
	// Dir is the project root the results path is resolved against.
	Dir string
}

func (c FilesConnector) Search(ctx context.Context, src types.Source) ([]SearchResult, error) {
	path := filepath.Join(c.Dir, src.ResultsPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	var entries []fileEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.ResultsPath, err)
	}

	results := make([]SearchResult, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return nil, fmt.Errorf("entry %d in %s has no id", i, src.ResultsPath)
		}
		results = append(results, SearchResult{
			LocalID:   e.ID,
			EntryType: e.EntryType,
			Fields:    e.Fields,
		})
	}
	return results, nil
}
