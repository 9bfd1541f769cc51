// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/internal/search"
	"github.com/pdiddy/review-engine/pkg/types"
)

// SearchResult is one entry returned by a connector. LocalID must be
// stable across runs of the same source so origins stay deterministic.
type SearchResult struct {
	LocalID   string
	EntryType string
	Fields    map[string]string
}

// Connector retrieves results for one search source. Implementations
// wrap a platform API or a local results file.
type Connector interface {
	Search(ctx context.Context, src types.Source) ([]SearchResult, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context, src types.Source) ([]SearchResult, error)

func (f ConnectorFunc) Search(ctx context.Context, src types.Source) ([]SearchResult, error) {
	return f(ctx, src)
}

type searchExecutor struct {
	connectors map[string]Connector
}

// Run queries every selected source that is stale (or all of them when
// Rerun is set), appends the retrieved entries as md_retrieved records,
// and refreshes each source's run snapshot. Entries whose origin is
// already present on some record are skipped. Snapshots are written only
// after the retrieved records are saved and committed, so a failed run
// leaves every source stale.
func (e *searchExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	if len(p.Settings.Sources) == 0 {
		return nil, &types.InvalidParameterError{Param: "sources", Message: "no search sources configured"}
	}

	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}
	known := knownOrigins(recs)

	changed := map[string]*types.Record{}
	var searched []types.Source
	retrieved := 0
	for _, src := range p.Settings.Sources {
		if opts.Source != "" && filepath.Base(src.ResultsPath) != opts.Source && src.ResultsPath != opts.Source {
			continue
		}
		if !opts.Rerun {
			stale, _, err := search.CheckStaleness(p, src)
			if err != nil {
				return nil, err
			}
			if !stale {
				continue
			}
		}
		conn, ok := e.connectors[src.Platform]
		if !ok {
			return nil, &types.InvalidParameterError{Param: "platform", Message: fmt.Sprintf("no connector for platform %s", src.Platform)}
		}
		results, err := conn.Search(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("search %s: %w", src.Platform, err)
		}
		for _, res := range results {
			origin := filepath.Base(src.ResultsPath) + "/" + res.LocalID
			if known[origin] {
				continue
			}
			known[origin] = true
			rec := newRetrievedRecord(res, origin, recs)
			recs[rec.ID] = rec
			changed[rec.ID] = rec
			retrieved++
		}
		searched = append(searched, src)
	}

	if len(searched) == 0 {
		return &Result{Operation: types.OpSearch, Message: "All sources up to date"}, nil
	}

	msg := fmt.Sprintf("Search: %d record(s) retrieved from %d source(s)", retrieved, len(searched))
	if err := records.SaveAndCommit(p, changed, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	for _, src := range searched {
		if err := search.SaveHistory(p, src, time.Time{}); err != nil {
			return nil, err
		}
	}
	return &Result{
		Operation: types.OpSearch,
		Processed: retrieved,
		Remaining: 0,
		Message:   msg,
	}, nil
}

func knownOrigins(recs map[string]*types.Record) map[string]bool {
	known := map[string]bool{}
	for _, rec := range recs {
		for _, o := range rec.Origin {
			known[o] = true
		}
	}
	return known
}

// newRetrievedRecord builds a fresh md_retrieved record for a search
// result, deriving a record ID that does not collide with the set.
func newRetrievedRecord(res SearchResult, origin string, existing map[string]*types.Record) *types.Record {
	id := res.LocalID
	if id == "" {
		id = strings.ReplaceAll(origin, "/", "_")
	}
	base := id
	for i := 2; ; i++ {
		if _, ok := existing[id]; !ok {
			break
		}
		id = fmt.Sprintf("%s_%d", base, i)
	}

	entryType := res.EntryType
	if entryType == "" {
		entryType = "misc"
	}
	rec := &types.Record{
		ID:                   id,
		EntryType:            entryType,
		Status:               types.StatusMdRetrieved,
		Origin:               []string{origin},
		Fields:               map[string]string{},
		MasterdataProvenance: map[string]types.Provenance{},
		DataProvenance:       map[string]types.Provenance{},
	}
	for k, v := range res.Fields {
		rec.Fields[k] = v
		rec.MasterdataProvenance[k] = types.Provenance{Source: origin, Note: ""}
	}
	return rec
}
