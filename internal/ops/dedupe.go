// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

type dedupeExecutor struct{}

// Run merges prepared records that share a DOI or a normalized title.
// The surviving record absorbs the duplicate's origins and missing
// fields, every survivor advances to md_processed, and the removed
// duplicates are counted so retrieval totals stay consistent.
func (e *dedupeExecutor) Run(ctx context.Context, p *project.Project, opts RunOptions) (*Result, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return nil, err
	}

	byKey := map[string]*types.Record{}
	removed := map[string]bool{}
	changed := map[string]*types.Record{}
	merged := 0
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusMdPrepared {
			continue
		}
		for _, key := range dedupeKeys(rec) {
			if keep, ok := byKey[key]; ok && keep.ID != rec.ID && !removed[rec.ID] {
				keep.Merge(rec)
				removed[rec.ID] = true
				changed[keep.ID] = keep
				merged++
			}
		}
		if removed[rec.ID] {
			continue
		}
		for _, key := range dedupeKeys(rec) {
			if _, ok := byKey[key]; !ok {
				byKey[key] = rec
			}
		}
	}

	processed := 0
	for _, id := range types.SortedIDs(recs) {
		rec := recs[id]
		if rec.Status != types.StatusMdPrepared || removed[rec.ID] {
			continue
		}
		if err := rec.Transition(types.StatusMdProcessed, false); err != nil {
			return nil, err
		}
		changed[rec.ID] = rec
		processed++
	}

	if merged > 0 {
		counters, err := p.Store.Counters()
		if err != nil {
			return nil, err
		}
		counters.DuplicatesRemoved += merged
		if err := p.Store.SetCounters(counters); err != nil {
			return nil, err
		}
	}

	survivors := map[string]*types.Record{}
	for id := range recs {
		if !removed[id] {
			survivors[id] = recs[id]
		}
	}
	if err := p.Store.Save(survivors, false); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Dedupe: %d record(s) processed, %d duplicate(s) merged", processed, merged)
	if err := records.SaveAndCommit(p, map[string]*types.Record{}, msg, records.CommitOptions{SkipCommit: opts.SkipCommit}); err != nil {
		return nil, err
	}
	return &Result{Operation: types.OpDedupe, Processed: processed, Message: msg}, nil
}

// dedupeKeys returns the match keys for a record. A DOI is authoritative
// when present; the normalized title is a fallback match.
func dedupeKeys(rec *types.Record) []string {
	var keys []string
	if doi := strings.TrimSpace(rec.Fields[types.FieldDOI]); doi != "" {
		keys = append(keys, "doi:"+strings.ToLower(doi))
	}
	if title := normalizeTitle(rec.Fields[types.FieldTitle]); title != "" {
		keys = append(keys, "title:"+title)
	}
	return keys
}

func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
