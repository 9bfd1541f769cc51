// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package records

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/review-engine/internal/project"
	"github.com/pdiddy/review-engine/pkg/types"
)

// Pagination defaults and cap for record listings.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Filter selects records for listing. Zero-valued criteria are
// inactive.
type Filter struct {
	// Statuses keeps records whose status is in the list.
	Statuses []types.Status

	// SearchSource keeps records with an origin entry containing the
	// string.
	SearchSource string

	// EntryTypes keeps records of the listed bibliographic types.
	EntryTypes []string

	// SearchText matches case-insensitively against title, abstract and
	// author.
	SearchText string

	// HasPDF filters on the presence of a file field when non-nil.
	HasPDF *bool

	// YearFrom/YearTo bound the publication year (inclusive); zero means
	// unbounded.
	YearFrom int
	YearTo   int
}

// Sort orders a listing by one field.
type Sort struct {
	// Field is one of "year", "author", "title", "status".
	Field string

	// Descending reverses the order.
	Descending bool
}

// Page bounds a listing.
type Page struct {
	Offset int
	Limit  int
}

func (f Filter) matches(r *types.Record) bool {
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if r.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SearchSource != "" {
		found := false
		for _, o := range r.Origin {
			if strings.Contains(o, f.SearchSource) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.EntryTypes) > 0 {
		found := false
		for _, et := range f.EntryTypes {
			if r.EntryType == et {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SearchText != "" {
		needle := strings.ToLower(f.SearchText)
		if !strings.Contains(strings.ToLower(r.Fields[types.FieldTitle]), needle) &&
			!strings.Contains(strings.ToLower(r.Fields[types.FieldAbstract]), needle) &&
			!strings.Contains(strings.ToLower(r.Fields[types.FieldAuthor]), needle) {
			return false
		}
	}
	if f.HasPDF != nil {
		if *f.HasPDF != (r.Fields[types.FieldFile] != "") {
			return false
		}
	}
	if f.YearFrom != 0 && year(r) < f.YearFrom {
		return false
	}
	if f.YearTo != 0 && year(r) > f.YearTo {
		return false
	}
	return true
}

// year parses the record's year field, returning 0 when absent or
// malformed.
func year(r *types.Record) int {
	y, err := strconv.Atoi(r.Fields[types.FieldYear])
	if err != nil {
		return 0
	}
	return y
}

// List returns the records matching filter, sorted and paginated, plus
// the total match count before pagination. A zero-limit page uses
// DefaultLimit; the limit is capped at MaxLimit.
func List(p *project.Project, filter Filter, sortBy Sort, page Page) (int, []*types.Record, error) {
	recs, err := p.Store.LoadAll()
	if err != nil {
		return 0, nil, err
	}

	matched := make([]*types.Record, 0, len(recs))
	for _, id := range types.SortedIDs(recs) {
		if filter.matches(recs[id]) {
			matched = append(matched, recs[id])
		}
	}
	total := len(matched)

	applySort(matched, sortBy)

	limit := page.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset := page.Offset
	if offset > len(matched) {
		offset = len(matched)
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return total, matched[offset:end], nil
}

func applySort(recs []*types.Record, s Sort) {
	if s.Field == "" {
		return
	}
	less := func(a, b *types.Record) bool {
		switch s.Field {
		case "year":
			return year(a) < year(b)
		case "status":
			return a.Status.CompletedSteps() < b.Status.CompletedSteps()
		default:
			return strings.ToLower(a.Fields[s.Field]) < strings.ToLower(b.Fields[s.Field])
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		if s.Descending {
			return less(recs[j], recs[i])
		}
		return less(recs[i], recs[j])
	})
}
