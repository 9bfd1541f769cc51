// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the domain model of the review engine: records,
// the status lattice, search sources, project settings, status
// statistics, and the error taxonomy shared by all engine packages.
// See docs/ARCHITECTURE § Domain Model.
package types

import (
	"sort"
	"strings"
)

// Well-known record field names. Record.Fields is an open mapping; these
// constants name the fields the engine itself reads or writes.
const (
	FieldTitle             = "title"
	FieldAuthor            = "author"
	FieldYear              = "year"
	FieldJournal           = "journal"
	FieldBooktitle         = "booktitle"
	FieldAbstract          = "abstract"
	FieldDOI               = "doi"
	FieldFile              = "file"
	FieldScreeningCriteria = "screening_criteria"
)

// Reserved field names that may never be written through the generic
// field-update path.
const (
	FieldID             = "id"
	FieldEntryType      = "entry_type"
	FieldStatus         = "status"
	FieldOrigin         = "origin"
	FieldMdProvenance   = "masterdata_provenance"
	FieldDataProvenance = "data_provenance"
)

// ProtectedFields lists the fields that raise ProtectedFieldError when
// included in a generic update.
var ProtectedFields = []string{FieldID, FieldOrigin, FieldMdProvenance, FieldDataProvenance}

// Provenance records where a field value came from and any quality
// defect codes attached to it. Note holds a comma-joined list of defect
// codes, or the empty string when the value is clean. Codes prefixed
// "IGNORE:" are acknowledged defects and do not block preparation.
type Provenance struct {
	Source string `json:"source" yaml:"source"`
	Note   string `json:"note" yaml:"note"`
}

// Record is one bibliographic entity tracked through the review
// pipeline. Records are never hard-deleted: exclusion states retain them
// for auditability.
type Record struct {
	// ID is the stable identifier, unique within a project.
	ID string `json:"id" yaml:"id"`

	// EntryType is the bibliographic type (article, inproceedings, book, misc).
	EntryType string `json:"entry_type" yaml:"entry_type"`

	// Status is the record's position in the status lattice.
	Status Status `json:"status" yaml:"status"`

	// Origin lists "<source>/<source-local id>" entries recording which
	// search sources produced this record. Append-only across merges and
	// never empty after import.
	Origin []string `json:"origin" yaml:"origin"`

	// Fields holds the bibliographic field values.
	Fields map[string]string `json:"fields" yaml:"fields"`

	// MasterdataProvenance tracks source and defect notes per
	// bibliographic field.
	MasterdataProvenance map[string]Provenance `json:"masterdata_provenance,omitempty" yaml:"masterdata_provenance,omitempty"`

	// DataProvenance tracks source and defect notes for fields populated
	// after import (file paths, enrichment results).
	DataProvenance map[string]Provenance `json:"data_provenance,omitempty" yaml:"data_provenance,omitempty"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{
		ID:        r.ID,
		EntryType: r.EntryType,
		Status:    r.Status,
		Origin:    append([]string(nil), r.Origin...),
		Fields:    make(map[string]string, len(r.Fields)),
	}
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	if r.MasterdataProvenance != nil {
		c.MasterdataProvenance = make(map[string]Provenance, len(r.MasterdataProvenance))
		for k, v := range r.MasterdataProvenance {
			c.MasterdataProvenance[k] = v
		}
	}
	if r.DataProvenance != nil {
		c.DataProvenance = make(map[string]Provenance, len(r.DataProvenance))
		for k, v := range r.DataProvenance {
			c.DataProvenance[k] = v
		}
	}
	return c
}

// Transition moves the record to target if the transition table allows
// it from the current state, or unconditionally when force is set.
// Targeting the current state is a no-op success. Transition changes
// only the status; provenance is untouched.
func (r *Record) Transition(target Status, force bool) error {
	if !target.Valid() {
		return &InvalidParameterError{Param: "status", Message: "unknown status " + string(target)}
	}
	if r.Status == target {
		return nil
	}
	if !force && !r.Status.CanTransitionTo(target) {
		return &InvalidTransitionError{ID: r.ID, From: r.Status, To: target}
	}
	r.Status = target
	return nil
}

// AddOrigin appends an origin entry unless it is already present.
func (r *Record) AddOrigin(origin string) {
	for _, o := range r.Origin {
		if o == origin {
			return
		}
	}
	r.Origin = append(r.Origin, origin)
}

// UpdateField sets a field through the tracked path: the value is stored
// and the masterdata provenance entry for the field is replaced with the
// given source and an empty defect note. This is the path manual
// preparation uses; clearing the note is what resolves a defect.
func (r *Record) UpdateField(key, value, source string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	r.Fields[key] = value
	if r.MasterdataProvenance == nil {
		r.MasterdataProvenance = map[string]Provenance{}
	}
	r.MasterdataProvenance[key] = Provenance{Source: source, Note: ""}
}

// SetDataField sets a field populated after import and records its data
// provenance.
func (r *Record) SetDataField(key, value, source, note string) {
	if r.Fields == nil {
		r.Fields = map[string]string{}
	}
	r.Fields[key] = value
	if r.DataProvenance == nil {
		r.DataProvenance = map[string]Provenance{}
	}
	r.DataProvenance[key] = Provenance{Source: source, Note: note}
}

// Defects returns the fatal defect codes per field, parsed from the
// masterdata provenance notes. Codes prefixed "IGNORE:" are skipped.
func (r *Record) Defects() map[string][]string {
	defects := map[string][]string{}
	for field, prov := range r.MasterdataProvenance {
		var codes []string
		for _, code := range strings.Split(prov.Note, ",") {
			code = strings.TrimSpace(code)
			if code == "" || strings.HasPrefix(code, "IGNORE:") {
				continue
			}
			codes = append(codes, code)
		}
		if len(codes) > 0 {
			defects[field] = codes
		}
	}
	return defects
}

// HasFatalQualityDefects reports whether any field carries a defect code
// that is not acknowledged with the IGNORE: prefix. A record may only
// leave md_needs_manual_preparation when this is false.
func (r *Record) HasFatalQualityDefects() bool {
	return len(r.Defects()) > 0
}

// Merge absorbs dup into r during deduplication. Origins are appended,
// missing fields and provenance entries are filled from dup, and dup's
// identity disappears: r is the surviving record.
func (r *Record) Merge(dup *Record) {
	for _, o := range dup.Origin {
		r.AddOrigin(o)
	}
	for k, v := range dup.Fields {
		if _, ok := r.Fields[k]; !ok && v != "" {
			if r.Fields == nil {
				r.Fields = map[string]string{}
			}
			r.Fields[k] = v
			if prov, ok := dup.MasterdataProvenance[k]; ok {
				if r.MasterdataProvenance == nil {
					r.MasterdataProvenance = map[string]Provenance{}
				}
				r.MasterdataProvenance[k] = prov
			}
			if prov, ok := dup.DataProvenance[k]; ok {
				if r.DataProvenance == nil {
					r.DataProvenance = map[string]Provenance{}
				}
				r.DataProvenance[k] = prov
			}
		}
	}
}

// SortedIDs returns the keys of a record map in stable order, for
// deterministic commit messages and listings.
func SortedIDs(records map[string]*Record) []string {
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
