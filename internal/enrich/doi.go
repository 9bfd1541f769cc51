// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/review-engine/internal/httputil"
	"github.com/pdiddy/review-engine/pkg/types"
)

// DefaultDOIBase is the registry queried for DOI metadata via content
// negotiation.
const DefaultDOIBase = "https://doi.org"

// DOIEnricher resolves a record's DOI against a registry and maps the
// returned CSL JSON onto record fields. Rate-limited requests are
// retried with backoff.
type DOIEnricher struct {
	Client  *http.Client
	BaseURL string
}

func NewDOIEnricher(client *http.Client) *DOIEnricher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &DOIEnricher{Client: client, BaseURL: DefaultDOIBase}
}

func (e *DOIEnricher) Name() string { return "doi.org" }

// cslItem is the subset of a CSL JSON item the enricher maps onto
// record fields.
type cslItem struct {
	Title          string `json:"title"`
	ContainerTitle string `json:"container-title"`
	Abstract       string `json:"abstract"`
	Author         []struct {
		Family string `json:"family"`
		Given  string `json:"given"`
	} `json:"author"`
	Issued struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"issued"`
}

// Enrich resolves the record's DOI and returns updates for the fields
// the registry knows and the record is missing. Records without a DOI
// fail with ErrNotEnrichable.
func (e *DOIEnricher) Enrich(ctx context.Context, rec *types.Record) ([]FieldUpdate, error) {
	doi := strings.TrimSpace(rec.Fields[types.FieldDOI])
	if doi == "" {
		return nil, fmt.Errorf("%s: %w", rec.ID, ErrNotEnrichable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.BaseURL+"/"+doi, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.citationstyles.csl+json")

	resp, err := httputil.DoWithRetry(ctx, e.Client, req, 0)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("DOI %s not registered: %w", doi, ErrNotEnrichable)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("DOI lookup for %s: unexpected status %d", doi, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	var item cslItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("DOI lookup for %s: malformed response: %w", doi, err)
	}
	return e.updates(rec, item), nil
}

// updates maps the CSL item onto record fields, filling only fields the
// record does not already have.
func (e *DOIEnricher) updates(rec *types.Record, item cslItem) []FieldUpdate {
	source := e.Name() + "/" + rec.Fields[types.FieldDOI]
	var out []FieldUpdate
	add := func(field, value string) {
		if value == "" || strings.TrimSpace(rec.Fields[field]) != "" {
			return
		}
		out = append(out, FieldUpdate{Field: field, Value: value, Source: source})
	}

	add(types.FieldTitle, item.Title)
	add(types.FieldJournal, item.ContainerTitle)
	add(types.FieldAbstract, item.Abstract)
	add(types.FieldAuthor, formatAuthors(item))
	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		add(types.FieldYear, strconv.Itoa(item.Issued.DateParts[0][0]))
	}
	return out
}

func formatAuthors(item cslItem) string {
	parts := make([]string, 0, len(item.Author))
	for _, a := range item.Author {
		switch {
		case a.Family != "" && a.Given != "":
			parts = append(parts, a.Family+", "+a.Given)
		case a.Family != "":
			parts = append(parts, a.Family)
		}
	}
	return strings.Join(parts, " and ")
}
