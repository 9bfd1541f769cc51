// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ops

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/review-engine/internal/enrich"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/internal/search"
	"github.com/pdiddy/review-engine/pkg/types"
)

// TestPipeline walks a small record set through every stage, exercising
// the manual detours along the way.
func TestPipeline(t *testing.T) {
	p := newTestProject(t)
	p.Settings.Screen.Criteria = []types.ScreeningCriterion{{Name: "relevant"}}
	if _, err := search.AddSource(p, types.Source{
		Platform:   "refs",
		SearchType: types.SearchTypeFiles,
	}, records.CommitOptions{}); err != nil {
		t.Fatal(err)
	}

	resultsYAML := `
- id: Alpha2020
  entry_type: article
  fields:
    title: Alpha Study
    author: Aand, A.
    journal: Journal of Alpha
    year: "2020"
- id: Beta2021
  entry_type: book
  fields:
    title: Beta Monograph
    author: Bee, B.
    year: "2021"
- id: Gamma2022
  entry_type: book
  fields:
    title: Gamma Notes
`
	resultsPath := p.Abs(filepath.Join("data", "search", "refs.bib"))
	if err := os.WriteFile(resultsPath, []byte(resultsYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newRegistry(t, map[string]Connector{"refs": FilesConnector{Dir: p.Dir}})

	// search, load
	res := run(t, r, p, types.OpSearch, RunOptions{})
	if res.Processed != 3 {
		t.Fatalf("search retrieved %d", res.Processed)
	}
	run(t, r, p, types.OpLoad, RunOptions{})

	// prep routes the record missing author and year to manual work.
	res = run(t, r, p, types.OpPrep, RunOptions{})
	if res.Remaining != 1 {
		t.Fatalf("prep deferred %d", res.Remaining)
	}
	mustState(t, p, "Gamma2022", types.StatusMdNeedsManualPreparation)
	if _, err := PrepManUpdate(p, "Gamma2022", map[string]string{
		types.FieldAuthor: "Gee, G.",
		types.FieldYear:   "2022",
	}, "manual", records.CommitOptions{}); err != nil {
		t.Fatal(err)
	}
	mustState(t, p, "Gamma2022", types.StatusMdPrepared)

	// dedupe finds nothing to merge here.
	run(t, r, p, types.OpDedupe, RunOptions{})
	mustState(t, p, "Alpha2020", types.StatusMdProcessed)

	// prescreen: two in, one out.
	for id, include := range map[string]bool{
		"Alpha2020": true, "Beta2021": true, "Gamma2022": false,
	} {
		if _, _, err := PrescreenDecision(p, id, include, records.CommitOptions{}); err != nil {
			t.Fatalf("prescreen %s: %v", id, err)
		}
	}

	// pdf_get finds Alpha's PDF; Beta goes to manual retrieval and gets
	// one attached by hand.
	writePDF(t, p.Abs(filepath.Join("data", "pdfs", "Alpha2020.pdf")), "%PDF-1.4 alpha")
	run(t, r, p, types.OpPdfGet, RunOptions{})
	mustState(t, p, "Alpha2020", types.StatusPdfImported)
	mustState(t, p, "Beta2021", types.StatusPdfNeedsManualRetrieval)
	writePDF(t, p.Abs(filepath.Join("data", "pdfs", "beta-scan.pdf")), "%PDF-1.4 beta")
	if _, err := AttachPDF(p, "Beta2021", filepath.Join("data", "pdfs", "beta-scan.pdf"), records.CommitOptions{}); err != nil {
		t.Fatal(err)
	}

	run(t, r, p, types.OpPdfPrep, RunOptions{})
	mustState(t, p, "Alpha2020", types.StatusPdfPrepared)
	mustState(t, p, "Beta2021", types.StatusPdfPrepared)

	// screen: Alpha in, Beta out.
	if _, err := ScreenDecision(p, "Alpha2020", map[string]string{"relevant": "in"}, records.CommitOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := ScreenDecision(p, "Beta2021", map[string]string{"relevant": "out"}, records.CommitOptions{}); err != nil {
		t.Fatal(err)
	}

	run(t, r, p, types.OpData, RunOptions{})
	mustState(t, p, "Alpha2020", types.StatusRevSynthesized)
	mustState(t, p, "Beta2021", types.StatusRevExcluded)
	mustState(t, p, "Gamma2022", types.StatusRevPrescreenExcluded)

	// The project is complete: every record is terminal and nothing is
	// recommended next.
	stats, err := ProjectStatus(p)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.CompletenessCondition {
		t.Error("completeness condition not met")
	}
	if stats.NextOperation != "" {
		t.Errorf("next operation = %s", stats.NextOperation)
	}
	if stats.TotalRecords != 3 {
		t.Errorf("total records = %d", stats.TotalRecords)
	}
	if stats.HasChanges {
		t.Error("uncommitted changes after a fully committed pipeline")
	}
	if issues, err := Validate(p); err != nil || len(issues) != 0 {
		t.Errorf("validate: issues=%v err=%v", issues, err)
	}
}

func TestProjectStatusCounts(t *testing.T) {
	p := newTestProject(t)
	seed(t, p,
		rec("a", types.StatusMdRetrieved, fullFields("a")),
		rec("b", types.StatusMdImported, fullFields("b")),
	)

	stats, err := ProjectStatus(p)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Currently[types.StatusMdRetrieved] != 1 || stats.Currently[types.StatusMdImported] != 1 {
		t.Errorf("currently = %v", stats.Currently)
	}
	if stats.NextOperation != types.OpLoad {
		t.Errorf("next operation = %s", stats.NextOperation)
	}
}

func TestCheckOperation(t *testing.T) {
	p := newTestProject(t)

	info, err := CheckOperation(p, types.OpLoad)
	if err != nil {
		t.Fatal(err)
	}
	if info.CanRun {
		t.Error("load runnable with no records")
	}
	if info.Reason != "No records to load (run search first)" {
		t.Errorf("reason = %q", info.Reason)
	}

	info, err = CheckOperation(p, types.OpSearch)
	if err != nil {
		t.Fatal(err)
	}
	if info.CanRun {
		t.Error("search runnable with no sources")
	}

	seed(t, p, rec("a", types.StatusMdRetrieved, fullFields("a")))
	info, err = CheckOperation(p, types.OpLoad)
	if err != nil {
		t.Fatal(err)
	}
	if !info.CanRun {
		t.Errorf("load blocked: %q", info.Reason)
	}
	if !info.NeedsRerun || info.RerunReason != "1 record(s) pending for load" {
		t.Errorf("rerun = %v %q", info.NeedsRerun, info.RerunReason)
	}
}

func TestCheckAllOperations(t *testing.T) {
	p := newTestProject(t)
	infos, err := CheckAllOperations(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != len(types.Operations()) {
		t.Fatalf("infos = %d", len(infos))
	}
	for i, op := range types.Operations() {
		if infos[i].Operation != op {
			t.Errorf("infos[%d] = %s, want %s", i, infos[i].Operation, op)
		}
	}
}

func TestValidateFindsProblems(t *testing.T) {
	p := newTestProject(t)
	orphan := rec("orphan", types.StatusMdImported, fullFields("orphan"))
	orphan.Origin = nil
	thief := rec("thief", types.StatusMdImported, fullFields("thief"))
	thief.Origin = []string{"test.bib/victim"}
	victim := rec("victim", types.StatusMdImported, fullFields("victim"))
	defective := rec("defective", types.StatusMdProcessed, fullFields("defective"))
	defective.MasterdataProvenance = map[string]types.Provenance{
		types.FieldYear: {Source: "generic_field_requirements", Note: "missing"},
	}
	noFile := rec("nofile", types.StatusPdfImported, fullFields("nofile"))
	seed(t, p, orphan, thief, victim, defective, noFile)

	issues, err := Validate(p)
	if err != nil {
		t.Fatal(err)
	}
	problems := map[string][]string{}
	for _, issue := range issues {
		problems[issue.RecordID] = append(problems[issue.RecordID], issue.Problem)
	}
	if len(problems["orphan"]) == 0 {
		t.Error("missing-origin record not reported")
	}
	if len(problems["victim"]) == 0 && len(problems["thief"]) == 0 {
		t.Error("shared origin not reported")
	}
	if len(problems["defective"]) == 0 {
		t.Error("defective processed record not reported")
	}
	if len(problems["nofile"]) == 0 {
		t.Error("PDF state without file field not reported")
	}
}

type stubEnricher struct {
	updates map[string][]enrich.FieldUpdate
	fail    map[string]error
}

func (s *stubEnricher) Name() string { return "stub" }

func (s *stubEnricher) Enrich(ctx context.Context, rec *types.Record) ([]enrich.FieldUpdate, error) {
	if err := s.fail[rec.ID]; err != nil {
		return nil, err
	}
	return s.updates[rec.ID], nil
}

func TestEnrichBatch(t *testing.T) {
	p := newTestProject(t)
	seed(t, p,
		rec("a", types.StatusMdImported, map[string]string{types.FieldTitle: "A"}),
		rec("b", types.StatusMdImported, fullFields("b")),
		rec("c", types.StatusMdImported, fullFields("c")),
	)
	enricher := &stubEnricher{
		updates: map[string][]enrich.FieldUpdate{
			"a": {{Field: types.FieldAbstract, Value: "Found abstract", Source: "stub/a"}},
		},
		fail: map[string]error{"c": errors.New("upstream timeout")},
	}

	res, err := EnrichBatch(context.Background(), p, enricher, []string{"a", "b", "c", "ghost"}, records.CommitOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Enriched != 2 || res.Failed != 2 {
		t.Errorf("enriched=%d failed=%d", res.Enriched, res.Failed)
	}
	if res.Errors["c"] != "upstream timeout" {
		t.Errorf("errors[c] = %q", res.Errors["c"])
	}
	if _, ok := res.Errors["ghost"]; !ok {
		t.Error("missing record not reported")
	}

	got, _ := records.Get(p, "a")
	if got.Fields[types.FieldAbstract] != "Found abstract" {
		t.Errorf("abstract = %q", got.Fields[types.FieldAbstract])
	}
	if got.MasterdataProvenance[types.FieldAbstract].Source != "stub/a" {
		t.Errorf("provenance = %+v", got.MasterdataProvenance[types.FieldAbstract])
	}

	commits, _ := p.Store.Commits()
	if msg := commits[len(commits)-1].Message; msg != "Enrich records (stub): 2 enriched, 2 failed" {
		t.Errorf("commit = %q", msg)
	}
}

func TestEnrichBatchNoIDs(t *testing.T) {
	p := newTestProject(t)
	if _, err := EnrichBatch(context.Background(), p, &stubEnricher{}, nil, records.CommitOptions{}); err == nil {
		t.Error("empty batch accepted")
	}
}

func TestFilesConnector(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data", "search"), 0o755); err != nil {
		t.Fatal(err)
	}
	src := types.Source{Platform: "refs", ResultsPath: filepath.Join("data", "search", "refs.bib")}
	conn := FilesConnector{Dir: dir}

	// Missing file means no results, not an error.
	results, err := conn.Search(context.Background(), src)
	if err != nil || results != nil {
		t.Errorf("missing file: results=%v err=%v", results, err)
	}

	content := `
- id: One2020
  entry_type: article
  fields:
    title: One
- id: Two2021
  fields:
    title: Two
`
	if err := os.WriteFile(filepath.Join(dir, src.ResultsPath), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	results, err = conn.Search(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].LocalID != "One2020" || results[0].EntryType != "article" {
		t.Errorf("results[0] = %+v", results[0])
	}
	if results[0].Fields[types.FieldTitle] != "One" {
		t.Errorf("fields = %v", results[0].Fields)
	}

	// An entry without an id rejects the file.
	bad := "- entry_type: article\n  fields:\n    title: Anonymous\n"
	if err := os.WriteFile(filepath.Join(dir, src.ResultsPath), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Search(context.Background(), src); err == nil {
		t.Error("entry without id accepted")
	}
}
