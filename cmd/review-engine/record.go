// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/enrich"
	"github.com/pdiddy/review-engine/internal/ops"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Inspect and update individual records",
}

// --- list subcommand ---

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records with filters, sorting, and pagination",
	RunE:  runRecordList,
}

func runRecordList(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	filter, err := filterFromFlags(cmd)
	if err != nil {
		return err
	}
	sortField, _ := cmd.Flags().GetString("sort")
	descending, _ := cmd.Flags().GetBool("desc")
	offset, _ := cmd.Flags().GetInt("offset")
	limit, _ := cmd.Flags().GetInt("limit")

	total, page, err := records.List(p, filter,
		records.Sort{Field: sortField, Descending: descending},
		records.Page{Offset: offset, Limit: limit})
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Total   int             `json:"total"`
			Records []*types.Record `json:"records"`
		}{total, page})
	}

	for _, rec := range page {
		title := rec.Fields[types.FieldTitle]
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Printf("%-25s %-30s %s\n", rec.ID, rec.Status, title)
	}
	fmt.Printf("\n%d of %d record(s)\n", len(page), total)
	return nil
}

func filterFromFlags(cmd *cobra.Command) (records.Filter, error) {
	var filter records.Filter

	statuses, _ := cmd.Flags().GetStringSlice("status")
	for _, s := range statuses {
		status, err := types.ParseStatus(s)
		if err != nil {
			return filter, err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	filter.SearchSource, _ = cmd.Flags().GetString("source")
	filter.EntryTypes, _ = cmd.Flags().GetStringSlice("entry-type")
	filter.SearchText, _ = cmd.Flags().GetString("text")
	filter.YearFrom, _ = cmd.Flags().GetInt("year-from")
	filter.YearTo, _ = cmd.Flags().GetInt("year-to")
	if cmd.Flags().Changed("has-pdf") {
		hasPDF, _ := cmd.Flags().GetBool("has-pdf")
		filter.HasPDF = &hasPDF
	}
	return filter, nil
}

// --- show subcommand ---

var recordShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		rec, err := records.Get(p, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	},
}

// --- update subcommand ---

var recordUpdateCmd = &cobra.Command{
	Use:   "update <id> <field=value>...",
	Short: "Update record fields",
	Long: `Update sets fields on a record. Protected fields (id, origin, and the
provenance maps) cannot be set this way.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}
		skipCommit, _ := cmd.Flags().GetBool("skip-commit")
		rec, err := records.UpdateFields(p, args[0], fields, records.CommitOptions{SkipCommit: skipCommit})
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (%s)\n", rec.ID, rec.Status)
		return nil
	},
}

// --- prep-man subcommand ---

var recordPrepManCmd = &cobra.Command{
	Use:   "prep-man <id> <field=value>...",
	Short: "Apply a manual metadata fix to a record awaiting preparation",
	Long: `Prep-man updates a record in md_needs_manual_preparation and re-checks
its quality. The record advances to md_prepared once no unacknowledged
defects remain; otherwise it stays for further fixes.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		fields, err := parseFieldArgs(args[1:])
		if err != nil {
			return err
		}
		rec, err := ops.PrepManUpdate(p, args[0], fields, "prep_man", records.CommitOptions{})
		if err != nil {
			return err
		}
		if rec.Status == types.StatusMdPrepared {
			fmt.Printf("%s prepared\n", rec.ID)
		} else {
			fmt.Printf("%s still has quality defects\n", rec.ID)
		}
		return nil
	},
}

// --- enrich subcommand ---

var recordEnrichCmd = &cobra.Command{
	Use:   "enrich <id>...",
	Short: "Enrich records with metadata from the DOI registry",
	Long: `Enrich looks up each record's DOI and fills in missing fields from the
registry. Failures are reported per record; the rest of the batch proceeds.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		res, err := ops.EnrichBatch(cmd.Context(), p, enrich.NewDOIEnricher(nil), args, records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%d enriched, %d failed\n", res.Enriched, res.Failed)
		for id, msg := range res.Errors {
			fmt.Printf("  %s: %s\n", id, msg)
		}
		return nil
	},
}

func parseFieldArgs(args []string) (map[string]string, error) {
	fields := map[string]string{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid field %q, expected field=value", arg)
		}
		fields[key] = value
	}
	return fields, nil
}

func init() {
	recordListCmd.Flags().StringSlice("status", nil, "filter by status (repeatable)")
	recordListCmd.Flags().String("source", "", "filter by origin results filename")
	recordListCmd.Flags().StringSlice("entry-type", nil, "filter by entry type (repeatable)")
	recordListCmd.Flags().String("text", "", "full-text filter over title, author, and abstract")
	recordListCmd.Flags().Int("year-from", 0, "filter by earliest publication year")
	recordListCmd.Flags().Int("year-to", 0, "filter by latest publication year")
	recordListCmd.Flags().Bool("has-pdf", false, "filter by presence of a file field")
	recordListCmd.Flags().String("sort", "", "sort field (year, author, title, status)")
	recordListCmd.Flags().Bool("desc", false, "sort descending")
	recordListCmd.Flags().Int("offset", 0, "pagination offset")
	recordListCmd.Flags().Int("limit", 0, "page size (default 50, max 500)")
	recordListCmd.Flags().Bool("json", false, "output as JSON")

	recordUpdateCmd.Flags().Bool("skip-commit", false, "save without committing")

	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordShowCmd)
	recordCmd.AddCommand(recordUpdateCmd)
	recordCmd.AddCommand(recordPrepManCmd)
	recordCmd.AddCommand(recordEnrichCmd)
	rootCmd.AddCommand(recordCmd)
}
