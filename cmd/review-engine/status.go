// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/ops"
	"github.com/pdiddy/review-engine/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report review progress and the recommended next operation",
	Long: `Status aggregates the record set into per-state counts, overall
progress, and screening statistics, and recommends the next operation.
With --json the full report is printed as JSON.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	stats, err := ops.ProjectStatus(p)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	fmt.Printf("Project: %s\n", p.Settings.ProjectName)
	fmt.Printf("Records: %d (%d origin entries, %d duplicates removed)\n",
		stats.TotalRecords, stats.NrOrigins, stats.DuplicatesRemoved)
	fmt.Printf("Progress: %d/%d atomic steps\n", stats.CompletedAtomicSteps, stats.AtomicSteps)

	fmt.Println("\nCurrently:")
	for _, s := range types.AllStatuses() {
		if n := stats.Currently[s]; n > 0 {
			fmt.Printf("  %-30s %d\n", s, n)
		}
	}

	if len(stats.ScreeningStatistics) > 0 {
		fmt.Println("\nScreening exclusions:")
		names := make([]string, 0, len(stats.ScreeningStatistics))
		for name := range stats.ScreeningStatistics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-30s %d\n", name, stats.ScreeningStatistics[name])
		}
	}

	fmt.Println()
	if stats.CompletenessCondition {
		fmt.Println("Review is complete: all records are in a terminal state.")
	}
	if stats.NextOperation != "" {
		fmt.Printf("Next operation: %s\n", stats.NextOperation)
	}
	if stats.HasChanges {
		fmt.Println("Uncommitted changes present.")
	}
	return nil
}

var operationsCmd = &cobra.Command{
	Use:   "operations [operation]",
	Short: "Check which operations can run and which need a re-run",
	Long: `Operations evaluates runnability for every pipeline stage, or for a
single named stage. Stages that cannot run include the reason; stages with
pending records report how many a run would affect.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOperations,
}

func runOperations(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	var infos []*ops.OperationInfo
	if len(args) == 1 {
		op, err := types.ParseOperation(args[0])
		if err != nil {
			return err
		}
		info, err := ops.CheckOperation(p, op)
		if err != nil {
			return err
		}
		infos = append(infos, info)
	} else {
		infos, err = ops.CheckAllOperations(p)
		if err != nil {
			return err
		}
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	for _, info := range infos {
		state := "ready"
		detail := fmt.Sprintf("%d record(s)", info.Affected)
		if !info.CanRun {
			state = "blocked"
			detail = info.Reason
		} else if info.NeedsRerun && info.RerunReason != "" {
			detail = info.RerunReason
		}
		fmt.Printf("%-10s %-8s %s\n", info.Operation, state, detail)
	}
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the record set for structural problems",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		issues, err := ops.Validate(p)
		if err != nil {
			return err
		}
		if len(issues) == 0 {
			fmt.Println("No problems found.")
			return nil
		}
		for _, issue := range issues {
			fmt.Printf("%-25s %s\n", issue.RecordID, issue.Problem)
		}
		return fmt.Errorf("%d problem(s) found", len(issues))
	},
}

func init() {
	statusCmd.Flags().Bool("json", false, "output the report as JSON")
	operationsCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(operationsCmd)
	rootCmd.AddCommand(validateCmd)
}
