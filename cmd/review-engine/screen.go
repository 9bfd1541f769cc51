// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/ops"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

var prescreenCmd = &cobra.Command{
	Use:   "prescreen",
	Short: "Make prescreen decisions on processed records",
}

var prescreenQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List records awaiting a prescreen decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printQueue(cmd, types.OpPrescreen)
	},
}

var prescreenIncludeCmd = &cobra.Command{
	Use:   "include <id>",
	Short: "Include a record in the review",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return prescreenDecide(cmd, args[0], true) },
}

var prescreenExcludeCmd = &cobra.Command{
	Use:   "exclude <id>",
	Short: "Exclude a record from the review",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return prescreenDecide(cmd, args[0], false) },
}

func prescreenDecide(cmd *cobra.Command, id string, include bool) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	rec, remaining, err := ops.PrescreenDecision(p, id, include, records.CommitOptions{})
	if err != nil {
		return err
	}
	fmt.Printf("%s is now %s, %d record(s) remaining\n", rec.ID, rec.Status, remaining)
	return nil
}

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Make full-text screen decisions against the configured criteria",
}

var screenQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List records awaiting a screen decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printQueue(cmd, types.OpScreen)
	},
}

var screenDecideCmd = &cobra.Command{
	Use:   "decide <id> <criterion=in|out>...",
	Short: "Record per-criterion decisions for one record",
	Long: `Decide records an in or out decision for every configured screening
criterion. A single out excludes the record; all in includes it.`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		decisions := map[string]string{}
		for _, arg := range args[1:] {
			name, decision, ok := strings.Cut(arg, "=")
			if !ok || name == "" {
				return fmt.Errorf("invalid decision %q, expected criterion=in|out", arg)
			}
			decisions[name] = decision
		}
		rec, err := ops.ScreenDecision(p, args[0], decisions, records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", rec.ID, rec.Status)
		return nil
	},
}

var screenUpdateCmd = &cobra.Command{
	Use:   "update <id=true|false>...",
	Short: "Reverse earlier screen or prescreen outcomes",
	Long: `Update flips screen or prescreen outcomes after the fact. Each argument
names a record and whether it should be included; records already matching
the requested direction are left alone.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		include := map[string]bool{}
		for _, arg := range args {
			id, value, ok := strings.Cut(arg, "=")
			if !ok || id == "" {
				return fmt.Errorf("invalid decision %q, expected id=true|false", arg)
			}
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid decision %q: %w", arg, err)
			}
			include[id] = b
		}
		n, err := ops.UpdateScreenDecisions(p, include, records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%d record(s) updated\n", n)
		return nil
	},
}

// printQueue lists the records pending a decision for one stage.
func printQueue(cmd *cobra.Command, op types.Operation) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	queue, err := ops.Queue(p, op)
	if err != nil {
		return err
	}
	if len(queue) == 0 {
		fmt.Println("Queue is empty.")
		return nil
	}
	for _, rec := range queue {
		title := rec.Fields[types.FieldTitle]
		if len(title) > 70 {
			title = title[:67] + "..."
		}
		fmt.Printf("%-25s %s\n", rec.ID, title)
	}
	fmt.Printf("\n%d record(s) pending\n", len(queue))
	return nil
}

func init() {
	prescreenCmd.AddCommand(prescreenQueueCmd)
	prescreenCmd.AddCommand(prescreenIncludeCmd)
	prescreenCmd.AddCommand(prescreenExcludeCmd)
	rootCmd.AddCommand(prescreenCmd)

	screenCmd.AddCommand(screenQueueCmd)
	screenCmd.AddCommand(screenDecideCmd)
	screenCmd.AddCommand(screenUpdateCmd)
	rootCmd.AddCommand(screenCmd)
}
