// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/ops"
	"github.com/pdiddy/review-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run <operation>",
	Short: "Run a pipeline stage",
	Long: `Run executes one stage of the review pipeline: search, load, prep,
dedupe, prescreen, pdf_get, pdf_prep, screen, or data. Stages only touch
records in their input states, so a run with nothing pending is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := types.ParseOperation(args[0])
		if err != nil {
			return err
		}

		p, err := openProject(cmd)
		if err != nil {
			return err
		}

		// The files connector covers FILES sources; platform API
		// connectors register here as they are implemented.
		registry, err := ops.NewRegistry(map[string]ops.Connector{
			"files": ops.FilesConnector{Dir: p.Dir},
		})
		if err != nil {
			return err
		}

		source, _ := cmd.Flags().GetString("source")
		rerun, _ := cmd.Flags().GetBool("rerun")
		includeAll, _ := cmd.Flags().GetBool("include-all")
		skipCommit, _ := cmd.Flags().GetBool("skip-commit")

		res, err := registry.Run(context.Background(), p, op, ops.RunOptions{
			Source:     source,
			Rerun:      rerun,
			IncludeAll: includeAll,
			SkipCommit: skipCommit,
		})
		if err != nil {
			return err
		}
		fmt.Println(res.Message)
		return nil
	},
}

func init() {
	runCmd.Flags().String("source", "", "restrict search to one source by results filename")
	runCmd.Flags().Bool("rerun", false, "search sources even when they are not stale")
	runCmd.Flags().Bool("include-all", false, "include every pending record in prescreen or screen")
	runCmd.Flags().Bool("skip-commit", false, "save without committing")

	rootCmd.AddCommand(runCmd)
}
