// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Initialize a review project in the current directory",
	Long: `Init creates the project skeleton: settings.yaml, the data directory
with the record store, and the search and pdfs subdirectories. The project
name defaults to the directory name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		p, err := project.Init(projectConfig(cmd), name)
		if err != nil {
			return err
		}
		defer p.Close()
		fmt.Printf("Initialized review project %q in %s\n", p.Settings.ProjectName, p.Dir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
