// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/internal/search"
	"github.com/pdiddy/review-engine/pkg/types"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage search sources (add, list, update, remove)",
	Long: `Source manages the project's search source registry. Each source pairs
a platform with a results file, a query, and optional parameters. Changing a
source's query invalidates its previous results.`,
}

// --- add subcommand ---

var sourceAddCmd = &cobra.Command{
	Use:   "add <platform>",
	Short: "Register a new search source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}

		query, _ := cmd.Flags().GetString("query")
		searchTypeFlag, _ := cmd.Flags().GetString("type")
		searchType, err := types.ParseSearchType(searchTypeFlag)
		if err != nil {
			return err
		}
		params, err := parseParams(cmd)
		if err != nil {
			return err
		}

		src, err := search.AddSource(p, types.Source{
			Platform:   args[0],
			SearchType: searchType,
			Query:      query,
			Parameters: params,
		}, records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("Added source %s (%s)\n", src.Platform, src.ResultsPath)
		return nil
	},
}

// --- list subcommand ---

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered search sources and their staleness",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		if len(p.Settings.Sources) == 0 {
			fmt.Println("No search sources configured.")
			return nil
		}
		for _, src := range p.Settings.Sources {
			stale, reason, err := search.CheckStaleness(p, src)
			if err != nil {
				return err
			}
			state := "up to date"
			if stale {
				state = reason
			}
			fmt.Printf("%-20s %-10s %-40s %s\n", src.Platform, src.SearchType, src.ResultsPath, state)
		}
		return nil
	},
}

// --- update subcommand ---

var sourceUpdateCmd = &cobra.Command{
	Use:   "update <results-file>",
	Short: "Update a source's query or parameters",
	Long: `Update changes the query or parameters of the source identified by its
results filename. A query change clears the source's previous results so the
next search starts fresh.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}

		var query *string
		if cmd.Flags().Changed("query") {
			q, _ := cmd.Flags().GetString("query")
			query = &q
		}
		params, err := parseParams(cmd)
		if err != nil {
			return err
		}

		src, err := search.UpdateSource(p, args[0], query, params, records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("Updated source %s\n", src.Platform)
		return nil
	},
}

// --- remove subcommand ---

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove <results-file>",
	Short: "Remove a search source",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		deleteFile, _ := cmd.Flags().GetBool("delete-results")
		if err := search.RemoveSource(p, args[0], deleteFile, records.CommitOptions{}); err != nil {
			return err
		}
		fmt.Printf("Removed source %s\n", args[0])
		return nil
	},
}

// parseParams turns repeated --param key=value flags into a parameter
// map, or nil when none were given.
func parseParams(cmd *cobra.Command) (map[string]any, error) {
	pairs, _ := cmd.Flags().GetStringArray("param")
	if len(pairs) == 0 {
		return nil, nil
	}
	params := map[string]any{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}

func init() {
	sourceAddCmd.Flags().String("query", "", "search query string")
	sourceAddCmd.Flags().String("type", "API", "search type (DB, API, BACKWARD, FORWARD, TOC, OTHER, FILES, MD)")
	sourceAddCmd.Flags().StringArray("param", nil, "source parameter as key=value (repeatable)")

	sourceUpdateCmd.Flags().String("query", "", "new search query string")
	sourceUpdateCmd.Flags().StringArray("param", nil, "parameter to merge as key=value (repeatable)")

	sourceRemoveCmd.Flags().Bool("delete-results", false, "also delete the source's results file")

	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceUpdateCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}
