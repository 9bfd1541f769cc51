// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/review-engine/internal/ops"
	"github.com/pdiddy/review-engine/internal/records"
	"github.com/pdiddy/review-engine/pkg/types"
)

var pdfCmd = &cobra.Command{
	Use:   "pdf",
	Short: "Manage PDF retrieval for records",
}

var pdfQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List records whose PDF needs manual retrieval",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printQueue(cmd, types.OpPdfGet)
	},
}

var pdfAttachCmd = &cobra.Command{
	Use:   "attach <id> <path>",
	Short: "Attach a manually retrieved PDF to a record",
	Long: `Attach records a project-relative PDF path on a record. Attaching a
replacement PDF to a record that failed preparation resets it so the file
is prepared again.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		rec, err := ops.AttachPDF(p, args[0], args[1], records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", rec.ID, rec.Status)
		return nil
	},
}

var pdfNotAvailableCmd = &cobra.Command{
	Use:   "not-available <id>",
	Short: "Mark a record's PDF as unobtainable",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		rec, err := ops.MarkPdfNotAvailable(p, args[0], records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", rec.ID, rec.Status)
		return nil
	},
}

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <id>",
	Short: "Mark an included record as synthesized",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		rec, err := ops.Synthesize(p, args[0], records.CommitOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("%s is now %s\n", rec.ID, rec.Status)
		return nil
	},
}

func init() {
	pdfCmd.AddCommand(pdfQueueCmd)
	pdfCmd.AddCommand(pdfAttachCmd)
	pdfCmd.AddCommand(pdfNotAvailableCmd)
	rootCmd.AddCommand(pdfCmd)
	rootCmd.AddCommand(synthesizeCmd)
}
