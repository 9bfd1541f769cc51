// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the review-engine CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/review-engine/internal/project"
)

// version is set at build time via ldflags.
var version = "dev"

var logger zerolog.Logger

// rootCmd is the base command for the review-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "review-engine",
	Short: "Record-state workflow engine for systematic literature reviews",
	Long: `review-engine tracks every record of a literature review through the
review pipeline: search, load, prep, dedupe, prescreen, pdf_get, pdf_prep,
screen, and data. Each stage advances records along a fixed state lattice,
and every mutation is committed to the project's versioned store.

Run stages with "run", make per-record decisions with the prescreen, screen,
and pdf commands, and inspect progress with "status".`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.WarnLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(level).With().Timestamp().Logger()
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./review-engine.yaml or ~/.config/review-engine/config.yaml)")
	rootCmd.PersistentFlags().String("project-dir", ".", "project root directory")
	rootCmd.PersistentFlags().String("backend", "file", "record store backend (file or sqlite)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("review-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "review-engine"))
		}
	}

	viper.SetEnvPrefix("REVIEW_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// projectConfig assembles the project options from flags and config.
func projectConfig(cmd *cobra.Command) project.Config {
	dir, _ := cmd.Flags().GetString("project-dir")
	backend, _ := cmd.Flags().GetString("backend")
	if viper.IsSet("backend") && !cmd.Flags().Changed("backend") {
		backend = viper.GetString("backend")
	}
	return project.Config{
		Dir:     dir,
		Backend: project.Backend(backend),
		Logger:  logger,
	}
}

// openProject opens the project for a command and arranges for it to be
// closed when the command finishes.
func openProject(cmd *cobra.Command) (*project.Project, error) {
	p, err := project.Open(projectConfig(cmd))
	if err != nil {
		return nil, err
	}
	cobra.OnFinalize(func() { p.Close() })
	return p, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
