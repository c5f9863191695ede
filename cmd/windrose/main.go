// Package main implements the windrose CLI: a four-perspective debate engine
// for decisions, driven by LLM personas over a seven-phase protocol.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"windrose/internal/config"
	"windrose/internal/logging"
)

var (
	// Global flags
	cfgPath string
	debug   bool

	// cfg is loaded once in the root PersistentPreRunE and shared by every
	// subcommand.
	cfg *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "windrose",
	Short: "windrose - debate your decisions with four compass perspectives",
	Long: `windrose runs a structured debate over a decision you are facing.

Four personas argue it out:
  north - The Navigator: long-term vision and mission alignment
  east  - The Pioneer:   innovation, upside, new opportunities
  south - The Anchor:    risk, downside, stability
  west  - The Builder:   execution, cost, feasibility

A session moves through seven phases: scope, populate, announce, rumble
(the debate rounds), knit (synthesis), interrogate (red team), and transmit
(final recommendation). Sessions persist to disk and can be paused, resumed,
cloned, and exported.

Run without arguments to open the session browser.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := cfgPath
		if path == "" {
			path = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(cfg.SessionsDir(), 0o755); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
		return logging.Initialize(cfg.LogsDir(), cfg.Logging.Enabled || debug, effectiveLogLevel())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowser()
	},
	SilenceUsage: true,
}

func effectiveLogLevel() string {
	if debug {
		return "debug"
	}
	return cfg.Logging.Level
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default ~/.windrose/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
