package main

import (
	"github.com/spf13/cobra"

	"windrose/internal/logging"
	"windrose/internal/store"
	"windrose/internal/tui"
)

// tuiCmd opens the session browser explicitly; the bare root command does
// the same.
var tuiCmd = &cobra.Command{
	Use:   "browse",
	Short: "Open the interactive session browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBrowser()
	},
}

func runBrowser() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	watcher, err := store.NewWatcher(cfg.SessionsDir())
	if err != nil {
		logging.StoreWarn("session watcher unavailable, live refresh disabled: %v", err)
		watcher = nil
	} else {
		defer watcher.Close()
	}

	return tui.Run(a.store, watcher)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
