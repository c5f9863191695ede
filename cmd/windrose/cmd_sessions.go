// Package main session management commands: list, show, delete, clone.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"windrose/internal/export"
	"windrose/internal/store"
	"windrose/internal/types"
)

// =============================================================================
// SESSION MANAGEMENT COMMANDS
// =============================================================================

var (
	listStatus string
	listDays   int
	listLimit  int
	showRaw    bool
	deleteYes  bool
)

// sessionsCmd manages stored debate sessions.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored debate sessions",
	Long: `List and manage windrose sessions.

Subcommands:
  list   - List saved sessions
  show   - Render a session report in the terminal
  delete - Remove a session and its file
  clone  - Copy a session into a fresh one for re-running`,
	RunE: runSessionsList,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Render a session report in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Remove a session and its file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsCloneCmd = &cobra.Command{
	Use:   "clone <session-id>",
	Short: "Copy a session into a fresh one for re-running",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsClone,
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	f := store.Filter{WithinDays: listDays, Limit: listLimit}
	if listStatus != "" {
		f.Status = types.Status(listStatus)
	}
	sessions, err := a.store.List(f)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found. Start one with: windrose run \"<your decision>\"")
		return nil
	}

	fmt.Println("🧭 Sessions")
	fmt.Println(strings.Repeat("─", 78))
	for _, s := range sessions {
		fmt.Printf("  %s  %-9s  %-10s  %s\n",
			shortID(s.ID), s.Status, s.Preset, truncate(s.Decision, 44))
	}
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("Total: %d\n", len(sessions))
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.requireSession(args[0])
	if err != nil {
		return err
	}
	return showSession(a, s)
}

// showSession renders the markdown report, through glamour when stdout is a
// terminal worth styling.
func showSession(a *app, s *types.Session) error {
	doc, err := export.Render(s, export.FormatMarkdown)
	if err != nil {
		return err
	}
	if showRaw {
		fmt.Print(string(doc))
		return nil
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Print(string(doc))
		return nil
	}
	out, err := r.Render(string(doc))
	if err != nil {
		fmt.Print(string(doc))
		return nil
	}
	fmt.Print(out)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.requireSession(args[0])
	if err != nil {
		return err
	}

	if !deleteYes {
		fmt.Printf("Delete session %s (%s)? [y/N] ", shortID(s.ID), truncate(s.Decision, 50))
		var answer string
		if _, err := fmt.Fscanln(os.Stdin, &answer); err != nil || !strings.EqualFold(answer, "y") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	ok, err := a.store.Delete(s.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("session %s vanished before deletion", shortID(s.ID))
	}
	fmt.Printf("🗑  Session %s deleted.\n", shortID(s.ID))
	return nil
}

func runSessionsClone(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	src, err := a.requireSession(args[0])
	if err != nil {
		return err
	}
	out, err := a.store.Clone(src.ID)
	if err != nil {
		return err
	}
	if out == nil {
		return fmt.Errorf("session %s vanished before cloning", shortID(src.ID))
	}
	fmt.Printf("🧭 Cloned %s -> %s (status: %s)\n", shortID(src.ID), shortID(out.ID), out.Status)
	fmt.Printf("Run it with: windrose start %s\n", out.ID)
	return nil
}

func init() {
	sessionsListCmd.Flags().StringVar(&listStatus, "status", "", "filter by status (created, running, paused, completed, aborted, failed)")
	sessionsListCmd.Flags().IntVar(&listDays, "days", 0, "only sessions started within the last N days")
	sessionsListCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum sessions to list")
	sessionsShowCmd.Flags().BoolVar(&showRaw, "raw", false, "print raw markdown without terminal styling")
	sessionsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsCloneCmd)
	rootCmd.AddCommand(sessionsCmd)
}
