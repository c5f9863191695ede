package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"windrose/internal/export"
	"windrose/internal/personas"
)

// =============================================================================
// EXPORT AND INSPECTION COMMANDS
// =============================================================================

var (
	exportFormat string
	exportOut    string
)

// exportCmd renders a session to a file.
var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a session report to a file",
	Long: `Renders a session into a shareable document.

Formats: markdown, json, text, html. Incomplete phases are marked
"(not run)", so aborted and failed sessions export cleanly too.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// presetsCmd lists the persona presets.
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available persona presets",
	RunE:  runPresets,
}

// auditCmd shows the audited gateway calls for a session.
var auditCmd = &cobra.Command{
	Use:   "audit <session-id>",
	Short: "Show the gateway call log for a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudit,
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.requireSession(args[0])
	if err != nil {
		return err
	}

	name := exportFormat
	if name == "" {
		name = cfg.Export.Format
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	doc, err := export.Render(s, format)
	if err != nil {
		return err
	}

	out := exportOut
	if out == "" {
		out = filepath.Join(cfg.Export.OutDir, export.DefaultFilename(s, format))
	}
	if out == "-" {
		_, err = os.Stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(out, doc, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("📄 Exported session %s to %s (%s)\n", shortID(s.ID), out, format)
	return nil
}

func runPresets(cmd *cobra.Command, args []string) error {
	fmt.Println("🧭 Persona presets")
	fmt.Println(strings.Repeat("─", 78))
	for _, name := range personas.PresetNames() {
		roster, err := personas.Resolve(name)
		if err != nil {
			return err
		}
		fmt.Printf("\n  %s\n", name)
		for _, p := range roster {
			fmt.Printf("    %-5s %-14s %s\n", p.ID, p.Title, truncate(p.Stance, 50))
		}
	}
	fmt.Println()
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.requireSession(args[0])
	if err != nil {
		return err
	}
	if a.audit == nil {
		return fmt.Errorf("audit log unavailable")
	}

	calls, err := a.audit.Calls(s.ID, 0)
	if err != nil {
		return err
	}
	if len(calls) == 0 {
		fmt.Println("No gateway calls recorded for this session.")
		return nil
	}

	fmt.Printf("🧭 Gateway calls for session %s\n", shortID(s.ID))
	fmt.Println(strings.Repeat("─", 78))
	for _, c := range calls {
		target := string(c.Phase)
		if c.Persona != "" {
			target = fmt.Sprintf("%s/%s r%d", c.Phase, c.Persona, c.Round)
		}
		line := fmt.Sprintf("  %s  %-22s %6d tok  %6dms", c.CreatedAt.Format("15:04:05"), target, c.Tokens, c.DurationMs)
		if c.Error != "" {
			line += "  ✗ " + truncate(c.Error, 30)
		}
		fmt.Println(line)
	}
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format (markdown, json, text, html)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path ('-' for stdout)")
	rootCmd.AddCommand(exportCmd, presetsCmd, auditCmd)
}
