package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"windrose/internal/types"
)

// =============================================================================
// RUN AND RESUME COMMANDS
// =============================================================================

var (
	runPreset          string
	runRounds          int
	runSkipInterrogate bool
	runShowReport      bool
)

// runCmd creates a session for a decision and drives it to completion.
var runCmd = &cobra.Command{
	Use:   "run <decision>",
	Short: "Debate a decision through the full session protocol",
	Long: `Creates a session for the given decision text and runs all seven phases.

The decision must be 10-2000 characters. Press Ctrl-C once to pause the
session at the next safe boundary (resume later with 'windrose resume');
press it twice to abort.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDebate,
}

// resumeCmd continues a paused session from its checkpoint.
var resumeCmd = &cobra.Command{
	Use:   "resume <session-id>",
	Short: "Resume a paused session from its checkpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runResume,
}

// startCmd drives an existing created session, typically one made by clone.
var startCmd = &cobra.Command{
	Use:   "start <session-id>",
	Short: "Run an existing session that has not started yet",
	Args:  cobra.ExactArgs(1),
	RunE:  runStart,
}

func runDebate(cmd *cobra.Command, args []string) error {
	decision := strings.TrimSpace(strings.Join(args, " "))

	a, err := newAppWithGateway(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	rounds := runRounds
	if rounds == 0 {
		rounds = cfg.Session.Rounds
	}
	preset := runPreset
	if preset == "" {
		preset = cfg.Session.Preset
	}

	s, err := a.store.Create(decision, preset, cfg.LLM.Provider, cfg.LLM.Model, rounds)
	if err != nil {
		return err
	}
	fmt.Printf("🧭 Session %s created (preset: %s, %d rounds)\n", shortID(s.ID), preset, rounds)

	return driveSession(a, s.ID)
}

func runResume(cmd *cobra.Command, args []string) error {
	a, err := newAppWithGateway(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.requireSession(args[0])
	if err != nil {
		return err
	}
	if s.Status != types.StatusPaused {
		return fmt.Errorf("session %s is %s, only paused sessions can be resumed", shortID(s.ID), s.Status)
	}
	if s.Checkpoint.Phase != nil {
		fmt.Printf("🧭 Resuming session %s from %s\n", shortID(s.ID), *s.Checkpoint.Phase)
	}

	return driveSession(a, s.ID)
}

func runStart(cmd *cobra.Command, args []string) error {
	a, err := newAppWithGateway(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	s, err := a.requireSession(args[0])
	if err != nil {
		return err
	}
	if s.Status != types.StatusCreated {
		return fmt.Errorf("session %s is %s, only created sessions can be started", shortID(s.ID), s.Status)
	}
	return driveSession(a, s.ID)
}

// driveSession runs the engine with Ctrl-C mapped to pause, then abort.
func driveSession(a *app, id string) error {
	eng := a.newEngine(runSkipInterrogate || cfg.Session.SkipInterrogate)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	go func() {
		interrupts := 0
		for {
			select {
			case <-done:
				return
			case <-sigCh:
				interrupts++
				if interrupts == 1 {
					fmt.Println("\n⏸  Pausing at the next safe boundary (Ctrl-C again to abort)...")
					eng.Pause(id)
				} else {
					fmt.Println("\n⏹  Aborting...")
					eng.Cancel(id)
				}
			}
		}
	}()

	err := eng.Run(context.Background(), id)
	close(done)
	if err != nil {
		return err
	}

	s, getErr := a.store.Get(id)
	if getErr != nil || s == nil {
		return getErr
	}
	return reportOutcome(a, s)
}

func reportOutcome(a *app, s *types.Session) error {
	switch s.Status {
	case types.StatusCompleted:
		fmt.Printf("\n✅ Session %s completed: %d LLM calls, %d tokens, %.1fs\n\n",
			shortID(s.ID), s.Metrics.LLMCalls, s.Metrics.TotalTokens,
			float64(s.Metrics.DurationMs())/1000)
		if runShowReport {
			return showSession(a, s)
		}
		fmt.Printf("View the report with: windrose sessions show %s\n", shortID(s.ID))
		return nil
	case types.StatusPaused:
		fmt.Printf("\n⏸  Session %s paused. Resume with: windrose resume %s\n", shortID(s.ID), s.ID)
		return nil
	case types.StatusAborted:
		fmt.Printf("\n⏹  Session %s aborted. Partial results remain exportable.\n", shortID(s.ID))
		return nil
	default:
		return fmt.Errorf("session %s finished in unexpected status %s", shortID(s.ID), s.Status)
	}
}

func init() {
	runCmd.Flags().StringVarP(&runPreset, "preset", "p", "", "persona preset (balanced, startup, enterprise, personal)")
	runCmd.Flags().IntVarP(&runRounds, "rounds", "r", 0, "debate rounds (default from config)")
	runCmd.Flags().BoolVar(&runSkipInterrogate, "skip-interrogate", false, "skip the red-team interrogation phase")
	runCmd.Flags().BoolVar(&runShowReport, "show", true, "render the report after completion")
	resumeCmd.Flags().BoolVar(&runSkipInterrogate, "skip-interrogate", false, "skip the red-team interrogation phase")
	rootCmd.AddCommand(runCmd, resumeCmd, startCmd)
}
