package export

import (
	"fmt"
	"strings"

	"windrose/internal/heuristics"
	"windrose/internal/personas"
	"windrose/internal/types"
)

// renderMarkdown is the primary human-facing export. The same document feeds
// the terminal renderer in the CLI's show command.
func renderMarkdown(s *types.Session, report heuristics.Report) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Windrose Decision Report\n\n")
	fmt.Fprintf(&b, "> %s\n\n", s.Decision)
	fmt.Fprintf(&b, "- **Session**: `%s`\n", s.ID)
	fmt.Fprintf(&b, "- **Status**: %s\n", s.Status)
	fmt.Fprintf(&b, "- **Preset**: %s\n", s.Preset)
	fmt.Fprintf(&b, "- **Provider**: %s (%s)\n", s.Provider, s.Model)
	fmt.Fprintf(&b, "- **Started**: %s\n", formatTimestamp(s.Metrics.StartedAt))
	if s.Metrics.CompletedAt != nil {
		fmt.Fprintf(&b, "- **Completed**: %s\n", formatTimestamp(*s.Metrics.CompletedAt))
	}
	fmt.Fprintf(&b, "- **LLM calls**: %d (%d tokens)\n\n", s.Metrics.LLMCalls, s.Metrics.TotalTokens)

	transmit := s.PhaseRecordFor(types.PhaseTransmit)
	b.WriteString("## Recommendation\n\n")
	b.WriteString(textOrNotRun(transmit.Recommendations))
	b.WriteString("\n\n")

	knit := s.PhaseRecordFor(types.PhaseKnit)
	b.WriteString("## Synthesis\n\n")
	b.WriteString(textOrNotRun(knit.Synthesis))
	b.WriteString("\n\n")

	interrogate := s.PhaseRecordFor(types.PhaseInterrogate)
	b.WriteString("## Red-Team Interrogation\n\n")
	if interrogate.Status == types.PhaseSkipped && interrogate.Interrogation == "" {
		fmt.Fprintf(&b, "_%s_\n\n", phaseOutcome(interrogate))
	} else {
		b.WriteString(textOrNotRun(interrogate.Interrogation))
		b.WriteString("\n\n")
	}

	writeMarkdownDebate(&b, s)
	writeMarkdownHeuristics(&b, report)

	b.WriteString("## Phase Log\n\n")
	b.WriteString("| Phase | Outcome | Duration |\n")
	b.WriteString("|---|---|---|\n")
	for _, p := range types.PhaseOrder {
		rec := s.PhaseRecordFor(p)
		dur := "-"
		if rec.DurationMs > 0 {
			dur = fmt.Sprintf("%dms", rec.DurationMs)
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", p, phaseOutcome(rec), dur)
	}
	b.WriteString("\n")

	return []byte(b.String()), nil
}

func writeMarkdownDebate(b *strings.Builder, s *types.Session) {
	rumble := s.PhaseRecordFor(types.PhaseRumble)
	b.WriteString("## Debate Transcript\n\n")
	if len(rumble.Rounds) == 0 {
		fmt.Fprintf(b, "_%s_\n\n", notRun)
		return
	}
	for i, round := range rumble.Rounds {
		fmt.Fprintf(b, "### Round %d\n\n", i+1)
		for _, r := range round {
			fmt.Fprintf(b, "#### %s\n\n", personaHeading(s.Preset, r.Persona))
			if r.Complete {
				b.WriteString(r.Text)
			} else if r.Error != "" {
				fmt.Fprintf(b, "_no response: %s_", r.Error)
			} else {
				fmt.Fprintf(b, "_%s_", notRun)
			}
			b.WriteString("\n\n")
		}
	}
}

func writeMarkdownHeuristics(b *strings.Builder, report heuristics.Report) {
	b.WriteString("## Heuristic Signals\n\n")
	b.WriteString("| Perspective | Confidence | Bias markers |\n")
	b.WriteString("|---|---|---|\n")
	rows := append(append([]heuristics.PersonaAnalysis{}, report.Personas...), report.Synthesis)
	for _, pa := range rows {
		markers := "-"
		if len(pa.Biases) > 0 {
			names := make([]string, 0, len(pa.Biases))
			for _, h := range pa.Biases {
				names = append(names, string(h.Class))
			}
			markers = strings.Join(names, ", ")
		}
		fmt.Fprintf(b, "| %s | %d | %s |\n", pa.Persona, pa.Confidence, markers)
	}
	b.WriteString("\n")
}

// personaHeading renders "The Anchor (south)" when the preset resolves,
// falling back to the bare direction id.
func personaHeading(preset, direction string) string {
	p, err := personas.Lookup(preset, direction)
	if err != nil {
		return direction
	}
	return fmt.Sprintf("%s (%s)", p.Title, p.ID)
}
