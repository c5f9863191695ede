package export

import (
	"fmt"
	"strings"

	"windrose/internal/heuristics"
	"windrose/internal/types"
)

// renderText is the plain-terminal export: no markup, fixed-width rules.
func renderText(s *types.Session, report heuristics.Report) ([]byte, error) {
	var b strings.Builder
	rule := strings.Repeat("=", 72)
	thin := strings.Repeat("-", 72)

	b.WriteString(rule + "\n")
	b.WriteString("WINDROSE DECISION REPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Decision: %s\n", s.Decision)
	fmt.Fprintf(&b, "Session:  %s\n", s.ID)
	fmt.Fprintf(&b, "Status:   %s\n", s.Status)
	fmt.Fprintf(&b, "Preset:   %s   Provider: %s (%s)\n", s.Preset, s.Provider, s.Model)
	fmt.Fprintf(&b, "Calls:    %d (%d tokens)\n\n", s.Metrics.LLMCalls, s.Metrics.TotalTokens)

	section := func(title, body string) {
		b.WriteString(thin + "\n")
		b.WriteString(strings.ToUpper(title) + "\n")
		b.WriteString(thin + "\n")
		b.WriteString(textOrNotRun(body))
		b.WriteString("\n\n")
	}

	section("Recommendation", s.PhaseRecordFor(types.PhaseTransmit).Recommendations)
	section("Synthesis", s.PhaseRecordFor(types.PhaseKnit).Synthesis)

	interrogate := s.PhaseRecordFor(types.PhaseInterrogate)
	if interrogate.Interrogation != "" {
		section("Red-Team Interrogation", interrogate.Interrogation)
	} else {
		section("Red-Team Interrogation", phaseOutcome(interrogate))
	}

	rumble := s.PhaseRecordFor(types.PhaseRumble)
	b.WriteString(thin + "\n")
	b.WriteString("DEBATE TRANSCRIPT\n")
	b.WriteString(thin + "\n")
	if len(rumble.Rounds) == 0 {
		b.WriteString(notRun + "\n\n")
	} else {
		for i, round := range rumble.Rounds {
			fmt.Fprintf(&b, "\nRound %d\n\n", i+1)
			for _, r := range round {
				fmt.Fprintf(&b, "[%s]\n", r.Persona)
				if r.Complete {
					b.WriteString(r.Text)
				} else if r.Error != "" {
					fmt.Fprintf(&b, "no response: %s", r.Error)
				} else {
					b.WriteString(notRun)
				}
				b.WriteString("\n\n")
			}
		}
	}

	b.WriteString(thin + "\n")
	b.WriteString("HEURISTIC SIGNALS\n")
	b.WriteString(thin + "\n")
	rows := append(append([]heuristics.PersonaAnalysis{}, report.Personas...), report.Synthesis)
	for _, pa := range rows {
		fmt.Fprintf(&b, "%-10s confidence=%3d", pa.Persona, pa.Confidence)
		if len(pa.Biases) > 0 {
			names := make([]string, 0, len(pa.Biases))
			for _, h := range pa.Biases {
				names = append(names, string(h.Class))
			}
			fmt.Fprintf(&b, "  biases: %s", strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	return []byte(b.String()), nil
}
