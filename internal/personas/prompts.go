package personas

import (
	"fmt"
	"strings"

	"windrose/internal/types"
)

// =============================================================================
// PROMPT ASSEMBLY
// =============================================================================
// Prompts are composed from sections with a strings.Builder. The announce
// brief is built once during the announce phase and shared by every rumble
// call; later phases fold prior phase output into their user message.

// Announce builds the shared debate brief: the decision plus the roster of
// perspectives each persona will be debating against.
func Announce(decision string, roster []Persona) string {
	var b strings.Builder
	b.WriteString("DECISION UNDER DEBATE:\n")
	b.WriteString(decision)
	b.WriteString("\n\nDEBATE ROSTER:\n")
	for _, p := range roster {
		fmt.Fprintf(&b, "- %s (%s): focuses on %s\n", p.Title, p.ID, p.Stance)
	}
	b.WriteString("\nEach perspective responds independently in round 1. ")
	b.WriteString("From round 2 on, each perspective sees the others' prior arguments and must engage with them directly.")
	return b.String()
}

// Rumble builds the user message for one persona in one round. For rounds
// after the first, the other personas' prior-round responses are included so
// the personas clash rather than monologue.
func Rumble(p Persona, brief string, round int, prior []types.PersonaResponse) string {
	var b strings.Builder
	b.WriteString(brief)
	fmt.Fprintf(&b, "\n\nROUND %d.\n", round)

	if round == 1 {
		fmt.Fprintf(&b, "Give your opening position as %s.", p.Title)
		return b.String()
	}

	b.WriteString("Prior round arguments from the other perspectives:\n\n")
	for _, r := range prior {
		if r.Persona == p.ID {
			continue
		}
		if r.Error != "" || !r.Complete {
			fmt.Fprintf(&b, "[%s] (no response recorded this round)\n\n", r.Persona)
			continue
		}
		fmt.Fprintf(&b, "[%s]\n%s\n\n", r.Persona, r.Text)
	}
	fmt.Fprintf(&b, "Respond as %s: rebut what is weak, concede what is strong, and sharpen your position.", p.Title)
	return b.String()
}

// KnitSystem is the synthesis role prompt.
const KnitSystem = "You are a neutral synthesizer. Reconcile four debate perspectives into one coherent analysis. " +
	"You may reason inside <think></think> tags before your final answer; everything outside the tags is the synthesis itself."

// Knit builds the synthesis request from the full rumble transcript.
func Knit(decision string, rounds [][]types.PersonaResponse) string {
	var b strings.Builder
	b.WriteString("DECISION:\n")
	b.WriteString(decision)
	b.WriteString("\n\nFULL DEBATE TRANSCRIPT:\n")
	for i, round := range rounds {
		fmt.Fprintf(&b, "\n--- Round %d ---\n", i+1)
		for _, r := range round {
			if r.Error != "" || !r.Complete {
				fmt.Fprintf(&b, "\n[%s] (failed: %s)\n", r.Persona, r.Error)
				continue
			}
			fmt.Fprintf(&b, "\n[%s]\n%s\n", r.Persona, r.Text)
		}
	}
	b.WriteString("\nSynthesize the debate: where the perspectives agree, where they conflict, and which tensions are load-bearing for the decision.")
	return b.String()
}

// InterrogateSystem is the stress-test role prompt.
const InterrogateSystem = "You are a red-team interrogator. Attack a synthesis with its strongest counter-arguments, " +
	"hidden assumptions, and failure modes. Be specific and adversarial."

// Interrogate builds the stress-test request over the knit synthesis.
func Interrogate(decision, synthesis string) string {
	var b strings.Builder
	b.WriteString("DECISION:\n")
	b.WriteString(decision)
	b.WriteString("\n\nSYNTHESIS UNDER INTERROGATION:\n")
	b.WriteString(synthesis)
	b.WriteString("\n\nProduce the strongest counter-arguments against this synthesis and name the assumptions it quietly relies on.")
	return b.String()
}

// TransmitSystem is the final recommendation role prompt.
const TransmitSystem = "You are a decision advisor delivering a final recommendation. Be direct, actionable, and honest about residual uncertainty."

// Transmit builds the final recommendation request. The interrogation is
// optional: when the interrogate phase failed, the synthesis stands alone.
func Transmit(decision, synthesis, interrogation string) string {
	var b strings.Builder
	b.WriteString("DECISION:\n")
	b.WriteString(decision)
	b.WriteString("\n\nSYNTHESIS:\n")
	b.WriteString(synthesis)
	if strings.TrimSpace(interrogation) != "" {
		b.WriteString("\n\nRED-TEAM INTERROGATION:\n")
		b.WriteString(interrogation)
	}
	b.WriteString("\n\nDeliver the final recommendation: what to do, the top three reasons, the main risk to watch, and the first concrete step.")
	return b.String()
}
