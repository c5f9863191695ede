package heuristics

import (
	"regexp"
	"strings"

	"windrose/internal/types"
)

// Confidence scoring counts hedging and assertive language and folds the
// balance into a 0-100 score centered on 50. The score is a rough lexical
// proxy, not a calibrated probability.

var hedgeWords = []string{
	"might", "maybe", "perhaps", "possibly", "unclear", "uncertain",
	"not sure", "hard to say", "could be", "it depends", "arguably",
}

var assertiveWords = []string{
	"clearly", "definitely", "certainly", "undoubtedly", "confident",
	"strongly recommend", "no question", "must",
}

var wordRes = buildWordRes()

func buildWordRes() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(hedgeWords)+len(assertiveWords))
	for _, w := range append(append([]string{}, hedgeWords...), assertiveWords...) {
		out[w] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}

const (
	baseConfidence  = 50
	assertiveWeight = 7
	hedgeWeight     = 6
)

// Confidence scores a piece of debate text from 0 (maximally hedged) to 100
// (maximally assertive). Empty text scores the neutral 50.
func Confidence(text string) int {
	if strings.TrimSpace(text) == "" {
		return baseConfidence
	}
	score := baseConfidence
	for _, w := range assertiveWords {
		score += assertiveWeight * len(wordRes[w].FindAllStringIndex(text, -1))
	}
	for _, w := range hedgeWords {
		score -= hedgeWeight * len(wordRes[w].FindAllStringIndex(text, -1))
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// PersonaAnalysis is the heuristic readout for one persona's contributions.
type PersonaAnalysis struct {
	Persona    string    `json:"persona"`
	Confidence int       `json:"confidence"`
	Biases     []BiasHit `json:"biases,omitempty"`
}

// Report is the per-session heuristic summary attached to exports.
type Report struct {
	Personas  []PersonaAnalysis `json:"personas,omitempty"`
	Synthesis PersonaAnalysis   `json:"synthesis"`
}

// Analyze produces the heuristic report for a session snapshot. Personas
// missing from the debate (all calls failed) are scored over empty text.
func Analyze(s *types.Session) Report {
	rumble := s.PhaseRecordFor(types.PhaseRumble)

	byPersona := make(map[string]*strings.Builder)
	for _, round := range rumble.Rounds {
		for _, r := range round {
			if !r.Complete {
				continue
			}
			b, ok := byPersona[r.Persona]
			if !ok {
				b = &strings.Builder{}
				byPersona[r.Persona] = b
			}
			b.WriteString(r.Text)
			b.WriteString("\n")
		}
	}

	var report Report
	for _, id := range s.Personas {
		text := ""
		if b, ok := byPersona[id]; ok {
			text = b.String()
		}
		report.Personas = append(report.Personas, PersonaAnalysis{
			Persona:    id,
			Confidence: Confidence(text),
			Biases:     ScanBias(text),
		})
	}

	synthesis := s.PhaseRecordFor(types.PhaseKnit).Synthesis
	report.Synthesis = PersonaAnalysis{
		Persona:    "synthesis",
		Confidence: Confidence(synthesis),
		Biases:     ScanBias(synthesis),
	}
	return report
}
