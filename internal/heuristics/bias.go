// Package heuristics runs cheap lexical analysis over debate text: known
// bias markers and a confidence score. These are advisory signals surfaced in
// exports and the TUI, never inputs back into the debate itself.
package heuristics

import (
	"sort"
	"strings"
)

// BiasClass names a reasoning-bias family detected by marker phrases.
type BiasClass string

const (
	BiasSunkCost       BiasClass = "sunk-cost"
	BiasBandwagon      BiasClass = "bandwagon"
	BiasConfirmation   BiasClass = "confirmation"
	BiasAnchoring      BiasClass = "anchoring"
	BiasOverconfidence BiasClass = "overconfidence"
)

// biasMarkers maps each class to the lowercase phrases that signal it.
// Markers are deliberately narrow: a false negative is cheap, a false
// positive erodes trust in the whole report.
var biasMarkers = map[BiasClass][]string{
	BiasSunkCost: {
		"already invested",
		"too far to turn back",
		"wasted if we stop",
		"come this far",
		"sunk cost",
	},
	BiasBandwagon: {
		"everyone is doing",
		"everyone else is",
		"all our competitors",
		"the whole industry is moving",
	},
	BiasConfirmation: {
		"proves we were right",
		"confirms our",
		"just as we predicted",
		"exactly as expected",
	},
	BiasAnchoring: {
		"the original estimate",
		"sticking to the initial",
		"as first proposed",
		"the first number",
	},
	BiasOverconfidence: {
		"guaranteed to",
		"cannot fail",
		"without a doubt",
		"zero risk",
		"no chance of failure",
	},
}

// BiasHit is one detected marker with enough surrounding text to judge it.
type BiasHit struct {
	Class   BiasClass `json:"class"`
	Phrase  string    `json:"phrase"`
	Context string    `json:"context"`
}

// contextRadius is how many bytes of surrounding text each hit carries.
const contextRadius = 60

// ScanBias returns every bias marker found in text, at most one hit per
// phrase, ordered by class then phrase for stable output.
func ScanBias(text string) []BiasHit {
	lower := strings.ToLower(text)
	var hits []BiasHit
	for class, phrases := range biasMarkers {
		for _, phrase := range phrases {
			idx := strings.Index(lower, phrase)
			if idx < 0 {
				continue
			}
			hits = append(hits, BiasHit{
				Class:   class,
				Phrase:  phrase,
				Context: snippet(text, idx, len(phrase)),
			})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Class != hits[j].Class {
			return hits[i].Class < hits[j].Class
		}
		return hits[i].Phrase < hits[j].Phrase
	})
	return hits
}

// snippet extracts the marker with surrounding context, trimmed to rune
// boundaries so multi-byte text never splits mid-character.
func snippet(text string, idx, length int) string {
	start := idx - contextRadius
	for start > 0 && !isRuneStart(text[start]) {
		start--
	}
	if start < 0 {
		start = 0
	}
	end := idx + length + contextRadius
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && !isRuneStart(text[end]) {
		end++
	}
	return strings.TrimSpace(text[start:end])
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
