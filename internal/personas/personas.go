// Package personas defines the four compass debate personas, the preset
// packs that flavor them, and the prompt assembly for each protocol phase.
package personas

import (
	"fmt"
	"sort"
	"strings"

	"windrose/internal/types"
)

// The four compass directions, in protocol order.
const (
	North = "north"
	East  = "east"
	South = "south"
	West  = "west"
)

// Directions is the fixed persona roster. Every session debates with exactly
// these four, in this order.
var Directions = []string{North, East, South, West}

// Persona is one debate role: a compass direction with a stance.
type Persona struct {
	ID     string
	Title  string
	Stance string
	System string
}

// Preset flavors the four personas for a decision context.
type Preset struct {
	Name        string
	Description string
	Personas    map[string]Persona
}

// stance returns the base stance text for a direction.
func baseStance(direction string) (title, stance string) {
	switch direction {
	case North:
		return "The Navigator", "long-term vision, mission alignment, and where this decision points the ship in five years"
	case East:
		return "The Pioneer", "innovation, upside, new opportunities, and what becomes possible if this works"
	case South:
		return "The Anchor", "risk, downside, stability, and everything that can go wrong"
	case West:
		return "The Builder", "execution, cost, resourcing, and whether this can actually be delivered"
	default:
		return "", ""
	}
}

func buildPreset(name, description, context string) Preset {
	p := Preset{Name: name, Description: description, Personas: make(map[string]Persona, len(Directions))}
	for _, d := range Directions {
		title, stance := baseStance(d)
		p.Personas[d] = Persona{
			ID:     d,
			Title:  title,
			Stance: stance,
			System: fmt.Sprintf(
				"You are %s (%s), one of four debate perspectives analyzing a decision. "+
					"Your sole focus: %s. %s Argue your corner forcefully but honestly. "+
					"Concede points only when the evidence demands it. Keep responses under 400 words.",
				title, d, stance, context),
		}
	}
	return p
}

// presets is the fixed enumerated set accepted at session creation.
var presets = map[string]Preset{
	"balanced": buildPreset("balanced", "Even-handed analysis for general decisions",
		"Weigh the decision on its own merits without assuming any organizational context."),
	"startup": buildPreset("startup", "Speed and survival framing for early-stage companies",
		"Assume an early-stage company: runway is short, speed matters, and reversible bets beat perfect plans."),
	"enterprise": buildPreset("enterprise", "Process and stakeholder framing for large organizations",
		"Assume a large organization: compliance, stakeholder alignment, and reputational risk carry real weight."),
	"personal": buildPreset("personal", "Life-decision framing for individuals",
		"Assume an individual life decision: values, relationships, and wellbeing matter as much as money."),
}

// ValidPreset reports whether name is one of the enumerated preset packs.
func ValidPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// PresetNames returns the enumerated preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the four personas for a preset in protocol order.
// Fails with *types.ValidationError for unknown presets.
func Resolve(preset string) ([]Persona, error) {
	p, ok := presets[preset]
	if !ok {
		return nil, &types.ValidationError{
			Field:  "preset",
			Reason: fmt.Sprintf("unknown preset %q (valid: %s)", preset, strings.Join(PresetNames(), ", ")),
		}
	}
	out := make([]Persona, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, p.Personas[d])
	}
	return out, nil
}

// Lookup returns a single persona from a preset by direction id.
func Lookup(preset, direction string) (Persona, error) {
	all, err := Resolve(preset)
	if err != nil {
		return Persona{}, err
	}
	for _, p := range all {
		if p.ID == direction {
			return p, nil
		}
	}
	return Persona{}, &types.ValidationError{Field: "persona", Reason: fmt.Sprintf("unknown direction %q", direction)}
}
