package personas

import (
	"errors"
	"strings"
	"testing"

	"windrose/internal/types"
)

func TestResolve(t *testing.T) {
	for _, preset := range PresetNames() {
		t.Run(preset, func(t *testing.T) {
			roster, err := Resolve(preset)
			if err != nil {
				t.Fatalf("Resolve(%q) failed: %v", preset, err)
			}
			if len(roster) != types.PersonaCount {
				t.Fatalf("roster size = %d, want %d", len(roster), types.PersonaCount)
			}
			for i, d := range Directions {
				if roster[i].ID != d {
					t.Errorf("roster[%d] = %s, want %s (protocol order)", i, roster[i].ID, d)
				}
				if roster[i].System == "" {
					t.Errorf("persona %s has empty system prompt", d)
				}
			}
		})
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	_, err := Resolve("galactic")
	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Resolve(unknown) = %v, want *types.ValidationError", err)
	}
}

func TestRumbleRoundOneHasNoPriorArguments(t *testing.T) {
	roster, _ := Resolve("balanced")
	brief := Announce("Should we expand to Singapore?", roster)
	msg := Rumble(roster[0], brief, 1, nil)
	if strings.Contains(msg, "Prior round") {
		t.Error("round 1 prompt must not reference prior rounds")
	}
	if !strings.Contains(msg, "ROUND 1") {
		t.Error("round number missing from prompt")
	}
}

func TestRumbleLaterRoundsExcludeOwnResponse(t *testing.T) {
	roster, _ := Resolve("balanced")
	brief := Announce("Should we expand to Singapore?", roster)
	prior := []types.PersonaResponse{
		{Persona: North, Round: 1, Text: "north said this", Complete: true},
		{Persona: East, Round: 1, Text: "east said this", Complete: true},
		{Persona: South, Round: 1, Text: "south said this", Complete: true},
		{Persona: West, Round: 1, Text: "west said this", Complete: true},
	}
	msg := Rumble(roster[0], brief, 2, prior)
	if strings.Contains(msg, "north said this") {
		t.Error("round 2 prompt must not echo the persona's own prior response")
	}
	for _, other := range []string{"east said this", "south said this", "west said this"} {
		if !strings.Contains(msg, other) {
			t.Errorf("round 2 prompt missing other persona text %q", other)
		}
	}
}

func TestRumbleMarksFailedPriorResponses(t *testing.T) {
	roster, _ := Resolve("balanced")
	prior := []types.PersonaResponse{
		{Persona: East, Round: 1, Error: "timeout", Complete: false},
	}
	msg := Rumble(roster[0], "brief", 2, prior)
	if !strings.Contains(msg, "no response recorded") {
		t.Error("failed prior response should be marked, not silently dropped")
	}
}

func TestKnitIncludesAllRounds(t *testing.T) {
	rounds := [][]types.PersonaResponse{
		{{Persona: North, Round: 1, Text: "r1 north", Complete: true}},
		{{Persona: North, Round: 2, Text: "r2 north", Complete: true}},
	}
	msg := Knit("Should we expand to Singapore?", rounds)
	for _, want := range []string{"Round 1", "Round 2", "r1 north", "r2 north"} {
		if !strings.Contains(msg, want) {
			t.Errorf("knit prompt missing %q", want)
		}
	}
}

func TestTransmitOmitsEmptyInterrogation(t *testing.T) {
	msg := Transmit("decision text ok", "the synthesis", "  ")
	if strings.Contains(msg, "INTERROGATION") {
		t.Error("transmit prompt must omit the interrogation section when absent")
	}
	with := Transmit("decision text ok", "the synthesis", "counterpoints")
	if !strings.Contains(with, "counterpoints") {
		t.Error("transmit prompt missing interrogation content")
	}
}
