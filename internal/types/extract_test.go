package types

import "testing"

func TestExtractThinking(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantThinking string
		wantResponse string
	}{
		{"single block", "<think>A</think>B", "A", "B"},
		{"no block", "plain", "", "plain"},
		{"block only", "<think>reasoning</think>", "reasoning", ""},
		{
			"multiple blocks concatenate in order",
			"<think>first</think>middle<think>second</think>end",
			"first\n\nsecond",
			"middleend",
		},
		{
			"surrounding whitespace trimmed from response",
			"  <think>x</think>\n\nanswer\n",
			"x",
			"answer",
		},
		{"empty block", "<think></think>answer", "", "answer"},
		{"unclosed block left alone", "<think>partial answer", "", "<think>partial answer"},
		{
			"multiline block",
			"<think>line one\nline two</think>final",
			"line one\nline two",
			"final",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thinking, response := ExtractThinking(tt.input)
			if thinking != tt.wantThinking {
				t.Errorf("thinking = %q, want %q", thinking, tt.wantThinking)
			}
			if response != tt.wantResponse {
				t.Errorf("response = %q, want %q", response, tt.wantResponse)
			}
		})
	}
}

func TestExtractThinkingNoBlockReturnsInputUnchanged(t *testing.T) {
	// Without blocks the response must not even be trimmed.
	input := "  padded plain text  "
	thinking, response := ExtractThinking(input)
	if thinking != "" {
		t.Errorf("thinking = %q, want empty", thinking)
	}
	if response != input {
		t.Errorf("response = %q, want input unchanged", response)
	}
}

func TestHasThinking(t *testing.T) {
	if !HasThinking("<think>a</think>b") {
		t.Error("HasThinking should detect a block")
	}
	if HasThinking("plain") {
		t.Error("HasThinking should not match plain text")
	}
}
