package types

import (
	"regexp"
	"strings"
)

// thinkBlockRe matches one <think>...</think> region, non-greedy so multiple
// blocks in one response are split correctly.
var thinkBlockRe = regexp.MustCompile(`(?s)<think>(.*?)</think>`)

// ExtractThinking separates chain-of-thought regions from a model response.
//
// All <think>...</think> regions are concatenated in document order,
// separated by a blank line, and returned as thinking. The remaining text,
// with blocks removed and whitespace trimmed, is returned as response.
// When no blocks are present, thinking is empty and response is the input
// unchanged. Pure and stateless; used by knit/transmit handling.
func ExtractThinking(text string) (thinking string, response string) {
	matches := thinkBlockRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return "", text
	}

	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		block := strings.TrimSpace(m[1])
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	thinking = strings.Join(blocks, "\n\n")
	response = strings.TrimSpace(thinkBlockRe.ReplaceAllString(text, ""))
	return thinking, response
}

// HasThinking reports whether text contains at least one think block.
func HasThinking(text string) bool {
	return thinkBlockRe.MatchString(text)
}
