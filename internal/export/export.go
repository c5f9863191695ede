// Package export renders completed (or partially completed) sessions into
// shareable documents. Every renderer works on a snapshot, so an export taken
// while the engine is mid-run is internally consistent.
package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"windrose/internal/heuristics"
	"windrose/internal/types"
)

// Format identifies an output renderer.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// Formats returns the supported format names, sorted.
func Formats() []string {
	names := []string{
		string(FormatMarkdown),
		string(FormatJSON),
		string(FormatText),
		string(FormatHTML),
	}
	sort.Strings(names)
	return names
}

// ParseFormat resolves a user-supplied format name, accepting the common
// file-extension spellings.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", &types.ValidationError{
			Field:  "format",
			Reason: fmt.Sprintf("unknown format %q (valid: %s)", name, strings.Join(Formats(), ", ")),
		}
	}
}

// Extension returns the filename extension for a format.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatJSON:
		return "json"
	case FormatHTML:
		return "html"
	default:
		return "txt"
	}
}

// Render produces the document for a session snapshot in the given format.
func Render(s *types.Session, f Format) ([]byte, error) {
	snap := s.Snapshot()
	report := heuristics.Analyze(snap)
	switch f {
	case FormatMarkdown:
		return renderMarkdown(snap, report)
	case FormatJSON:
		return renderJSON(snap, report)
	case FormatText:
		return renderText(snap, report)
	case FormatHTML:
		return renderHTML(snap, report)
	default:
		return nil, &types.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q", f)}
	}
}

// DefaultFilename derives a stable export filename from the session.
func DefaultFilename(s *types.Session, f Format) string {
	short := s.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("windrose-%s.%s", short, f.Extension())
}

// notRun is the marker shown for phases that never produced output.
const notRun = "(not run)"

// phaseOutcome summarizes one phase for the renderers.
func phaseOutcome(rec *types.PhaseRecord) string {
	switch rec.Status {
	case types.PhaseCompleted:
		return "completed"
	case types.PhaseSkipped:
		if rec.Error != "" {
			return "skipped after error: " + rec.Error
		}
		return "skipped"
	case types.PhaseError:
		return "failed: " + rec.Error
	case types.PhaseRunning:
		return "in progress"
	default:
		return notRun
	}
}

// textOrNotRun substitutes the not-run marker for empty phase payloads.
func textOrNotRun(text string) string {
	if strings.TrimSpace(text) == "" {
		return notRun
	}
	return text
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}
