package export

import (
	"encoding/json"
	"time"

	"windrose/internal/heuristics"
	"windrose/internal/types"
)

// document is the JSON export envelope: the full session record plus the
// heuristic report, stamped with when the export was taken.
type document struct {
	ExportedAt time.Time         `json:"exported_at"`
	Session    *types.Session    `json:"session"`
	Heuristics heuristics.Report `json:"heuristics"`
}

func renderJSON(s *types.Session, report heuristics.Report) ([]byte, error) {
	doc := document{
		ExportedAt: time.Now().UTC(),
		Session:    s,
		Heuristics: report,
	}
	return json.MarshalIndent(doc, "", "  ")
}
