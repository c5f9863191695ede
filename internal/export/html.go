package export

import (
	"bytes"
	"html/template"

	"windrose/internal/heuristics"
	"windrose/internal/types"
)

// The HTML export is a single self-contained page. Everything flows through
// html/template so session text is escaped on output as well as validated on
// input.
var htmlTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"heading": personaHeading,
	"addOne":  func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Windrose Decision Report</title>
<style>
body { font-family: Georgia, serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #1a1a2e; }
h1 { border-bottom: 3px solid #16213e; padding-bottom: .3rem; }
h2 { color: #16213e; margin-top: 2rem; }
blockquote { border-left: 4px solid #0f3460; margin: 1rem 0; padding: .5rem 1rem; background: #f4f4f8; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: .4rem .6rem; text-align: left; }
.meta { color: #555; font-size: .9rem; }
.persona { margin: 1rem 0; padding: .6rem 1rem; border: 1px solid #ddd; border-radius: 6px; }
.missing { color: #888; font-style: italic; }
pre { white-space: pre-wrap; font-family: inherit; margin: 0; }
</style>
</head>
<body>
<h1>Windrose Decision Report</h1>
<blockquote>{{.Session.Decision}}</blockquote>
<p class="meta">
Session {{.Session.ID}} &middot; {{.Session.Status}} &middot; preset {{.Session.Preset}} &middot;
{{.Session.Provider}} ({{.Session.Model}}) &middot;
{{.Session.Metrics.LLMCalls}} calls / {{.Session.Metrics.TotalTokens}} tokens
</p>

<h2>Recommendation</h2>
{{if .Recommendation}}<pre>{{.Recommendation}}</pre>{{else}}<p class="missing">(not run)</p>{{end}}

<h2>Synthesis</h2>
{{if .Synthesis}}<pre>{{.Synthesis}}</pre>{{else}}<p class="missing">(not run)</p>{{end}}

<h2>Red-Team Interrogation</h2>
{{if .Interrogation}}<pre>{{.Interrogation}}</pre>{{else}}<p class="missing">{{.InterrogationNote}}</p>{{end}}

<h2>Debate Transcript</h2>
{{if .Rounds}}{{range $i, $round := .Rounds}}
<h3>Round {{addOne $i}}</h3>
{{range $round}}
<div class="persona">
<strong>{{heading $.Session.Preset .Persona}}</strong>
{{if .Complete}}<pre>{{.Text}}</pre>{{else if .Error}}<p class="missing">no response: {{.Error}}</p>{{else}}<p class="missing">(not run)</p>{{end}}
</div>
{{end}}{{end}}{{else}}<p class="missing">(not run)</p>{{end}}

<h2>Heuristic Signals</h2>
<table>
<tr><th>Perspective</th><th>Confidence</th><th>Bias markers</th></tr>
{{range .Analyses}}
<tr><td>{{.Persona}}</td><td>{{.Confidence}}</td><td>{{range $i, $h := .Biases}}{{if $i}}, {{end}}{{$h.Class}}{{end}}</td></tr>
{{end}}
</table>
</body>
</html>
`))

type htmlData struct {
	Session           *types.Session
	Recommendation    string
	Synthesis         string
	Interrogation     string
	InterrogationNote string
	Rounds            [][]types.PersonaResponse
	Analyses          []heuristics.PersonaAnalysis
}

func renderHTML(s *types.Session, report heuristics.Report) ([]byte, error) {
	interrogate := s.PhaseRecordFor(types.PhaseInterrogate)
	data := htmlData{
		Session:           s,
		Recommendation:    s.PhaseRecordFor(types.PhaseTransmit).Recommendations,
		Synthesis:         s.PhaseRecordFor(types.PhaseKnit).Synthesis,
		Interrogation:     interrogate.Interrogation,
		InterrogationNote: phaseOutcome(interrogate),
		Rounds:            s.PhaseRecordFor(types.PhaseRumble).Rounds,
		Analyses:          append(append([]heuristics.PersonaAnalysis{}, report.Personas...), report.Synthesis),
	}
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
