package llm

import (
	"strings"
	"text/template"
	"time"
)

// DefaultHistorySize is how many past reports are quoted in a prompt.
const DefaultHistorySize = 50

// PastReport is one history entry quoted in a prompt.
type PastReport struct {
	Date    time.Time
	Content string
}

// DraftPromptData feeds the report drafting prompt.
type DraftPromptData struct {
	Format      string
	Input       string
	Style       string
	PastReports []PastReport
	Today       time.Time
	Language    string
}

// InsightsPromptData feeds the insight extraction prompt.
type InsightsPromptData struct {
	Content     string
	PastReports []PastReport
	Language    string
}

// StylePromptData feeds the writing style analysis prompt.
type StylePromptData struct {
	Content  string
	Language string
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"or": func(value, fallback string) string {
		if strings.TrimSpace(value) == "" {
			return fallback
		}
		return value
	},
}

const draftTemplate = `Write a new daily report based on the information below.

[Format]
{{ or .Format "(no format)" }}

[User input]
{{ or .Input "(no input)" }}

[Writing style of the user]
{{ or .Style "(no style notes)" }}

[Past reports]
{{- if .PastReports }}
{{- range .PastReports }}
Date: {{ date .Date }}
{{ .Content }}
---
{{ end }}
{{- else }}
No past reports.
{{ end }}
[Instructions]
1. Follow the format above.
2. Give the user input priority.
3. Imitate the user's writing style so the text reads as theirs.
4. Use the past reports as reference and write naturally.
5. Take concrete details from the past reports.
6. Use today's date ({{ date .Today }}).
{{- if .Language }}
7. Write the report in {{ .Language }}.
{{- end }}
`

const insightsTemplate = `Extract the three most important insights from the report below.
Each insight must include concrete, practical advice.
{{- if .Language }}
Answer in {{ .Language }}.
{{- end }}

Report:
{{ .Content }}

[Past reports]
{{- if .PastReports }}
{{- range .PastReports }}
Date: {{ date .Date }}
{{ .Content }}
---
{{ end }}
{{- else }}
No past reports.
{{ end }}`

const styleTemplate = `Analyze the writing style and verbal habits of the author of the text below.
Report the result in this form:
1. Tone of the writing (formal, plain, casual, ...)
2. Frequent expressions and verbal habits
3. Length and structure of sentences
4. Other distinctive traits
{{- if .Language }}
Answer in {{ .Language }}.
{{- end }}

Text to analyze:
{{ .Content }}
`

var (
	draftPrompt    = template.Must(template.New("draft").Funcs(funcs).Parse(draftTemplate))
	insightsPrompt = template.Must(template.New("insights").Funcs(funcs).Parse(insightsTemplate))
	stylePrompt    = template.Must(template.New("style").Funcs(funcs).Parse(styleTemplate))
)

// RenderDraftPrompt renders the report drafting prompt.
func RenderDraftPrompt(data DraftPromptData) (string, error) {
	if data.Today.IsZero() {
		data.Today = time.Now()
	}
	return render(draftPrompt, data)
}

// RenderInsightsPrompt renders the insight extraction prompt.
func RenderInsightsPrompt(data InsightsPromptData) (string, error) {
	return render(insightsPrompt, data)
}

// RenderStylePrompt renders the style analysis prompt.
func RenderStylePrompt(data StylePromptData) (string, error) {
	return render(stylePrompt, data)
}

func render(tmpl *template.Template, data any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
