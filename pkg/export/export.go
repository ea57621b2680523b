package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/helmcode/overload/pkg/model"
	"github.com/helmcode/overload/pkg/workflow"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

var ErrNothingToExport = errors.New("no results to export")

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// Report is the downloadable snapshot of a rendered analysis.
type Report struct {
	Timestamp    time.Time   `json:"timestamp" yaml:"timestamp"`
	TotalIssues  int         `json:"total_issues" yaml:"total_issues"`
	CodeAnalyzed string      `json:"code_analyzed" yaml:"code_analyzed"`
	Bugs         []model.Bug `json:"bugs" yaml:"bugs"`
}

func Build(result *model.AnalysisResult, code string, now time.Time) (*Report, error) {
	if result == nil || len(result.Bugs) == 0 {
		return nil, ErrNothingToExport
	}
	return &Report{
		Timestamp:    now.UTC(),
		TotalIssues:  len(result.Bugs),
		CodeAnalyzed: code,
		Bugs:         result.Bugs,
	}, nil
}

// FileName is overload-analysis-YYYY-MM-DD.<ext>.
func FileName(format string, now time.Time) string {
	return fmt.Sprintf("overload-analysis-%s.%s", now.UTC().Format("2006-01-02"), extension(format))
}

// Write encodes the report into dir and returns the written path.
func Write(report *Report, dir, format string, now time.Time) (string, error) {
	data, err := Encode(report, format)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(format, now))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}

func Encode(report *Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return json.MarshalIndent(report, "", "  ")
	case FormatYAML:
		return yaml.Marshal(report)
	case FormatHTML:
		return renderHTML(report)
	default:
		return nil, fmt.Errorf("unsupported export format: %s (supported: json, yaml, html)", format)
	}
}

func extension(format string) string {
	switch strings.ToLower(format) {
	case FormatYAML:
		return "yaml"
	case FormatHTML:
		return "html"
	default:
		return "json"
	}
}

type htmlBug struct {
	Type        string
	Severity    string
	Line        int
	Description template.HTML
	Fix         template.HTML
}

type htmlSummary struct {
	Severity string
	Count    int
}

type htmlData struct {
	Generated   string
	TotalIssues int
	Summary     []htmlSummary
	Bugs        []htmlBug
	Code        string
}

func renderHTML(report *Report) ([]byte, error) {
	md := goldmark.New()
	markdown := func(src string) (template.HTML, error) {
		var buf bytes.Buffer
		if err := md.Convert([]byte(src), &buf); err != nil {
			return "", fmt.Errorf("render markdown: %w", err)
		}
		return template.HTML(buf.String()), nil
	}

	data := htmlData{
		Generated:   report.Timestamp.Format(time.RFC3339),
		TotalIssues: report.TotalIssues,
		Code:        report.CodeAnalyzed,
	}
	counts := workflow.Summarize(report.Bugs)
	for _, sev := range model.Severities {
		if counts[sev] > 0 {
			data.Summary = append(data.Summary, htmlSummary{Severity: string(sev), Count: counts[sev]})
		}
	}
	for _, bug := range report.Bugs {
		desc, err := markdown(bug.Description)
		if err != nil {
			return nil, err
		}
		fix, err := markdown(bug.Fix)
		if err != nil {
			return nil, err
		}
		hb := htmlBug{
			Type:        bug.Type,
			Severity:    string(bug.Severity),
			Description: desc,
			Fix:         fix,
		}
		if bug.Line != nil {
			hb.Line = *bug.Line
		}
		data.Bugs = append(data.Bugs, hb)
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Overload analysis</title>
<style>
body { font-family: -apple-system, sans-serif; max-width: 960px; margin: 2rem auto; color: #1a202c; }
.bug-item { border-left: 4px solid #64748b; padding: 0.5rem 1rem; margin: 1rem 0; }
.bug-item.critical { border-color: #dc2626; }
.bug-item.high { border-color: #ef4444; }
.bug-item.medium { border-color: #f59e0b; }
.bug-item.low { border-color: #10b981; }
.bug-severity { text-transform: uppercase; font-size: 0.75rem; }
pre { background: #f1f5f9; padding: 1rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>Found {{.TotalIssues}} issue{{if ne .TotalIssues 1}}s{{end}}</h1>
<small>Generated {{.Generated}}</small>
<p>{{range .Summary}}<span class="bug-severity {{.Severity}}">{{.Count}} {{.Severity}}</span> {{end}}</p>
<div class="bugs-list">
{{range .Bugs}}<div class="bug-item {{.Severity}}">
<div class="bug-header"><strong class="bug-type">{{.Type}}</strong> <span class="bug-severity">{{.Severity}}</span></div>
{{if .Line}}<div class="bug-line">Line {{.Line}}</div>{{end}}
<div class="bug-description">{{.Description}}</div>
<div class="bug-fix"><strong>Fix:</strong> {{.Fix}}</div>
</div>
{{end}}</div>
<h2>Code analyzed</h2>
<pre><code>{{.Code}}</code></pre>
</body>
</html>
`))
