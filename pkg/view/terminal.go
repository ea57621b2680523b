package view

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/helmcode/overload/pkg/model"
	"github.com/helmcode/overload/pkg/workflow"
)

// Terminal renders results for a human reader. The spinner goes to errOut
// so piped stdout stays clean.
type Terminal struct {
	out     io.Writer
	spinner *spinner.Spinner
}

func NewTerminal(out, errOut io.Writer) *Terminal {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(errOut))
	s.Suffix = " Analyzing code..."
	return &Terminal{out: out, spinner: s}
}

func (t *Terminal) SetPending(pending bool) {
	if pending {
		t.spinner.Start()
		return
	}
	t.spinner.Stop()
}

func (t *Terminal) ShowResult(result *model.AnalysisResult) {
	green := color.New(color.FgGreen, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(t.out)

	if len(result.Bugs) == 0 {
		green.Fprintln(t.out, "✅ No Issues Found! 🎉")
		fmt.Fprintln(t.out, "   Your code looks clean. No bugs, security issues, or bad practices detected.")
		fmt.Fprintf(t.out, "   %s\n", color.HiBlackString("Analysis completed in %.2fs", result.AnalysisTime))
		return
	}

	white.Fprintf(t.out, "🐛 Found %s\n", pluralIssues(len(result.Bugs)))
	fmt.Fprintf(t.out, "   %s\n", color.HiBlackString("Analysis completed in %.2fs", result.AnalysisTime))
	if summary := summaryLine(workflow.Summarize(result.Bugs)); summary != "" {
		fmt.Fprintf(t.out, "   %s\n", summary)
	}
	fmt.Fprintln(t.out)

	for i, bug := range result.Bugs {
		severityColor := getSeverityColor(bug.Severity)
		fmt.Fprintf(t.out, "   %d. %s %s ", i+1, getSeverityIcon(bug.Severity), bug.Type)
		severityColor.Fprintf(t.out, "[%s]\n", strings.ToUpper(string(bug.Severity)))
		if bug.Line != nil {
			fmt.Fprintf(t.out, "      📍 Line %d\n", *bug.Line)
		}
		fmt.Fprintln(t.out, wrapText(bug.Description, 80, "      "))
		if bug.Fix != "" {
			fmt.Fprintf(t.out, "      💡 Fix: %s\n", color.GreenString("%s", bug.Fix))
		}
		fmt.Fprintln(t.out)
	}

	fmt.Fprintln(t.out, strings.Repeat("─", 80))
	fmt.Fprintf(t.out, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output, --export to save a report"))
}

func (t *Terminal) ShowError(err error) {
	red := color.New(color.FgRed, color.Bold)
	fmt.Fprintln(t.out)
	red.Fprintln(t.out, "⚠️  Analysis Failed")
	fmt.Fprintf(t.out, "   %s\n", ErrorMessage(err))
}

// ErrorMessage is the user-facing text for err.
func ErrorMessage(err error) string {
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		return wfErr.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func pluralIssues(n int) string {
	if n == 1 {
		return "1 issue"
	}
	return fmt.Sprintf("%d issues", n)
}

// summaryLine lists non-zero severity counts, most severe first. Levels the
// API is not known to send are grouped under "Other".
func summaryLine(counts map[model.Severity]int) string {
	known := make(map[model.Severity]int)
	other := 0
	for sev, n := range counts {
		if !sev.Valid() {
			other += n
			continue
		}
		known[model.Severity(strings.ToLower(string(sev)))] += n
	}

	var parts []string
	for _, sev := range model.Severities {
		if n := known[sev]; n > 0 {
			label := fmt.Sprintf("%s %d %s", getSeverityIcon(sev), n, capitalize(string(sev)))
			parts = append(parts, getSeverityColor(sev).Sprint(label))
		}
	}
	if other > 0 {
		parts = append(parts, fmt.Sprintf("%s %d Other", getSeverityIcon(""), other))
	}
	return strings.Join(parts, "  ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func getSeverityColor(severity model.Severity) *color.Color {
	switch model.Severity(strings.ToLower(string(severity))) {
	case model.SeverityCritical:
		return color.New(color.FgRed, color.Bold)
	case model.SeverityHigh:
		return color.New(color.FgRed)
	case model.SeverityMedium:
		return color.New(color.FgYellow)
	case model.SeverityLow:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgWhite)
	}
}

func getSeverityIcon(severity model.Severity) string {
	switch model.Severity(strings.ToLower(string(severity))) {
	case model.SeverityCritical:
		return "🔴"
	case model.SeverityHigh:
		return "🟠"
	case model.SeverityMedium:
		return "🟡"
	case model.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
