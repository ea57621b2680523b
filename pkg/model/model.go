package model

import "strings"

// Severity is the ordinal importance of a reported bug.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Severities lists the known levels from most to least important.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// Rank orders severities: critical > high > medium > low > unknown.
func (s Severity) Rank() int {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

type AnalysisRequest struct {
	Code string `json:"code" yaml:"code"`
}

type Bug struct {
	Type        string   `json:"type" yaml:"type"`
	Severity    Severity `json:"severity" yaml:"severity"`
	Line        *int     `json:"line,omitempty" yaml:"line,omitempty"`
	Description string   `json:"description" yaml:"description"`
	Fix         string   `json:"fix" yaml:"fix"`
}

type AnalysisResult struct {
	Bugs         []Bug   `json:"bugs" yaml:"bugs"`
	AnalysisTime float64 `json:"analysis_time" yaml:"analysis_time"`
}

type Health struct {
	Status  string `json:"status" yaml:"status"`
	Version string `json:"version" yaml:"version"`
}
