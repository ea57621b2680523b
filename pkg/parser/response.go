package parser

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/helmcode/overload/pkg/model"
)

// ParseAnalyzeResponse decodes a successful /analyze body. Missing bugs
// become an empty list and a missing analysis_time becomes 0.
func ParseAnalyzeResponse(body []byte) (*model.AnalysisResult, error) {
	cleaned := stripFences(string(body))

	var raw struct {
		Bugs         []model.Bug `json:"bugs"`
		AnalysisTime *float64    `json:"analysis_time"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("decode analyze response: %w", err)
	}

	result := &model.AnalysisResult{Bugs: raw.Bugs}
	if result.Bugs == nil {
		result.Bugs = []model.Bug{}
	}
	if raw.AnalysisTime != nil {
		result.AnalysisTime = *raw.AnalysisTime
	}
	return result, nil
}

// ParseErrorDetail pulls the "detail" message out of an error body. It
// returns "" when the body is not JSON or carries no usable detail.
func ParseErrorDetail(body []byte) string {
	var errBody struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &errBody); err != nil || len(errBody.Detail) == 0 {
		return ""
	}

	var detail string
	if err := json.Unmarshal(errBody.Detail, &detail); err == nil {
		return strings.TrimSpace(detail)
	}

	// FastAPI validation failures send a list of {"msg": ...} objects.
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(errBody.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, item := range items {
			if item.Msg != "" {
				msgs = append(msgs, item.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

// stripFences unwraps a body sent as a single ```json ... ``` block.
// Fences inside string values are left alone.
func stripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	_, inner, ok := strings.Cut(trimmed, "\n")
	if !ok {
		return trimmed
	}
	inner = strings.TrimSpace(inner)
	if body, found := strings.CutSuffix(inner, "```"); found {
		inner = body
	}
	return strings.TrimSpace(inner)
}
