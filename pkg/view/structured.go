package view

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/helmcode/overload/pkg/model"
	"github.com/helmcode/overload/pkg/workflow"
	"gopkg.in/yaml.v3"
)

const (
	FormatHuman = "human"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Structured prints machine-readable output and has no pending indicator.
type Structured struct {
	out    io.Writer
	format string
}

type errorOutput struct {
	Error      string `json:"error" yaml:"error"`
	Kind       string `json:"kind,omitempty" yaml:"kind,omitempty"`
	StatusCode int    `json:"status_code,omitempty" yaml:"status_code,omitempty"`
}

func NewStructured(out io.Writer, format string) *Structured {
	return &Structured{out: out, format: format}
}

func (s *Structured) SetPending(bool) {}

func (s *Structured) ShowResult(result *model.AnalysisResult) {
	s.write(result)
}

func (s *Structured) ShowError(err error) {
	out := errorOutput{Error: ErrorMessage(err)}
	var wfErr *workflow.Error
	if errors.As(err, &wfErr) {
		out.Kind = string(wfErr.Kind)
		out.StatusCode = wfErr.StatusCode
	}
	s.write(out)
}

func (s *Structured) write(v interface{}) {
	var (
		output []byte
		err    error
	)
	switch s.format {
	case FormatYAML:
		output, err = yaml.Marshal(v)
	default:
		output, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(s.out, "failed to encode output: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, string(output))
}

// NewSink picks the sink for an output format. Unknown formats render for
// humans.
func NewSink(format string, out, errOut io.Writer) workflow.Sink {
	switch format {
	case FormatJSON, FormatYAML:
		return NewStructured(out, format)
	default:
		return NewTerminal(out, errOut)
	}
}
