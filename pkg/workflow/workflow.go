// Package workflow drives one analysis from raw user input through the
// analysis API to a rendered result or error.
package workflow

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/helmcode/overload/pkg/api"
	"github.com/helmcode/overload/pkg/model"
	"github.com/helmcode/overload/pkg/parser"
)

// MaxCodeSize is the largest accepted submission, in characters.
const MaxCodeSize = 50000

// Analyzer is the remote analysis API.
type Analyzer interface {
	PostAnalyze(ctx context.Context, req model.AnalysisRequest) (*api.Response, error)
}

// Sink renders workflow state. It never calls back into the workflow.
type Sink interface {
	SetPending(pending bool)
	ShowResult(result *model.AnalysisResult)
	ShowError(err error)
}

type Workflow struct {
	api       Analyzer
	sink      Sink
	logger    *slog.Logger
	pending   atomic.Bool
	lastInput string
}

type Option func(*Workflow)

func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) {
		if l != nil {
			w.logger = l
		}
	}
}

// New returns a workflow bound to an API and a view sink. A nil sink
// discards all rendering.
func New(a Analyzer, sink Sink, opts ...Option) *Workflow {
	if sink == nil {
		sink = discardSink{}
	}
	w := &Workflow{
		api:    a,
		sink:   sink,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Pending reports whether an analyze call is in flight.
func (w *Workflow) Pending() bool {
	return w.pending.Load()
}

// LastInput returns the raw input of the most recent Analyze call.
func (w *Workflow) LastInput() string {
	return w.lastInput
}

// Analyze validates rawInput, submits it and renders the outcome. Any
// returned error is a *Error.
func (w *Workflow) Analyze(ctx context.Context, rawInput string) (*model.AnalysisResult, error) {
	w.lastInput = rawInput

	code := strings.TrimSpace(rawInput)
	if err := validate(code); err != nil {
		w.logger.Debug("input rejected", "kind", err.Kind, "chars", utf8.RuneCountInString(code))
		w.sink.ShowError(err)
		return nil, err
	}

	result, err := w.submit(ctx, code)
	if err != nil {
		w.logger.Debug("analysis failed", "error", err)
		w.sink.ShowError(err)
		return nil, err
	}

	w.logger.Debug("analysis complete", "bugs", len(result.Bugs), "analysis_time", result.AnalysisTime)
	w.sink.ShowResult(result)
	return result, nil
}

// Retry re-runs Analyze with the previous input.
func (w *Workflow) Retry(ctx context.Context) (*model.AnalysisResult, error) {
	return w.Analyze(ctx, w.lastInput)
}

func validate(code string) *Error {
	if code == "" {
		return &Error{Kind: KindEmptyInput}
	}
	if utf8.RuneCountInString(code) > MaxCodeSize {
		return &Error{Kind: KindTooLarge}
	}
	return nil
}

// submit holds pending for exactly the duration of the network exchange.
func (w *Workflow) submit(ctx context.Context, code string) (*model.AnalysisResult, error) {
	w.setPending(true)
	defer w.setPending(false)

	w.logger.Debug("sending analyze request", "chars", utf8.RuneCountInString(code))
	resp, err := w.api.PostAnalyze(ctx, model.AnalysisRequest{Code: code})
	if err != nil {
		return nil, &Error{Kind: KindNetworkError, Err: err}
	}
	w.logger.Debug("analyze response", "status", resp.StatusCode, "request_id", resp.RequestID)

	return interpret(resp)
}

func interpret(resp *api.Response) (*model.AnalysisResult, error) {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindRateLimited, StatusCode: resp.StatusCode}
	case resp.StatusCode == http.StatusBadRequest:
		return nil, &Error{Kind: KindInvalidCode, Detail: parser.ParseErrorDetail(resp.Body), StatusCode: resp.StatusCode}
	case resp.StatusCode >= 500:
		return nil, &Error{Kind: KindServerUnavailable, StatusCode: resp.StatusCode, StatusText: resp.StatusText}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &Error{Kind: KindUnexpectedHTTPStatus, StatusCode: resp.StatusCode, StatusText: resp.StatusText}
	}

	result, err := parser.ParseAnalyzeResponse(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindMalformedResponse, StatusCode: resp.StatusCode, Err: err}
	}
	return result, nil
}

func (w *Workflow) setPending(p bool) {
	w.pending.Store(p)
	w.sink.SetPending(p)
}

// Summarize counts bugs per severity.
func Summarize(bugs []model.Bug) map[model.Severity]int {
	counts := make(map[model.Severity]int)
	for _, bug := range bugs {
		counts[bug.Severity]++
	}
	return counts
}

type discardSink struct{}

func (discardSink) SetPending(bool)                  {}
func (discardSink) ShowResult(*model.AnalysisResult) {}
func (discardSink) ShowError(error)                  {}
