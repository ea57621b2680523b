package workflow

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/helmcode/overload/pkg/api"
	"github.com/helmcode/overload/pkg/model"
)

// fakeAnalyzer records calls and returns a canned response.
type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []model.AnalysisRequest
	resp  *api.Response
	err   error
	// seenPending captures Workflow.Pending() while the call is in flight.
	wf          *Workflow
	seenPending bool
}

func (f *fakeAnalyzer) PostAnalyze(ctx context.Context, req model.AnalysisRequest) (*api.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.wf != nil {
		f.seenPending = f.wf.Pending()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingSink struct {
	pending []bool
	results []*model.AnalysisResult
	errs    []error
}

func (s *recordingSink) SetPending(p bool)                  { s.pending = append(s.pending, p) }
func (s *recordingSink) ShowResult(r *model.AnalysisResult) { s.results = append(s.results, r) }
func (s *recordingSink) ShowError(err error)                { s.errs = append(s.errs, err) }

func respond(status int, body string) *api.Response {
	return &api.Response{StatusCode: status, StatusText: http.StatusText(status), Body: []byte(body)}
}

func TestAnalyzeRejectsEmptyInputWithoutNetwork(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t  \n"} {
		fa := &fakeAnalyzer{resp: respond(200, `{}`)}
		sink := &recordingSink{}
		wf := New(fa, sink)

		_, err := wf.Analyze(context.Background(), input)
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("%q: expected EmptyInput, got %v", input, err)
		}
		if fa.callCount() != 0 {
			t.Fatalf("%q: expected no network call", input)
		}
		if len(sink.pending) != 0 {
			t.Fatalf("%q: pending must not toggle for validation errors", input)
		}
		if len(sink.errs) != 1 {
			t.Fatalf("%q: expected error to be rendered", input)
		}
	}
}

func TestAnalyzeRejectsOversizedInputWithoutNetwork(t *testing.T) {
	fa := &fakeAnalyzer{resp: respond(200, `{}`)}
	wf := New(fa, nil)

	_, err := wf.Analyze(context.Background(), strings.Repeat("a", MaxCodeSize+1))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected TooLarge, got %v", err)
	}
	if fa.callCount() != 0 {
		t.Fatalf("expected no network call")
	}
	if got := err.(*Error).Message(); got != "Code is too long. Maximum 50,000 characters allowed." {
		t.Fatalf("unexpected message %q", got)
	}

	if _, err := wf.Analyze(context.Background(), strings.Repeat("a", MaxCodeSize)); err != nil {
		t.Fatalf("input at the limit must be accepted: %v", err)
	}
}

func TestAnalyzeCountsCharactersNotBytes(t *testing.T) {
	fa := &fakeAnalyzer{resp: respond(200, `{}`)}
	wf := New(fa, nil)

	if _, err := wf.Analyze(context.Background(), strings.Repeat("é", MaxCodeSize)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeSendsTrimmedCode(t *testing.T) {
	fa := &fakeAnalyzer{resp: respond(200, `{"bugs":[]}`)}
	wf := New(fa, nil)

	if _, err := wf.Analyze(context.Background(), "  print(1)\n\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fa.calls[0].Code != "print(1)" {
		t.Fatalf("unexpected code sent: %q", fa.calls[0].Code)
	}
	if wf.LastInput() != "  print(1)\n\n" {
		t.Fatalf("unexpected last input %q", wf.LastInput())
	}
}

func TestAnalyzeStatusTaxonomy(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   *Error
		msg    string
	}{
		{"rate limited", 429, `{"detail":"slow down"}`, ErrRateLimited, "Rate limit exceeded. Please try again in a minute."},
		{"rate limited no body", 429, ``, ErrRateLimited, "Rate limit exceeded. Please try again in a minute."},
		{"invalid code", 400, `{"detail":"bad syntax"}`, ErrInvalidCode, "bad syntax"},
		{"invalid code no detail", 400, `oops`, ErrInvalidCode, "Invalid code provided"},
		{"server unavailable", 503, ``, ErrServerUnavailable, "Server error. The service may be starting up. Please try again in 30 seconds."},
		{"server error", 500, `{"detail":"Analysis failed"}`, ErrServerUnavailable, "Server error. The service may be starting up. Please try again in 30 seconds."},
		{"not found", 404, ``, ErrUnexpectedHTTPStatus, "HTTP 404: Not Found"},
		{"redirect", 302, ``, ErrUnexpectedHTTPStatus, "HTTP 302: Found"},
		{"malformed", 200, `<html>`, ErrMalformedResponse, "The API returned a response that could not be read."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &recordingSink{}
			wf := New(&fakeAnalyzer{resp: respond(tc.status, tc.body)}, sink)

			_, err := wf.Analyze(context.Background(), "x = 1")
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %s, got %v", tc.want.Kind, err)
			}
			var wfErr *Error
			if !errors.As(err, &wfErr) {
				t.Fatalf("expected *Error, got %T", err)
			}
			if wfErr.Message() != tc.msg {
				t.Fatalf("unexpected message %q", wfErr.Message())
			}
			if wf.Pending() {
				t.Fatalf("pending must be reset after failure")
			}
			if len(sink.errs) != 1 || len(sink.results) != 0 {
				t.Fatalf("expected exactly one rendered error")
			}
		})
	}
}

func TestAnalyzeNetworkError(t *testing.T) {
	transportErr := errors.New("dial tcp: connection refused")
	wf := New(&fakeAnalyzer{err: transportErr}, nil)

	_, err := wf.Analyze(context.Background(), "x = 1")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected transport error to be wrapped")
	}
	if wf.Pending() {
		t.Fatalf("pending must be reset after network failure")
	}
}

func TestAnalyzePendingLifecycle(t *testing.T) {
	fa := &fakeAnalyzer{resp: respond(200, `{"bugs":[],"analysis_time":0.42}`)}
	sink := &recordingSink{}
	wf := New(fa, sink)
	fa.wf = wf

	if wf.Pending() {
		t.Fatalf("pending must start false")
	}
	result, err := wf.Analyze(context.Background(), "x = 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fa.seenPending {
		t.Fatalf("pending must be true while the request is in flight")
	}
	if wf.Pending() {
		t.Fatalf("pending must be reset after success")
	}
	if len(sink.pending) != 2 || !sink.pending[0] || sink.pending[1] {
		t.Fatalf("unexpected pending transitions %v", sink.pending)
	}
	if len(result.Bugs) != 0 || result.AnalysisTime != 0.42 {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(sink.results) != 1 || sink.results[0] != result {
		t.Fatalf("expected result to be rendered")
	}
}

func TestAnalyzeAgainstHTTPServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bugs":[{"type":"Security","severity":"critical","line":9,"description":"eval on input","fix":"use ast.literal_eval"}],"analysis_time":2.5}`))
	}))
	defer srv.Close()

	wf := New(api.NewClient(srv.URL, 0), nil)
	result, err := wf.Analyze(context.Background(), "eval(input())")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Bugs) != 1 || result.Bugs[0].Severity != model.SeverityCritical {
		t.Fatalf("unexpected bugs %+v", result.Bugs)
	}
}

func TestRetryReusesLastInput(t *testing.T) {
	fa := &fakeAnalyzer{resp: respond(503, ``)}
	wf := New(fa, nil)

	if _, err := wf.Analyze(context.Background(), "x = 1"); !errors.Is(err, ErrServerUnavailable) {
		t.Fatalf("expected ServerUnavailable, got %v", err)
	}
	fa.resp = respond(200, `{"bugs":[]}`)
	if _, err := wf.Retry(context.Background()); err != nil {
		t.Fatalf("unexpected retry error: %v", err)
	}
	if fa.callCount() != 2 || fa.calls[1].Code != "x = 1" {
		t.Fatalf("retry must resend the same input, calls=%v", fa.calls)
	}
}

func TestSummarize(t *testing.T) {
	bugs := []model.Bug{
		{Severity: model.SeverityHigh},
		{Severity: model.SeverityHigh},
		{Severity: model.SeverityLow},
	}
	got := Summarize(bugs)
	if len(got) != 2 || got[model.SeverityHigh] != 2 || got[model.SeverityLow] != 1 {
		t.Fatalf("unexpected summary %v", got)
	}
	if len(Summarize(nil)) != 0 {
		t.Fatalf("expected empty summary")
	}
}
