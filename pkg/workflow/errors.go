package workflow

import (
	"fmt"
)

// Kind classifies why an analysis did not produce a result.
type Kind string

const (
	KindEmptyInput           Kind = "EmptyInput"
	KindTooLarge             Kind = "TooLarge"
	KindNetworkError         Kind = "NetworkError"
	KindRateLimited          Kind = "RateLimited"
	KindInvalidCode          Kind = "InvalidCode"
	KindServerUnavailable    Kind = "ServerUnavailable"
	KindUnexpectedHTTPStatus Kind = "UnexpectedHttpStatus"
	KindMalformedResponse    Kind = "MalformedResponse"
)

// Sentinels for errors.Is; only the Kind is compared.
var (
	ErrEmptyInput           = &Error{Kind: KindEmptyInput}
	ErrTooLarge             = &Error{Kind: KindTooLarge}
	ErrNetwork              = &Error{Kind: KindNetworkError}
	ErrRateLimited          = &Error{Kind: KindRateLimited}
	ErrInvalidCode          = &Error{Kind: KindInvalidCode}
	ErrServerUnavailable    = &Error{Kind: KindServerUnavailable}
	ErrUnexpectedHTTPStatus = &Error{Kind: KindUnexpectedHTTPStatus}
	ErrMalformedResponse    = &Error{Kind: KindMalformedResponse}
)

// Error is the failure returned by Workflow.Analyze.
type Error struct {
	Kind Kind
	// Detail is the server-supplied message for InvalidCode.
	Detail     string
	StatusCode int
	StatusText string
	Err        error
}

// Message is the text shown to the user.
func (e *Error) Message() string {
	switch e.Kind {
	case KindEmptyInput:
		return "Please enter some Python code to analyze"
	case KindTooLarge:
		return fmt.Sprintf("Code is too long. Maximum %s characters allowed.", formatThousands(MaxCodeSize))
	case KindNetworkError:
		return "Cannot connect to the API. The service may be starting up. Please wait 30 seconds and try again."
	case KindRateLimited:
		return "Rate limit exceeded. Please try again in a minute."
	case KindInvalidCode:
		if e.Detail != "" {
			return e.Detail
		}
		return "Invalid code provided"
	case KindServerUnavailable:
		return "Server error. The service may be starting up. Please try again in 30 seconds."
	case KindUnexpectedHTTPStatus:
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
	case KindMalformedResponse:
		return "The API returned a response that could not be read."
	default:
		return "Analysis failed. Please try again."
	}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message(), e.Err)
	}
	return e.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Validation reports whether the error was raised before any network call.
func (e *Error) Validation() bool {
	return e.Kind == KindEmptyInput || e.Kind == KindTooLarge
}

func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
