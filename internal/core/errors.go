package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies generation failures at the orchestrator boundary.
type ErrorKind string

const (
	KindTransport  ErrorKind = "transport"
	KindIncomplete ErrorKind = "incomplete"
	KindRefusal    ErrorKind = "refusal"
	KindMalformed  ErrorKind = "malformed_output"
	KindValidation ErrorKind = "validation"
)

// Error is the single error type surfaced by generation. Message is safe to
// show to callers; Detail carries diagnostics (parser errors, provider text)
// and may be hidden in production.
type Error struct {
	Kind    ErrorKind
	Message string
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func TransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "model provider unavailable", Err: err}
}

func RefusalError(text string) *Error {
	return &Error{Kind: KindRefusal, Message: text}
}

func MalformedError(detail string, err error) *Error {
	return &Error{Kind: KindMalformed, Message: "model output did not match the expected structure", Detail: detail, Err: err}
}

// IncompleteError reports output cut off by the provider. knob names the setting to raise.
func IncompleteError(reason, knob string, budget int) *Error {
	msg := fmt.Sprintf("model output was truncated (%s)", reason)
	if reason == "length" && knob != "" {
		msg = fmt.Sprintf("model output hit the token budget of %d; raise %s and try again", budget, knob)
	}
	return &Error{Kind: KindIncomplete, Message: msg, Detail: reason}
}

// KindOf returns the kind of the first *Error in err's chain, or "" when there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
