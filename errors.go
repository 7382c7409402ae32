package chx

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrorKind is the closed set of error categories a caller can observe.
type ErrorKind int

const (
	// KindInvalidParams covers placeholder/bind mismatches, malformed
	// URLs, and other caller misuse.
	KindInvalidParams ErrorKind = iota + 1
	// KindNetwork is a transport failure before any response arrived.
	KindNetwork
	// KindBadResponse is a server-reported error: non-2xx, or a
	// mid/tail-stream exception paragraph.
	KindBadResponse
	// KindDecompression is a checksum mismatch or malformed LZ4 frame.
	KindDecompression
	// KindNotEnoughData means the wire stream ended mid-value.
	KindNotEnoughData
	// KindTooLarge means a varuint or payload exceeded a documented bound.
	KindTooLarge
	// KindDecode is a type-driven decode failure for a specific field.
	KindDecode
	// KindTimedOut means a caller-supplied deadline was exceeded.
	KindTimedOut
	// KindCustom is an escape hatch for user codec layers.
	KindCustom
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidParams:
		return "invalid_params"
	case KindNetwork:
		return "network"
	case KindBadResponse:
		return "bad_response"
	case KindDecompression:
		return "decompression"
	case KindNotEnoughData:
		return "not_enough_data"
	case KindTooLarge:
		return "too_large"
	case KindDecode:
		return "decode"
	case KindTimedOut:
		return "timed_out"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Error is the single error type this package returns. Kind narrows it
// to the closed set described in spec §7; Cause, when present, is the
// wrapped underlying error.
type Error struct {
	Kind   ErrorKind
	Status int    // HTTP status, only meaningful for KindBadResponse
	Field  string // field name, only meaningful for KindDecode
	text   string
	cause  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindBadResponse:
		return fmt.Sprintf("chx: bad response (status %d): %s", e.Status, e.text)
	case e.Kind == KindDecode && e.Field != "":
		return fmt.Sprintf("chx: decode field %q: %s", e.Field, e.causeText())
	case e.cause != nil:
		return fmt.Sprintf("chx: %s: %s", e.Kind, e.causeText())
	default:
		return fmt.Sprintf("chx: %s: %s", e.Kind, e.text)
	}
}

func (e *Error) causeText() string {
	if e.cause != nil {
		return e.cause.Error()
	}
	return e.text
}

func (e *Error) Unwrap() error { return e.cause }

// newErr builds an *Error with a plain message, no wrapped cause.
func newErr(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, text: fmt.Sprintf(format, args...)}
}

// wrapErr builds an *Error wrapping cause with additional context.
func wrapErr(kind ErrorKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, text: fmt.Sprintf(format, args...), cause: errors.Wrap(cause, fmt.Sprintf(format, args...))}
}

// badResponse builds the KindBadResponse variant carrying the HTTP
// status and server-reported text (spec §4.4, §4.5, §7).
func badResponse(status int, text string) *Error {
	return &Error{Kind: KindBadResponse, Status: status, text: text}
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
