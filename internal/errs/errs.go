// Package errs carries the engine's error taxonomy. Business-rule
// rejections (the caller's request was invalid) and infrastructure
// failures (the system broke) are distinct kinds so transports can map
// them to different responses.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidArgument
	KindInsufficientFunds
	KindInsufficientShares
	KindMarketClosed
	KindInvalidState
	KindInfrastructure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalidArgument:
		return "invalid argument"
	case KindInsufficientFunds:
		return "insufficient funds"
	case KindInsufficientShares:
		return "insufficient shares"
	case KindMarketClosed:
		return "market closed"
	case KindInvalidState:
		return "invalid state"
	case KindInfrastructure:
		return "infrastructure failure"
	default:
		return "unknown"
	}
}

// Error is a kinded error. Matching is by kind: errors.Is(err, ErrNotFound)
// holds for any Error with KindNotFound regardless of message.
type Error struct {
	kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) Kind() Kind { return e.kind }

// Is makes any two errors of the same kind match, so the kind sentinels
// below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.kind == e.kind
}

// Kind sentinels for errors.Is matching.
var (
	ErrNotFound           = &Error{kind: KindNotFound, msg: "not found"}
	ErrInvalidArgument    = &Error{kind: KindInvalidArgument, msg: "invalid argument"}
	ErrInsufficientFunds  = &Error{kind: KindInsufficientFunds, msg: "insufficient funds"}
	ErrInsufficientShares = &Error{kind: KindInsufficientShares, msg: "insufficient shares"}
	ErrMarketClosed       = &Error{kind: KindMarketClosed, msg: "market closed"}
	ErrInvalidState       = &Error{kind: KindInvalidState, msg: "invalid state"}
	ErrInfrastructure     = &Error{kind: KindInfrastructure, msg: "infrastructure failure"}
)

func New(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, format, args...)
}

func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, format, args...)
}

func InsufficientFunds(format string, args ...any) *Error {
	return New(KindInsufficientFunds, format, args...)
}

func InsufficientShares(format string, args ...any) *Error {
	return New(KindInsufficientShares, format, args...)
}

func MarketClosed(reason string) *Error {
	return New(KindMarketClosed, "market closed: %s", reason)
}

func InvalidState(format string, args ...any) *Error {
	return New(KindInvalidState, format, args...)
}

// Infrastructure wraps a storage/transport failure so callers can tell
// "the system failed" apart from "your request was invalid".
func Infrastructure(err error, context string) *Error {
	if err == nil {
		return nil
	}
	return &Error{kind: KindInfrastructure, msg: context, err: err}
}

// KindOf extracts the kind from any error in the chain, KindUnknown if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
