package dsgerr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
)

// BuckyError pairs a taxonomy code with a human-readable message and an
// optional wrapped origin error, matching spec.md §4.3.
type BuckyError struct {
	Code    Variant
	Msg     string
	Origin  error
}

// New builds a BuckyError with no origin.
func New(code Variant, msg string) *BuckyError {
	return &BuckyError{Code: code, Msg: msg}
}

// Newf builds a BuckyError with a formatted message.
func Newf(code Variant, format string, args ...interface{}) *BuckyError {
	return &BuckyError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches an origin error to a BuckyError built from a mapped code.
func Wrap(code Variant, msg string, origin error) *BuckyError {
	return &BuckyError{Code: code, Msg: msg, Origin: origin}
}

func (e *BuckyError) Error() string {
	if e.Origin != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Msg, e.Origin)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *BuckyError) Unwrap() error { return e.Origin }

// Is allows errors.Is(err, dsgerr.New(SystemVariant(NotFound), "")) style
// matching against the code alone, ignoring message/origin.
func (e *BuckyError) Is(target error) bool {
	var other *BuckyError
	if errors.As(target, &other) {
		return e.Code.Equal(other.Code)
	}
	return false
}

// FromIOError classifies a generic Go error (as returned by the os/net
// packages) into the system IO-kind mapping named in spec.md §4.3.
// Go has no single io.ErrorKind enum the way the source language does, so
// this walks the same classification surface the standard library exposes:
// fs.ErrNotExist/ErrPermission, context deadline/cancellation, and network
// timeout/temporary markers, defaulting to UnknownIOError.
func FromIOError(err error) *BuckyError {
	if err == nil {
		return nil
	}

	// A BuckyError that was previously wrapped in a generic error and is
	// now being unwrapped back out round-trips to itself unchanged.
	var existing *BuckyError
	if errors.As(err, &existing) {
		return existing
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return Wrap(SystemVariant(NotFound), "not found", err)
	case errors.Is(err, fs.ErrPermission):
		return Wrap(SystemVariant(PermissionDenied), "permission denied", err)
	case errors.Is(err, fs.ErrExist):
		return Wrap(SystemVariant(AlreadyExists), "already exists", err)
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(SystemVariant(Timeout), "deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return Wrap(SystemVariant(ErrorState), "context canceled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(SystemVariant(Timeout), "network timeout", err)
		}
		return Wrap(SystemVariant(ConnectionAborted), "network error", err)
	}

	return Wrap(SystemVariant(UnknownIOError), "unclassified io error", err)
}

// ToNativeError converts a BuckyError back into a plain error suitable for
// crossing an interface boundary (e.g. returning from something that must
// satisfy the stdlib `error` contract without leaking package internals),
// while preserving the BuckyError for a later FromIOError/errors.As round
// trip — mirroring the source's requirement that wrapping an Other-kind IO
// error around an existing BuckyError and unwrapping it again returns the
// same BuckyError.
func ToNativeError(e *BuckyError) error {
	if e == nil {
		return nil
	}
	return e
}

// CodeOf extracts the Variant from any error that is, or wraps, a
// BuckyError; callers outside this package get SystemVariant(Unknown) for
// anything else.
func CodeOf(err error) Variant {
	var be *BuckyError
	if errors.As(err, &be) {
		return be.Code
	}
	return SystemVariant(Unknown)
}
