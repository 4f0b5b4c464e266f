package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrExhausted is reported when every candidate of a track list failed in a row
var ErrExhausted = errors.New("track list exhausted: every candidate failed")

// ParseError means a track list could not be loaded. It is fatal at startup.
type ParseError struct {
	Source string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unable to load track list %q: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("unable to load track list %q: %s", e.Source, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FetchErrorKind classifies fetch failures
type FetchErrorKind int

const (
	FetchTimeout FetchErrorKind = iota
	FetchNotFound
	FetchIO
	FetchDecodeRejected
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchTimeout:
		return "timeout"
	case FetchNotFound:
		return "not found"
	case FetchIO:
		return "io error"
	case FetchDecodeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// FetchError is a per-track, recoverable download failure
type FetchError struct {
	Kind    FetchErrorKind
	Locator string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.Locator, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.Locator, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DecodeError is a per-track, recoverable decoding failure
type DecodeError struct {
	Locator string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Locator, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AudioDeviceError means the output device is unusable. It is fatal.
type AudioDeviceError struct {
	Err error
}

func (e *AudioDeviceError) Error() string {
	return fmt.Sprintf("audio device unavailable: %v", e.Err)
}

func (e *AudioDeviceError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a fetch timeout
func IsTimeout(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchTimeout
}

// IsRecoverable reports whether err only affects a single track
func IsRecoverable(err error) bool {
	var fe *FetchError
	var de *DecodeError
	return errors.As(err, &fe) || errors.As(err, &de) || errors.Is(err, ErrExhausted)
}
