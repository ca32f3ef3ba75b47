// ABOUTME: Error taxonomy for the sound player
// ABOUTME: Sentinel errors, load failure details and protocol error codes
package soundstage

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned for malformed input to a public operation
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidHandle is returned when a sound id is not in the registry
	ErrInvalidHandle = errors.New("invalid sound handle")

	// ErrNotLoaded is returned by Create before the asset finished loading
	ErrNotLoaded = errors.New("asset not loaded")

	// ErrIO matches load failures while fetching an asset
	ErrIO = errors.New("io error")

	// ErrDecode matches load failures while decoding an asset
	ErrDecode = errors.New("decode error")

	// ErrClosed is returned by Load after Close
	ErrClosed = errors.New("player closed")
)

// ErrorKind classifies asynchronous load failures
type ErrorKind int

const (
	IOError ErrorKind = iota + 1
	DecodeError
)

func (k ErrorKind) String() string {
	switch k {
	case IOError:
		return "IOError"
	case DecodeError:
		return "DecodeError"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// LoadError describes a failed load. It matches ErrIO or ErrDecode with
// errors.Is depending on Kind.
type LoadError struct {
	Kind       ErrorKind
	Path       string
	StatusCode int // HTTP status for IOError, 0 otherwise
	Err        error
}

func (e *LoadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("load %s: %s: HTTP %d", e.Path, e.Kind, e.StatusCode)
	}
	return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind
func (e *LoadError) Is(target error) bool {
	switch e.Kind {
	case IOError:
		return target == ErrIO
	case DecodeError:
		return target == ErrDecode
	}
	return false
}

// ErrorCode maps an error to a short stable code for wire protocols.
// It returns "" for nil and "internal" for unrecognised errors.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrInvalidHandle):
		return "invalid_handle"
	case errors.Is(err, ErrNotLoaded):
		return "not_loaded"
	case errors.Is(err, ErrIO):
		return "io_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrClosed):
		return "closed"
	default:
		return "internal"
	}
}
