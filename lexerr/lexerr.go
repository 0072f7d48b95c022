// Package lexerr defines the typed error kinds shared across the engine
// (spec §7). Nothing on the hot path panics; every fallible operation returns
// one of these wrapped in the appropriate Kind.
package lexerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags an error with the policy that applies to it (spec §7).
type Kind int

const (
	// FileIo marks any on-disk read/write failure.
	FileIo Kind = iota
	// InvalidHeader marks a mismatched magic tag.
	InvalidHeader
	// UnsupportedVersion marks a recognized magic but unhandled version byte.
	UnsupportedVersion
	// Deserialize marks a corrupt payload (post-header).
	Deserialize
	// ConfigParse marks malformed TOML; callers fall back to defaults.
	ConfigParse
	// Capacity marks a store at its configured cap; callers evict, never fail.
	Capacity
)

func (k Kind) String() string {
	switch k {
	case FileIo:
		return "file_io"
	case InvalidHeader:
		return "invalid_header"
	case UnsupportedVersion:
		return "unsupported_version"
	case Deserialize:
		return "deserialize"
	case ConfigParse:
		return "config_parse"
	case Capacity:
		return "capacity"
	default:
		return "unknown"
	}
}

// Error is a Kind-tagged error with a wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Path string
	err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (%s): %v", e.Kind, e.Op, e.Path, e.err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// Wrap tags err with kind/op/path, preserving a cause chain via pkg/errors.
func Wrap(kind Kind, op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Path: path, err: errors.WithStack(err)}
}

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if le, ok := err.(*Error); ok {
			e = le
			break
		}
		u := errors.Unwrap(err)
		if u == nil {
			break
		}
		err = u
	}
	return e != nil && e.Kind == kind
}
