package dictionary

import (
	"errors"
	"fmt"
)

// Load failure kinds. Match them with errors.Is.
var (
	// ErrNotFound reports a local dictionary path that does not exist.
	ErrNotFound = errors.New("dictionary not found")
	// ErrIO reports a local dictionary that exists but cannot be read.
	ErrIO = errors.New("dictionary unreadable")
	// ErrNetwork reports a connection or transport failure on a remote fetch.
	ErrNetwork = errors.New("dictionary fetch failed")
)

// LoadError describes a failed stat or fetch of a dictionary source.
type LoadError struct {
	Source string
	Op     string // "stat" or "fetch"
	Kind   error
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Source, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newLoadError(source, op string, kind, err error) *LoadError {
	return &LoadError{Source: source, Op: op, Kind: kind, Err: err}
}
