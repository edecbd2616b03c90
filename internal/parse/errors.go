package parse

import "errors"

// Per-entry failures. Neither stops the analysis of the rest of an export.
var (
	// ErrMalformedEntry is returned when an entry is not valid JSON.
	ErrMalformedEntry = errors.New("malformed entry")

	// ErrMissingField is returned when valid JSON lacks an expected key or has
	// the wrong shape for it.
	ErrMissingField = errors.New("missing field")
)

// EntryError wraps a per-entry failure with the entry name.
type EntryError struct {
	Entry string
	Op    string
	Err   error
}

func (e *EntryError) Error() string {
	if e.Entry != "" {
		return e.Op + " [" + e.Entry + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *EntryError) Unwrap() error {
	return e.Err
}
