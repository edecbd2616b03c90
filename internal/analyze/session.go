package analyze

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Zuo-Peng/igfa/internal/parse"
)

// DiagnosticKind classifies a skipped entry.
type DiagnosticKind string

const (
	KindMalformedEntry DiagnosticKind = "malformed_entry"
	KindMissingField   DiagnosticKind = "missing_field"
)

// Diagnostic records an entry that was skipped or defaulted during analysis.
type Diagnostic struct {
	Kind   DiagnosticKind `json:"kind" yaml:"kind"`
	Entry  string         `json:"entry" yaml:"entry"`
	Reason string         `json:"reason" yaml:"reason"`
}

// Session is the state of one analysis run. Nothing in it is shared between
// uploads.
type Session struct {
	ID     string
	Logger *slog.Logger

	diags []Diagnostic
}

// NewSession starts a session with a fresh ID. The logger carries it as the
// "session" attribute.
func NewSession(logger *slog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		ID:     id,
		Logger: logger.With("session", id),
	}
}

// Record classifies a per-entry failure, logs it at WARN and appends it to
// the session diagnostics.
func (s *Session) Record(entry string, err error) {
	kind := KindMalformedEntry
	if errors.Is(err, parse.ErrMissingField) {
		kind = KindMissingField
	}
	s.diags = append(s.diags, Diagnostic{Kind: kind, Entry: entry, Reason: err.Error()})
	s.Logger.Warn("skipped entry", "entry", entry, "kind", string(kind), "error", err)
}

// Diagnostics returns the recorded diagnostics in the order they occurred.
func (s *Session) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}
