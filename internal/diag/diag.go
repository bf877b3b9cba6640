// Package diag collects categorized diagnostics from a conversion run.
// Converters append entries instead of printing; callers decide whether to
// display, store, or assert on them.
package diag

import "fmt"

// Severity classifies a log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Entry is a single diagnostic with a machine-matchable kind.
type Entry struct {
	Severity Severity
	Kind     string
	Message  string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Kind, e.Message)
}

// Log accumulates entries for one conversion. The zero value is ready to use.
// A Log is not safe for concurrent use; each converter instance owns its own.
type Log struct {
	entries []Entry
}

// Info records an informational entry.
func (l *Log) Info(kind, format string, args ...any) {
	l.append(SeverityInfo, kind, format, args...)
}

// Warn records a warning entry.
func (l *Log) Warn(kind, format string, args ...any) {
	l.append(SeverityWarning, kind, format, args...)
}

// Error records an error entry.
func (l *Log) Error(kind, format string, args ...any) {
	l.append(SeverityError, kind, format, args...)
}

func (l *Log) append(sev Severity, kind, format string, args ...any) {
	l.entries = append(l.entries, Entry{
		Severity: sev,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Merge appends all entries of another log.
func (l *Log) Merge(other *Log) {
	if other != nil {
		l.entries = append(l.entries, other.entries...)
	}
}

// Entries returns all entries in append order.
func (l *Log) Entries() []Entry {
	return l.entries
}

// ByKind returns the entries with the given kind.
func (l *Log) ByKind(kind string) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Warnings returns all entries with warning severity.
func (l *Log) Warnings() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Severity == SeverityWarning {
			out = append(out, e)
		}
	}
	return out
}

// HasErrors reports whether any entry has error severity.
func (l *Log) HasErrors() bool {
	for _, e := range l.entries {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
