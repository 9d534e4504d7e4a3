// Package changes turns repository history into changelog lines.
// A Source yields ordered commit records since a reference point and a
// Formatter renders each record as one change line.
package changes

import (
	"context"
	"fmt"
	"strings"
)

// Record is one log entry. ShortRef is the abbreviated commit id, Ref the full one.
type Record struct {
	ShortRef string
	Ref      string
	Subject  string
}

// Source returns log entries reachable from HEAD but not from since.
// An empty since means the whole history.
type Source interface {
	LogSince(ctx context.Context, since string) ([]Record, error)
}

// Formatter renders a record as a change line.
type Formatter func(Record) string

// DefaultFormatter renders "<subject> - <short-ref>".
func DefaultFormatter(r Record) string {
	return fmt.Sprintf("%s - %s", r.Subject, r.ShortRef)
}

// SubjectOnly renders just the subject line.
func SubjectOnly(r Record) string {
	return r.Subject
}

// TemplateFormatter expands {subject}, {short}, and {ref} in tmpl.
func TemplateFormatter(tmpl string) Formatter {
	return func(r Record) string {
		return strings.NewReplacer(
			"{subject}", r.Subject,
			"{short}", r.ShortRef,
			"{ref}", r.Ref,
		).Replace(tmpl)
	}
}

// FormatAll applies f to every record, preserving order.
func FormatAll(records []Record, f Formatter) []string {
	if f == nil {
		f = DefaultFormatter
	}
	lines := make([]string, 0, len(records))
	for _, r := range records {
		lines = append(lines, f(r))
	}
	return lines
}

// Subject returns the first line of a commit message.
func Subject(message string) string {
	line, _, _ := strings.Cut(message, "\n")
	return strings.TrimSpace(line)
}

// ShortRef abbreviates a full commit id to n characters.
func ShortRef(ref string, n int) string {
	if n <= 0 || len(ref) <= n {
		return ref
	}
	return ref[:n]
}
