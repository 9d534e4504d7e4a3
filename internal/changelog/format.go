package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// FormatOptions controls the terminal preview.
type FormatOptions struct {
	Plain       bool   // Disable colors and icons
	MaxWidth    int    // Maximum line width (0 = auto-detect)
	Placeholder string // Header token for the pending section
}

var (
	headerStyle  = color.New(color.Bold)
	dateStyle    = color.New(color.Faint)
	pendingStyle = color.New(color.FgYellow, color.Bold)
	bulletStyle  = color.New(color.FgGreen)
)

// FormatSection writes a single section to the writer with terminal styling.
func FormatSection(s *Section, w io.Writer, opts FormatOptions) error {
	placeholder := opts.Placeholder
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	width := resolveWidth(opts.MaxWidth)

	if err := writeSectionHeader(s, placeholder, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	if len(s.Changes) == 0 {
		_, err := fmt.Fprintln(w, "  (no changes)")
		return err
	}

	for _, change := range s.Changes {
		if err := writeEntry(change, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeSectionHeader writes the version/date line.
func writeSectionHeader(s *Section, placeholder string, w io.Writer, opts FormatOptions) error {
	label := s.Version.Label(placeholder)

	if opts.Plain {
		_, err := fmt.Fprintln(w, formatHeader(s, Format{Placeholder: placeholder}))
		return err
	}

	style := headerStyle
	if s.IsPending() {
		style = pendingStyle
	}
	header := style.Sprint(label)
	if s.Date != "" {
		header += "  " + dateStyle.Sprint(s.Date)
	}
	_, err := fmt.Fprintln(w, header)
	return err
}

// writeEntry writes a single change with optional wrapping.
func writeEntry(text string, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, text)
		return err
	}

	wrapped := wrapText(text, width-len(prefix), "    ")
	_, err := fmt.Fprintf(w, "  %s %s\n", bulletStyle.Sprint("•"), wrapped)
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// FormatSummary returns a one-line description of a section, e.g.
// "v1.2.0 (3 changes)".
func FormatSummary(s *Section, placeholder string) string {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	noun := "changes"
	if len(s.Changes) == 1 {
		noun = "change"
	}
	return strings.TrimSpace(fmt.Sprintf("%s (%d %s)", s.Version.Label(placeholder), len(s.Changes), noun))
}
