package changelog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	// changeIndent prefixes the first line of a change.
	changeIndent = "    - "
	// continuationIndent prefixes wrapped continuation lines.
	continuationIndent = "      "
)

// Serialize renders the document: preamble, a blank line, then each section
// newest first as "<version>  <date>" followed by its wrapped change lines.
// The output is deterministic for a given document and Format.
func (d *Document) Serialize() string {
	var b strings.Builder
	// strings.Builder never returns a write error.
	_ = d.Render(&b)
	return b.String()
}

// Render writes the serialized document to w.
func (d *Document) Render(w io.Writer) error {
	f := d.Format()

	if d.Preamble != "" {
		if _, err := io.WriteString(w, d.Preamble+"\n"); err != nil {
			return fmt.Errorf("rendering preamble: %w", err)
		}
	}

	for i := len(d.Sections) - 1; i >= 0; i-- {
		if i < len(d.Sections)-1 || d.Preamble != "" {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := renderSection(&d.Sections[i], f, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", d.Sections[i].Version.Label(f.Placeholder), err)
		}
	}

	return nil
}

// renderSection writes the header line and the change lines of s.
func renderSection(s *Section, f Format, w io.Writer) error {
	if _, err := io.WriteString(w, formatHeader(s, f)+"\n"); err != nil {
		return err
	}

	width := f.WrapColumns - len(changeIndent)
	for _, change := range s.Changes {
		wrapped := wrapText(change, width, continuationIndent)
		if _, err := io.WriteString(w, strings.TrimRight(changeIndent+wrapped, " ")+"\n"); err != nil {
			return err
		}
	}

	return nil
}

// formatHeader formats "<version>  <date>", omitting the date when blank.
func formatHeader(s *Section, f Format) string {
	label := s.Version.Label(f.Placeholder)
	if s.Date == "" {
		return label
	}
	return label + "  " + s.Date
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
// Lines break only at a single space, which the parser restores when it joins
// continuation lines; a longer run of spaces is kept inside a line. A word
// longer than maxWidth stays on one line.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := lastBreak(remaining, maxWidth)
		if breakPoint < 0 {
			breakPoint = nextBreak(remaining, maxWidth)
			if breakPoint < 0 {
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = remaining[breakPoint+1:]
	}

	lines = append(lines, remaining)
	return strings.Join(lines, "\n"+indent)
}

// isBreak reports whether text[i] is a space with no space on either side.
func isBreak(text string, i int) bool {
	return i > 0 && i < len(text)-1 && text[i] == ' ' && text[i-1] != ' ' && text[i+1] != ' '
}

// lastBreak returns the last break position at or before limit, or -1.
func lastBreak(text string, limit int) int {
	for i := limit; i > 0; i-- {
		if i < len(text) && isBreak(text, i) {
			return i
		}
	}
	return -1
}

// nextBreak returns the first break position after limit, or -1.
func nextBreak(text string, limit int) int {
	for i := limit + 1; i < len(text); i++ {
		if isBreak(text, i) {
			return i
		}
	}
	return -1
}

// Save serializes the document to path using a temp file and rename.
func (d *Document) Save(path string) error {
	return atomicWriteToFile(path, []byte(d.Serialize()))
}

// atomicWriteToFile writes data to path using temp file + rename pattern.
func atomicWriteToFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath) // Best effort cleanup
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
