package changelog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
)

// ErrMalformedChangelog is the sentinel wrapped by every ParseError.
var ErrMalformedChangelog = errors.New("malformed changelog")

// ParseError reports the line that could not be placed in the document.
type ParseError struct {
	Line    int
	Text    string
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s: %q", ErrMalformedChangelog, e.Line, e.Message, e.Text)
	}
	return fmt.Sprintf("%s: %s", ErrMalformedChangelog, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedChangelog
}

// Load reads and parses the changelog file at path.
// A missing file is reported with an error wrapping os.ErrNotExist.
func Load(path string, f Format) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening changelog file: %w", err)
	}
	defer file.Close()

	return LoadFromReader(file, f)
}

// LoadOrNew is like Load but returns an empty document when path does not exist.
// The second result reports whether the file existed.
func LoadOrNew(path string, f Format) (*Document, bool, error) {
	doc, err := Load(path, f)
	if errors.Is(err, os.ErrNotExist) {
		return New(f), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// LoadFromReader parses a changelog from an io.Reader.
func LoadFromReader(r io.Reader, f Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading changelog: %w", err)
	}
	return Parse(string(data), f)
}

// parser holds the state of a single Parse call.
type parser struct {
	format   Format
	preamble []string
	sections []Section
	current  *Section
	// entryIndent is the indentation of the line that started the last change;
	// deeper lines continue that change.
	entryIndent int
}

// Parse splits text into a preamble and release sections.
//
// A header is an unindented line whose first field is a strict version or the
// placeholder token; the rest of the line is the date. Indented lines below a
// header are change lines: a line starting with "-" opens a new change and deeper
// indented lines continue it. Unindented text after the first header, indented
// changes before it, and duplicate versions are reported as ParseError.
func Parse(text string, f Format) (*Document, error) {
	p := &parser{format: f.withDefaults()}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if err := p.consume(i+1, line); err != nil {
			return nil, err
		}
	}
	p.flush()

	return p.document()
}

func (p *parser) consume(lineNo int, line string) error {
	if strings.TrimSpace(line) == "" {
		if p.current == nil {
			p.preamble = append(p.preamble, "")
		}
		return nil
	}

	indent := leadingWhitespace(line)
	if indent == 0 {
		version, date, ok := p.parseHeader(line)
		if ok {
			p.flush()
			p.current = &Section{Version: version, Date: date}
			p.entryIndent = 0
			return nil
		}
		if p.current != nil {
			return &ParseError{Line: lineNo, Text: line, Message: "expected a version header"}
		}
		p.preamble = append(p.preamble, line)
		return nil
	}

	trimmed := strings.TrimSpace(line)
	if p.current == nil {
		if strings.HasPrefix(trimmed, "-") {
			return &ParseError{Line: lineNo, Text: line, Message: "change entry without a version header"}
		}
		p.preamble = append(p.preamble, line)
		return nil
	}

	p.addLine(indent, trimmed)
	return nil
}

// addLine places an indented line in the current section.
func (p *parser) addLine(indent int, trimmed string) {
	changes := p.current.Changes
	continuing := len(changes) > 0 && indent > p.entryIndent
	if !continuing && strings.HasPrefix(trimmed, "-") {
		p.current.Changes = append(changes, strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
		p.entryIndent = indent
		return
	}
	if len(changes) == 0 {
		p.current.Changes = append(changes, trimmed)
		p.entryIndent = indent
		return
	}
	last := len(changes) - 1
	if changes[last] == "" {
		changes[last] = trimmed
	} else {
		changes[last] += " " + trimmed
	}
}

// parseHeader recognizes "<version-or-placeholder> [date]".
func (p *parser) parseHeader(line string) (ReleaseVersion, string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ReleaseVersion{}, "", false
	}
	token := fields[0]
	date := strings.TrimSpace(strings.TrimPrefix(line, token))

	if token == p.format.Placeholder {
		return Pending(), date, true
	}
	v, err := semver.Parse(token)
	if err != nil {
		return ReleaseVersion{}, "", false
	}
	return Released(v), date, true
}

func (p *parser) flush() {
	if p.current != nil {
		p.sections = append(p.sections, *p.current)
		p.current = nil
	}
}

// document validates uniqueness and reverses the file order into oldest-first.
func (p *parser) document() (*Document, error) {
	doc := New(p.format)
	doc.Preamble = strings.Trim(strings.Join(p.preamble, "\n"), "\n")

	seen := make(map[string]bool)
	pending := 0
	for _, s := range p.sections {
		if s.IsPending() {
			pending++
			if pending > 1 {
				return nil, &ParseError{Message: fmt.Sprintf("more than one %s section", p.format.Placeholder)}
			}
			continue
		}
		key := s.Version.String()
		if seen[key] {
			return nil, &ParseError{Message: fmt.Sprintf("duplicate version %s", key)}
		}
		seen[key] = true
	}

	doc.Sections = make([]Section, 0, len(p.sections))
	for i := len(p.sections) - 1; i >= 0; i-- {
		doc.Sections = append(doc.Sections, p.sections[i])
	}
	return doc, nil
}

// leadingWhitespace counts leading spaces and tabs.
func leadingWhitespace(line string) int {
	return len(line) - len(strings.TrimLeft(line, " \t"))
}
