package changelog

import (
	"strings"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
)

// DefaultPlaceholder is the header token of the unreleased section.
const DefaultPlaceholder = "{{$NEXT}}"

// DefaultWrapColumns is the column at which change lines are wrapped.
const DefaultWrapColumns = 132

// Format controls how a Document is parsed and serialized.
type Format struct {
	// Placeholder is the header token that marks the unreleased section.
	Placeholder string
	// WrapColumns is the maximum rendered line width for change lines.
	WrapColumns int
}

// DefaultFormat returns the standard placeholder and wrap width.
func DefaultFormat() Format {
	return Format{Placeholder: DefaultPlaceholder, WrapColumns: DefaultWrapColumns}
}

// withDefaults fills unset fields.
func (f Format) withDefaults() Format {
	if f.Placeholder == "" {
		f.Placeholder = DefaultPlaceholder
	}
	if f.WrapColumns <= 0 {
		f.WrapColumns = DefaultWrapColumns
	}
	return f
}

// ReleaseVersion is either a released version or the pending placeholder.
// The zero value is the released version v0.0.0.
type ReleaseVersion struct {
	version semver.Version
	pending bool
}

// Released wraps a concrete version.
func Released(v semver.Version) ReleaseVersion {
	return ReleaseVersion{version: v}
}

// Pending returns the unreleased placeholder version.
func Pending() ReleaseVersion {
	return ReleaseVersion{pending: true}
}

// IsPending reports whether this is the placeholder.
func (r ReleaseVersion) IsPending() bool { return r.pending }

// Version returns the concrete version; ok is false for the placeholder.
func (r ReleaseVersion) Version() (semver.Version, bool) {
	if r.pending {
		return semver.Version{}, false
	}
	return r.version, true
}

// Matches reports whether both values name the same section: both pending,
// or both released with the same canonical string.
func (r ReleaseVersion) Matches(other ReleaseVersion) bool {
	if r.pending || other.pending {
		return r.pending == other.pending
	}
	return r.version.String() == other.version.String()
}

// Label renders the header token, using placeholder for the pending variant.
func (r ReleaseVersion) Label(placeholder string) string {
	if r.pending {
		return placeholder
	}
	return r.version.String()
}

// String renders the header token with the default placeholder.
func (r ReleaseVersion) String() string {
	return r.Label(DefaultPlaceholder)
}

// Section is one release entry: a header and its change lines in insertion order.
type Section struct {
	Version ReleaseVersion
	Date    string
	Changes []string
}

// NewSection returns an empty section for v.
func NewSection(v ReleaseVersion) Section {
	return Section{Version: v}
}

// IsPending reports whether the section is the unreleased placeholder.
func (s *Section) IsPending() bool {
	return s.Version.IsPending()
}

// AddChanges appends lines in order. Duplicates are kept. Embedded newlines
// are folded into spaces because a change occupies a single logical line.
func (s *Section) AddChanges(lines ...string) {
	for _, line := range lines {
		s.Changes = append(s.Changes, normalizeChange(line))
	}
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Changes = append([]string(nil), s.Changes...)
	return out
}

// normalizeChange folds line breaks and trims surrounding whitespace.
func normalizeChange(line string) string {
	line = strings.ReplaceAll(line, "\r\n", " ")
	line = strings.ReplaceAll(line, "\n", " ")
	return strings.TrimSpace(line)
}

// Document is the in-memory changelog: an optional preamble and sections
// ordered oldest first.
type Document struct {
	Preamble string
	Sections []Section

	format Format
}

// New returns an empty document using f.
func New(f Format) *Document {
	return &Document{format: f.withDefaults()}
}

// Format returns the parse/serialize settings of the document.
func (d *Document) Format() Format {
	return d.format.withDefaults()
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Preamble: d.Preamble, format: d.format}
	out.Sections = make([]Section, len(d.Sections))
	for i, s := range d.Sections {
		out.Sections[i] = s.Clone()
	}
	return out
}
