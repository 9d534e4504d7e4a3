package changelog

import (
	"fmt"
	"strings"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/semver"
)

// LatestVersion returns the version of the section nearest the end of the
// document. With excludePlaceholder the pending section is skipped.
// ok is false when no section qualifies.
func (d *Document) LatestVersion(excludePlaceholder bool) (ReleaseVersion, bool) {
	for i := len(d.Sections) - 1; i >= 0; i-- {
		if excludePlaceholder && d.Sections[i].IsPending() {
			continue
		}
		return d.Sections[i].Version, true
	}
	return ReleaseVersion{}, false
}

// LatestRelease returns the most recent released version, or semver.Zero
// when the document has none.
func (d *Document) LatestRelease() semver.Version {
	rv, ok := d.LatestVersion(true)
	if !ok {
		return semver.Zero
	}
	v, _ := rv.Version()
	return v
}

// IsLatest reports whether v names the most recent released section.
func (d *Document) IsLatest(v ReleaseVersion) bool {
	latest, ok := d.LatestVersion(true)
	return ok && latest.Matches(v)
}

// FindSection returns the section for v, or nil. The pointer stays valid
// until the next UpsertSection.
func (d *Document) FindSection(v ReleaseVersion) *Section {
	for i := range d.Sections {
		if d.Sections[i].Version.Matches(v) {
			return &d.Sections[i]
		}
	}
	return nil
}

// UpsertSection replaces the section with the same version in place, or adds it.
// New released sections go after every released section but before a trailing
// placeholder; a new placeholder goes last.
func (d *Document) UpsertSection(s Section) {
	s = s.Clone()
	if existing := d.FindSection(s.Version); existing != nil {
		*existing = s
		return
	}

	n := len(d.Sections)
	if !s.IsPending() && n > 0 && d.Sections[n-1].IsPending() {
		pending := d.Sections[n-1]
		d.Sections = append(d.Sections[:n-1], s, pending)
		return
	}
	d.Sections = append(d.Sections, s)
}

// SetPreamble sets the preamble only when none is present and text passes
// CheckPreamble. It reports whether the preamble was changed.
func (d *Document) SetPreamble(text string) bool {
	if d.Preamble != "" || CheckPreamble(text, d.Format()) != nil {
		return false
	}
	d.Preamble = text
	return true
}

// CheckPreamble reports a line of text that would not read back as preamble:
// an unindented line starting with a version or the placeholder opens a
// section, and an indented "-" line is a change entry.
func CheckPreamble(text string, f Format) error {
	p := &parser{format: f.withDefaults()}
	for i, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
		case leadingWhitespace(line) == 0:
			if _, _, ok := p.parseHeader(line); ok {
				return fmt.Errorf("line %d would read as a release header: %q", i+1, line)
			}
		case strings.HasPrefix(trimmed, "-"):
			return fmt.Errorf("line %d would read as a change entry: %q", i+1, line)
		}
	}
	return nil
}

// ListVersions returns the header tokens in file order (newest first).
func (d *Document) ListVersions() []string {
	f := d.Format()
	versions := make([]string, 0, len(d.Sections))
	for i := len(d.Sections) - 1; i >= 0; i-- {
		versions = append(versions, d.Sections[i].Version.Label(f.Placeholder))
	}
	return versions
}
