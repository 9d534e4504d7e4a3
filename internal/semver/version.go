// Package semver parses, compares, and increments the strict release versions used in
// changelog headers and tags: vMAJOR.MINOR.PATCH with an optional fourth "trial" component.
package semver

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidVersionFormat is returned when text is not a strict vN.N.N or vN.N.N.N version.
var ErrInvalidVersionFormat = errors.New("invalid version format")

// Version is an immutable release version. The zero value is v0.0.0.
type Version struct {
	parts [4]int
	trial bool
}

// Zero is the version callers assume when a changelog has no releases yet.
var Zero = Version{}

// New builds a three-component version.
func New(major, minor, patch int) Version {
	return Version{parts: [4]int{major, minor, patch, 0}}
}

// NewTrial builds a four-component version.
func NewTrial(major, minor, patch, trial int) Version {
	return Version{parts: [4]int{major, minor, patch, trial}, trial: true}
}

// Parse accepts only the strict forms vN.N.N and vN.N.N.N.
// Anything else (missing "v", non-numeric or signed components, 1.2, trailing text)
// fails with ErrInvalidVersionFormat.
func Parse(text string) (Version, error) {
	rest, ok := strings.CutPrefix(text, "v")
	if !ok {
		return Version{}, fmt.Errorf("%w: %q (missing \"v\" prefix)", ErrInvalidVersionFormat, text)
	}

	fields := strings.Split(rest, ".")
	if len(fields) != 3 && len(fields) != 4 {
		return Version{}, fmt.Errorf("%w: %q (expected vN.N.N or vN.N.N.N)", ErrInvalidVersionFormat, text)
	}

	var v Version
	for i, field := range fields {
		n, err := parseComponent(field)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q (%v)", ErrInvalidVersionFormat, text, err)
		}
		v.parts[i] = n
	}
	v.trial = len(fields) == 4

	return v, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// parseComponent converts a single dotted component, allowing digits only.
func parseComponent(field string) (int, error) {
	if field == "" {
		return 0, errors.New("empty component")
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("non-numeric component %q", field)
		}
	}
	if len(field) > 1 && field[0] == '0' {
		return 0, fmt.Errorf("leading zero in component %q", field)
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("component %q out of range", field)
	}
	return n, nil
}

// IsValid reports whether text is a strict version.
func IsValid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

// Major returns the first component.
func (v Version) Major() int { return v.parts[0] }

// Minor returns the second component.
func (v Version) Minor() int { return v.parts[1] }

// Patch returns the third component.
func (v Version) Patch() int { return v.parts[2] }

// Trial returns the fourth component and whether the version carries one.
func (v Version) Trial() (int, bool) { return v.parts[3], v.trial }

// IsTrial reports whether the version has four components.
func (v Version) IsTrial() bool { return v.trial }

// String returns the canonical form, e.g. "v1.2.3" or "v1.2.3.4".
func (v Version) String() string {
	s := fmt.Sprintf("v%d.%d.%d", v.parts[0], v.parts[1], v.parts[2])
	if v.trial {
		s += fmt.Sprintf(".%d", v.parts[3])
	}
	return s
}

// Compare returns -1, 0, or +1. Missing trailing components count as zero,
// so v1.2.3 and v1.2.3.0 compare equal.
func Compare(a, b Version) int {
	for i := range a.parts {
		switch {
		case a.parts[i] < b.parts[i]:
			return -1
		case a.parts[i] > b.parts[i]:
			return 1
		}
	}
	return 0
}

// Compare is the method form of Compare.
func (v Version) Compare(other Version) int {
	return Compare(v, other)
}

// Less reports whether v sorts before other.
func (v Version) Less(other Version) bool {
	return Compare(v, other) < 0
}

// Equal reports whether v and other compare equal.
func (v Version) Equal(other Version) bool {
	return Compare(v, other) == 0
}
