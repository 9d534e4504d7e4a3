package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidBumpKeyword is returned for a symbolic token that is not a known bump.
var ErrInvalidBumpKeyword = errors.New("invalid bump keyword")

// Bump is a relative increment applied to a base version.
type Bump int

const (
	BumpMajor Bump = iota
	BumpMinor
	BumpPatch
	BumpTrial
	BumpCurrent
)

var bumpNames = map[Bump]string{
	BumpMajor:   "major",
	BumpMinor:   "minor",
	BumpPatch:   "patch",
	BumpTrial:   "trial",
	BumpCurrent: "current",
}

// String returns the keyword for the bump.
func (b Bump) String() string {
	if name, ok := bumpNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Bump(%d)", int(b))
}

// BumpKeywords lists the accepted keywords in increment order.
func BumpKeywords() []string {
	return []string{"major", "minor", "patch", "trial", "current"}
}

// ParseBump maps a keyword (case-insensitive) to a Bump.
func ParseBump(keyword string) (Bump, error) {
	normalized := strings.ToLower(strings.TrimSpace(keyword))
	for b, name := range bumpNames {
		if name == normalized {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidBumpKeyword, keyword, strings.Join(BumpKeywords(), ", "))
}

// Increment applies b to base. major, minor and patch zero every lower component and
// keep the base arity, so a trial base stays a trial with its fourth component reset.
// trial always yields four components. current returns base unchanged.
func Increment(base Version, b Bump) Version {
	next := base
	switch b {
	case BumpMajor:
		next.parts = [4]int{base.parts[0] + 1, 0, 0, 0}
	case BumpMinor:
		next.parts = [4]int{base.parts[0], base.parts[1] + 1, 0, 0}
	case BumpPatch:
		next.parts = [4]int{base.parts[0], base.parts[1], base.parts[2] + 1, 0}
	case BumpTrial:
		next.parts[3] = base.parts[3] + 1
		next.trial = true
	case BumpCurrent:
	}
	return next
}
