package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSpecifier is returned when a specifier is neither a version nor a keyword.
var ErrInvalidSpecifier = errors.New("invalid version specifier")

// SpecifierKind tags the variant held by a Specifier.
type SpecifierKind int

const (
	// SpecExplicit names an exact version.
	SpecExplicit SpecifierKind = iota
	// SpecBump increments the latest released version.
	SpecBump
	// SpecCurrent re-targets the latest released version.
	SpecCurrent
	// SpecNext targets the unreleased placeholder section.
	SpecNext
)

// NextKeyword selects the placeholder section.
const NextKeyword = "next"

// Specifier is the classified form of a user-supplied version argument.
// Version is set only for SpecExplicit and Bump only for SpecBump.
type Specifier struct {
	Kind    SpecifierKind
	Version Version
	Bump    Bump
	Raw     string
}

// Explicit builds an explicit specifier.
func Explicit(v Version) Specifier {
	return Specifier{Kind: SpecExplicit, Version: v, Raw: v.String()}
}

// Relative builds a bump specifier. BumpCurrent yields SpecCurrent.
func Relative(b Bump) Specifier {
	if b == BumpCurrent {
		return Specifier{Kind: SpecCurrent, Bump: BumpCurrent, Raw: b.String()}
	}
	return Specifier{Kind: SpecBump, Bump: b, Raw: b.String()}
}

// Next builds the placeholder specifier.
func Next() Specifier {
	return Specifier{Kind: SpecNext, Raw: NextKeyword}
}

// Classify turns raw user input into a Specifier. It tries "next", then a strict
// version, then a bump keyword.
func Classify(raw string) (Specifier, error) {
	text := strings.TrimSpace(raw)
	if strings.EqualFold(text, NextKeyword) {
		s := Next()
		s.Raw = raw
		return s, nil
	}
	if v, err := Parse(text); err == nil {
		s := Explicit(v)
		s.Raw = raw
		return s, nil
	}
	if b, err := ParseBump(text); err == nil {
		s := Relative(b)
		s.Raw = raw
		return s, nil
	}
	return Specifier{}, fmt.Errorf("%w: %q (expected vN.N.N[.N] or one of %s, %s)",
		ErrInvalidSpecifier, raw, strings.Join(BumpKeywords(), ", "), NextKeyword)
}

// IsNext reports whether s targets the placeholder section.
func (s Specifier) IsNext() bool { return s.Kind == SpecNext }

// Resolve computes the target version relative to latest. It must not be called for SpecNext.
func (s Specifier) Resolve(latest Version) (Version, error) {
	switch s.Kind {
	case SpecExplicit:
		return s.Version, nil
	case SpecBump:
		return Increment(latest, s.Bump), nil
	case SpecCurrent:
		return latest, nil
	default:
		return Version{}, fmt.Errorf("%w: %q has no numeric version", ErrInvalidSpecifier, s.Raw)
	}
}

func (s Specifier) String() string {
	if s.Raw != "" {
		return s.Raw
	}
	switch s.Kind {
	case SpecExplicit:
		return s.Version.String()
	case SpecNext:
		return NextKeyword
	default:
		return s.Bump.String()
	}
}
