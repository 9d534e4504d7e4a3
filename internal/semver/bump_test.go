package semver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIncrement(t *testing.T) {
	tests := map[string]struct {
		base string
		bump Bump
		want string
	}{
		"major":               {base: "v1.2.3", bump: BumpMajor, want: "v2.0.0"},
		"minor":               {base: "v1.2.3", bump: BumpMinor, want: "v1.3.0"},
		"patch":               {base: "v1.2.3", bump: BumpPatch, want: "v1.2.4"},
		"trial from release":  {base: "v1.2.3", bump: BumpTrial, want: "v1.2.3.1"},
		"trial from trial":    {base: "v1.2.3.4", bump: BumpTrial, want: "v1.2.3.5"},
		"current":             {base: "v1.2.3", bump: BumpCurrent, want: "v1.2.3"},
		"major keeps arity":   {base: "v1.2.3.4", bump: BumpMajor, want: "v2.0.0.0"},
		"minor keeps arity":   {base: "v1.2.3.4", bump: BumpMinor, want: "v1.3.0.0"},
		"patch keeps arity":   {base: "v1.2.3.4", bump: BumpPatch, want: "v1.2.4.0"},
		"patch from zero":     {base: "v0.0.0", bump: BumpPatch, want: "v0.0.1"},
		"current keeps trial": {base: "v0.1.0.2", bump: BumpCurrent, want: "v0.1.0.2"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got := Increment(MustParse(tt.base), tt.bump)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseBump(t *testing.T) {
	for _, keyword := range BumpKeywords() {
		b, err := ParseBump(keyword)
		require.NoError(t, err)
		assert.Equal(t, keyword, b.String())
	}

	b, err := ParseBump("MINOR")
	require.NoError(t, err)
	assert.Equal(t, BumpMinor, b)

	_, err = ParseBump("huge")
	assert.ErrorIs(t, err, ErrInvalidBumpKeyword)
}

func TestProperty_IncrementOrdering(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genVersion(t, "v")

		major := Increment(v, BumpMajor)
		if Compare(major, v) <= 0 {
			t.Fatalf("major(%s) = %s is not greater", v, major)
		}
		if major.Minor() != 0 || major.Patch() != 0 {
			t.Fatalf("major(%s) = %s did not zero lower components", v, major)
		}

		minor := Increment(v, BumpMinor)
		if minor.Major() != v.Major() || minor.Patch() != 0 {
			t.Fatalf("minor(%s) = %s", v, minor)
		}
		if trial, _ := minor.Trial(); trial != 0 {
			t.Fatalf("minor(%s) = %s kept a trial component", v, minor)
		}

		patch := Increment(v, BumpPatch)
		if patch.Major() != v.Major() || patch.Minor() != v.Minor() || Compare(patch, v) <= 0 {
			t.Fatalf("patch(%s) = %s", v, patch)
		}
		if trial, _ := patch.Trial(); trial != 0 {
			t.Fatalf("patch(%s) = %s kept a trial component", v, patch)
		}

		if Compare(Increment(v, BumpCurrent), v) != 0 {
			t.Fatalf("current(%s) changed the version", v)
		}
	})
}
