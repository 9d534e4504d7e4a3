package semver

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse_Valid(t *testing.T) {
	tests := map[string]struct {
		input     string
		wantParts [4]int
		wantTrial bool
	}{
		"three components":    {input: "v1.2.3", wantParts: [4]int{1, 2, 3, 0}},
		"four components":     {input: "v1.2.3.4", wantParts: [4]int{1, 2, 3, 4}, wantTrial: true},
		"zero version":        {input: "v0.0.0", wantParts: [4]int{0, 0, 0, 0}},
		"multi-digit":         {input: "v10.20.300", wantParts: [4]int{10, 20, 300, 0}},
		"explicit zero trial": {input: "v2.0.0.0", wantParts: [4]int{2, 0, 0, 0}, wantTrial: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantParts[0], v.Major())
			assert.Equal(t, tt.wantParts[1], v.Minor())
			assert.Equal(t, tt.wantParts[2], v.Patch())
			trial, hasTrial := v.Trial()
			assert.Equal(t, tt.wantParts[3], trial)
			assert.Equal(t, tt.wantTrial, hasTrial)
			assert.Equal(t, tt.input, v.String())
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"1.2.3",
		"v1.2",
		"v1",
		"v1.2.3.4.5",
		"v1.x.3",
		"v1.2.3-beta",
		"v-1.2.3",
		"v1..3",
		"V1.2.3",
		" v1.2.3",
		"v01.2.3",
		"{{$NEXT}}",
	}

	for _, input := range inputs {
		t.Run(fmt.Sprintf("%q", input), func(t *testing.T) {
			t.Parallel()
			_, err := Parse(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidVersionFormat)
			assert.False(t, IsValid(input))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := map[string]struct {
		a, b string
		want int
	}{
		"equal":                 {a: "v1.2.3", b: "v1.2.3", want: 0},
		"major less":            {a: "v1.9.9", b: "v2.0.0", want: -1},
		"minor greater":         {a: "v1.3.0", b: "v1.2.9", want: 1},
		"patch less":            {a: "v1.2.3", b: "v1.2.4", want: -1},
		"numeric not lexical":   {a: "v1.10.0", b: "v1.9.0", want: 1},
		"missing trial is zero": {a: "v1.2.3", b: "v1.2.3.0", want: 0},
		"trial greater":         {a: "v1.2.3.1", b: "v1.2.3", want: 1},
		"trial less than patch": {a: "v1.2.3.9", b: "v1.2.4", want: -1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			a, b := MustParse(tt.a), MustParse(tt.b)
			assert.Equal(t, tt.want, Compare(a, b))
			assert.Equal(t, -tt.want, Compare(b, a))
		})
	}
}

func TestZeroValue(t *testing.T) {
	assert.Equal(t, "v0.0.0", Zero.String())
	assert.Equal(t, 0, Compare(Zero, MustParse("v0.0.0")))
}

func genVersion(t *rapid.T, label string) Version {
	major := rapid.IntRange(0, 50).Draw(t, label+"-major")
	minor := rapid.IntRange(0, 50).Draw(t, label+"-minor")
	patch := rapid.IntRange(0, 50).Draw(t, label+"-patch")
	if rapid.Bool().Draw(t, label+"-trial?") {
		return NewTrial(major, minor, patch, rapid.IntRange(0, 50).Draw(t, label+"-trial"))
	}
	return New(major, minor, patch)
}

func TestProperty_ParseStringRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := genVersion(t, "v")
		text := v.String()

		parsed, err := Parse(text)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", text, err)
		}
		if parsed.String() != text {
			t.Fatalf("round trip mismatch: %q -> %q", text, parsed.String())
		}
	})
}

func TestProperty_CompareIsTotalOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genVersion(t, "a")
		b := genVersion(t, "b")
		c := genVersion(t, "c")

		if Compare(a, b) != -Compare(b, a) {
			t.Fatalf("antisymmetry violated for %s and %s", a, b)
		}
		if Compare(a, a) != 0 {
			t.Fatalf("reflexivity violated for %s", a)
		}
		if Compare(a, b) <= 0 && Compare(b, c) <= 0 && Compare(a, c) > 0 {
			t.Fatalf("transitivity violated for %s <= %s <= %s", a, b, c)
		}

		tupleA := [4]int{a.Major(), a.Minor(), a.Patch()}
		tupleA[3], _ = a.Trial()
		tupleB := [4]int{b.Major(), b.Minor(), b.Patch()}
		tupleB[3], _ = b.Trial()
		want := 0
		for i := range tupleA {
			if tupleA[i] != tupleB[i] {
				if tupleA[i] < tupleB[i] {
					want = -1
				} else {
					want = 1
				}
				break
			}
		}
		if Compare(a, b) != want {
			t.Fatalf("Compare(%s, %s) = %d, want %d", a, b, Compare(a, b), want)
		}
	})
}
