package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectSymbols(t *testing.T) {
	tests := map[string]struct {
		caps TerminalCapabilities
		want ProgressSymbols
	}{
		"unicode": {
			caps: TerminalCapabilities{IsTTY: true, SupportsUnicode: true},
			want: ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14},
		},
		"ascii": {
			caps: TerminalCapabilities{},
			want: ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SelectSymbols(tt.caps))
		})
	}
}

func TestReporter_PlainOutput(t *testing.T) {
	var out bytes.Buffer
	r := NewReporter(&out, TerminalCapabilities{})

	assert.NoError(t, r.Step("Committing Changes", func() error { return nil }))
	boom := errors.New("boom")
	assert.ErrorIs(t, r.Step("Pushing to origin", func() error { return boom }), boom)
	r.Skip("Tagging", "next is never tagged")

	assert.Equal(t, "[OK] Committing Changes\n[FAIL] Pushing to origin\n- Tagging (next is never tagged)\n", out.String())
}

// Cannot use t.Parallel() as this test manipulates environment variables.
func TestDetectTerminalCapabilities_NotATerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	caps := DetectTerminalCapabilities()
	// go test does not attach stdout to a terminal.
	if caps.IsTTY {
		t.Skip("stdout is a terminal")
	}
	assert.False(t, caps.SupportsColor)
	assert.False(t, caps.SupportsUnicode)
	assert.Zero(t, caps.Width)
}
