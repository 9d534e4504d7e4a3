// Package progress reports the repository steps of a release (commit, tag,
// push) with a spinner on terminals and plain status lines elsewhere.
package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

const spinnerDelay = 100 * time.Millisecond

// Reporter runs labelled steps and prints their outcome.
type Reporter struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
}

// NewReporter creates a Reporter writing to out.
func NewReporter(out io.Writer, caps TerminalCapabilities) *Reporter {
	return &Reporter{out: out, caps: caps, symbols: SelectSymbols(caps)}
}

// Step runs fn under label. On a TTY a spinner runs while fn blocks; the step
// ends with a checkmark or failure line either way. fn's error is returned as is.
func (r *Reporter) Step(label string, fn func() error) error {
	var s *spinner.Spinner
	if r.caps.IsTTY {
		s = spinner.New(spinner.CharSets[r.symbols.SpinnerSet], spinnerDelay, spinner.WithWriter(r.out))
		s.Suffix = " " + label
		s.Start()
	}

	err := fn()

	if s != nil {
		s.Stop()
	}
	r.finish(label, err)
	return err
}

func (r *Reporter) finish(label string, err error) {
	mark, paint := r.symbols.Checkmark, color.New(color.FgGreen)
	if err != nil {
		mark, paint = r.symbols.Failure, color.New(color.FgRed)
	}
	if r.caps.SupportsColor {
		paint.EnableColor()
	} else {
		paint.DisableColor()
	}
	fmt.Fprintf(r.out, "%s %s\n", paint.Sprint(mark), label)
}

// Skip prints a step that was deliberately not run.
func (r *Reporter) Skip(label, reason string) {
	fmt.Fprintf(r.out, "- %s (%s)\n", label, reason)
}
