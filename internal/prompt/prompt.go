// Package prompt asks the operator yes/no questions.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Confirmer answers yes/no questions. A false answer is a decision, not an error.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// Terminal reads answers line by line from in.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	reader      *bufio.Reader
	interactive bool
}

// NewTerminal creates a Terminal. When in is a file that is not a terminal,
// every question is declined without reading.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	interactive := true
	if f, ok := in.(*os.File); ok {
		interactive = term.IsTerminal(int(f.Fd()))
	}
	return &Terminal{
		in:          in,
		out:         out,
		reader:      bufio.NewReader(in),
		interactive: interactive,
	}
}

// Confirm prints question with a [y/N] suffix. Only "y" or "yes" confirm;
// end of input declines.
func (t *Terminal) Confirm(question string) (bool, error) {
	if !t.interactive {
		fmt.Fprintf(t.out, "→ %s declined [non-interactive mode, use --yes]\n", question)
		return false, nil
	}

	fmt.Fprintf(t.out, "%s [y/N]: ", question)

	answer, err := t.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	if errors.Is(err, io.EOF) && answer == "" {
		fmt.Fprintln(t.out)
	}

	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes", nil
}

// AssumeYes confirms everything, for --yes and skip_confirmations.
type AssumeYes struct {
	// Out, when set, echoes each question.
	Out io.Writer
}

// Confirm always returns true.
func (a AssumeYes) Confirm(question string) (bool, error) {
	if a.Out != nil {
		fmt.Fprintf(a.Out, "%s [y/N]: y (assumed)\n", question)
	}
	return true, nil
}

// Scripted answers from a fixed list, then declines. Asked records the questions.
type Scripted struct {
	Answers []bool
	Asked   []string
}

// Confirm returns the next scripted answer.
func (s *Scripted) Confirm(question string) (bool, error) {
	s.Asked = append(s.Asked, question)
	if len(s.Answers) == 0 {
		return false, nil
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer, nil
}
