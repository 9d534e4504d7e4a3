// Package editor opens a file in the operator's editor and waits for it to exit.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is used when neither configuration nor environment names an editor.
const DefaultCommand = "vi"

// Editor lets the operator modify a file interactively. Edit blocks until done.
type Editor interface {
	Edit(ctx context.Context, path string) error
}

// Resolve picks the editor command: configured first, then $VISUAL, then $EDITOR,
// then DefaultCommand.
func Resolve(configured string) string {
	for _, candidate := range []string{configured, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if c := strings.TrimSpace(candidate); c != "" {
			return c
		}
	}
	return DefaultCommand
}

// Command runs an editor command line through the shell, so values like
// "code --wait" work.
type Command struct {
	Line   string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Command attached to the process's standard streams.
func New(line string) *Command {
	return &Command{Line: line, Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Edit runs the editor on path and returns when it exits. Cancelling ctx does
// not stop the editor: an interrupt typed in the editor reaches it directly,
// and the operator leaves by quitting it.
func (c *Command) Edit(ctx context.Context, path string) error {
	if strings.TrimSpace(c.Line) == "" {
		return errors.New("no editor command configured")
	}

	// "$@" keeps the path a single argument whatever it contains.
	cmd := exec.CommandContext(context.WithoutCancel(ctx), "sh", "-c", c.Line+` "$@"`, "editor", path)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("editor %q exited with status %d", c.Line, exitErr.ExitCode())
		}
		return fmt.Errorf("running editor %q: %w", c.Line, err)
	}
	return nil
}

// Func adapts a function to Editor.
type Func func(ctx context.Context, path string) error

// Edit calls f.
func (f Func) Edit(ctx context.Context, path string) error { return f(ctx, path) }

// None leaves the file as written.
var None Editor = Func(func(context.Context, string) error { return nil })
