package errors

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// style renders the parts of an error report.
type style struct {
	label      func(a ...interface{}) string
	category   func(a ...interface{}) string
	message    func(a ...interface{}) string
	detail     func(a ...interface{}) string
	usageLabel func(a ...interface{}) string
	usage      func(a ...interface{}) string
	fixLabel   func(a ...interface{}) string
	bullet     func(a ...interface{}) string
}

var (
	// colored falls back to plain text when the terminal has no color support.
	colored = style{
		label:      color.New(color.FgRed, color.Bold).SprintFunc(),
		category:   color.New(color.FgYellow).SprintFunc(),
		message:    color.New(color.FgRed).SprintFunc(),
		detail:     color.New(color.Faint).SprintFunc(),
		usageLabel: color.New(color.FgCyan, color.Bold).SprintFunc(),
		usage:      color.New(color.FgCyan).SprintFunc(),
		fixLabel:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		bullet:     color.New(color.FgGreen).SprintFunc(),
	}
	plain = style{
		label:      fmt.Sprint,
		category:   fmt.Sprint,
		message:    fmt.Sprint,
		detail:     fmt.Sprint,
		usageLabel: fmt.Sprint,
		usage:      fmt.Sprint,
		fixLabel:   fmt.Sprint,
		bullet:     fmt.Sprint,
	}
)

// FormatError formats a CLIError for display in the terminal.
// It uses colors when available and falls back to plain text otherwise.
func FormatError(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, colored)
}

// FormatErrorPlain formats a CLIError without colors.
func FormatErrorPlain(err *CLIError) string {
	if err == nil {
		return ""
	}
	return formatError(err, plain)
}

// formatError writes the headline, the indented details (the offending
// changelog line, git's exit status and output), usage, then the fix list.
func formatError(err *CLIError, s style) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s [%s]: %s\n", s.label("Error"), s.category(err.Category.String()), s.message(err.Message))
	for _, line := range err.Details {
		fmt.Fprintf(&sb, "    %s\n", s.detail(line))
	}

	if err.Usage != "" {
		fmt.Fprintf(&sb, "\n%s%s\n", s.usageLabel("Usage: "), s.usage(err.Usage))
	}

	if len(err.Remediation) > 0 {
		fmt.Fprintf(&sb, "\n%s\n", s.fixLabel("To fix this:"))
		for _, step := range err.Remediation {
			fmt.Fprintf(&sb, "  %s %s\n", s.bullet("•"), step)
		}
	}

	return sb.String()
}

// FprintError prints a formatted CLIError to the given writer.
func FprintError(w io.Writer, err *CLIError) {
	if err == nil {
		return
	}
	fmt.Fprint(w, FormatError(err))
}
