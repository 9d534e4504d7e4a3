package workflow

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around each change.
const diffContext = 3

type lineKind int

const (
	lineEqual lineKind = iota
	lineInsert
	lineDelete
)

type diffLine struct {
	kind lineKind
	text string
}

// lineDiff computes a line-oriented diff of before and after.
func lineDiff(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []diffLine
	for _, d := range diffs {
		kind := lineEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = lineInsert
		case diffmatchpatch.DiffDelete:
			kind = lineDelete
		}
		text := strings.TrimSuffix(d.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			out = append(out, diffLine{kind: kind, text: line})
		}
	}
	return out
}

// writeDiff prints the changed lines between before and after with up to
// diffContext lines of context, eliding the rest. It reports whether anything changed.
func writeDiff(w io.Writer, name, before, after string, useColor bool) bool {
	lines := lineDiff(before, after)

	changed := false
	show := make([]bool, len(lines))
	for i, l := range lines {
		if l.kind == lineEqual {
			continue
		}
		changed = true
		for j := max(0, i-diffContext); j <= min(len(lines)-1, i+diffContext); j++ {
			show[j] = true
		}
	}
	if !changed {
		fmt.Fprintf(w, "No changes to %s\n", name)
		return false
	}

	header, added, removed, faint := color.New(color.Bold), color.New(color.FgGreen), color.New(color.FgRed), color.New(color.Faint)
	for _, c := range []*color.Color{header, added, removed, faint} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	header.Fprintf(w, "--- %s (HEAD)\n+++ %s\n", name, name)
	skipped := false
	for i, l := range lines {
		if !show[i] {
			skipped = true
			continue
		}
		if skipped {
			faint.Fprintln(w, "@@ ... @@")
			skipped = false
		}
		switch l.kind {
		case lineInsert:
			added.Fprintln(w, "+"+l.text)
		case lineDelete:
			removed.Fprintln(w, "-"+l.text)
		default:
			fmt.Fprintln(w, " "+l.text)
		}
	}
	return true
}
