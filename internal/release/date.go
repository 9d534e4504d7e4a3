package release

import (
	"strings"
	"time"

	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat is the strftime layout used for "today".
const DefaultDateFormat = "%Y-%m-%d"

// DateKind tags the variant held by a DateDirective.
type DateKind int

const (
	// DateNone leaves the section date untouched.
	DateNone DateKind = iota
	// DateLiteral sets the date to Value verbatim.
	DateLiteral
	// DateTemplate formats the current time with the strftime layout in Value.
	DateTemplate
	// DateToday formats the current time with the reconciler's date format.
	DateToday
)

// DateDirective describes how a reconciled section's date changes.
type DateDirective struct {
	Kind  DateKind
	Value string
}

// NoDate leaves the date alone.
func NoDate() DateDirective { return DateDirective{Kind: DateNone} }

// LiteralDate sets a fixed date string.
func LiteralDate(value string) DateDirective { return DateDirective{Kind: DateLiteral, Value: value} }

// TemplateDate formats the current time with a strftime layout.
func TemplateDate(layout string) DateDirective { return DateDirective{Kind: DateTemplate, Value: layout} }

// Today sets the current date.
func Today() DateDirective { return DateDirective{Kind: DateToday} }

// ParseDateDirective interprets command-line input: "" means none, "today"
// means Today, text containing '%' is a strftime template, anything else a literal.
func ParseDateDirective(text string) DateDirective {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return NoDate()
	case strings.EqualFold(text, "today"):
		return Today()
	case strings.Contains(text, "%"):
		return TemplateDate(text)
	default:
		return LiteralDate(text)
	}
}

// Sets reports whether the directive changes the date.
func (d DateDirective) Sets() bool {
	return d.Kind != DateNone
}

// Resolve returns the date text for now. ok is false for DateNone.
func (d DateDirective) Resolve(now time.Time, todayFormat string) (string, bool) {
	switch d.Kind {
	case DateLiteral:
		return d.Value, true
	case DateTemplate:
		return strftime.Format(d.Value, now), true
	case DateToday:
		if todayFormat == "" {
			todayFormat = DefaultDateFormat
		}
		return strftime.Format(todayFormat, now), true
	default:
		return "", false
	}
}

func (d DateDirective) String() string {
	switch d.Kind {
	case DateLiteral:
		return "literal " + d.Value
	case DateTemplate:
		return "template " + d.Value
	case DateToday:
		return "today"
	default:
		return "none"
	}
}
