package changelog

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// generateLargeChangelog creates a Changes file with the specified number of
// change lines distributed across multiple releases, newest first.
func generateLargeChangelog(entryCount int) string {
	var buf bytes.Buffer

	buf.WriteString("Revision history for benchmark-project\n")

	// Create versions with ~10 entries each
	entriesPerVersion := 10
	versionCount := (entryCount + entriesPerVersion - 1) / entriesPerVersion

	entriesRemaining := entryCount

	for v := versionCount; v >= 1 && entriesRemaining > 0; v-- {
		buf.WriteString(fmt.Sprintf("\nv%d.0.0  2024-%02d-%02d\n", v, (v%12)+1, (v%28)+1))

		entriesInThisVersion := entriesPerVersion
		if entriesRemaining < entriesPerVersion {
			entriesInThisVersion = entriesRemaining
		}

		writeVersionEntries(&buf, entriesInThisVersion)
		entriesRemaining -= entriesInThisVersion
	}

	return buf.String()
}

// writeVersionEntries writes count change lines, every third one long enough to wrap.
func writeVersionEntries(buf *bytes.Buffer, count int) {
	for j := 0; j < count; j++ {
		text := fmt.Sprintf("Entry %d with some description text - %07x", j+1, j)
		if j%3 == 0 {
			text = strings.Repeat("long change description ", 8) + text
		}
		buf.WriteString(wrapText("    - "+text, DefaultWrapColumns, "      ") + "\n")
	}
}

// BenchmarkParse_1000Entries benchmarks parsing a changelog with 1000 entries.
func BenchmarkParse_1000Entries(b *testing.B) {
	content := generateLargeChangelog(1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(content, DefaultFormat()); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

// BenchmarkParse_100Entries benchmarks a typical changelog size.
func BenchmarkParse_100Entries(b *testing.B) {
	content := generateLargeChangelog(100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Parse(content, DefaultFormat()); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

// BenchmarkSerialize_1000Entries benchmarks rendering a large document.
func BenchmarkSerialize_1000Entries(b *testing.B) {
	doc, err := Parse(generateLargeChangelog(1000), DefaultFormat())
	if err != nil {
		b.Fatalf("failed to parse changelog: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = doc.Serialize()
	}
}

func TestGenerateLargeChangelog_Parses(t *testing.T) {
	doc, err := Parse(generateLargeChangelog(95), DefaultFormat())
	if err != nil {
		t.Fatalf("generated changelog does not parse: %v", err)
	}
	entries := 0
	for _, s := range doc.Sections {
		entries += len(s.Changes)
	}
	if entries != 95 {
		t.Errorf("change entries = %d, want 95", entries)
	}
	if got := len(doc.Sections); got != 10 {
		t.Errorf("len(Sections) = %d, want 10", got)
	}
}
