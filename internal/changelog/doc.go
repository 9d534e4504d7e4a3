// Package changelog models the plain-text "Changes" file that records release notes.
//
// This package implements:
//   - Parsing the file into a preamble plus ordered release sections
//   - Deterministic serialization with word-wrapped change lines
//   - Version lookups (latest release, section by version, unreleased placeholder)
//   - A colored terminal preview of a single section
//
// The file lists the newest release first:
//
//	Revision history for Foo
//
//	{{$NEXT}}
//	    - Work in progress
//
//	v1.1.0  2024-03-01
//	    - Add the bar option - 1a2b3c4
//
// In memory, sections are kept oldest first, so the last section is the most recent.
package changelog
