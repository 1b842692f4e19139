// Package source tracks loaded program text and maps byte offsets to
// human-readable line/column positions for diagnostics.
package source

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// ID identifies one loaded file for the lifetime of the process.
type ID int

// Span is a half-open byte range within a single source file.
type Span struct {
	File  ID
	Start int
	End   int
}

// Location is a 1-indexed line/column position, rune-based like most
// editors, derived on demand from a Span.
type Location struct {
	Line   int
	Column int
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

type file struct {
	name      string
	text      []byte
	lineStart []int
}

// Sources is an append-only registry of loaded files. IDs handed out by
// Add remain valid for the lifetime of the Sources value.
type Sources struct {
	files []*file
}

// Add registers a new file and returns its stable ID.
func (s *Sources) Add(name string, text []byte) ID {
	lineStart := make([]int, 1, 64)
	lineStart[0] = 0
	for i, b := range text {
		if b == '\n' {
			lineStart = append(lineStart, i+1)
		}
	}
	s.files = append(s.files, &file{name: name, text: text, lineStart: lineStart})
	return ID(len(s.files) - 1)
}

// Name returns the registered name for id.
func (s *Sources) Name(id ID) string {
	if int(id) < 0 || int(id) >= len(s.files) {
		return "<unknown>"
	}
	return s.files[id].name
}

// Text returns the byte range covered by span.
func (s *Sources) Text(span Span) string {
	f := s.files[span.File]
	start, end := clamp(span.Start, len(f.text)), clamp(span.End, len(f.text))
	return string(f.text[start:end])
}

// Locate converts the start of span into a line/column Location.
func (s *Sources) Locate(span Span) Location {
	f := s.files[span.File]
	cursor := clamp(span.Start, len(f.text))

	lineIdx := sort.Search(len(f.lineStart), func(i int) bool {
		return f.lineStart[i] > cursor
	}) - 1
	if lineIdx < 0 {
		lineIdx = 0
	}
	col := utf8.RuneCount(f.text[f.lineStart[lineIdx]:cursor]) + 1
	return Location{Line: lineIdx + 1, Column: col}
}

func clamp(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
