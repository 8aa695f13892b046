package source

import (
	"sort"
	"unicode/utf8"
)

// Span is a half-open byte range [Start, End) into the source text. The zero
// Span is used for values with no source position.
type Span struct {
	Start, End int
}

func (s Span) Len() int { return s.End - s.Start }

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	return Span{Start: min(a.Start, b.Start), End: max(a.End, b.End)}
}

// File is a named source text with the byte offset of every line start.
type File struct {
	Name  string
	Input string

	starts []int
}

func NewFile(name, input string) *File {
	starts := []int{0}
	for i, c := range []byte(input) {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &File{Name: name, Input: input, starts: starts}
}

func (f *File) clamp(off int) int {
	return min(max(off, 0), len(f.Input))
}

// LineCol maps a byte offset to a 1-based line and rune column. An offset in
// the middle of a multi-byte rune reports that rune's column.
func (f *File) LineCol(off int) (line, col int) {
	off = f.clamp(off)
	idx := sort.SearchInts(f.starts, off+1) - 1
	start := f.starts[idx]
	for off > start && off < len(f.Input) && !utf8.RuneStart(f.Input[off]) {
		off--
	}
	return idx + 1, utf8.RuneCountInString(f.Input[start:off]) + 1
}

// Line returns the text of the 1-based line n without its line ending.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.starts) {
		return ""
	}
	start, end := f.starts[n-1], len(f.Input)
	if n < len(f.starts) {
		end = f.starts[n] - 1
	}
	if end > start && f.Input[end-1] == '\r' {
		end--
	}
	return f.Input[start:end]
}

// Text returns the source covered by s, clamped to the file.
func (f *File) Text(s Span) string {
	start, end := f.clamp(s.Start), f.clamp(s.End)
	if start > end {
		return ""
	}
	return f.Input[start:end]
}
