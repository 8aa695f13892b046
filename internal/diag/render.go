package diag

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"

	"mathic/internal/source"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiBlue  = "\x1b[34m"
	ansiCyan  = "\x1b[36m"
)

// UseColor reports whether diagnostics written to f should be colored:
// f must be a terminal and NO_COLOR must be unset.
func UseColor(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Render writes d with the offending source line and a caret label under the
// span.
//
//	error[E003]: Syntax Error
//	  --> main.mth:1:22
//	  |
//	1 | df main() { return 1 }
//	  |                      ^ expected ';'
//	  |
//	  = help: add ';' here to complete the syntax
func Render(w io.Writer, f *source.File, d Diagnostic, color bool) {
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + ansiReset
	}

	line, col := f.LineCol(d.Span.Start)
	text := f.Line(line)
	gutter := strconv.Itoa(line)
	pad := strings.Repeat(" ", len(gutter))
	bar := paint(ansiBlue, "|")

	fmt.Fprintf(w, "%s%s\n", paint(ansiBold+ansiRed, "error["+d.Code+"]"), paint(ansiBold, ": "+d.Title))
	fmt.Fprintf(w, "%s %s %s:%d:%d\n", pad, paint(ansiBlue, "-->"), f.Name, line, col)
	fmt.Fprintf(w, "%s %s\n", pad, bar)
	fmt.Fprintf(w, "%s %s %s\n", paint(ansiBlue, gutter), bar, text)

	// Caret width: the span's runes on this line, at least one.
	width := 1
	if d.Span.End > d.Span.Start {
		lineEnd, _ := f.LineCol(d.Span.End)
		covered := f.Text(d.Span)
		if lineEnd != line {
			covered = covered[:strings.IndexByte(covered, '\n')+1]
			covered = strings.TrimRight(covered, "\r\n")
		}
		if n := utf8.RuneCountInString(covered); n > 0 {
			width = n
		}
	}
	indent := strings.Repeat(" ", col-1)
	label := paint(ansiRed, strings.Repeat("^", width)+" "+d.Message)
	fmt.Fprintf(w, "%s %s %s%s\n", pad, bar, indent, label)

	if d.Help != "" {
		fmt.Fprintf(w, "%s %s\n", pad, bar)
		fmt.Fprintf(w, "%s %s %s\n", pad, paint(ansiBlue, "="), paint(ansiCyan, "help: ")+d.Help)
	}
}

// RenderError renders err if it maps to a diagnostic, otherwise prints it
// plainly. It reports whether err was a diagnostic.
func RenderError(w io.Writer, f *source.File, err error, color bool) bool {
	d, ok := FromError(err)
	if !ok {
		fmt.Fprintf(w, "error: %v\n", err)
		return false
	}
	Render(w, f, d, color)
	return true
}
