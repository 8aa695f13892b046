package diag

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"mathic/internal/irgen"
	"mathic/internal/lexer"
	"mathic/internal/parser"
	"mathic/internal/source"
)

// Diagnostic is the renderer-facing form of any compile error.
type Diagnostic struct {
	Code    string
	Title   string
	Message string
	Span    source.Span
	Help    string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
}

var lexCodes = map[lexer.ErrorKind]string{
	lexer.TokenError:          "L001",
	lexer.InvalidCharacter:    "L002",
	lexer.UnterminatedString:  "L003",
	lexer.UnterminatedComment: "L004",
	lexer.InvalidNumber:       "L005",
}

var syntaxCodes = map[parser.SyntaxErrorKind]string{
	parser.UnexpectedToken: "E001",
	parser.UnexpectedEnd:   "E002",
	parser.MissingToken:    "E003",
}

var semanticCodes = map[irgen.ErrorKind]string{
	irgen.UndeclaredVariable:   "S001",
	irgen.DuplicateDeclaration: "S002",
	irgen.WrongArgumentCount:   "S003",
	irgen.UndefinedFunction:    "S004",
	irgen.MissingReturn:        "S005",
	irgen.UnsupportedFeature:   "S006",
	irgen.InvalidLiteral:       "S007",
}

// FromError maps a lexer, parser or lowering error (possibly wrapped) to a
// diagnostic. It reports false for anything else.
func FromError(err error) (Diagnostic, bool) {
	var se *parser.SyntaxError
	if errors.As(err, &se) {
		return Diagnostic{
			Code:    syntaxCodes[se.Kind],
			Title:   "Syntax Error",
			Message: se.Error(),
			Span:    se.Span,
			Help:    se.Help(),
		}, true
	}
	var le *lexer.Error
	if errors.As(err, &le) {
		return Diagnostic{
			Code:    lexCodes[le.Kind],
			Title:   "Lexical Error",
			Message: le.Error(),
			Span:    le.Span,
		}, true
	}
	var lo *irgen.LoweringError
	if errors.As(err, &lo) {
		return Diagnostic{
			Code:    semanticCodes[lo.Kind],
			Title:   "Semantic Error",
			Message: lo.Error(),
			Span:    lo.Span,
			Help:    lo.Help(),
		}, true
	}
	return Diagnostic{}, false
}

type Bag struct {
	Items []Diagnostic
}

func (b *Bag) Add(d Diagnostic) {
	b.Items = append(b.Items, d)
}

// AddError adds err as a diagnostic and reports whether it was one.
func (b *Bag) AddError(err error) bool {
	d, ok := FromError(err)
	if ok {
		b.Add(d)
	}
	return ok
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}

// Print writes one line per diagnostic, ordered by position.
func Print(w io.Writer, f *source.File, b *Bag) {
	if b.Len() == 0 {
		return
	}
	items := make([]Diagnostic, 0, len(b.Items))
	items = append(items, b.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Span.Start < items[j].Span.Start
	})
	for _, it := range items {
		line, col := f.LineCol(it.Span.Start)
		fmt.Fprintf(w, "%s:%d:%d: error[%s]: %s\n", f.Name, line, col, it.Code, it.Message)
	}
}
