package parser

import (
	"errors"
	"fmt"

	"mathic/internal/lexer"
	"mathic/internal/source"
)

type ExpectedKind int

const (
	ExpectToken ExpectedKind = iota
	ExpectStatement
	ExpectIdentifier
	ExpectExpression
	ExpectCustom
)

// Expected describes what the parser was looking for: either a concrete
// token kind or a coarse category.
type Expected struct {
	Kind  ExpectedKind
	Token lexer.Kind // ExpectToken
	Text  string     // ExpectCustom
}

func expectTok(k lexer.Kind) Expected { return Expected{Kind: ExpectToken, Token: k} }

var (
	expectStatement  = Expected{Kind: ExpectStatement}
	expectIdentifier = Expected{Kind: ExpectIdentifier}
	expectExpression = Expected{Kind: ExpectExpression}
)

func (e Expected) String() string {
	switch e.Kind {
	case ExpectStatement:
		return "statement"
	case ExpectIdentifier:
		return "identifier"
	case ExpectExpression:
		return "expression"
	case ExpectCustom:
		return e.Text
	}
	return quoteKind(e.Token)
}

// Help is the fixed hint attached to category expectations. Concrete tokens
// have none.
func (e Expected) Help() string {
	switch e.Kind {
	case ExpectStatement:
		return "valid statements include: function declarations, if/while/for, return, or blocks"
	case ExpectIdentifier:
		return "only variable or function names can be called, e.g., 'foo()' or 'bar()'"
	case ExpectExpression:
		return "expressions can be: numbers, booleans, identifiers, or parenthesized expressions"
	}
	return ""
}

func quoteKind(k lexer.Kind) string {
	switch k {
	case lexer.TokenIdent, lexer.TokenNum, lexer.TokenStr, lexer.TokenEOF:
		return k.String()
	}
	return "'" + k.String() + "'"
}

type SyntaxErrorKind int

const (
	UnexpectedToken SyntaxErrorKind = iota
	UnexpectedEnd
	MissingToken
)

func (k SyntaxErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case UnexpectedEnd:
		return "UnexpectedEnd"
	case MissingToken:
		return "MissingToken"
	}
	return fmt.Sprintf("SyntaxErrorKind(%d)", int(k))
}

// SyntaxError: Found and Expected are set for UnexpectedToken; Missing for
// MissingToken. Span always locates the error.
type SyntaxError struct {
	Kind     SyntaxErrorKind
	Found    lexer.Token
	Expected Expected
	Missing  lexer.Kind
	Span     source.Span
}

func (e *SyntaxError) Error() string {
	switch e.Kind {
	case UnexpectedEnd:
		return "found an unexpected end of file"
	case MissingToken:
		return fmt.Sprintf("expected '%s'", e.Missing)
	}
	return fmt.Sprintf("expected %s, found '%s'", e.Expected, e.Found.Lexeme)
}

// Help returns the hint the diagnostic renderer shows under the error.
func (e *SyntaxError) Help() string {
	switch e.Kind {
	case UnexpectedToken:
		return e.Expected.Help()
	case MissingToken:
		return fmt.Sprintf("add '%s' here to complete the syntax", e.Missing)
	}
	return ""
}

// ParseError is exactly one of a lexical error hit while pulling tokens or a
// syntax error.
type ParseError struct {
	Lex    *lexer.Error
	Syntax *SyntaxError
}

func (e *ParseError) Error() string {
	if e.Lex != nil {
		return "lexical error: " + e.Lex.Error()
	}
	return "syntax error: " + e.Syntax.Error()
}

func (e *ParseError) Unwrap() error {
	if e.Lex != nil {
		return e.Lex
	}
	return e.Syntax
}

func (e *ParseError) Span() source.Span {
	if e.Lex != nil {
		return e.Lex.Span
	}
	return e.Syntax.Span
}

// IsIncomplete reports whether err was caused only by the input ending early,
// so that more input could still make it parse.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	if errors.As(err, &se) {
		return se.Kind == UnexpectedEnd
	}
	var le *lexer.Error
	if errors.As(err, &le) {
		return le.Kind == lexer.UnterminatedComment || le.Kind == lexer.UnterminatedString
	}
	return false
}
