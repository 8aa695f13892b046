package parser

import (
	"errors"
	"testing"

	"mathic/internal/lexer"
)

func syntaxErr(t *testing.T, err error) *SyntaxError {
	t.Helper()
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	return se
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind SyntaxErrorKind
		msg  string
	}{
		{name: "top_level_garbage", src: `let x = 1;`, kind: UnexpectedToken, msg: "expected function declaration, found 'let'"},
		{name: "missing_semicolon", src: `df main() { return 1 }`, kind: MissingToken, msg: "expected ';'"},
		{name: "missing_rparen", src: `df main( { }`, kind: UnexpectedToken, msg: "expected identifier, found '{'"},
		{name: "unexpected_end", src: `df main() { return 1;`, kind: UnexpectedEnd, msg: "found an unexpected end of file"},
		{name: "bad_statement", src: `df main() { else }`, kind: UnexpectedToken, msg: "expected statement, found 'else'"},
		{name: "bad_expression", src: `df main() { return ; ; }`, kind: UnexpectedToken, msg: "expected statement, found ';'"},
		{name: "assign_to_call", src: `df main() { f() = 1; }`, kind: UnexpectedToken, msg: "expected identifier, found '='"},
		{name: "assign_to_literal", src: `df main() { 1 = 2; }`, kind: UnexpectedToken, msg: "expected identifier, found '='"},
		{name: "call_non_identifier", src: `df main() { (f)(1); }`, kind: UnexpectedToken, msg: "expected identifier, found '('"},
		{name: "missing_primary", src: `df main() { return 1 + ; }`, kind: UnexpectedToken, msg: "expected expression, found ';'"},
		{name: "missing_range", src: `df main() { for i = 0 10 { } }`, kind: MissingToken, msg: "expected '..'"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			se := syntaxErr(t, err)
			if se.Kind != tc.kind {
				t.Fatalf("expected %v, got %v", tc.kind, se.Kind)
			}
			if se.Error() != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, se.Error())
			}
		})
	}
}

func TestParseErrorHelp(t *testing.T) {
	_, err := Parse(`df main() { else }`)
	se := syntaxErr(t, err)
	if se.Help() != "valid statements include: function declarations, if/while/for, return, or blocks" {
		t.Fatalf("unexpected help %q", se.Help())
	}
	_, err = Parse(`df main() { return 1 }`)
	se = syntaxErr(t, err)
	if se.Help() != "add ';' here to complete the syntax" {
		t.Fatalf("unexpected help %q", se.Help())
	}
	if se.Span.Start != len(`df main() { return 1 `) {
		t.Fatalf("expected error at closing brace, got %v", se.Span)
	}
}

func TestParseLexicalError(t *testing.T) {
	_, err := Parse(`df main() { return 1 @ 2; }`)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Lex == nil {
		t.Fatalf("expected lexical parse error, got %v", err)
	}
	if pe.Lex.Kind != lexer.InvalidCharacter || pe.Lex.Char != '@' {
		t.Fatalf("expected invalid character '@', got %v", pe.Lex)
	}
	var le *lexer.Error
	if !errors.As(err, &le) {
		t.Fatalf("expected errors.As to reach the lexer error")
	}
}

func TestIsIncomplete(t *testing.T) {
	cases := []struct {
		src  string
		want bool
	}{
		{"df main() {", true},
		{"df main() { let x = ", true},
		{"df main() { /* open", true},
		{"df main() { return 1; }", false},
		{"df main() { return 1 }", false},
		{"df main() { @ }", false},
	}
	for _, tc := range cases {
		_, err := Parse(tc.src)
		if got := IsIncomplete(err); got != tc.want {
			t.Fatalf("%q: expected %v, got %v (err %v)", tc.src, tc.want, got, err)
		}
	}
}
