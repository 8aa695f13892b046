package lexer

import (
	"testing"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Kind)
	}
	return out
}

func TestLexBasic(t *testing.T) {
	toks, errs := Tokenize(`df main() { return 1 + 2; }`)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []Kind{TokenDf, TokenIdent, TokenLParen, TokenRParen, TokenLBrace, TokenReturn, TokenNum, TokenPlus, TokenNum, TokenSemicolon, TokenRBrace}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestLexOperators(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
	}{
		{"==", TokenEqEq},
		{"!=", TokenBangEq},
		{"<=", TokenLtEq},
		{">=", TokenGtEq},
		{"=>", TokenFatArrow},
		{"..", TokenDotDot},
		{"=", TokenEq},
		{"!", TokenBang},
		{"<", TokenLt},
		{">", TokenGt},
		{".", TokenDot},
	}
	for _, tc := range cases {
		toks, errs := Tokenize(tc.in)
		if len(errs) != 0 || len(toks) != 1 {
			t.Fatalf("%q: expected one token, got %v (errs %v)", tc.in, toks, errs)
		}
		if toks[0].Kind != tc.want {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.want, toks[0].Kind)
		}
	}
}

func TestLexKeywordPriority(t *testing.T) {
	toks, _ := Tokenize("while whilex and or_ true")
	want := []Kind{TokenWhile, TokenIdent, TokenAnd, TokenIdent, TokenTrue}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestLexRangeAfterNumber(t *testing.T) {
	toks, errs := Tokenize("0..10 1.5")
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := []string{"0", "..", "10", "1.5"}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, w := range want {
		if toks[i].Lexeme != w {
			t.Fatalf("token %d: expected %q, got %q", i, w, toks[i].Lexeme)
		}
	}
}

func TestLexSpansAndComments(t *testing.T) {
	src := "let // note\n  x /* multi\nline */ = 5"
	toks, errs := Tokenize(src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(toks))
	}
	for _, tok := range toks {
		if src[tok.Span.Start:tok.Span.End] != tok.Lexeme {
			t.Fatalf("span %v does not cover %q", tok.Span, tok.Lexeme)
		}
	}
}

func TestLexEOFRepeats(t *testing.T) {
	lx := New("x")
	if tok, _ := lx.Next(); tok.Kind != TokenIdent {
		t.Fatalf("expected identifier, got %v", tok.Kind)
	}
	for i := 0; i < 3; i++ {
		tok, err := lx.Next()
		if err != nil || tok.Kind != TokenEOF {
			t.Fatalf("expected EOF, got %v (%v)", tok.Kind, err)
		}
		if tok.Span.Start != 1 || tok.Span.End != 1 {
			t.Fatalf("expected empty span at 1, got %v", tok.Span)
		}
	}
}

func TestLexPeekIsStable(t *testing.T) {
	lx := New("a b")
	p1, _ := lx.Peek()
	p2, _ := lx.Peek()
	if p1 != p2 {
		t.Fatalf("expected repeated peek to match, got %v and %v", p1, p2)
	}
	n, _ := lx.Next()
	if n != p1 {
		t.Fatalf("expected next to return peeked token")
	}
	n, _ = lx.Next()
	if n.Lexeme != "b" {
		t.Fatalf("expected b, got %q", n.Lexeme)
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		in   string
		kind ErrorKind
		msg  string
	}{
		{"@", InvalidCharacter, "invalid character: '@'"},
		{"\"abc", UnterminatedString, "unterminated string"},
		{"/* open", UnterminatedComment, "unterminated comment"},
		{"12abc", InvalidNumber, "invalid number: 12abc"},
		{"\xff", TokenError, "unknown token"},
	}
	for _, tc := range cases {
		_, errs := Tokenize(tc.in)
		if len(errs) != 1 {
			t.Fatalf("%q: expected 1 error, got %d", tc.in, len(errs))
		}
		if errs[0].Kind != tc.kind {
			t.Fatalf("%q: expected %v, got %v", tc.in, tc.kind, errs[0].Kind)
		}
		if errs[0].Error() != tc.msg {
			t.Fatalf("%q: expected message %q, got %q", tc.in, tc.msg, errs[0].Error())
		}
	}
}

func TestTokenizeContinuesAfterError(t *testing.T) {
	toks, errs := Tokenize("let @ x # = 1")
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if len(toks) != 4 {
		t.Fatalf("expected 4 tokens, got %d", len(toks))
	}
}
