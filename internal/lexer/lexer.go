package lexer

import (
	"unicode/utf8"

	"mathic/internal/source"
)

// Lexer produces tokens on demand. It keeps exactly one token of lookahead:
// Peek scans the next token once and caches it until Next consumes it.
type Lexer struct {
	input string
	pos   int

	peeked  bool
	peekTok Token
	peekErr error
}

func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Peek returns the next token without consuming it. Repeated calls return the
// same token (or the same error).
func (lx *Lexer) Peek() (Token, error) {
	if !lx.peeked {
		lx.peekTok, lx.peekErr = lx.scan()
		lx.peeked = true
	}
	return lx.peekTok, lx.peekErr
}

// Next consumes and returns the next token. Once the input is exhausted every
// call returns a TokenEOF token whose span is empty and sits at the end of the
// input.
func (lx *Lexer) Next() (Token, error) {
	tok, err := lx.Peek()
	lx.peeked = false
	return tok, err
}

// Tokenize lexes the whole input. Scanning continues after an error so every
// lexical error is reported; the EOF token is not included.
func Tokenize(input string) ([]Token, []*Error) {
	lx := New(input)
	var toks []Token
	var errs []*Error
	for {
		tok, err := lx.Next()
		if err != nil {
			errs = append(errs, err.(*Error))
			continue
		}
		if tok.Kind == TokenEOF {
			return toks, errs
		}
		toks = append(toks, tok)
	}
}

func (lx *Lexer) scan() (Token, error) {
	if err := lx.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	start := lx.pos
	if lx.pos >= len(lx.input) {
		return lx.token(TokenEOF, start), nil
	}
	ch := lx.input[lx.pos]
	switch {
	case isIdentStart(ch):
		return lx.lexIdentOrKeyword(), nil
	case isDigit(ch):
		return lx.lexNumber()
	case ch == '"':
		return lx.lexString()
	default:
		return lx.lexPunct()
	}
}

func (lx *Lexer) token(k Kind, start int) Token {
	return Token{
		Kind:   k,
		Lexeme: lx.input[start:lx.pos],
		Span:   source.Span{Start: start, End: lx.pos},
	}
}

func (lx *Lexer) at(off int) byte {
	if lx.pos+off < len(lx.input) {
		return lx.input[lx.pos+off]
	}
	return 0
}

func (lx *Lexer) skipSpaceAndComments() error {
	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' {
			lx.pos++
			continue
		}
		// line comment
		if ch == '/' && lx.at(1) == '/' {
			lx.pos += 2
			for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' {
				lx.pos++
			}
			continue
		}
		// block comment, not nested
		if ch == '/' && lx.at(1) == '*' {
			start := lx.pos
			lx.pos += 2
			for {
				if lx.pos+1 >= len(lx.input) {
					lx.pos = len(lx.input)
					return &Error{Kind: UnterminatedComment, Span: source.Span{Start: start, End: lx.pos}}
				}
				if lx.input[lx.pos] == '*' && lx.input[lx.pos+1] == '/' {
					lx.pos += 2
					break
				}
				lx.pos++
			}
			continue
		}
		return nil
	}
	return nil
}

func (lx *Lexer) lexIdentOrKeyword() Token {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		lx.pos++
	}
	if k, ok := keywords[lx.input[start:lx.pos]]; ok {
		return lx.token(k, start)
	}
	return lx.token(TokenIdent, start)
}

// lexNumber scans a maximal digit run with an optional decimal part. The text
// is kept as written; conversion happens during lowering.
func (lx *Lexer) lexNumber() (Token, error) {
	start := lx.pos
	for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
		lx.pos++
	}
	// `1.5` continues, `0..10` stops before the range operator.
	if lx.at(0) == '.' && isDigit(lx.at(1)) {
		lx.pos++
		for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
			lx.pos++
		}
	}
	if lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
			lx.pos++
		}
		return Token{}, &Error{
			Kind: InvalidNumber,
			Text: lx.input[start:lx.pos],
			Span: source.Span{Start: start, End: lx.pos},
		}
	}
	return lx.token(TokenNum, start), nil
}

func (lx *Lexer) lexString() (Token, error) {
	start := lx.pos
	lx.pos++ // opening "
	for lx.pos < len(lx.input) {
		if lx.input[lx.pos] == '"' {
			lx.pos++
			return lx.token(TokenStr, start), nil
		}
		lx.pos++
	}
	return Token{}, &Error{Kind: UnterminatedString, Span: source.Span{Start: start, End: lx.pos}}
}

func (lx *Lexer) lexPunct() (Token, error) {
	start := lx.pos
	ch := lx.input[lx.pos]
	lx.pos++
	switch ch {
	case '(':
		return lx.token(TokenLParen, start), nil
	case ')':
		return lx.token(TokenRParen, start), nil
	case '{':
		return lx.token(TokenLBrace, start), nil
	case '}':
		return lx.token(TokenRBrace, start), nil
	case '[':
		return lx.token(TokenLBracket, start), nil
	case ']':
		return lx.token(TokenRBracket, start), nil
	case ',':
		return lx.token(TokenComma, start), nil
	case ';':
		return lx.token(TokenSemicolon, start), nil
	case ':':
		return lx.token(TokenColon, start), nil
	case '+':
		return lx.token(TokenPlus, start), nil
	case '-':
		return lx.token(TokenMinus, start), nil
	case '*':
		return lx.token(TokenStar, start), nil
	case '/':
		return lx.token(TokenSlash, start), nil
	case '.':
		if lx.at(0) == '.' {
			lx.pos++
			return lx.token(TokenDotDot, start), nil
		}
		return lx.token(TokenDot, start), nil
	case '!':
		if lx.at(0) == '=' {
			lx.pos++
			return lx.token(TokenBangEq, start), nil
		}
		return lx.token(TokenBang, start), nil
	case '=':
		if lx.at(0) == '=' {
			lx.pos++
			return lx.token(TokenEqEq, start), nil
		}
		if lx.at(0) == '>' {
			lx.pos++
			return lx.token(TokenFatArrow, start), nil
		}
		return lx.token(TokenEq, start), nil
	case '<':
		if lx.at(0) == '=' {
			lx.pos++
			return lx.token(TokenLtEq, start), nil
		}
		return lx.token(TokenLt, start), nil
	case '>':
		if lx.at(0) == '=' {
			lx.pos++
			return lx.token(TokenGtEq, start), nil
		}
		return lx.token(TokenGt, start), nil
	}

	lx.pos = start
	r, sz := utf8.DecodeRuneInString(lx.input[lx.pos:])
	lx.pos += sz
	span := source.Span{Start: start, End: lx.pos}
	if r == utf8.RuneError && sz == 1 {
		return Token{}, &Error{Kind: TokenError, Span: span}
	}
	return Token{}, &Error{Kind: InvalidCharacter, Char: r, Span: span}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
