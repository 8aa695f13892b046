package parser

import (
	"mathic/internal/ast"
	"mathic/internal/lexer"
	"mathic/internal/source"
)

// Parser pulls tokens from the lexer on demand. The first error aborts the
// parse; there is no recovery.
type Parser struct {
	lx   *lexer.Lexer
	buf  []lexer.Token // lookahead, filled lazily
	prev lexer.Token
}

// bailout carries the first error up to Parse.
type bailout struct{ err *ParseError }

func New(input string) *Parser {
	return &Parser{lx: lexer.New(input)}
}

func Parse(input string) (*ast.Program, error) {
	return New(input).Parse()
}

// ParseExpr parses input as a single expression followed by end of input.
func ParseExpr(input string) (ast.Expr, error) {
	p := New(input)
	var ex ast.Expr
	err := p.guard(func() {
		ex = p.parseExpr()
		if !p.at(lexer.TokenEOF) {
			p.unexpected(expectTok(lexer.TokenEOF))
		}
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

func (p *Parser) Parse() (*ast.Program, error) {
	var prog *ast.Program
	if err := p.guard(func() { prog = p.parseProgram() }); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			err = b.err
		}
	}()
	fn()
	return nil
}

func (p *Parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.at(lexer.TokenEOF) {
		switch p.peek().Kind {
		case lexer.TokenDf:
			prog.Funcs = append(prog.Funcs, p.parseFuncDecl())
		case lexer.TokenStruct:
			prog.Structs = append(prog.Structs, p.parseStructDecl())
		default:
			p.unexpected(Expected{Kind: ExpectCustom, Text: "function declaration"})
		}
	}
	return prog
}

// df NAME ( params ) { body }
func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	start := p.advance() // df
	name := p.expectIdent()
	p.expect(lexer.TokenLParen)
	var params []ast.Param
	if !p.at(lexer.TokenRParen) {
		for {
			id := p.expectIdent()
			params = append(params, ast.Param{Name: id.Lexeme, Span: id.Span})
			if !p.match(lexer.TokenComma) {
				break
			}
		}
	}
	p.expect(lexer.TokenRParen)
	body := p.parseBlock()
	return &ast.FuncDecl{
		Name:   name.Lexeme,
		Params: params,
		Body:   body,
		Span:   joinSpan(start.Span, body.S),
	}
}

// struct NAME { field, field }
func (p *Parser) parseStructDecl() *ast.StructDecl {
	start := p.advance() // struct
	name := p.expectIdent()
	p.expect(lexer.TokenLBrace)
	var fields []ast.Param
	for !p.at(lexer.TokenRBrace) {
		id := p.expectIdent()
		fields = append(fields, ast.Param{Name: id.Lexeme, Span: id.Span})
		if !p.match(lexer.TokenComma) {
			break
		}
	}
	end := p.expect(lexer.TokenRBrace)
	return &ast.StructDecl{Name: name.Lexeme, Fields: fields, Span: joinSpan(start.Span, end.Span)}
}

// helpers
func (p *Parser) fill(n int) {
	for len(p.buf) < n {
		tok, err := p.lx.Next()
		if err != nil {
			panic(bailout{&ParseError{Lex: err.(*lexer.Error)}})
		}
		p.buf = append(p.buf, tok)
	}
}

func (p *Parser) peek() lexer.Token {
	p.fill(1)
	return p.buf[0]
}

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.buf = p.buf[1:]
	}
	p.prev = t
	return t
}

// expect consumes a required punctuation or keyword token.
func (p *Parser) expect(k lexer.Kind) lexer.Token {
	if p.at(k) {
		return p.advance()
	}
	p.endCheck()
	p.fail(&SyntaxError{Kind: MissingToken, Missing: k, Span: p.peek().Span})
	return lexer.Token{}
}

func (p *Parser) expectIdent() lexer.Token {
	if p.at(lexer.TokenIdent) {
		return p.advance()
	}
	p.unexpected(expectIdentifier)
	return lexer.Token{}
}

// unexpected reports the lookahead token as not matching want, or
// UnexpectedEnd if input is exhausted.
func (p *Parser) unexpected(want Expected) {
	p.endCheck()
	tok := p.peek()
	p.fail(&SyntaxError{Kind: UnexpectedToken, Found: tok, Expected: want, Span: tok.Span})
}

func (p *Parser) endCheck() {
	if tok := p.peek(); tok.Kind == lexer.TokenEOF {
		p.fail(&SyntaxError{Kind: UnexpectedEnd, Span: tok.Span})
	}
}

func (p *Parser) fail(se *SyntaxError) {
	panic(bailout{&ParseError{Syntax: se}})
}

func joinSpan(a, b source.Span) source.Span { return source.Join(a, b) }
