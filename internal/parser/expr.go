package parser

import (
	"mathic/internal/ast"
	"mathic/internal/lexer"
)

// Precedence, lowest first:
//
//	assignment (right-assoc)
//	or
//	and
//	== !=
//	< <= > >=
//	+ -
//	* /
//	unary ! - (right-assoc)
//	call
//	primary
func (p *Parser) parseExpr() ast.Expr { return p.parseAssign() }

func (p *Parser) parseAssign() ast.Expr {
	lhs := p.parseOr()
	if !p.at(lexer.TokenEq) {
		return lhs
	}
	id, ok := lhs.(*ast.IdentExpr)
	if !ok {
		p.unexpected(expectIdentifier)
	}
	p.advance() // =
	rhs := p.parseAssign()
	return &ast.AssignExpr{Name: id.Name, NameSpan: id.S, Expr: rhs, S: joinSpan(id.S, rhs.Span())}
}

func (p *Parser) parseOr() ast.Expr {
	ex := p.parseAnd()
	for p.at(lexer.TokenOr) {
		p.advance()
		rhs := p.parseAnd()
		ex = &ast.LogicalExpr{Op: ast.OpOr, Left: ex, Right: rhs, S: joinSpan(ex.Span(), rhs.Span())}
	}
	return ex
}

func (p *Parser) parseAnd() ast.Expr {
	ex := p.parseEquality()
	for p.at(lexer.TokenAnd) {
		p.advance()
		rhs := p.parseEquality()
		ex = &ast.LogicalExpr{Op: ast.OpAnd, Left: ex, Right: rhs, S: joinSpan(ex.Span(), rhs.Span())}
	}
	return ex
}

type binOp struct {
	tok lexer.Kind
	op  ast.BinaryOp
}

var (
	equalityOps   = []binOp{{lexer.TokenEqEq, ast.OpEq}, {lexer.TokenBangEq, ast.OpNe}}
	relationalOps = []binOp{{lexer.TokenLt, ast.OpLt}, {lexer.TokenLtEq, ast.OpLe}, {lexer.TokenGt, ast.OpGt}, {lexer.TokenGtEq, ast.OpGe}}
	additiveOps   = []binOp{{lexer.TokenPlus, ast.OpAdd}, {lexer.TokenMinus, ast.OpSub}}
	factorOps     = []binOp{{lexer.TokenStar, ast.OpMul}, {lexer.TokenSlash, ast.OpDiv}}
)

func (p *Parser) parseEquality() ast.Expr   { return p.parseBinary(p.parseRelational, equalityOps) }
func (p *Parser) parseRelational() ast.Expr { return p.parseBinary(p.parseAdditive, relationalOps) }
func (p *Parser) parseAdditive() ast.Expr   { return p.parseBinary(p.parseFactor, additiveOps) }
func (p *Parser) parseFactor() ast.Expr     { return p.parseBinary(p.parseUnary, factorOps) }

// parseBinary builds a left-leaning tree over one precedence level.
func (p *Parser) parseBinary(next func() ast.Expr, ops []binOp) ast.Expr {
	ex := next()
	for {
		op, ok := matchOp(p.peek().Kind, ops)
		if !ok {
			return ex
		}
		p.advance()
		rhs := next()
		ex = &ast.BinaryExpr{Op: op, Left: ex, Right: rhs, S: joinSpan(ex.Span(), rhs.Span())}
	}
}

func matchOp(k lexer.Kind, ops []binOp) (ast.BinaryOp, bool) {
	for _, o := range ops {
		if o.tok == k {
			return o.op, true
		}
	}
	return 0, false
}

func (p *Parser) parseUnary() ast.Expr {
	var op ast.UnaryOp
	switch p.peek().Kind {
	case lexer.TokenBang:
		op = ast.OpNot
	case lexer.TokenMinus:
		op = ast.OpNeg
	default:
		return p.parseCall()
	}
	start := p.advance()
	rhs := p.parseUnary()
	return &ast.UnaryExpr{Op: op, Expr: rhs, S: joinSpan(start.Span, rhs.Span())}
}

func (p *Parser) parseCall() ast.Expr {
	ex := p.parsePrimary()
	for p.at(lexer.TokenLParen) {
		id, ok := ex.(*ast.IdentExpr)
		if !ok {
			p.unexpected(expectIdentifier)
		}
		p.advance() // (
		var args []ast.Expr
		if !p.at(lexer.TokenRParen) {
			for {
				args = append(args, p.parseExpr())
				if !p.match(lexer.TokenComma) {
					break
				}
			}
		}
		end := p.expect(lexer.TokenRParen)
		ex = &ast.CallExpr{Callee: id.Name, CalleeSpan: id.S, Args: args, S: joinSpan(id.S, end.Span)}
	}
	return ex
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenNum:
		p.advance()
		return &ast.NumberLit{Text: tok.Lexeme, S: tok.Span}
	case lexer.TokenTrue, lexer.TokenFalse:
		p.advance()
		return &ast.BoolLit{Value: tok.Kind == lexer.TokenTrue, S: tok.Span}
	case lexer.TokenStr:
		p.advance()
		return &ast.StringLit{Value: unquote(tok.Lexeme), S: tok.Span}
	case lexer.TokenIdent:
		p.advance()
		return &ast.IdentExpr{Name: tok.Lexeme, S: tok.Span}
	case lexer.TokenLParen:
		p.advance()
		inner := p.parseExpr()
		end := p.expect(lexer.TokenRParen)
		return &ast.GroupExpr{Expr: inner, S: joinSpan(tok.Span, end.Span)}
	}
	p.unexpected(expectExpression)
	return nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
