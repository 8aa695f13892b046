package parser

import (
	"mathic/internal/ast"
	"mathic/internal/lexer"
)

func (p *Parser) parseBlock() *ast.BlockStmt {
	start := p.expect(lexer.TokenLBrace)
	var stmts []ast.Stmt
	for !p.at(lexer.TokenRBrace) {
		p.endCheck()
		stmts = append(stmts, p.parseStmt())
	}
	end := p.advance()
	return &ast.BlockStmt{Stmts: stmts, S: joinSpan(start.Span, end.Span)}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.peek().Kind {
	case lexer.TokenDf:
		return &ast.FuncStmt{Decl: p.parseFuncDecl()}
	case lexer.TokenStruct:
		return &ast.StructStmt{Decl: p.parseStructDecl()}
	case lexer.TokenLet:
		return p.parseLet()
	case lexer.TokenIf:
		return p.parseIf()
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenLBrace:
		return p.parseBlock()
	case lexer.TokenIdent, lexer.TokenNum, lexer.TokenStr, lexer.TokenTrue, lexer.TokenFalse,
		lexer.TokenLParen, lexer.TokenBang, lexer.TokenMinus:
		ex := p.parseExpr()
		end := p.expect(lexer.TokenSemicolon)
		return &ast.ExprStmt{Expr: ex, S: joinSpan(ex.Span(), end.Span)}
	}
	p.unexpected(expectStatement)
	return nil
}

// let NAME = expr ;
func (p *Parser) parseLet() ast.Stmt {
	start := p.advance()
	name := p.expectIdent()
	p.expect(lexer.TokenEq)
	init := p.parseExpr()
	end := p.expect(lexer.TokenSemicolon)
	return &ast.LetStmt{Name: name.Lexeme, NameSpan: name.Span, Init: init, S: joinSpan(start.Span, end.Span)}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.advance()
	cond := p.parseExpr()
	then := p.parseBlock()
	s := &ast.IfStmt{Cond: cond, Then: then, S: joinSpan(start.Span, then.S)}
	if p.match(lexer.TokenElse) {
		s.Else = p.parseBlock()
		s.S = joinSpan(s.S, s.Else.S)
	}
	return s
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.advance()
	cond := p.parseExpr()
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, S: joinSpan(start.Span, body.S)}
}

// for NAME = start .. end { body }
func (p *Parser) parseFor() ast.Stmt {
	start := p.advance()
	name := p.expectIdent()
	p.expect(lexer.TokenEq)
	from := p.parseExpr()
	p.expect(lexer.TokenDotDot)
	to := p.parseExpr()
	body := p.parseBlock()
	return &ast.ForStmt{
		Var:     name.Lexeme,
		VarSpan: name.Span,
		Start:   from,
		End:     to,
		Body:    body,
		S:       joinSpan(start.Span, body.S),
	}
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.advance()
	if p.at(lexer.TokenSemicolon) {
		end := p.advance()
		return &ast.ReturnStmt{S: joinSpan(start.Span, end.Span)}
	}
	ex := p.parseExpr()
	end := p.expect(lexer.TokenSemicolon)
	return &ast.ReturnStmt{Expr: ex, S: joinSpan(start.Span, end.Span)}
}
