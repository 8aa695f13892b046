package irgen

import (
	"mathic/internal/ast"
	"mathic/internal/ir"
)

func (g *gen) lowerBlock(b *ast.BlockStmt) error {
	g.pushScope()
	if err := g.lowerStmts(b.Stmts); err != nil {
		return err
	}
	g.popScope()
	return nil
}

func (g *gen) lowerStmts(stmts []ast.Stmt) error {
	for _, st := range stmts {
		if g.returned[g.fn.Current()] {
			// Code after a return gets a block of its own that nothing
			// branches to.
			dead := g.fn.ReserveBlock(st.Span())
			g.fn.Block(dead).Term = &ir.Unreachable{S: st.Span()}
			g.setBlock(dead)
		}
		if err := g.lowerStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (g *gen) lowerStmt(st ast.Stmt) error {
	switch s := st.(type) {
	case *ast.LetStmt:
		init, err := g.lowerExpr(s.Init)
		if err != nil {
			return err
		}
		idx, err := g.declare(s.Name, s.NameSpan, ir.LocalTemp)
		if err != nil {
			return err
		}
		g.emit(&ir.Let{Local: idx, Init: init, S: s.S})
		return nil
	case *ast.ExprStmt:
		_, err := g.lowerExpr(s.Expr)
		return err
	case *ast.ReturnStmt:
		var val ir.RValInstruct
		if s.Expr != nil {
			v, err := g.lowerExpr(s.Expr)
			if err != nil {
				return err
			}
			val = v
		}
		g.term(&ir.Return{Value: val, S: s.S})
		g.returned[g.fn.Current()] = true
		return nil
	case *ast.IfStmt:
		return g.lowerIf(s)
	case *ast.WhileStmt:
		return g.lowerWhile(s)
	case *ast.ForStmt:
		return g.lowerFor(s)
	case *ast.BlockStmt:
		body := g.fn.ReserveBlock(s.S)
		cont := g.split(s.S)
		g.term(&ir.Branch{Target: body, S: s.S})
		g.fn.Block(body).Term = &ir.Branch{Target: cont, S: s.S}
		g.setBlock(body)
		if err := g.lowerBlock(s); err != nil {
			return err
		}
		g.setBlock(cont)
		return nil
	case *ast.FuncStmt:
		child, err := lowerFunc(s.Decl, g.cfg)
		if err != nil {
			return err
		}
		if !g.fn.Syms.AddFunction(child) {
			return errAt(DuplicateDeclaration, s.Decl.Name, s.Decl.Span)
		}
		return nil
	case *ast.StructStmt:
		return unsupported("struct declarations", s.Decl.Span)
	}
	return unsupported("statement", st.Span())
}

// if c { then }            bb_cur: condbr c then merge
// if c { then } else { e } bb_cur: condbr c then else
//
// Both arms branch to merge; merge continues with whatever the current block
// was going to do.
func (g *gen) lowerIf(s *ast.IfStmt) error {
	cond, err := g.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	then := g.fn.ReserveBlock(s.Then.S)
	if s.Else == nil {
		merge := g.split(s.S)
		g.term(&ir.CondBranch{Cond: cond, True: then, False: merge, S: s.S})
		g.fn.Block(then).Term = &ir.Branch{Target: merge, S: s.Then.S}
		g.setBlock(then)
		if err := g.lowerBlock(s.Then); err != nil {
			return err
		}
		g.setBlock(merge)
		return nil
	}

	els := g.fn.ReserveBlock(s.Else.S)
	merge := g.split(s.S)
	g.term(&ir.CondBranch{Cond: cond, True: then, False: els, S: s.S})
	g.fn.Block(then).Term = &ir.Branch{Target: merge, S: s.Then.S}
	g.fn.Block(els).Term = &ir.Branch{Target: merge, S: s.Else.S}
	g.setBlock(then)
	if err := g.lowerBlock(s.Then); err != nil {
		return err
	}
	g.setBlock(els)
	if err := g.lowerBlock(s.Else); err != nil {
		return err
	}
	g.setBlock(merge)
	return nil
}

// loop reserves the header, body and exit blocks of a loop and branches from
// the current block into the header.
func (g *gen) loop(s ast.Stmt, body *ast.BlockStmt) (start, loop, end ir.BlockID) {
	start = g.fn.ReserveBlock(s.Span())
	loop = g.fn.ReserveBlock(body.S)
	end = g.split(s.Span())
	g.term(&ir.Branch{Target: start, S: s.Span()})
	g.fn.Block(loop).Term = &ir.Branch{Target: start, S: body.S}
	return start, loop, end
}

// The condition is lowered inside the header so calls in it run on every
// iteration.
func (g *gen) lowerWhile(s *ast.WhileStmt) error {
	start, loop, end := g.loop(s, s.Body)
	g.setBlock(start)
	cond, err := g.lowerExpr(s.Cond)
	if err != nil {
		return err
	}
	g.term(&ir.CondBranch{Cond: cond, True: loop, False: end, S: s.Cond.Span()})
	g.setBlock(loop)
	if err := g.lowerBlock(s.Body); err != nil {
		return err
	}
	g.setBlock(end)
	return nil
}

// for x = a..b { body } is
//
//	let x = a
//	while x < b { body; x = x + 1 }
//
// Both bounds resolve names before x is declared, so under block scopes
// `for i = 0..i` compares against the outer i.
func (g *gen) lowerFor(s *ast.ForStmt) error {
	init, err := g.lowerExpr(s.Start)
	if err != nil {
		return err
	}
	g.pushScope()
	pre := g.fn.Current()

	start, loop, end := g.loop(s, s.Body)
	g.setBlock(start)
	limit, err := g.lowerExpr(s.End)
	if err != nil {
		return err
	}
	header := g.fn.Current()

	v, err := g.declare(s.Var, s.VarSpan, ir.LocalTemp)
	if err != nil {
		return err
	}
	g.setBlock(pre)
	g.emit(&ir.Let{Local: v, Init: init, S: s.VarSpan})
	g.setBlock(header)

	counter := &ir.Use{Value: &ir.InMemory{Local: v}, S: s.VarSpan}
	cond := &ir.Binary{Op: ir.OpLt, LHS: counter, RHS: limit, S: s.S}
	g.term(&ir.CondBranch{Cond: cond, True: loop, False: end, S: s.S})

	g.setBlock(loop)
	if err := g.lowerBlock(s.Body); err != nil {
		return err
	}
	// A body that ends in return never reaches the back-edge.
	if !g.returned[g.fn.Current()] {
		one := &ir.Use{Value: &ir.ConstInt{Text: "1", Bits: 1}, S: s.VarSpan}
		g.emit(&ir.Assign{
			Local: v,
			Value: &ir.Binary{Op: ir.OpAdd, LHS: counter, RHS: one, S: s.VarSpan},
			S:     s.VarSpan,
		})
	}
	g.popScope()
	g.setBlock(end)
	return nil
}
