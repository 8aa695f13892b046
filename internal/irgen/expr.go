package irgen

import (
	"strconv"
	"strings"

	"mathic/internal/ast"
	"mathic/internal/ir"
)

func (g *gen) lowerExpr(e ast.Expr) (ir.RValInstruct, error) {
	switch e := e.(type) {
	case *ast.NumberLit:
		v, err := lowerNumber(e)
		if err != nil {
			return nil, err
		}
		return &ir.Use{Value: v, S: e.S}, nil
	case *ast.BoolLit:
		return &ir.Use{Value: &ir.ConstBool{V: e.Value}, S: e.S}, nil
	case *ast.StringLit:
		return nil, unsupported("string literals", e.S)
	case *ast.IdentExpr:
		idx, ok := g.fn.Syms.Lookup(e.Name)
		if !ok {
			return nil, errAt(UndeclaredVariable, e.Name, e.S)
		}
		return &ir.Use{Value: &ir.InMemory{Local: idx}, S: e.S}, nil
	case *ast.GroupExpr:
		return g.lowerExpr(e.Expr)
	case *ast.BinaryExpr:
		lhs, err := g.lowerExpr(e.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := g.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Op: binOps[e.Op], LHS: lhs, RHS: rhs, S: e.S}, nil
	case *ast.LogicalExpr:
		lhs, err := g.lowerExpr(e.Left)
		if err != nil {
			return nil, err
		}
		rhs, err := g.lowerExpr(e.Right)
		if err != nil {
			return nil, err
		}
		op := ir.OpAnd
		if e.Op == ast.OpOr {
			op = ir.OpOr
		}
		return &ir.Logical{Op: op, LHS: lhs, RHS: rhs, S: e.S}, nil
	case *ast.UnaryExpr:
		rhs, err := g.lowerExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		op := ir.OpNeg
		if e.Op == ast.OpNot {
			op = ir.OpNot
		}
		return &ir.Unary{Op: op, RHS: rhs, S: e.S}, nil
	case *ast.AssignExpr:
		idx, ok := g.fn.Syms.Lookup(e.Name)
		if !ok {
			return nil, errAt(UndeclaredVariable, e.Name, e.NameSpan)
		}
		val, err := g.lowerExpr(e.Expr)
		if err != nil {
			return nil, err
		}
		g.emit(&ir.Assign{Local: idx, Value: val, S: e.S})
		return &ir.Use{Value: &ir.ConstVoid{}, S: e.S}, nil
	case *ast.CallExpr:
		return g.lowerCall(e)
	}
	return nil, unsupported("expression", e.Span())
}

var binOps = map[ast.BinaryOp]ir.BinOp{
	ast.OpAdd: ir.OpAdd,
	ast.OpSub: ir.OpSub,
	ast.OpMul: ir.OpMul,
	ast.OpDiv: ir.OpDiv,
	ast.OpEq:  ir.OpEq,
	ast.OpNe:  ir.OpNe,
	ast.OpLt:  ir.OpLt,
	ast.OpLe:  ir.OpLe,
	ast.OpGt:  ir.OpGt,
	ast.OpGe:  ir.OpGe,
}

// lowerCall ends the current block with a call terminator and continues in a
// fresh block. The call's value is the temp the callee's result lands in.
func (g *gen) lowerCall(e *ast.CallExpr) (ir.RValInstruct, error) {
	args := make([]ir.RValInstruct, 0, len(e.Args))
	for _, a := range e.Args {
		v, err := g.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	r := g.temp(e.S)
	dest := &ir.InMemory{Local: r}
	cont := g.split(e.S)
	g.term(&ir.Call{Callee: e.Callee, Args: args, Dest: dest, Next: cont, S: e.S})
	g.setBlock(cont)
	return &ir.Use{Value: dest, S: e.S}, nil
}

// lowerNumber converts the literal text kept by the lexer into a 64-bit
// pattern. Values above the signed range keep their bits.
func lowerNumber(e *ast.NumberLit) (*ir.ConstInt, error) {
	if strings.Contains(e.Text, ".") {
		return nil, unsupported("floating-point literals", e.S)
	}
	bits, err := strconv.ParseUint(e.Text, 10, 64)
	if err != nil {
		return nil, errAt(InvalidLiteral, e.Text, e.S)
	}
	return &ir.ConstInt{Text: e.Text, Bits: bits}, nil
}
