package ast

import "mathic/internal/source"

type Program struct {
	Funcs   []*FuncDecl
	Structs []*StructDecl
}

type FuncDecl struct {
	Name   string
	Params []Param
	Body   *BlockStmt
	Span   source.Span
}

type Param struct {
	Name string
	Span source.Span
}

// StructDecl is parsed but never lowered.
type StructDecl struct {
	Name   string
	Fields []Param
	Span   source.Span
}

// Stmt
type Stmt interface {
	stmtNode()
	Span() source.Span
}

type BlockStmt struct {
	Stmts []Stmt
	S     source.Span
}

func (*BlockStmt) stmtNode()           {}
func (s *BlockStmt) Span() source.Span { return s.S }

// LetStmt is `let name = expr;`.
type LetStmt struct {
	Name     string
	NameSpan source.Span
	Init     Expr
	S        source.Span
}

func (*LetStmt) stmtNode()           {}
func (s *LetStmt) Span() source.Span { return s.S }

// FuncStmt is a nested `df` declaration inside a function body.
type FuncStmt struct {
	Decl *FuncDecl
}

func (*FuncStmt) stmtNode()           {}
func (s *FuncStmt) Span() source.Span { return s.Decl.Span }

type StructStmt struct {
	Decl *StructDecl
}

func (*StructStmt) stmtNode()           {}
func (s *StructStmt) Span() source.Span { return s.Decl.Span }

type IfStmt struct {
	Cond Expr
	Then *BlockStmt
	Else *BlockStmt // optional
	S    source.Span
}

func (*IfStmt) stmtNode()           {}
func (s *IfStmt) Span() source.Span { return s.S }

type WhileStmt struct {
	Cond Expr
	Body *BlockStmt
	S    source.Span
}

func (*WhileStmt) stmtNode()           {}
func (s *WhileStmt) Span() source.Span { return s.S }

// ForStmt is `for x = start..end { body }`: x counts up by one while x < end.
type ForStmt struct {
	Var     string
	VarSpan source.Span
	Start   Expr
	End     Expr
	Body    *BlockStmt
	S       source.Span
}

func (*ForStmt) stmtNode()           {}
func (s *ForStmt) Span() source.Span { return s.S }

type ReturnStmt struct {
	Expr Expr // optional
	S    source.Span
}

func (*ReturnStmt) stmtNode()           {}
func (s *ReturnStmt) Span() source.Span { return s.S }

type ExprStmt struct {
	Expr Expr
	S    source.Span
}

func (*ExprStmt) stmtNode()           {}
func (s *ExprStmt) Span() source.Span { return s.S }

// Expr
type Expr interface {
	exprNode()
	Span() source.Span
}

// NumberLit keeps the literal as written; it is converted during lowering.
type NumberLit struct {
	Text string
	S    source.Span
}

func (*NumberLit) exprNode()           {}
func (e *NumberLit) Span() source.Span { return e.S }

type BoolLit struct {
	Value bool
	S     source.Span
}

func (*BoolLit) exprNode()           {}
func (e *BoolLit) Span() source.Span { return e.S }

// StringLit holds the text between the quotes.
type StringLit struct {
	Value string
	S     source.Span
}

func (*StringLit) exprNode()           {}
func (e *StringLit) Span() source.Span { return e.S }

type IdentExpr struct {
	Name string
	S    source.Span
}

func (*IdentExpr) exprNode()           {}
func (e *IdentExpr) Span() source.Span { return e.S }

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
)

func (op BinaryOp) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	}
	return "?"
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
	S     source.Span
}

func (*BinaryExpr) exprNode()           {}
func (e *BinaryExpr) Span() source.Span { return e.S }

type LogicalOp int

const (
	OpAnd LogicalOp = iota
	OpOr
)

func (op LogicalOp) String() string {
	if op == OpAnd {
		return "and"
	}
	return "or"
}

type LogicalExpr struct {
	Op    LogicalOp
	Left  Expr
	Right Expr
	S     source.Span
}

func (*LogicalExpr) exprNode()           {}
func (e *LogicalExpr) Span() source.Span { return e.S }

type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

func (op UnaryOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "!"
}

type UnaryExpr struct {
	Op   UnaryOp
	Expr Expr
	S    source.Span
}

func (*UnaryExpr) exprNode()           {}
func (e *UnaryExpr) Span() source.Span { return e.S }

type CallExpr struct {
	Callee     string
	CalleeSpan source.Span
	Args       []Expr
	S          source.Span
}

func (*CallExpr) exprNode()           {}
func (e *CallExpr) Span() source.Span { return e.S }

type AssignExpr struct {
	Name     string
	NameSpan source.Span
	Expr     Expr
	S        source.Span
}

func (*AssignExpr) exprNode()           {}
func (e *AssignExpr) Span() source.Span { return e.S }

// GroupExpr is a parenthesized expression; its span covers the parens.
type GroupExpr struct {
	Expr Expr
	S    source.Span
}

func (*GroupExpr) exprNode()           {}
func (e *GroupExpr) Span() source.Span { return e.S }
