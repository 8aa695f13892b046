package ir

import (
	"fmt"
	"strconv"
	"strings"

	"mathic/internal/source"
)

// BlockID is the index of a block in its function's block list.
type BlockID int

func (id BlockID) String() string { return "bb" + strconv.Itoa(int(id)) }

// Program holds the lowered top-level functions in declaration order.
// Nested functions live in their parent's symbol table.
type Program struct {
	Functions []*Function
}

type Function struct {
	Name   string
	Span   source.Span
	Syms   SymbolTable
	Blocks []*BasicBlock

	cur BlockID
}

// NewFunction returns a function with a single entry block whose terminator
// is a bare return.
func NewFunction(name string, span source.Span) *Function {
	f := &Function{Name: name, Span: span}
	f.ReserveBlock(span)
	return f
}

// ReserveBlock appends an empty block returning from the function and
// reports its id. The cursor does not move.
func (f *Function) ReserveBlock(span source.Span) BlockID {
	id := BlockID(len(f.Blocks))
	f.Blocks = append(f.Blocks, &BasicBlock{ID: id, Term: &Return{S: span}, S: span})
	return id
}

// Current is the block new instructions are appended to.
func (f *Function) Current() BlockID { return f.cur }

func (f *Function) SetCurrent(id BlockID) { f.cur = id }

func (f *Function) Block(id BlockID) *BasicBlock { return f.Blocks[id] }

func (f *Function) CurrentBlock() *BasicBlock { return f.Blocks[f.cur] }

// Emit appends ins to the current block.
func (f *Function) Emit(ins LValInstruct) {
	b := f.CurrentBlock()
	b.Instructions = append(b.Instructions, ins)
}

// Terminate replaces the current block's terminator.
func (f *Function) Terminate(t Terminator) { f.CurrentBlock().Term = t }

// Params returns the parameter locals in declaration order.
func (f *Function) Params() []Local {
	var out []Local
	for _, l := range f.Syms.Locals {
		if l.Kind == LocalParam {
			out = append(out, l)
		}
	}
	return out
}

type BasicBlock struct {
	ID           BlockID
	Instructions []LValInstruct
	Term         Terminator
	S            source.Span
}

type LocalKind int

const (
	LocalParam LocalKind = iota
	LocalTemp
)

func (k LocalKind) String() string {
	if k == LocalParam {
		return "param"
	}
	return "temp"
}

// Local is a stack slot. Name and Span are both optional: Name is empty for
// compiler temporaries and a zero Span means no source position.
type Local struct {
	Idx  int
	Kind LocalKind
	Name string
	Span source.Span
}

// SymbolTable is per function. Names map to the most recent declaration;
// nested functions are owned here rather than by the Program.
type SymbolTable struct {
	Locals          []Local
	Functions       []*Function
	LocalIndexes    map[string]int
	FunctionIndexes map[string]int
}

// AddLocal declares a local. A named local fails if the name is already
// present in the table.
func (st *SymbolTable) AddLocal(name string, span source.Span, kind LocalKind) (int, bool) {
	if name != "" {
		if _, dup := st.LocalIndexes[name]; dup {
			return 0, false
		}
	}
	return st.Declare(name, span, kind), true
}

// Declare always allocates a new slot. A named slot replaces any previous
// mapping for the name.
func (st *SymbolTable) Declare(name string, span source.Span, kind LocalKind) int {
	idx := len(st.Locals)
	st.Locals = append(st.Locals, Local{Idx: idx, Kind: kind, Name: name, Span: span})
	if name != "" {
		if st.LocalIndexes == nil {
			st.LocalIndexes = map[string]int{}
		}
		st.LocalIndexes[name] = idx
	}
	return idx
}

func (st *SymbolTable) Lookup(name string) (int, bool) {
	idx, ok := st.LocalIndexes[name]
	return idx, ok
}

// Bind points name at an existing slot, or removes it when idx < 0.
func (st *SymbolTable) Bind(name string, idx int) {
	if idx < 0 {
		delete(st.LocalIndexes, name)
		return
	}
	if st.LocalIndexes == nil {
		st.LocalIndexes = map[string]int{}
	}
	st.LocalIndexes[name] = idx
}

func (st *SymbolTable) AddFunction(fn *Function) bool {
	if _, dup := st.FunctionIndexes[fn.Name]; dup {
		return false
	}
	if st.FunctionIndexes == nil {
		st.FunctionIndexes = map[string]int{}
	}
	st.FunctionIndexes[fn.Name] = len(st.Functions)
	st.Functions = append(st.Functions, fn)
	return true
}

func (st *SymbolTable) LookupFunction(name string) (*Function, bool) {
	idx, ok := st.FunctionIndexes[name]
	if !ok {
		return nil, false
	}
	return st.Functions[idx], true
}

// Instructions

type LValInstruct interface {
	lvalNode()
	Span() source.Span
	fmtString() string
}

// Let declares and initializes a local.
type Let struct {
	Local int
	Init  RValInstruct
	S     source.Span
}

func (*Let) lvalNode()           {}
func (i *Let) Span() source.Span { return i.S }
func (i *Let) fmtString() string {
	return fmt.Sprintf("let _%d = %s", i.Local, i.Init.fmtString())
}

type Assign struct {
	Local int
	Value RValInstruct
	S     source.Span
}

func (*Assign) lvalNode()           {}
func (i *Assign) Span() source.Span { return i.S }
func (i *Assign) fmtString() string {
	return fmt.Sprintf("_%d = %s", i.Local, i.Value.fmtString())
}

// RValInstruct is a small expression tree evaluated for its value.
type RValInstruct interface {
	rvalNode()
	Span() source.Span
	fmtString() string
}

type Use struct {
	Value Value
	S     source.Span
}

func (*Use) rvalNode()           {}
func (r *Use) Span() source.Span { return r.S }
func (r *Use) fmtString() string { return r.Value.fmtString() }

type BinOp string

const (
	OpAdd BinOp = "add"
	OpSub BinOp = "sub"
	OpMul BinOp = "mul"
	OpDiv BinOp = "div"
	OpEq  BinOp = "eq"
	OpNe  BinOp = "ne"
	OpLt  BinOp = "lt"
	OpLe  BinOp = "le"
	OpGt  BinOp = "gt"
	OpGe  BinOp = "ge"
)

// IsCmp reports whether op yields a boolean.
func (op BinOp) IsCmp() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

type Binary struct {
	Op  BinOp
	LHS RValInstruct
	RHS RValInstruct
	S   source.Span
}

func (*Binary) rvalNode()           {}
func (r *Binary) Span() source.Span { return r.S }
func (r *Binary) fmtString() string {
	return fmt.Sprintf("%s(%s, %s)", r.Op, r.LHS.fmtString(), r.RHS.fmtString())
}

type UnOp string

const (
	OpNeg UnOp = "neg"
	OpNot UnOp = "not"
)

type Unary struct {
	Op  UnOp
	RHS RValInstruct
	S   source.Span
}

func (*Unary) rvalNode()           {}
func (r *Unary) Span() source.Span { return r.S }
func (r *Unary) fmtString() string {
	return fmt.Sprintf("%s(%s)", r.Op, r.RHS.fmtString())
}

type LogicOp string

const (
	OpAnd LogicOp = "and"
	OpOr  LogicOp = "or"
)

// Logical evaluates both operands; there is no short-circuit.
type Logical struct {
	Op  LogicOp
	LHS RValInstruct
	RHS RValInstruct
	S   source.Span
}

func (*Logical) rvalNode()           {}
func (r *Logical) Span() source.Span { return r.S }
func (r *Logical) fmtString() string {
	return fmt.Sprintf("%s(%s, %s)", r.Op, r.LHS.fmtString(), r.RHS.fmtString())
}

// Values

type Value interface {
	valueNode()
	fmtString() string
}

// InMemory loads from a local slot.
type InMemory struct {
	Local int
}

func (*InMemory) valueNode()          {}
func (v *InMemory) fmtString() string { return "_" + strconv.Itoa(v.Local) }

// ConstInt keeps the literal text next to its 64-bit pattern.
type ConstInt struct {
	Text string
	Bits uint64
}

func (*ConstInt) valueNode()          {}
func (v *ConstInt) fmtString() string { return strconv.FormatUint(v.Bits, 10) }

type ConstBool struct {
	V bool
}

func (*ConstBool) valueNode() {}
func (v *ConstBool) fmtString() string {
	if v.V {
		return "true"
	}
	return "false"
}

type ConstVoid struct{}

func (*ConstVoid) valueNode()        {}
func (*ConstVoid) fmtString() string { return "void" }

// Terminators

type Terminator interface {
	termNode()
	Span() source.Span
	Successors() []BlockID
	fmtString() string
}

type Return struct {
	Value RValInstruct // optional
	S     source.Span
}

func (*Return) termNode()               {}
func (t *Return) Span() source.Span     { return t.S }
func (t *Return) Successors() []BlockID { return nil }
func (t *Return) fmtString() string {
	if t.Value == nil {
		return "ret"
	}
	return "ret " + t.Value.fmtString()
}

type Branch struct {
	Target BlockID
	S      source.Span
}

func (*Branch) termNode()               {}
func (t *Branch) Span() source.Span     { return t.S }
func (t *Branch) Successors() []BlockID { return []BlockID{t.Target} }
func (t *Branch) fmtString() string     { return "br " + t.Target.String() }

type CondBranch struct {
	Cond  RValInstruct
	True  BlockID
	False BlockID
	S     source.Span
}

func (*CondBranch) termNode()               {}
func (t *CondBranch) Span() source.Span     { return t.S }
func (t *CondBranch) Successors() []BlockID { return []BlockID{t.True, t.False} }
func (t *CondBranch) fmtString() string {
	return fmt.Sprintf("condbr %s %s %s", t.Cond.fmtString(), t.True, t.False)
}

type Unreachable struct {
	S source.Span
}

func (*Unreachable) termNode()               {}
func (t *Unreachable) Span() source.Span     { return t.S }
func (t *Unreachable) Successors() []BlockID { return nil }
func (t *Unreachable) fmtString() string     { return "unreachable" }

// Call transfers control to Callee, stores the result in Dest and resumes
// at Next.
type Call struct {
	Callee string
	Args   []RValInstruct
	Dest   Value
	Next   BlockID
	S      source.Span
}

func (*Call) termNode()               {}
func (t *Call) Span() source.Span     { return t.S }
func (t *Call) Successors() []BlockID { return []BlockID{t.Next} }
func (t *Call) fmtString() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.fmtString()
	}
	return fmt.Sprintf("call %s(%s) -> %s, %s", t.Callee, strings.Join(args, ", "), t.Dest.fmtString(), t.Next)
}

// Function looks up a top-level function by name.
func (p *Program) Function(name string) (*Function, bool) {
	for _, f := range p.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Resolve finds the function a call to callee refers to from inside chain,
// which lists the enclosing functions from outermost to innermost. Nested
// functions are searched innermost first, then the top level.
func (p *Program) Resolve(chain []*Function, callee string) (*Function, bool) {
	c, ok := p.ResolveChain(chain, callee)
	if !ok {
		return nil, false
	}
	return c[len(c)-1], true
}

// ResolveChain is Resolve but returns the callee's own chain: its enclosing
// functions followed by the callee.
func (p *Program) ResolveChain(chain []*Function, callee string) ([]*Function, bool) {
	for i := len(chain) - 1; i >= 0; i-- {
		if f, ok := chain[i].Syms.LookupFunction(callee); ok {
			out := make([]*Function, i+2)
			copy(out, chain[:i+1])
			out[i+1] = f
			return out, true
		}
	}
	if f, ok := p.Function(callee); ok {
		return []*Function{f}, true
	}
	return nil, false
}
