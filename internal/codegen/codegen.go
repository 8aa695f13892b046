package codegen

import (
	"fmt"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"mathic/internal/ir"
	"mathic/internal/names"
)

// Emit translates a lowered program into an LLVM module. Every local is an
// i64 stack slot; branch conditions compare against zero. Top-level functions
// are external, nested ones private. When a parameterless top-level main
// exists a C `main` wrapper returning its low 32 bits is added.
func Emit(p *ir.Program) (*llvm.Module, error) {
	e := &emitter{
		prog:  p,
		mod:   llvm.NewModule(),
		funcs: map[*ir.Function]*llvm.Func{},
	}
	for _, f := range p.Functions {
		e.declare(nil, f, false)
	}
	for _, f := range p.Functions {
		if err := e.define([]*ir.Function{f}); err != nil {
			return nil, err
		}
	}
	if main, ok := p.Function("main"); ok && len(main.Params()) == 0 {
		e.entryWrapper(e.funcs[main])
	}
	return e.mod, nil
}

// EmitText is Emit rendered as textual LLVM IR.
func EmitText(p *ir.Program) (string, error) {
	m, err := Emit(p)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}

type emitter struct {
	prog  *ir.Program
	mod   *llvm.Module
	funcs map[*ir.Function]*llvm.Func
}

func (e *emitter) declare(parents []string, f *ir.Function, nested bool) {
	path := names.Child(parents, f.Name)
	var params []*llvm.Param
	for _, l := range f.Params() {
		params = append(params, llvm.NewParam(l.Name, types.I64))
	}
	fn := e.mod.NewFunc(names.Symbol(path), types.I64, params...)
	if nested {
		fn.Linkage = enum.LinkagePrivate
	}
	e.funcs[f] = fn
	for _, child := range f.Syms.Functions {
		e.declare(path, child, true)
	}
}

func (e *emitter) define(chain []*ir.Function) error {
	f := chain[len(chain)-1]
	fc := &funcCtx{
		emitter: e,
		chain:   chain,
		fn:      e.funcs[f],
		blocks:  make([]*llvm.Block, len(f.Blocks)),
		slots:   make([]*llvm.InstAlloca, len(f.Syms.Locals)),
	}
	if err := fc.emit(); err != nil {
		return err
	}
	for _, child := range f.Syms.Functions {
		if err := e.define(append(chain[:len(chain):len(chain)], child)); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) entryWrapper(target *llvm.Func) {
	main := e.mod.NewFunc("main", types.I32)
	b := main.NewBlock("")
	r := b.NewCall(target)
	b.NewRet(b.NewTrunc(r, types.I32))
}

type funcCtx struct {
	*emitter
	chain  []*ir.Function
	fn     *llvm.Func
	blocks []*llvm.Block
	slots  []*llvm.InstAlloca
}

func (fc *funcCtx) path() string {
	parts := make([]string, len(fc.chain))
	for i, f := range fc.chain {
		parts[i] = f.Name
	}
	return names.Display(parts)
}

func (fc *funcCtx) emit() error {
	f := fc.chain[len(fc.chain)-1]

	// Block names contain a dot so they never clash with source names.
	entry := fc.fn.NewBlock("bb.entry")
	for i := range f.Blocks {
		fc.blocks[i] = fc.fn.NewBlock(fmt.Sprintf("bb.%d", i))
	}
	used := map[string]bool{}
	for i, l := range f.Syms.Locals {
		slot := entry.NewAlloca(types.I64)
		if l.Name != "" {
			// shadowed names under block scopes share a source name
			name := l.Name + ".addr"
			if used[name] {
				name = fmt.Sprintf("%s.%d", name, i)
			}
			used[name] = true
			slot.SetName(name)
		}
		fc.slots[i] = slot
	}
	for i, l := range f.Params() {
		entry.NewStore(fc.fn.Params[i], fc.slots[l.Idx])
	}
	entry.NewBr(fc.blocks[0])

	for i, b := range f.Blocks {
		lb := fc.blocks[i]
		for _, ins := range b.Instructions {
			switch ins := ins.(type) {
			case *ir.Let:
				lb.NewStore(fc.rval(lb, ins.Init), fc.slots[ins.Local])
			case *ir.Assign:
				lb.NewStore(fc.rval(lb, ins.Value), fc.slots[ins.Local])
			}
		}
		if err := fc.terminate(lb, b.Term); err != nil {
			return err
		}
	}
	return nil
}

func (fc *funcCtx) terminate(lb *llvm.Block, t ir.Terminator) error {
	switch t := t.(type) {
	case *ir.Return:
		if t.Value == nil {
			lb.NewRet(constant.NewInt(types.I64, 0))
			return nil
		}
		lb.NewRet(fc.rval(lb, t.Value))
	case *ir.Branch:
		lb.NewBr(fc.blocks[t.Target])
	case *ir.CondBranch:
		c := lb.NewICmp(enum.IPredNE, fc.rval(lb, t.Cond), zero)
		lb.NewCondBr(c, fc.blocks[t.True], fc.blocks[t.False])
	case *ir.Unreachable:
		lb.NewUnreachable()
	case *ir.Call:
		chain, ok := fc.prog.ResolveChain(fc.chain, t.Callee)
		if !ok {
			return fmt.Errorf("%s: call to undefined function %s", fc.path(), t.Callee)
		}
		callee := fc.funcs[chain[len(chain)-1]]
		if len(callee.Params) != len(t.Args) {
			return fmt.Errorf("%s: %s called with %d arguments, expected %d", fc.path(), t.Callee, len(t.Args), len(callee.Params))
		}
		args := make([]value.Value, 0, len(t.Args))
		for _, a := range t.Args {
			args = append(args, fc.rval(lb, a))
		}
		res := lb.NewCall(callee, args...)
		if dest, ok := t.Dest.(*ir.InMemory); ok {
			lb.NewStore(res, fc.slots[dest.Local])
		}
		lb.NewBr(fc.blocks[t.Next])
	default:
		return fmt.Errorf("%s: unknown terminator %T", fc.path(), t)
	}
	return nil
}
