package codegen

import (
	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"mathic/internal/ir"
)

var zero = constant.NewInt(types.I64, 0)

func word(v int64) *constant.Int { return constant.NewInt(types.I64, v) }

// widen turns an i1 into a 0/1 word.
func widen(b *llvm.Block, v value.Value) value.Value {
	return b.NewZExt(v, types.I64)
}

func truthy(b *llvm.Block, v value.Value) value.Value {
	return b.NewICmp(enum.IPredNE, v, zero)
}

var cmpPreds = map[ir.BinOp]enum.IPred{
	ir.OpEq: enum.IPredEQ,
	ir.OpNe: enum.IPredNE,
	ir.OpLt: enum.IPredULT,
	ir.OpLe: enum.IPredULE,
	ir.OpGt: enum.IPredUGT,
	ir.OpGe: enum.IPredUGE,
}

func (fc *funcCtx) value(b *llvm.Block, v ir.Value) value.Value {
	switch v := v.(type) {
	case *ir.InMemory:
		return b.NewLoad(types.I64, fc.slots[v.Local])
	case *ir.ConstInt:
		return word(int64(v.Bits))
	case *ir.ConstBool:
		if v.V {
			return word(1)
		}
		return zero
	}
	return zero
}

func (fc *funcCtx) rval(b *llvm.Block, r ir.RValInstruct) value.Value {
	switch r := r.(type) {
	case *ir.Use:
		return fc.value(b, r.Value)
	case *ir.Unary:
		v := fc.rval(b, r.RHS)
		if r.Op == ir.OpNeg {
			return b.NewSub(zero, v)
		}
		return widen(b, b.NewICmp(enum.IPredEQ, v, zero))
	case *ir.Logical:
		l := truthy(b, fc.rval(b, r.LHS))
		rv := truthy(b, fc.rval(b, r.RHS))
		if r.Op == ir.OpAnd {
			return widen(b, b.NewAnd(l, rv))
		}
		return widen(b, b.NewOr(l, rv))
	case *ir.Binary:
		l := fc.rval(b, r.LHS)
		rv := fc.rval(b, r.RHS)
		if r.Op.IsCmp() {
			return widen(b, b.NewICmp(cmpPreds[r.Op], l, rv))
		}
		switch r.Op {
		case ir.OpAdd:
			return b.NewAdd(l, rv)
		case ir.OpSub:
			return b.NewSub(l, rv)
		case ir.OpMul:
			return b.NewMul(l, rv)
		default:
			return b.NewSDiv(l, rv)
		}
	}
	return zero
}
