package interp

import (
	"fmt"

	"mathic/internal/ir"
)

type frame struct {
	locals []int64
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (fr *frame) value(v ir.Value) int64 {
	switch v := v.(type) {
	case *ir.InMemory:
		return fr.locals[v.Local]
	case *ir.ConstInt:
		return int64(v.Bits)
	case *ir.ConstBool:
		return b2i(v.V)
	}
	return 0 // void
}

func (fr *frame) eval(r ir.RValInstruct) (int64, error) {
	switch r := r.(type) {
	case *ir.Use:
		return fr.value(r.Value), nil
	case *ir.Unary:
		v, err := fr.eval(r.RHS)
		if err != nil {
			return 0, err
		}
		if r.Op == ir.OpNeg {
			return -v, nil
		}
		return b2i(v == 0), nil
	case *ir.Logical:
		l, err := fr.eval(r.LHS)
		if err != nil {
			return 0, err
		}
		rv, err := fr.eval(r.RHS)
		if err != nil {
			return 0, err
		}
		if r.Op == ir.OpAnd {
			return b2i(l != 0 && rv != 0), nil
		}
		return b2i(l != 0 || rv != 0), nil
	case *ir.Binary:
		l, err := fr.eval(r.LHS)
		if err != nil {
			return 0, err
		}
		rv, err := fr.eval(r.RHS)
		if err != nil {
			return 0, err
		}
		return binary(r.Op, l, rv)
	}
	return 0, fmt.Errorf("unknown rvalue %T", r)
}

func binary(op ir.BinOp, l, r int64) (int64, error) {
	switch op {
	case ir.OpAdd:
		return l + r, nil
	case ir.OpSub:
		return l - r, nil
	case ir.OpMul:
		return l * r, nil
	case ir.OpDiv:
		if r == 0 {
			return 0, ErrDivideByZero
		}
		return l / r, nil
	case ir.OpEq:
		return b2i(l == r), nil
	case ir.OpNe:
		return b2i(l != r), nil
	case ir.OpLt:
		return b2i(uint64(l) < uint64(r)), nil
	case ir.OpLe:
		return b2i(uint64(l) <= uint64(r)), nil
	case ir.OpGt:
		return b2i(uint64(l) > uint64(r)), nil
	case ir.OpGe:
		return b2i(uint64(l) >= uint64(r)), nil
	}
	return 0, fmt.Errorf("unknown operator %s", op)
}
