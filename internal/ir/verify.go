package ir

import "fmt"

// Verify checks the structural invariants lowering must uphold: block ids
// equal their indices, every terminator target exists, and every local
// reference is in range. Nested functions are checked too.
func Verify(f *Function) error {
	if len(f.Blocks) == 0 {
		return fmt.Errorf("%s: function has no blocks", f.Name)
	}
	for i, l := range f.Syms.Locals {
		if l.Idx != i {
			return fmt.Errorf("%s: local %d has index %d", f.Name, i, l.Idx)
		}
	}
	v := verifier{f: f}
	for i, b := range f.Blocks {
		if int(b.ID) != i {
			return fmt.Errorf("%s: block at index %d has id %d", f.Name, i, b.ID)
		}
		if b.Term == nil {
			return fmt.Errorf("%s: %s has no terminator", f.Name, b.ID)
		}
		for _, ins := range b.Instructions {
			switch ins := ins.(type) {
			case *Let:
				v.local(b.ID, ins.Local)
				v.rval(b.ID, ins.Init)
			case *Assign:
				v.local(b.ID, ins.Local)
				v.rval(b.ID, ins.Value)
			}
		}
		for _, succ := range b.Term.Successors() {
			if succ < 0 || int(succ) >= len(f.Blocks) {
				v.fail("%s: %s targets missing block %s", f.Name, b.ID, succ)
			}
		}
		switch t := b.Term.(type) {
		case *Return:
			if t.Value != nil {
				v.rval(b.ID, t.Value)
			}
		case *CondBranch:
			v.rval(b.ID, t.Cond)
		case *Call:
			mem, ok := t.Dest.(*InMemory)
			if !ok {
				v.fail("%s: %s call destination is not a local", f.Name, b.ID)
			} else {
				v.local(b.ID, mem.Local)
			}
			for _, a := range t.Args {
				v.rval(b.ID, a)
			}
		}
		if v.err != nil {
			return v.err
		}
	}
	for _, nested := range f.Syms.Functions {
		if err := Verify(nested); err != nil {
			return err
		}
	}
	return nil
}

// VerifyProgram verifies every top-level function.
func VerifyProgram(p *Program) error {
	for _, f := range p.Functions {
		if err := Verify(f); err != nil {
			return err
		}
	}
	return nil
}

type verifier struct {
	f   *Function
	err error
}

func (v *verifier) fail(format string, args ...any) {
	if v.err == nil {
		v.err = fmt.Errorf(format, args...)
	}
}

func (v *verifier) local(b BlockID, idx int) {
	if idx < 0 || idx >= len(v.f.Syms.Locals) {
		v.fail("%s: %s references missing local _%d", v.f.Name, b, idx)
	}
}

func (v *verifier) rval(b BlockID, r RValInstruct) {
	switch r := r.(type) {
	case *Use:
		if mem, ok := r.Value.(*InMemory); ok {
			v.local(b, mem.Local)
		}
	case *Binary:
		v.rval(b, r.LHS)
		v.rval(b, r.RHS)
	case *Unary:
		v.rval(b, r.RHS)
	case *Logical:
		v.rval(b, r.LHS)
		v.rval(b, r.RHS)
	default:
		v.fail("%s: %s has unknown rvalue %T", v.f.Name, b, r)
	}
}
