package irgen

import "mathic/internal/ir"

// check runs the optional semantic checks over a lowered program: every
// callee must resolve, argument counts must match parameter counts, and a
// function that returns a value on one path must not fall off the end on
// another reachable path.
func check(p *ir.Program) error {
	for _, f := range p.Functions {
		if err := checkFunc(p, []*ir.Function{f}); err != nil {
			return err
		}
	}
	return nil
}

func checkFunc(p *ir.Program, chain []*ir.Function) error {
	f := chain[len(chain)-1]
	reach := reachable(f)
	for _, b := range f.Blocks {
		call, ok := b.Term.(*ir.Call)
		if !ok {
			continue
		}
		callee, ok := p.Resolve(chain, call.Callee)
		if !ok {
			return errAt(UndefinedFunction, call.Callee, call.S)
		}
		if want := len(callee.Params()); want != len(call.Args) {
			return &LoweringError{
				Kind:     WrongArgumentCount,
				Name:     call.Callee,
				Expected: want,
				Got:      len(call.Args),
				Span:     call.S,
			}
		}
	}

	var withValue, bare bool
	for _, b := range f.Blocks {
		if !reach[b.ID] {
			continue
		}
		if ret, ok := b.Term.(*ir.Return); ok {
			if ret.Value != nil {
				withValue = true
			} else {
				bare = true
			}
		}
	}
	if withValue && bare {
		return errAt(MissingReturn, f.Name, f.Span)
	}

	for _, nested := range f.Syms.Functions {
		if err := checkFunc(p, append(chain[:len(chain):len(chain)], nested)); err != nil {
			return err
		}
	}
	return nil
}

// reachable marks the blocks reachable from the entry block.
func reachable(f *ir.Function) map[ir.BlockID]bool {
	seen := map[ir.BlockID]bool{0: true}
	work := []ir.BlockID{0}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for _, succ := range f.Block(id).Term.Successors() {
			if !seen[succ] {
				seen[succ] = true
				work = append(work, succ)
			}
		}
	}
	return seen
}
