package interp

import (
	"errors"
	"fmt"

	"mathic/internal/ir"
	"mathic/internal/names"
)

var (
	ErrDivideByZero = errors.New("division by zero")
	ErrStepLimit    = errors.New("step limit exceeded")
	ErrStackDepth   = errors.New("call depth exceeded")
	ErrUnreachable  = errors.New("reached unreachable code")
)

const (
	DefaultStepLimit = 50_000_000
	DefaultMaxDepth  = 10_000
)

// Machine executes IR directly. Every value is a 64-bit word; booleans are
// 0 and 1. Arithmetic wraps, ordering comparisons are unsigned and division
// is signed.
type Machine struct {
	prog *ir.Program

	StepLimit int
	MaxDepth  int

	steps int
	depth int
}

func New(p *ir.Program) *Machine {
	return &Machine{prog: p, StepLimit: DefaultStepLimit, MaxDepth: DefaultMaxDepth}
}

// Run calls the top-level function entry with args.
func Run(p *ir.Program, entry string, args ...int64) (int64, error) {
	return New(p).Call(entry, args...)
}

func RunMain(p *ir.Program) (int64, error) {
	return Run(p, "main")
}

// Steps reports how many blocks have been executed so far.
func (m *Machine) Steps() int { return m.steps }

func (m *Machine) Call(entry string, args ...int64) (int64, error) {
	f, ok := m.prog.Function(entry)
	if !ok {
		return 0, fmt.Errorf("missing function %s", entry)
	}
	return m.exec([]*ir.Function{f}, args)
}

func (m *Machine) exec(chain []*ir.Function, args []int64) (int64, error) {
	f := chain[len(chain)-1]
	path := make([]string, len(chain))
	for i, c := range chain {
		path[i] = c.Name
	}
	params := f.Params()
	if len(args) != len(params) {
		return 0, fmt.Errorf("%s: called with %d arguments, expected %d", names.Display(path), len(args), len(params))
	}

	m.depth++
	defer func() { m.depth-- }()
	if m.depth > m.MaxDepth {
		return 0, fmt.Errorf("%s: %w", names.Display(path), ErrStackDepth)
	}

	fr := &frame{locals: make([]int64, len(f.Syms.Locals))}
	for i, p := range params {
		fr.locals[p.Idx] = args[i]
	}

	bb := ir.BlockID(0)
	for {
		m.steps++
		if m.StepLimit > 0 && m.steps > m.StepLimit {
			return 0, ErrStepLimit
		}
		b := f.Block(bb)
		for _, ins := range b.Instructions {
			switch ins := ins.(type) {
			case *ir.Let:
				v, err := fr.eval(ins.Init)
				if err != nil {
					return 0, fmt.Errorf("%s: %w", names.Display(path), err)
				}
				fr.locals[ins.Local] = v
			case *ir.Assign:
				v, err := fr.eval(ins.Value)
				if err != nil {
					return 0, fmt.Errorf("%s: %w", names.Display(path), err)
				}
				fr.locals[ins.Local] = v
			}
		}

		switch t := b.Term.(type) {
		case *ir.Return:
			if t.Value == nil {
				return 0, nil
			}
			v, err := fr.eval(t.Value)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", names.Display(path), err)
			}
			return v, nil
		case *ir.Branch:
			bb = t.Target
		case *ir.CondBranch:
			c, err := fr.eval(t.Cond)
			if err != nil {
				return 0, fmt.Errorf("%s: %w", names.Display(path), err)
			}
			if c != 0 {
				bb = t.True
			} else {
				bb = t.False
			}
		case *ir.Unreachable:
			return 0, fmt.Errorf("%s: %s: %w", names.Display(path), bb, ErrUnreachable)
		case *ir.Call:
			callee, ok := m.prog.ResolveChain(chain, t.Callee)
			if !ok {
				return 0, fmt.Errorf("%s: call to undefined function %s", names.Display(path), t.Callee)
			}
			argv := make([]int64, len(t.Args))
			for i, a := range t.Args {
				v, err := fr.eval(a)
				if err != nil {
					return 0, fmt.Errorf("%s: %w", names.Display(path), err)
				}
				argv[i] = v
			}
			res, err := m.exec(callee, argv)
			if err != nil {
				return 0, err
			}
			if dest, ok := t.Dest.(*ir.InMemory); ok {
				fr.locals[dest.Local] = res
			}
			bb = t.Next
		default:
			return 0, fmt.Errorf("%s: unknown terminator %T", names.Display(path), b.Term)
		}
	}
}
