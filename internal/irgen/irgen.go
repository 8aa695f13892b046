package irgen

import (
	"golang.org/x/sync/errgroup"

	"mathic/internal/ast"
	"mathic/internal/ir"
	"mathic/internal/source"
)

type Options struct {
	// BlockScopes gives every `{}` body its own scope: names declared inside
	// go out of scope at `}` and may shadow outer names. Off, a function has
	// one flat table and redeclaring a name anywhere in it is an error.
	BlockScopes bool
	// Strict enables the call and return checks in check.go.
	Strict bool
	// Jobs > 1 lowers top-level functions concurrently.
	Jobs int
}

// Generate lowers a parsed program with default options.
func Generate(prog *ast.Program) (*ir.Program, error) {
	return GenerateWith(prog, Options{})
}

// GenerateWith lowers prog into IR. The first error in source order aborts
// lowering; the output does not depend on Jobs.
func GenerateWith(prog *ast.Program, opts Options) (*ir.Program, error) {
	if len(prog.Structs) > 0 {
		return nil, unsupported("struct declarations", prog.Structs[0].Span)
	}
	seen := map[string]bool{}
	for _, fn := range prog.Funcs {
		if seen[fn.Name] {
			return nil, errAt(DuplicateDeclaration, fn.Name, fn.Span)
		}
		seen[fn.Name] = true
	}

	funcs := make([]*ir.Function, len(prog.Funcs))
	errs := make([]error, len(prog.Funcs))
	if opts.Jobs > 1 {
		var eg errgroup.Group
		eg.SetLimit(opts.Jobs)
		for i, fn := range prog.Funcs {
			i, fn := i, fn
			eg.Go(func() error {
				funcs[i], errs[i] = lowerFunc(fn, opts)
				return nil
			})
		}
		_ = eg.Wait()
	} else {
		for i, fn := range prog.Funcs {
			funcs[i], errs[i] = lowerFunc(fn, opts)
			if errs[i] != nil {
				break
			}
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	out := &ir.Program{Functions: funcs}
	if opts.Strict {
		if err := check(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type gen struct {
	cfg Options
	fn  *ir.Function

	// blocks whose terminator was set by a return statement
	returned map[ir.BlockID]bool

	// only used with Options.BlockScopes
	scopes []scope
}

// scope records, for each name declared in it, the slot the name referred
// to before (or -1), so leaving the scope restores the outer binding.
type scope map[string]int

func lowerFunc(decl *ast.FuncDecl, cfg Options) (*ir.Function, error) {
	g := &gen{
		cfg:      cfg,
		fn:       ir.NewFunction(decl.Name, decl.Span),
		returned: map[ir.BlockID]bool{},
	}
	g.pushScope()
	for _, p := range decl.Params {
		if err := g.declareParam(p); err != nil {
			return nil, err
		}
	}
	if err := g.lowerStmts(decl.Body.Stmts); err != nil {
		return nil, err
	}
	g.popScope()
	return g.fn, nil
}

func (g *gen) pushScope() {
	if g.cfg.BlockScopes {
		g.scopes = append(g.scopes, scope{})
	}
}

func (g *gen) popScope() {
	if !g.cfg.BlockScopes {
		return
	}
	top := g.scopes[len(g.scopes)-1]
	g.scopes = g.scopes[:len(g.scopes)-1]
	for name, prev := range top {
		g.fn.Syms.Bind(name, prev)
	}
}

func (g *gen) declareParam(p ast.Param) error {
	_, err := g.declare(p.Name, p.Span, ir.LocalParam)
	return err
}

// declare adds a named local, failing if the name is already taken in the
// current scope (the whole function when block scopes are off).
func (g *gen) declare(name string, span source.Span, kind ir.LocalKind) (int, error) {
	if !g.cfg.BlockScopes {
		idx, ok := g.fn.Syms.AddLocal(name, span, kind)
		if !ok {
			return 0, errAt(DuplicateDeclaration, name, span)
		}
		return idx, nil
	}
	top := g.scopes[len(g.scopes)-1]
	if _, dup := top[name]; dup {
		return 0, errAt(DuplicateDeclaration, name, span)
	}
	prev, ok := g.fn.Syms.Lookup(name)
	if !ok {
		prev = -1
	}
	top[name] = prev
	return g.fn.Syms.Declare(name, span, kind), nil
}

func (g *gen) temp(span source.Span) int {
	return g.fn.Syms.Declare("", span, ir.LocalTemp)
}

// split reserves a continuation block for the cursor block. The continuation
// takes over the cursor block's terminator, so whatever the region was going
// to do on fall-through still happens after the split.
func (g *gen) split(span source.Span) ir.BlockID {
	pending := g.fn.CurrentBlock().Term
	id := g.fn.ReserveBlock(span)
	g.fn.Block(id).Term = pending
	return id
}

func (g *gen) emit(ins ir.LValInstruct) { g.fn.Emit(ins) }

func (g *gen) term(t ir.Terminator) { g.fn.Terminate(t) }

func (g *gen) setBlock(id ir.BlockID) { g.fn.SetCurrent(id) }
