package irgen

import (
	"errors"
	"strings"
	"testing"

	"github.com/kr/pretty"

	"mathic/internal/ir"
	"mathic/internal/parser"
)

func lower(t *testing.T, src string, opts Options) (*ir.Program, error) {
	t.Helper()
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return GenerateWith(prog, opts)
}

func mustLower(t *testing.T, src string) *ir.Program {
	t.Helper()
	p, err := lower(t, src, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ir.VerifyProgram(p); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return p
}

func loweringErr(t *testing.T, err error) *LoweringError {
	t.Helper()
	var le *LoweringError
	if !errors.As(err, &le) {
		t.Fatalf("expected lowering error, got %v", err)
	}
	return le
}

func lines(ls ...string) string { return strings.Join(ls, "\n") + "\n" }

func TestLowerShapes(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "if_without_else",
			src:  `df f(a) { if a < 1 { a = 2; } }`,
			want: lines(
				"fn f(a)",
				"  locals: _0 param a",
				"bb0:",
				"  condbr lt(_0, 1) bb1 bb2",
				"bb1:",
				"  _0 = 2",
				"  br bb2",
				"bb2:",
				"  ret",
			),
		},
		{
			name: "if_with_else",
			src:  `df f(a) { if a < 1 { a = 2; } else { a = 3; } return a; }`,
			want: lines(
				"fn f(a)",
				"  locals: _0 param a",
				"bb0:",
				"  condbr lt(_0, 1) bb1 bb2",
				"bb1:",
				"  _0 = 2",
				"  br bb3",
				"bb2:",
				"  _0 = 3",
				"  br bb3",
				"bb3:",
				"  ret _0",
			),
		},
		{
			name: "while",
			src:  `df main() { let i = 0; while i < 10 { i = i + 1; } return i; }`,
			want: lines(
				"fn main()",
				"  locals: _0 temp i",
				"bb0:",
				"  let _0 = 0",
				"  br bb1",
				"bb1:",
				"  condbr lt(_0, 10) bb2 bb3",
				"bb2:",
				"  _0 = add(_0, 1)",
				"  br bb1",
				"bb3:",
				"  ret _0",
			),
		},
		{
			name: "for_increments_after_body",
			src:  `df main() { let sum = 0; for i = 0..10 { sum = sum + 1; } return sum; }`,
			want: lines(
				"fn main()",
				"  locals: _0 temp sum, _1 temp i",
				"bb0:",
				"  let _0 = 0",
				"  let _1 = 0",
				"  br bb1",
				"bb1:",
				"  condbr lt(_1, 10) bb2 bb3",
				"bb2:",
				"  _0 = add(_0, 1)",
				"  _1 = add(_1, 1)",
				"  br bb1",
				"bb3:",
				"  ret _0",
			),
		},
		{
			name: "call_splits_block",
			src:  `df main() { let x = f(1) + 2; return x; }`,
			want: lines(
				"fn main()",
				"  locals: _0 temp, _1 temp x",
				"bb0:",
				"  call f(1) -> _0, bb1",
				"bb1:",
				"  let _1 = add(_0, 2)",
				"  ret _1",
			),
		},
		{
			name: "bare_block",
			src:  `df main() { { let x = 1; } return 0; }`,
			want: lines(
				"fn main()",
				"  locals: _0 temp x",
				"bb0:",
				"  br bb1",
				"bb1:",
				"  let _0 = 1",
				"  br bb2",
				"bb2:",
				"  ret 0",
			),
		},
		{
			name: "dead_tail_after_return",
			src:  `df main() { return 1; let x = 2; }`,
			want: lines(
				"fn main()",
				"  locals: _0 temp x",
				"bb0:",
				"  ret 1",
				"bb1:",
				"  let _0 = 2",
				"  unreachable",
			),
		},
		{
			name: "call_in_then_keeps_merge_edge",
			src:  `df f(a) { if a { g(); } return a; }`,
			want: lines(
				"fn f(a)",
				"  locals: _0 param a, _1 temp",
				"bb0:",
				"  condbr _0 bb1 bb2",
				"bb1:",
				"  call g() -> _1, bb3",
				"bb2:",
				"  ret _0",
				"bb3:",
				"  br bb2",
			),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := mustLower(t, tc.src)
			if got := p.Functions[0].Format(); got != tc.want {
				t.Fatalf("expected:\n%s\ngot:\n%s", tc.want, got)
			}
		})
	}
}

func TestIfBlockCounts(t *testing.T) {
	p := mustLower(t, `df f(a) { if a { a = 1; } }`)
	f := p.Functions[0]
	if len(f.Blocks) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(f.Blocks))
	}
	cb, ok := f.Blocks[0].Term.(*ir.CondBranch)
	if !ok {
		t.Fatalf("expected condbr, got %T", f.Blocks[0].Term)
	}
	if cb.False != 2 {
		t.Fatalf("expected false edge to merge bb2, got %s", cb.False)
	}

	p = mustLower(t, `df f(a) { if a { a = 1; } else { a = 2; } }`)
	f = p.Functions[0]
	if len(f.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(f.Blocks))
	}
	thenBr := f.Blocks[1].Term.(*ir.Branch)
	elseBr := f.Blocks[2].Term.(*ir.Branch)
	if thenBr.Target != elseBr.Target || thenBr.Target != 3 {
		t.Fatalf("expected both arms to reach bb3, got %s and %s", thenBr.Target, elseBr.Target)
	}
}

func TestCallAddsBlock(t *testing.T) {
	lit := mustLower(t, `df main() { let x = 1; return x; }`)
	call := mustLower(t, `df main() { let x = g(); return x; }`)
	if len(call.Functions[0].Blocks) <= len(lit.Functions[0].Blocks) {
		t.Fatalf("expected call to add a block, got %d vs %d", len(call.Functions[0].Blocks), len(lit.Functions[0].Blocks))
	}
}

func TestWhileConditionCallStaysInLoop(t *testing.T) {
	p := mustLower(t, `df main() { while g() < 3 { } return 0; }`)
	f := p.Functions[0]
	// bb1 is the header; the call continues in a new block which holds the
	// loop test, and the body branches back to the header.
	if _, ok := f.Blocks[1].Term.(*ir.Call); !ok {
		t.Fatalf("expected call in loop header, got %T", f.Blocks[1].Term)
	}
	if br, ok := f.Blocks[2].Term.(*ir.Branch); !ok || br.Target != 1 {
		t.Fatalf("expected back-edge to bb1, got %T", f.Blocks[2].Term)
	}
}

func TestLowerErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ErrorKind
		msg  string
	}{
		{name: "duplicate", src: `df main() { let x = 1; let x = 2; return x; }`, kind: DuplicateDeclaration, msg: "Duplicate declaration of 'x'"},
		{name: "undeclared", src: `df main() { return y; }`, kind: UndeclaredVariable, msg: "Undeclared variable 'y'"},
		{name: "assign_undeclared", src: `df main() { y = 1; }`, kind: UndeclaredVariable, msg: "Undeclared variable 'y'"},
		{name: "let_sees_outer_only", src: `df main() { let x = x; }`, kind: UndeclaredVariable, msg: "Undeclared variable 'x'"},
		{name: "sibling_blocks_collide", src: `df main() { { let x = 1; } { let x = 2; } }`, kind: DuplicateDeclaration, msg: "Duplicate declaration of 'x'"},
		{name: "for_var_collides", src: `df main() { let i = 0; for i = 0..3 { } }`, kind: DuplicateDeclaration, msg: "Duplicate declaration of 'i'"},
		{name: "duplicate_param", src: `df f(a, a) { return a; }`, kind: DuplicateDeclaration, msg: "Duplicate declaration of 'a'"},
		{name: "duplicate_function", src: `df f() { } df f() { }`, kind: DuplicateDeclaration, msg: "Duplicate declaration of 'f'"},
		{name: "duplicate_nested", src: `df main() { df h() { } df h() { } }`, kind: DuplicateDeclaration, msg: "Duplicate declaration of 'h'"},
		{name: "struct", src: `struct P { x } df main() { }`, kind: UnsupportedFeature, msg: "Unsupported feature: struct declarations"},
		{name: "struct_in_body", src: `df main() { struct P { x } }`, kind: UnsupportedFeature, msg: "Unsupported feature: struct declarations"},
		{name: "string", src: `df main() { let s = "hi"; }`, kind: UnsupportedFeature, msg: "Unsupported feature: string literals"},
		{name: "float", src: `df main() { return 1.5; }`, kind: UnsupportedFeature, msg: "Unsupported feature: floating-point literals"},
		{name: "overflow", src: `df main() { return 18446744073709551616; }`, kind: InvalidLiteral, msg: "Integer literal '18446744073709551616' does not fit in 64 bits"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := lower(t, tc.src, Options{})
			le := loweringErr(t, err)
			if le.Kind != tc.kind {
				t.Fatalf("expected %v, got %v", tc.kind, le.Kind)
			}
			if le.Error() != tc.msg {
				t.Fatalf("expected %q, got %q", tc.msg, le.Error())
			}
		})
	}
}

func TestUndeclaredSpan(t *testing.T) {
	src := `df main() { return y; }`
	_, err := lower(t, src, Options{})
	le := loweringErr(t, err)
	if got := src[le.Span.Start:le.Span.End]; got != "y" {
		t.Fatalf("expected span over y, got %q", got)
	}
	if le.Help() != "declare 'y' with 'let' before using it" {
		t.Fatalf("unexpected help %q", le.Help())
	}
}

func TestU64MaxLiteral(t *testing.T) {
	p := mustLower(t, `df main() { return 18446744073709551615; }`)
	ret := p.Functions[0].Blocks[0].Term.(*ir.Return)
	c := ret.Value.(*ir.Use).Value.(*ir.ConstInt)
	if c.Bits != ^uint64(0) {
		t.Fatalf("expected all bits set, got %d", c.Bits)
	}
	if int64(c.Bits) != -1 {
		t.Fatalf("expected -1 as signed, got %d", int64(c.Bits))
	}
	if c.Text != "18446744073709551615" {
		t.Fatalf("expected literal text kept, got %q", c.Text)
	}
}

func TestNestedFunctionOwnedByParent(t *testing.T) {
	p := mustLower(t, `df main() { df helper(z) { return z; } return helper(2); }`)
	if len(p.Functions) != 1 {
		t.Fatalf("expected 1 top-level function, got %d", len(p.Functions))
	}
	main := p.Functions[0]
	h, ok := main.Syms.LookupFunction("helper")
	if !ok {
		t.Fatalf("expected helper in main's symbol table")
	}
	if len(h.Params()) != 1 || h.Params()[0].Name != "z" {
		t.Fatalf("expected helper(z), got %+v", h.Params())
	}
	// no capture: helper has its own table
	if _, ok := h.Syms.Lookup("helper"); ok {
		t.Fatalf("expected helper's locals to be separate")
	}
}

func TestBlockScopes(t *testing.T) {
	opts := Options{BlockScopes: true}
	if _, err := lower(t, `df main() { { let x = 1; } { let x = 2; } return 0; }`, opts); err != nil {
		t.Fatalf("expected sibling blocks to be independent, got %v", err)
	}
	p, err := lower(t, `df main() { let x = 1; { let x = x + 1; } return x; }`, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f := p.Functions[0]
	ret := f.Blocks[len(f.Blocks)-1].Term.(*ir.Return)
	if got := ir.FormatRVal(ret.Value); got != "_0" {
		t.Fatalf("expected outer x after the block, got %s", got)
	}
	if len(f.Syms.Locals) != 2 {
		t.Fatalf("expected shadowing to allocate a new slot, got %d locals", len(f.Syms.Locals))
	}
	_, err = lower(t, `df main() { { let y = 1; } return y; }`, opts)
	if le := loweringErr(t, err); le.Kind != UndeclaredVariable {
		t.Fatalf("expected y out of scope, got %v", le.Kind)
	}
	_, err = lower(t, `df main() { let x = 1; let x = 2; }`, opts)
	if le := loweringErr(t, err); le.Kind != DuplicateDeclaration {
		t.Fatalf("expected same-scope duplicate, got %v", le.Kind)
	}
}

func TestForBoundsSeeOuterBinding(t *testing.T) {
	src := `df main() { let i = 5; let n = 0; for i = 0..i { n = n + 1; } return n; }`
	p, err := lower(t, src, Options{BlockScopes: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := lines(
		"fn main()",
		"  locals: _0 temp i, _1 temp n, _2 temp i",
		"bb0:",
		"  let _0 = 5",
		"  let _1 = 0",
		"  let _2 = 0",
		"  br bb1",
		"bb1:",
		"  condbr lt(_2, _0) bb2 bb3",
		"bb2:",
		"  _1 = add(_1, 1)",
		"  _2 = add(_2, 1)",
		"  br bb1",
		"bb3:",
		"  ret _1",
	)
	if got := p.Functions[0].Format(); got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestStrictChecks(t *testing.T) {
	strict := Options{Strict: true}
	cases := []struct {
		name string
		src  string
		kind ErrorKind
	}{
		{name: "undefined", src: `df main() { return g(); }`, kind: UndefinedFunction},
		{name: "arity", src: `df f(a) { return a; } df main() { return f(1, 2); }`, kind: WrongArgumentCount},
		{name: "missing_return", src: `df main(a) { if a { return 1; } }`, kind: MissingReturn},
		{name: "nested_arity", src: `df main() { df h(x) { return x; } return h(); }`, kind: WrongArgumentCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := lower(t, tc.src, strict)
			if le := loweringErr(t, err); le.Kind != tc.kind {
				t.Fatalf("expected %v, got %v (%v)", tc.kind, le.Kind, err)
			}
		})
	}

	ok := []string{
		`df main() { df h() { return 1; } return h(); }`,
		`df f(n) { if n < 1 { return 0; } return f(n - 1); } df main() { return f(3); }`,
		`df main() { return 1; let x = 2; }`,
		`df main() { }`,
	}
	for _, src := range ok {
		if _, err := lower(t, src, strict); err != nil {
			t.Fatalf("%s: unexpected error: %v", src, err)
		}
	}

	// Without Strict the reserved checks stay off.
	if _, err := lower(t, `df main() { return g(1); }`, Options{}); err != nil {
		t.Fatalf("expected undefined callee to pass without strict, got %v", err)
	}

	_, err := lower(t, `df f(a) { return a; } df main() { return f(1, 2); }`, strict)
	le := loweringErr(t, err)
	if le.Expected != 1 || le.Got != 2 {
		t.Fatalf("expected 1 vs 2 arguments, got %d vs %d", le.Expected, le.Got)
	}
	if le.Help() != "provide 1 argument(s) to 'f'" {
		t.Fatalf("unexpected help %q", le.Help())
	}
}

func TestLoweringIsDeterministic(t *testing.T) {
	src := `df main() {
  let sum = 0;
  for i = 0..10 { if i < 5 { sum = sum + f(i); } else { sum = sum - 1; } }
  while sum > 100 { sum = sum / 2; }
  return sum;
}
df f(x) { df g(y) { return y * 2; } return g(x); }`
	prog, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	a, err := Generate(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := Generate(prog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := pretty.Diff(a, b); len(diff) != 0 {
		t.Fatalf("expected identical IR, got diff: %v", diff)
	}
	if a.Format() != b.Format() {
		t.Fatalf("expected identical text")
	}
}

func TestParallelLoweringMatchesSerial(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 16; i++ {
		sb.WriteString("df f")
		sb.WriteByte(byte('a' + i))
		sb.WriteString("(n) { let x = 0; while x < n { x = x + 1; } return x; }\n")
	}
	prog, err := parser.Parse(sb.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	serial, err := GenerateWith(prog, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := GenerateWith(prog, Options{Jobs: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if serial.Format() != parallel.Format() {
		t.Fatalf("expected parallel output to match serial")
	}

	bad, _ := parser.Parse(`df a() { return x; } df b() { return y; } df c() { return z; }`)
	for i := 0; i < 5; i++ {
		_, err := GenerateWith(bad, Options{Jobs: 3})
		if le := loweringErr(t, err); le.Name != "x" {
			t.Fatalf("expected the first function's error, got %v", err)
		}
	}
}
