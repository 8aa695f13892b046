// Package driver loads a source file and runs it through the pipeline:
// parse, lower, verify and optionally dump or execute.
package driver

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/pkg/errors"

	"mathic/internal/ast"
	"mathic/internal/codegen"
	"mathic/internal/interp"
	"mathic/internal/ir"
	"mathic/internal/irgen"
	"mathic/internal/manifest"
	"mathic/internal/parser"
	"mathic/internal/source"
)

type Config struct {
	Lower irgen.Options

	// Dump writes <name>.ast, <name>.ir and <name>.ll into DumpDir after a
	// successful compile.
	Dump    bool
	DumpDir string

	// Log receives stage tracing. Nil discards it.
	Log *slog.Logger
}

// ConfigFor builds a Config from the manifest next to path, if any.
func ConfigFor(path string) (Config, error) {
	m, err := manifest.Find(path)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Lower: irgen.Options{
			BlockScopes: m.Build.BlockScopes,
			Strict:      m.Build.Strict,
			Jobs:        m.Build.Jobs,
		},
		DumpDir: m.Dump.Dir,
	}, nil
}

func (c Config) logger() *slog.Logger {
	if c.Log != nil {
		return c.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Result is a successfully compiled file.
type Result struct {
	File *source.File
	AST  *ast.Program
	IR   *ir.Program

	log *slog.Logger
}

// Load reads path into a source file.
func Load(path string) (*source.File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "load source")
	}
	return source.NewFile(path, string(b)), nil
}

// Compile parses and lowers f. Errors from the core stages keep their
// concrete types underneath the added context.
func Compile(f *source.File, cfg Config) (*Result, error) {
	log := cfg.logger()

	start := time.Now()
	prog, err := parser.Parse(f.Input)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", f.Name)
	}
	log.Debug("parsed", "file", f.Name, "funcs", len(prog.Funcs), "elapsed", time.Since(start))

	start = time.Now()
	p, err := irgen.GenerateWith(prog, cfg.Lower)
	if err != nil {
		return nil, errors.Wrapf(err, "lower %s", f.Name)
	}
	log.Debug("lowered", "file", f.Name, "funcs", len(p.Functions), "blocks", countBlocks(p.Functions), "elapsed", time.Since(start))

	if err := ir.VerifyProgram(p); err != nil {
		return nil, errors.Wrapf(err, "verify %s", f.Name)
	}

	res := &Result{File: f, AST: prog, IR: p, log: log}
	if cfg.Dump {
		if err := res.dump(cfg.DumpDir); err != nil {
			return nil, err
		}
		log.Debug("dumped", "dir", cfg.DumpDir)
	}
	return res, nil
}

// CompileFile is Load followed by Compile.
func CompileFile(path string, cfg Config) (*Result, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return Compile(f, cfg)
}

// Run executes main with the reference interpreter.
func (r *Result) Run() (int64, error) {
	m := interp.New(r.IR)
	start := time.Now()
	v, err := m.Call("main")
	if r.log != nil {
		r.log.Debug("ran", "entry", "main", "steps", m.Steps(), "elapsed", time.Since(start))
	}
	if err != nil {
		return 0, errors.Wrap(err, "run main")
	}
	return v, nil
}

func (r *Result) ASTText() string {
	return pretty.Sprint(r.AST) + "\n"
}

func (r *Result) IRText() string {
	return r.IR.Format()
}

func (r *Result) LLVMText() (string, error) {
	s, err := codegen.EmitText(r.IR)
	if err != nil {
		return "", errors.Wrap(err, "emit llvm")
	}
	return s, nil
}

func (r *Result) dump(dir string) error {
	if dir == "" {
		dir = manifest.DefaultDumpDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create dump dir")
	}
	ll, err := r.LLVMText()
	if err != nil {
		return err
	}
	base := strings.TrimSuffix(filepath.Base(r.File.Name), filepath.Ext(r.File.Name))
	files := []struct {
		ext  string
		text string
	}{
		{".ast", r.ASTText()},
		{".ir", r.IRText()},
		{".ll", ll},
	}
	for _, f := range files {
		p := filepath.Join(dir, base+f.ext)
		if err := os.WriteFile(p, []byte(f.text), 0o644); err != nil {
			return errors.Wrapf(err, "write %s", p)
		}
	}
	return nil
}

func countBlocks(fs []*ir.Function) int {
	n := 0
	for _, f := range fs {
		n += len(f.Blocks) + countBlocks(f.Syms.Functions)
	}
	return n
}
