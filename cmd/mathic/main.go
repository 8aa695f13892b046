package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"mathic/internal/diag"
	"mathic/internal/driver"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "mathic - compiler front-end")
	fmt.Fprintln(w, "usage:")
	fmt.Fprintln(w, "  mathic run FILE     compile and run main, print its result")
	fmt.Fprintln(w, "  mathic check FILE   compile only, one line per error")
	fmt.Fprintln(w, "  mathic ir FILE      print the lowered IR")
	fmt.Fprintln(w, "  mathic ast FILE     print the parsed AST")
	fmt.Fprintln(w, "  mathic llvm FILE    print LLVM IR (-o OUT writes it to a file)")
	fmt.Fprintln(w, "  mathic repl         interactive session")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "flags:")
	fmt.Fprint(w, newFlagSet("mathic", &options{}).FlagUsages())
}

type options struct {
	cmd  string
	path string

	dump        bool
	dumpDir     string
	strict      bool
	blockScopes bool
	jobs        int
	out         string
	verbose     bool
}

var commands = map[string]bool{
	"run": true, "check": true, "ir": true, "ast": true, "llvm": true, "repl": true,
}

func newFlagSet(name string, opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.dump, "dump", false, "write .ast, .ir and .ll dumps")
	fs.StringVar(&opts.dumpDir, "dump-dir", "", "dump directory (default from mathic.toml or .mathic); implies --dump")
	fs.BoolVar(&opts.strict, "strict", false, "check calls and returns")
	fs.BoolVar(&opts.blockScopes, "block-scopes", false, "give each {} body its own scope")
	fs.IntVarP(&opts.jobs, "jobs", "j", 0, "lower top-level functions in parallel")
	fs.StringVarP(&opts.out, "output", "o", "", "output file for llvm")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "trace pipeline stages on stderr")
	return fs
}

func parseArgs(args []string) (opts options, err error) {
	if len(args) == 0 {
		return options{}, fmt.Errorf("missing command")
	}
	opts.cmd = args[0]
	if !commands[opts.cmd] {
		return options{}, fmt.Errorf("unknown command: %s", opts.cmd)
	}
	fs := newFlagSet(opts.cmd, &opts)
	if err := fs.Parse(args[1:]); err != nil {
		return options{}, err
	}
	if fs.Changed("jobs") && opts.jobs < 1 {
		return options{}, fmt.Errorf("invalid --jobs value: %d", opts.jobs)
	}
	if opts.dumpDir != "" {
		opts.dump = true
	}
	switch rest := fs.Args(); {
	case len(rest) > 1:
		return options{}, fmt.Errorf("unexpected extra arg: %s", rest[1])
	case len(rest) == 1:
		opts.path = rest[0]
	}
	if opts.cmd == "repl" {
		if opts.path != "" {
			return options{}, fmt.Errorf("repl takes no file")
		}
	} else if opts.path == "" {
		return options{}, fmt.Errorf("%s: missing file", opts.cmd)
	}
	if opts.out != "" && opts.cmd != "llvm" {
		return options{}, fmt.Errorf("-o is only valid for llvm")
	}
	return opts, nil
}

// config merges mathic.toml with flags; flags win.
func (o options) config(stderr io.Writer) (driver.Config, error) {
	var cfg driver.Config
	if o.path != "" {
		c, err := driver.ConfigFor(o.path)
		if err != nil {
			return driver.Config{}, err
		}
		cfg = c
	}
	if o.strict {
		cfg.Lower.Strict = true
	}
	if o.blockScopes {
		cfg.Lower.BlockScopes = true
	}
	if o.jobs > 0 {
		cfg.Lower.Jobs = o.jobs
	}
	if o.dump {
		cfg.Dump = true
	}
	if o.dumpDir != "" {
		cfg.DumpDir = o.dumpDir
	}
	if o.verbose {
		cfg.Log = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return cfg, nil
}

func colorFor(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return diag.UseColor(f)
	}
	return false
}

func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return exitOK
	}
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		usage(stderr)
		return exitUsage
	}
	cfg, err := opts.config(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitFail
	}
	if opts.cmd == "repl" {
		return runRepl(cfg, stdin, stdout, stderr)
	}
	return compile(opts, cfg, stdout, stderr)
}

func compile(opts options, cfg driver.Config, stdout, stderr io.Writer) int {
	f, err := driver.Load(opts.path)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitFail
	}
	res, err := driver.Compile(f, cfg)
	if err != nil {
		if opts.cmd == "check" {
			var b diag.Bag
			if !b.AddError(err) {
				fmt.Fprintln(stderr, "error: "+err.Error())
			}
			diag.Print(stderr, f, &b)
			return exitFail
		}
		diag.RenderError(stderr, f, err, colorFor(stderr))
		return exitFail
	}
	switch opts.cmd {
	case "check":
	case "ir":
		fmt.Fprint(stdout, res.IRText())
	case "ast":
		fmt.Fprint(stdout, res.ASTText())
	case "llvm":
		text, err := res.LLVMText()
		if err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitFail
		}
		if opts.out == "" {
			fmt.Fprint(stdout, text)
			break
		}
		if err := os.WriteFile(opts.out, []byte(text), 0o644); err != nil {
			fmt.Fprintln(stderr, err.Error())
			return exitFail
		}
	case "run":
		v, err := res.Run()
		if err != nil {
			fmt.Fprintln(stderr, "error: "+err.Error())
			return exitFail
		}
		fmt.Fprintln(stdout, v)
	}
	return exitOK
}

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
