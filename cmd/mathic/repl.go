package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"mathic/internal/ast"
	"mathic/internal/diag"
	"mathic/internal/driver"
	"mathic/internal/interp"
	"mathic/internal/parser"
	"mathic/internal/source"
)

const (
	historyFile = ".mathic_history"
	promptMain  = "mathic> "
	promptCont  = "   ...> "

	// entry function wrapping the session's statements
	replEntry = "__repl"
)

// prompter is the part of liner.State the REPL uses.
type prompter interface {
	Prompt(prompt string) (string, error)
}

// scanPrompter reads plain lines when stdin is not the terminal.
type scanPrompter struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (p *scanPrompter) Prompt(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return p.sc.Text(), nil
}

func runRepl(cfg driver.Config, stdin io.Reader, stdout, stderr io.Writer) int {
	var in prompter
	if stdin == os.Stdin {
		ln := liner.NewLiner()
		defer ln.Close()
		ln.SetCtrlCAborts(true)

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
		in = &historyPrompter{ln: ln}
	} else {
		in = &scanPrompter{sc: bufio.NewScanner(stdin), out: stdout}
	}

	s := &session{cfg: cfg, color: colorFor(stderr)}
	for {
		code, ok := readByParseProbe(in, promptMain, promptCont)
		if !ok {
			fmt.Fprintln(stdout)
			return exitOK
		}
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if strings.HasPrefix(code, ":") {
			if s.command(code, stdout) {
				return exitOK
			}
			continue
		}
		if out, ok := s.eval(code, stderr); ok && out != "" {
			fmt.Fprintln(stdout, out)
		}
	}
}

// historyPrompter records every complete line it hands out.
type historyPrompter struct {
	ln *liner.State
}

func (p *historyPrompter) Prompt(prompt string) (string, error) {
	line, err := p.ln.Prompt(prompt)
	if err == nil && strings.TrimSpace(line) != "" {
		p.ln.AppendHistory(line)
	}
	return line, err
}

// readByParseProbe keeps reading lines while the input so far only fails
// because it ended early.
func readByParseProbe(in prompter, prompt, cont string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}
		line, err := in.Prompt(p)
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			b.Reset()
			continue
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if !incomplete(b.String()) {
			return b.String(), true
		}
	}
}

func incomplete(src string) bool {
	trimmed := strings.TrimSpace(src)
	if strings.HasPrefix(trimmed, ":") {
		return false
	}
	if isDecl(trimmed) {
		_, err := parser.Parse(src)
		return parser.IsIncomplete(err)
	}
	if _, err := parser.ParseExpr(src); parser.IsIncomplete(err) {
		return true
	}
	_, err := parser.Parse("df " + replEntry + "() {\n" + src + "\n}")
	return parser.IsIncomplete(err)
}

func isDecl(src string) bool {
	return strings.HasPrefix(src, "df ") || strings.HasPrefix(src, "struct ")
}

// session accumulates declarations and statements. Each expression is run
// as the result of a fresh entry function holding every prior statement.
type session struct {
	cfg   driver.Config
	color bool
	decls []string
	stmts []string
}

func (s *session) program(stmts []string, result string) string {
	var b strings.Builder
	for _, d := range s.decls {
		b.WriteString(d)
		b.WriteByte('\n')
	}
	b.WriteString("df " + replEntry + "() {\n")
	for _, st := range stmts {
		b.WriteString(st)
		b.WriteByte('\n')
	}
	if result != "" {
		b.WriteString("return " + result + ";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func (s *session) compile(text string, stderr io.Writer) (*driver.Result, bool) {
	f := source.NewFile("<repl>", text)
	cfg := s.cfg
	cfg.Dump = false
	res, err := driver.Compile(f, cfg)
	if err != nil {
		diag.RenderError(stderr, f, err, s.color)
		return nil, false
	}
	return res, true
}

// eval handles one complete input and returns what to print. A bare
// expression is evaluated; anything ending in ';' (and assignments) is kept
// as a statement.
func (s *session) eval(code string, stderr io.Writer) (string, bool) {
	if isDecl(code) {
		prev := s.decls
		s.decls = append(s.decls[:len(s.decls):len(s.decls)], code)
		if _, ok := s.compile(s.program(s.stmts, ""), stderr); !ok {
			s.decls = prev
			return "", false
		}
		return "", true
	}
	e, err := parser.ParseExpr(code)
	if _, assign := e.(*ast.AssignExpr); err == nil && assign {
		code += ";"
	} else if err == nil {
		res, ok := s.compile(s.program(s.stmts, code), stderr)
		if !ok {
			return "", false
		}
		v, err := interp.Run(res.IR, replEntry)
		if err != nil {
			fmt.Fprintln(stderr, "error: "+err.Error())
			return "", false
		}
		return fmt.Sprint(v), true
	}
	stmts := append(s.stmts[:len(s.stmts):len(s.stmts)], code)
	res, ok := s.compile(s.program(stmts, ""), stderr)
	if !ok {
		return "", false
	}
	if _, err := interp.Run(res.IR, replEntry); err != nil {
		fmt.Fprintln(stderr, "error: "+err.Error())
		return "", false
	}
	s.stmts = stmts
	return "", true
}

// command runs a :command and reports whether the session should end.
func (s *session) command(code string, stdout io.Writer) bool {
	switch strings.ToLower(code) {
	case ":quit", ":q":
		return true
	case ":reset":
		s.decls, s.stmts = nil, nil
	case ":ir":
		res, ok := s.compile(s.program(s.stmts, ""), stdout)
		if ok {
			fmt.Fprint(stdout, res.IRText())
		}
	case ":help":
		fmt.Fprintln(stdout, "enter declarations (df ...), statements or expressions")
		fmt.Fprintln(stdout, ":ir     show the session IR")
		fmt.Fprintln(stdout, ":reset  forget everything")
		fmt.Fprintln(stdout, ":quit   leave")
	default:
		fmt.Fprintln(stdout, "unknown command. Type :help for a list.")
	}
	return false
}
