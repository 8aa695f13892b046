package ir

import (
	"strconv"
	"strings"

	"mathic/internal/names"
)

// Format renders the program as deterministic text. Nested functions follow
// their parent and are printed with a qualified name.
func (p *Program) Format() string {
	var sb strings.Builder
	sb.WriteString("ir v0\n")
	if p == nil {
		return sb.String()
	}
	for _, f := range p.Functions {
		formatFunc(&sb, nil, f)
	}
	return sb.String()
}

// Format renders a single function and its nested functions.
func (f *Function) Format() string {
	var sb strings.Builder
	formatFunc(&sb, nil, f)
	return sb.String()
}

func formatFunc(sb *strings.Builder, parents []string, f *Function) {
	path := names.Child(parents, f.Name)
	sb.WriteString("fn ")
	sb.WriteString(names.Display(path))
	sb.WriteByte('(')
	for i, p := range f.Params() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(localName(p))
	}
	sb.WriteString(")\n")
	if len(f.Syms.Locals) > 0 {
		sb.WriteString("  locals:")
		for i, l := range f.Syms.Locals {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(" _")
			sb.WriteString(strconv.Itoa(l.Idx))
			sb.WriteByte(' ')
			sb.WriteString(l.Kind.String())
			if l.Name != "" {
				sb.WriteByte(' ')
				sb.WriteString(l.Name)
			}
		}
		sb.WriteByte('\n')
	}
	for _, b := range f.Blocks {
		sb.WriteString(b.ID.String())
		sb.WriteString(":\n")
		for _, ins := range b.Instructions {
			sb.WriteString("  ")
			sb.WriteString(ins.fmtString())
			sb.WriteByte('\n')
		}
		if b.Term != nil {
			sb.WriteString("  ")
			sb.WriteString(b.Term.fmtString())
			sb.WriteByte('\n')
		}
	}
	for _, nested := range f.Syms.Functions {
		formatFunc(sb, path, nested)
	}
}

func localName(l Local) string {
	if l.Name != "" {
		return l.Name
	}
	return "_" + strconv.Itoa(l.Idx)
}

// FormatRVal renders a single right-hand side the way Format does.
func FormatRVal(r RValInstruct) string { return r.fmtString() }
