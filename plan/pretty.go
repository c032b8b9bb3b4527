package plan

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Pretty writes a human-readable representation of p to w.
func Pretty(w io.Writer, p *Plan) error {
	pp := &printer{w: w}
	for i, f := range p.Funcs {
		if i > 0 {
			pp.line("")
		}
		main := ""
		if p.Main == f {
			main = " (main)"
		}
		pp.line("func %d %s%s locals(bool=%d int=%d pos=%d value=%d)",
			f.Index, f.Name, main, f.Locals.Bools, f.Locals.Ints, f.Locals.Positions, f.Locals.Values)
		pp.depth++
		pp.block(f.Body)
		pp.line("result success=b%d value=v%d start=i%d end=i%d",
			f.Result.Success, f.Result.Value, f.Result.Start, f.Result.End)
		pp.depth--
	}
	return pp.err
}

type printer struct {
	w     io.Writer
	depth int
	err   error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	indent := strings.Repeat("  ", p.depth)
	_, p.err = fmt.Fprintf(p.w, indent+format+"\n", args...)
}

func (p *printer) block(b Block) {
	for _, s := range b.Stmts {
		p.stmt(s)
	}
}

func (p *printer) nested(header string, b Block) {
	p.line("%s", header)
	p.depth++
	p.block(b)
	p.depth--
}

func (p *printer) stmt(s Stmt) {
	switch s := s.(type) {
	case BlockStmt:
		p.nested(fmt.Sprintf("block %v:", s.Label), s.Block)
	case BreakStmt:
		p.line("break %v", s.Label)
	case LoopStmt:
		p.nested(fmt.Sprintf("loop %v:", s.Label), s.Block)
	case IfStmt:
		p.nested(fmt.Sprintf("if b%d:", s.Cond), s.Then)
		if len(s.Else.Stmts) > 0 {
			p.nested("else:", s.Else)
		}
	case AssignBoolStmt:
		p.line("b%d = %v", s.Target, s.Value)
	case AssignIntStmt:
		p.line("i%d = %d", s.Target, s.Value)
	case CopyIntStmt:
		p.line("i%d = i%d", s.Target, s.Source)
	case IncrementStmt:
		p.line("i%d++", s.Target)
	case LessThanStmt:
		p.line("b%d = i%d < %d", s.Target, s.A, s.Value)
	case EqualIntStmt:
		p.line("b%d = i%d == i%d", s.Target, s.A, s.B)
	case SavePositionStmt:
		p.line("p%d = position", s.Target)
	case ResetPositionStmt:
		p.line("reset p%d", s.Source)
	case OffsetStmt:
		p.line("i%d = offset", s.Target)
	case SeekStmt:
		p.line("seek i%d", s.Offset)
	case SkipWhiteSpaceStmt:
		p.line("skip whitespace")
	case EofStmt:
		p.line("b%d = eof", s.Target)
	case MatchStmt:
		skip := ""
		if s.SkipWhiteSpace {
			skip = " (skip whitespace)"
		}
		p.line("b%d, v%d, i%d, i%d = match %s%s", s.Success, s.Value, s.Start, s.End, s.Name, skip)
	case DispatchStmt:
		skip := ""
		if s.SkipWhiteSpace {
			skip = " (skip whitespace)"
		}
		p.line("dispatch%s:", skip)
		p.depth++
		for i, c := range s.Cases {
			p.nested(fmt.Sprintf("case %s:", dispatchKeys(s.Table, i)), c)
		}
		if len(s.Default.Stmts) > 0 {
			p.nested("default:", s.Default)
		}
		p.depth--
	case CallStmt:
		p.line("b%d, v%d, i%d, i%d = call %d", s.Success, s.Value, s.Start, s.End, s.Func)
	case InvokeStmt:
		p.line("b%d, v%d, i%d, i%d = invoke %s", s.Success, s.Value, s.Start, s.End, s.Name)
	case ConstStmt:
		p.line("v%d = %#v", s.Target, s.Value)
	case CopyValueStmt:
		p.line("v%d = v%d", s.Target, s.Source)
	case MakeStmt:
		p.line("v%d = make", s.Target)
	case AppendStmt:
		p.line("append v%d, v%d", s.List, s.Elem)
	case TupleStmt:
		parts := make([]string, len(s.Sources))
		for i, src := range s.Sources {
			parts[i] = fmt.Sprintf("v%d", src)
		}
		p.line("v%d = tuple(%s)", s.Target, strings.Join(parts, ", "))
	case TransformStmt:
		p.line("v%d = transform v%d", s.Target, s.Source)
	case PredicateStmt:
		p.line("b%d = predicate v%d", s.Target, s.Source)
	case SpanStmt:
		p.line("v%d = span v%d [i%d, i%d)", s.Target, s.Source, s.Start, s.End)
	default:
		p.line("%T", s)
	}
}

func dispatchKeys(table map[rune]int, index int) string {
	var keys []rune
	for ch, i := range table {
		if i == index {
			keys = append(keys, ch)
		}
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })
	parts := make([]string, len(keys))
	for i, ch := range keys {
		parts[i] = fmt.Sprintf("%q", ch)
	}
	return strings.Join(parts, " ")
}
