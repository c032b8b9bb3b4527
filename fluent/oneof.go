package fluent

import (
	"fmt"
	"slices"

	"github.com/dhamidi/parsekit/plan"
)

type oneOf[T any] struct {
	parsers []Parser[T]

	// table maps a leading rune to the alternatives that can start with it,
	// in declaration order. It is nil when some alternative cannot seek or
	// the alternatives disagree about skipping white space.
	table map[rune][]int
	skip  bool
}

// OneOf returns the result of the first parser that matches.
func OneOf[T any](parsers ...Parser[T]) Parser[T] {
	checkParsers(parsers, "OneOf")
	o := &oneOf[T]{parsers: parsers}
	o.table, o.skip = dispatchTable(parsers)
	return o
}

func dispatchTable[T any](parsers []Parser[T]) (map[rune][]int, bool) {
	table := make(map[rune][]int)
	skip := false
	for i, p := range parsers {
		s, ok := seekable(p)
		if !ok {
			return nil, false
		}
		if i == 0 {
			skip = s.SkipWhitespace()
		} else if s.SkipWhitespace() != skip {
			return nil, false
		}
		for _, ch := range s.ExpectedChars() {
			if list := table[ch]; len(list) == 0 || list[len(list)-1] != i {
				table[ch] = append(list, i)
			}
		}
	}
	return table, skip
}

func (o *oneOf[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(o)

	if o.table == nil {
		for _, p := range o.parsers {
			if p.Parse(ctx, result) {
				return true
			}
		}
		return false
	}

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	if o.skip {
		sc.SkipWhiteSpace()
	}
	for _, i := range o.table[sc.Cursor.Current()] {
		if o.parsers[i].Parse(ctx, result) {
			return true
		}
	}
	sc.Cursor.ResetPosition(entry)
	return false
}

func (o *oneOf[T]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(false)
	done := ctx.NextLabel()

	// try runs the alternatives in order and leaves the block on the first
	// success.
	try := func(indexes []int) plan.Block {
		var stmts []plan.Stmt
		for _, i := range indexes {
			c := build(ctx, o.parsers[i], discard)
			stmts = append(stmts, c.Stmts...)
			stmts = append(stmts, plan.IfStmt{Cond: c.Success, Then: block(
				append(succeed(f, c, discard), plan.BreakStmt{Label: done})...,
			)})
		}
		return block(stmts...)
	}

	if o.table == nil {
		all := make([]int, len(o.parsers))
		for i := range all {
			all[i] = i
		}
		f.Add(plan.BlockStmt{Label: done, Block: try(all)})
		return f
	}

	entry := ctx.DeclarePosition()
	dispatch := plan.DispatchStmt{
		SkipWhiteSpace: o.skip,
		Table:          make(map[rune]int, len(o.table)),
	}
	cases := make(map[string]int)
	chars := make([]rune, 0, len(o.table))
	for ch := range o.table {
		chars = append(chars, ch)
	}
	slices.Sort(chars)
	for _, ch := range chars {
		indexes := o.table[ch]
		key := fmt.Sprint(indexes)
		n, ok := cases[key]
		if !ok {
			n = len(dispatch.Cases)
			cases[key] = n
			dispatch.Cases = append(dispatch.Cases, try(indexes))
		}
		dispatch.Table[ch] = n
	}

	f.Add(
		plan.SavePositionStmt{Target: entry},
		plan.BlockStmt{Label: done, Block: block(
			dispatch,
			plan.ResetPositionStmt{Source: entry},
		)},
	)
	return f
}

func (o *oneOf[T]) CanSeek() bool {
	return o.table != nil
}

func (o *oneOf[T]) ExpectedChars() []rune {
	chars := make([]rune, 0, len(o.table))
	for ch := range o.table {
		chars = append(chars, ch)
	}
	slices.Sort(chars)
	return chars
}

func (o *oneOf[T]) SkipWhitespace() bool {
	return o.skip
}
