package fluent

import (
	"github.com/dhamidi/parsekit/plan"
)

type between[A, T, B any] struct {
	before Parser[A]
	parser Parser[T]
	after  Parser[B]
}

// Between matches before, p and after in order and yields p's value. The
// span covers all three.
func Between[A, T, B any](before Parser[A], p Parser[T], after Parser[B]) Parser[T] {
	mustParser(before, "Between")
	mustParser(p, "Between")
	mustParser(after, "Between")
	return &between[A, T, B]{before: before, parser: p, after: after}
}

func (b *between[A, T, B]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(b)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()

	var open ParseResult[A]
	if !b.before.Parse(ctx, &open) {
		return false
	}
	var inner ParseResult[T]
	if !b.parser.Parse(ctx, &inner) {
		sc.Cursor.ResetPosition(entry)
		return false
	}
	var closing ParseResult[B]
	if !b.after.Parse(ctx, &closing) {
		sc.Cursor.ResetPosition(entry)
		return false
	}
	result.Set(open.Start, closing.End, inner.Value)
	return true
}

func (b *between[A, T, B]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(false)
	entry := ctx.DeclarePosition()
	done := ctx.NextLabel()
	fail := block(
		plan.ResetPositionStmt{Source: entry},
		plan.BreakStmt{Label: done},
	)

	open := build(ctx, b.before, true)
	inner := build(ctx, b.parser, discard)
	closing := build(ctx, b.after, true)

	var body []plan.Stmt
	body = append(body, open.Stmts...)
	body = append(body, plan.IfStmt{Cond: open.Success, Else: fail})
	body = append(body, inner.Stmts...)
	body = append(body, plan.IfStmt{Cond: inner.Success, Else: fail})
	body = append(body, closing.Stmts...)
	body = append(body, plan.IfStmt{Cond: closing.Success, Else: fail})
	body = append(body,
		plan.AssignBoolStmt{Value: true, Target: f.Success},
		plan.CopyIntStmt{Source: open.Start, Target: f.Start},
		plan.CopyIntStmt{Source: closing.End, Target: f.End},
	)
	if !discard {
		body = append(body, plan.CopyValueStmt{Source: inner.Value, Target: f.Value})
	}

	f.Add(
		plan.SavePositionStmt{Target: entry},
		plan.BlockStmt{Label: done, Block: block(body...)},
	)
	return f
}

func (b *between[A, T, B]) CanSeek() bool {
	return seekThrough{b.before}.CanSeek()
}

func (b *between[A, T, B]) ExpectedChars() []rune {
	return seekThrough{b.before}.ExpectedChars()
}

func (b *between[A, T, B]) SkipWhitespace() bool {
	return seekThrough{b.before}.SkipWhitespace()
}

type skipWhiteSpace[T any] struct {
	seekThrough
	parser Parser[T]
}

// SkipWhiteSpace skips white space and then matches p. It gives white space
// skipping to parsers that do not skip it themselves.
func SkipWhiteSpace[T any](p Parser[T]) Parser[T] {
	mustParser(p, "SkipWhiteSpace")
	return &skipWhiteSpace[T]{seekThrough: seekThrough{p}, parser: p}
}

func (s *skipWhiteSpace[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(s)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	sc.SkipWhiteSpace()
	if !s.parser.Parse(ctx, result) {
		sc.Cursor.ResetPosition(entry)
		return false
	}
	return true
}

func (s *skipWhiteSpace[T]) Compile(ctx *plan.Context) plan.Fragment {
	entry := ctx.DeclarePosition()
	c := build(ctx, s.parser, ctx.DiscardResult)

	f := c
	f.Stmts = nil
	f.Add(
		plan.SavePositionStmt{Target: entry},
		plan.SkipWhiteSpaceStmt{},
	)
	f.Add(c.Stmts...)
	f.Add(plan.IfStmt{Cond: c.Success, Else: block(plan.ResetPositionStmt{Source: entry})})
	return f
}

func (s *skipWhiteSpace[T]) SkipWhitespace() bool {
	return true
}

type eof[T any] struct {
	seekThrough
	parser Parser[T]
}

// Eof matches p when nothing but white space follows it. The cursor is left
// at the end of the input.
func Eof[T any](p Parser[T]) Parser[T] {
	mustParser(p, "Eof")
	return &eof[T]{seekThrough: seekThrough{p}, parser: p}
}

func (e *eof[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(e)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	if !e.parser.Parse(ctx, result) {
		return false
	}
	sc.SkipWhiteSpace()
	if !sc.Cursor.Eof() {
		sc.Cursor.ResetPosition(entry)
		return false
	}
	result.End = sc.Cursor.Offset()
	return true
}

func (e *eof[T]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(false)
	entry := ctx.DeclarePosition()
	atEnd := ctx.DeclareBool()
	done := ctx.NextLabel()

	c := build(ctx, e.parser, discard)
	matched := []plan.Stmt{
		plan.AssignBoolStmt{Value: true, Target: f.Success},
		plan.CopyIntStmt{Source: c.Start, Target: f.Start},
		plan.OffsetStmt{Target: f.End},
	}
	if !discard {
		matched = append(matched, plan.CopyValueStmt{Source: c.Value, Target: f.Value})
	}

	f.Add(plan.SavePositionStmt{Target: entry})
	f.Add(c.Stmts...)
	f.Add(plan.BlockStmt{Label: done, Block: block(
		plan.IfStmt{Cond: c.Success, Else: block(plan.BreakStmt{Label: done})},
		plan.SkipWhiteSpaceStmt{},
		plan.EofStmt{Target: atEnd},
		plan.IfStmt{
			Cond: atEnd,
			Then: block(matched...),
			Else: block(plan.ResetPositionStmt{Source: entry}),
		},
	)})
	return f
}
