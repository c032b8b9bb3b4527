package fluent

import (
	"fmt"

	"github.com/dhamidi/parsekit/plan"
)

type zeroOrOne[T any] struct {
	parser Parser[T]
}

// ZeroOrOne matches p if it can, and otherwise matches nothing with the zero
// value of T.
func ZeroOrOne[T any](p Parser[T]) Parser[T] {
	mustParser(p, "ZeroOrOne")
	return &zeroOrOne[T]{parser: p}
}

func (z *zeroOrOne[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(z)

	if z.parser.Parse(ctx, result) {
		return true
	}
	offset := ctx.Scanner().Cursor.Offset()
	var zero T
	result.Set(offset, offset, zero)
	return true
}

func (z *zeroOrOne[T]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(true)
	c := build(ctx, z.parser, discard)

	none := []plan.Stmt{
		plan.OffsetStmt{Target: f.Start},
		plan.CopyIntStmt{Source: f.Start, Target: f.End},
	}
	if !discard {
		none = append(none, plan.ConstStmt{Value: nil, Target: f.Value})
	}
	f.Add(c.Stmts...)
	f.Add(plan.IfStmt{
		Cond: c.Success,
		Then: block(succeed(f, c, discard)...),
		Else: block(none...),
	})
	return f
}

// repetition matches its parser as many times as it can. A match that
// consumes nothing is kept and ends the repetition, since repeating it would
// never stop.
type repetition[T any] struct {
	parser Parser[T]
	min    int
}

// ZeroOrMany matches p as many times as possible. It always succeeds.
func ZeroOrMany[T any](p Parser[T]) Parser[[]T] {
	mustParser(p, "ZeroOrMany")
	return &repetition[T]{parser: p}
}

// OneOrMany matches p as many times as possible, and at least once.
func OneOrMany[T any](p Parser[T]) Parser[[]T] {
	mustParser(p, "OneOrMany")
	return &repetition[T]{parser: p, min: 1}
}

func (r *repetition[T]) Parse(ctx *ParseContext, result *ParseResult[[]T]) bool {
	ctx.EnterParser(r)

	sc := ctx.Scanner()
	start := sc.Cursor.Offset()
	end := start
	values := []T{}
	var item ParseResult[T]
	for {
		before := sc.Cursor.Offset()
		if !r.parser.Parse(ctx, &item) {
			break
		}
		if len(values) == 0 {
			start = item.Start
		}
		values = append(values, item.Value)
		end = item.End
		if sc.Cursor.Offset() == before {
			break
		}
	}
	if len(values) < r.min {
		return false
	}
	result.Set(start, end, values)
	return true
}

func (r *repetition[T]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(true)
	first := ctx.DeclareBool()
	before, after := ctx.DeclareInt(), ctx.DeclareInt()
	same := ctx.DeclareBool()
	loop := ctx.NextLabel()

	f.Add(
		plan.OffsetStmt{Target: f.Start},
		plan.CopyIntStmt{Source: f.Start, Target: f.End},
		plan.AssignBoolStmt{Value: true, Target: first},
	)
	if !discard {
		f.Add(plan.MakeStmt{New: func() any { return []T{} }, Target: f.Value})
	}

	c := build(ctx, r.parser, discard)
	body := []plan.Stmt{plan.OffsetStmt{Target: before}}
	body = append(body, c.Stmts...)
	body = append(body,
		plan.IfStmt{Cond: c.Success, Else: block(plan.BreakStmt{Label: loop})},
		plan.IfStmt{Cond: first, Then: block(
			plan.CopyIntStmt{Source: c.Start, Target: f.Start},
			plan.AssignBoolStmt{Value: false, Target: first},
		)},
		plan.CopyIntStmt{Source: c.End, Target: f.End},
	)
	if !discard {
		body = append(body, plan.AppendStmt{Append: appendValue[T], Elem: c.Value, List: f.Value})
	}
	body = append(body,
		plan.OffsetStmt{Target: after},
		plan.EqualIntStmt{A: before, B: after, Target: same},
		plan.IfStmt{Cond: same, Then: block(plan.BreakStmt{Label: loop})},
	)
	f.Add(plan.LoopStmt{Label: loop, Block: block(body...)})

	if r.min > 0 {
		f.Add(plan.IfStmt{Cond: first, Then: block(
			plan.AssignBoolStmt{Value: false, Target: f.Success},
		)})
	}
	return f
}

func (r *repetition[T]) CanSeek() bool {
	return r.min > 0 && seekThrough{r.parser}.CanSeek()
}

func (r *repetition[T]) ExpectedChars() []rune {
	return seekThrough{r.parser}.ExpectedChars()
}

func (r *repetition[T]) SkipWhitespace() bool {
	return seekThrough{r.parser}.SkipWhitespace()
}

type repeat[T any] struct {
	parser Parser[T]
	count  int
}

// Repeat matches p exactly n times. If p fails before that nothing is
// consumed.
func Repeat[T any](p Parser[T], n int) Parser[[]T] {
	mustParser(p, "Repeat")
	if n < 0 {
		panic(fmt.Errorf("Repeat: %d: %w", n, ErrInvalidCount))
	}
	return &repeat[T]{parser: p, count: n}
}

func (r *repeat[T]) Parse(ctx *ParseContext, result *ParseResult[[]T]) bool {
	ctx.EnterParser(r)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	start := entry.Offset
	end := start
	values := make([]T, 0, r.count)
	var item ParseResult[T]
	for i := 0; i < r.count; i++ {
		if !r.parser.Parse(ctx, &item) {
			sc.Cursor.ResetPosition(entry)
			return false
		}
		if i == 0 {
			start = item.Start
		}
		values = append(values, item.Value)
		end = item.End
	}
	result.Set(start, end, values)
	return true
}

func (r *repeat[T]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(false)
	entry := ctx.DeclarePosition()
	count := ctx.DeclareInt()
	more, isFirst := ctx.DeclareBool(), ctx.DeclareBool()
	done, loop := ctx.NextLabel(), ctx.NextLabel()
	n := r.count

	f.Add(
		plan.SavePositionStmt{Target: entry},
		plan.OffsetStmt{Target: f.Start},
		plan.CopyIntStmt{Source: f.Start, Target: f.End},
		plan.AssignIntStmt{Value: 0, Target: count},
	)
	if !discard {
		f.Add(plan.MakeStmt{New: func() any { return make([]T, 0, n) }, Target: f.Value})
	}

	c := build(ctx, r.parser, discard)
	body := []plan.Stmt{
		plan.LessThanStmt{A: count, Value: n, Target: more},
		plan.IfStmt{Cond: more, Else: block(plan.BreakStmt{Label: loop})},
	}
	body = append(body, c.Stmts...)
	body = append(body,
		plan.IfStmt{Cond: c.Success, Else: block(
			plan.ResetPositionStmt{Source: entry},
			plan.BreakStmt{Label: done},
		)},
		plan.LessThanStmt{A: count, Value: 1, Target: isFirst},
		plan.IfStmt{Cond: isFirst, Then: block(plan.CopyIntStmt{Source: c.Start, Target: f.Start})},
		plan.CopyIntStmt{Source: c.End, Target: f.End},
	)
	if !discard {
		body = append(body, plan.AppendStmt{Append: appendValue[T], Elem: c.Value, List: f.Value})
	}
	body = append(body, plan.IncrementStmt{Target: count})

	f.Add(plan.BlockStmt{Label: done, Block: block(
		plan.LoopStmt{Label: loop, Block: block(body...)},
		plan.AssignBoolStmt{Value: true, Target: f.Success},
	)})
	return f
}

func (r *repeat[T]) CanSeek() bool {
	return r.count > 0 && seekThrough{r.parser}.CanSeek()
}

func (r *repeat[T]) ExpectedChars() []rune {
	return seekThrough{r.parser}.ExpectedChars()
}

func (r *repeat[T]) SkipWhitespace() bool {
	return seekThrough{r.parser}.SkipWhitespace()
}

type empty[T any] struct{}

// Empty matches nothing and yields the zero value of T. It never fails.
func Empty[T any]() Parser[T] {
	return empty[T]{}
}

func (e empty[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(e)

	offset := ctx.Scanner().Cursor.Offset()
	var zero T
	result.Set(offset, offset, zero)
	return true
}

func (e empty[T]) Compile(ctx *plan.Context) plan.Fragment {
	f := ctx.NewFragment(true)
	f.Add(
		plan.OffsetStmt{Target: f.Start},
		plan.CopyIntStmt{Source: f.Start, Target: f.End},
		plan.ConstStmt{Value: nil, Target: f.Value},
	)
	return f
}
