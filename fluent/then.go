package fluent

import (
	"fmt"

	"github.com/dhamidi/parsekit/plan"
	"github.com/dhamidi/parsekit/scanner"
)

type then[T, U any] struct {
	seekThrough
	parser    Parser[T]
	transform func(T) U
}

// Then transforms the value of p with fn. fn must be pure: compiled parsers
// skip it when the value is not used.
func Then[T, U any](p Parser[T], fn func(T) U) Parser[U] {
	mustParser(p, "Then")
	if fn == nil {
		panic(fmt.Errorf("Then: nil transform: %w", ErrNilParser))
	}
	return &then[T, U]{seekThrough: seekThrough{p}, parser: p, transform: fn}
}

func (t *then[T, U]) Parse(ctx *ParseContext, result *ParseResult[U]) bool {
	ctx.EnterParser(t)

	var r ParseResult[T]
	if !t.parser.Parse(ctx, &r) {
		return false
	}
	result.Set(r.Start, r.End, t.transform(r.Value))
	return true
}

func (t *then[T, U]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := build(ctx, t.parser, discard)
	if discard {
		return f
	}

	value := ctx.DeclareValue()
	transform := t.transform
	f.Add(plan.IfStmt{Cond: f.Success, Then: block(
		plan.TransformStmt{
			Transform: func(v any) any { return transform(as[T](v)) },
			Source:    f.Value,
			Target:    value,
		},
	)})
	f.Value = value
	return f
}

type thenSpan[T, U any] struct {
	seekThrough
	parser    Parser[T]
	transform func(T, scanner.Span) U
}

// ThenSpan is like Then but also passes the span of the input p matched.
func ThenSpan[T, U any](p Parser[T], fn func(T, scanner.Span) U) Parser[U] {
	mustParser(p, "ThenSpan")
	if fn == nil {
		panic(fmt.Errorf("ThenSpan: nil transform: %w", ErrNilParser))
	}
	return &thenSpan[T, U]{seekThrough: seekThrough{p}, parser: p, transform: fn}
}

func (t *thenSpan[T, U]) Parse(ctx *ParseContext, result *ParseResult[U]) bool {
	ctx.EnterParser(t)

	var r ParseResult[T]
	if !t.parser.Parse(ctx, &r) {
		return false
	}
	span := scanner.NewSpan(ctx.Scanner().Buffer(), r.Start, r.End)
	result.Set(r.Start, r.End, t.transform(r.Value, span))
	return true
}

func (t *thenSpan[T, U]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := build(ctx, t.parser, discard)
	if discard {
		return f
	}

	value := ctx.DeclareValue()
	transform := t.transform
	f.Add(plan.IfStmt{Cond: f.Success, Then: block(
		plan.SpanStmt{
			Transform: func(v any, span scanner.Span) any { return transform(as[T](v), span) },
			Source:    f.Value,
			Start:     f.Start,
			End:       f.End,
			Target:    value,
		},
	)})
	f.Value = value
	return f
}

// Capture yields the span of the input p matched instead of p's value.
func Capture[T any](p Parser[T]) Parser[scanner.Span] {
	return ThenSpan(p, func(_ T, span scanner.Span) scanner.Span { return span })
}

// Erase hides the value type of p.
func Erase[T any](p Parser[T]) Parser[any] {
	return Then(p, func(v T) any { return v })
}

type when[T any] struct {
	seekThrough
	parser    Parser[T]
	predicate func(T) bool
}

// When matches what p matches, as long as pred accepts the value. pred must
// not consume input.
func When[T any](p Parser[T], pred func(T) bool) Parser[T] {
	mustParser(p, "When")
	if pred == nil {
		panic(fmt.Errorf("When: nil predicate: %w", ErrNilParser))
	}
	return &when[T]{seekThrough: seekThrough{p}, parser: p, predicate: pred}
}

func (w *when[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(w)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	if !w.parser.Parse(ctx, result) {
		return false
	}
	if !w.predicate(result.Value) {
		sc.Cursor.ResetPosition(entry)
		return false
	}
	return true
}

func (w *when[T]) Compile(ctx *plan.Context) plan.Fragment {
	entry := ctx.DeclarePosition()
	c := build(ctx, w.parser, false)
	predicate := w.predicate

	f := c
	f.Stmts = nil
	f.Add(plan.SavePositionStmt{Target: entry})
	f.Add(c.Stmts...)
	f.Add(plan.IfStmt{Cond: c.Success, Then: block(
		plan.PredicateStmt{
			Predicate: func(v any) bool { return predicate(as[T](v)) },
			Source:    c.Value,
			Target:    c.Success,
		},
		plan.IfStmt{Cond: c.Success, Else: block(
			plan.ResetPositionStmt{Source: entry},
		)},
	)})
	return f
}
