package fluent

import (
	"fmt"

	"github.com/dhamidi/parsekit/plan"
)

// sequence matches parsers one after the other and combines their values
// with collect. A nil collect yields the values as a slice.
type sequence[T, R any] struct {
	parsers []Parser[T]
	collect func([]T) R
}

// Sequence matches every parser in order and yields their values. If one of
// them fails nothing is consumed.
func Sequence[T any](parsers ...Parser[T]) Parser[[]T] {
	checkParsers(parsers, "Sequence")
	return &sequence[T, []T]{parsers: parsers}
}

// Tuple2 is the value of And.
type Tuple2[A, B any] struct {
	First  A
	Second B
}

// Tuple3 is the value of And3.
type Tuple3[A, B, C any] struct {
	First  A
	Second B
	Third  C
}

// And matches a then b.
func And[A, B any](a Parser[A], b Parser[B]) Parser[Tuple2[A, B]] {
	mustParser(a, "And")
	mustParser(b, "And")
	return &sequence[any, Tuple2[A, B]]{
		parsers: []Parser[any]{Erase(a), Erase(b)},
		collect: func(vs []any) Tuple2[A, B] {
			return Tuple2[A, B]{First: as[A](vs[0]), Second: as[B](vs[1])}
		},
	}
}

// And3 matches a, b and c in order.
func And3[A, B, C any](a Parser[A], b Parser[B], c Parser[C]) Parser[Tuple3[A, B, C]] {
	mustParser(a, "And3")
	mustParser(b, "And3")
	mustParser(c, "And3")
	return &sequence[any, Tuple3[A, B, C]]{
		parsers: []Parser[any]{Erase(a), Erase(b), Erase(c)},
		collect: func(vs []any) Tuple3[A, B, C] {
			return Tuple3[A, B, C]{First: as[A](vs[0]), Second: as[B](vs[1]), Third: as[C](vs[2])}
		},
	}
}

func checkParsers[T any](parsers []Parser[T], combinator string) {
	if len(parsers) == 0 {
		panic(fmt.Errorf("%s: no parsers: %w", combinator, ErrNilParser))
	}
	for _, p := range parsers {
		mustParser(p, combinator)
	}
}

func (s *sequence[T, R]) result(values []T) R {
	if s.collect == nil {
		return any(values).(R)
	}
	return s.collect(values)
}

func (s *sequence[T, R]) Parse(ctx *ParseContext, result *ParseResult[R]) bool {
	ctx.EnterParser(s)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	values := make([]T, 0, len(s.parsers))
	start := 0
	var r ParseResult[T]
	for i, p := range s.parsers {
		if !p.Parse(ctx, &r) {
			sc.Cursor.ResetPosition(entry)
			return false
		}
		if i == 0 {
			start = r.Start
		}
		values = append(values, r.Value)
	}
	result.Set(start, r.End, s.result(values))
	return true
}

func (s *sequence[T, R]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(false)
	entry := ctx.DeclarePosition()
	done := ctx.NextLabel()
	n := len(s.parsers)

	var body []plan.Stmt
	if !discard {
		body = append(body, plan.MakeStmt{
			New:    func() any { return make([]T, 0, n) },
			Target: f.Value,
		})
	}
	for i, p := range s.parsers {
		c := build(ctx, p, discard)
		body = append(body, c.Stmts...)
		body = append(body, plan.IfStmt{Cond: c.Success, Else: block(
			plan.ResetPositionStmt{Source: entry},
			plan.BreakStmt{Label: done},
		)})
		if i == 0 {
			body = append(body, plan.CopyIntStmt{Source: c.Start, Target: f.Start})
		}
		if i == n-1 {
			body = append(body, plan.CopyIntStmt{Source: c.End, Target: f.End})
		}
		if !discard {
			body = append(body, plan.AppendStmt{Append: appendValue[T], Elem: c.Value, List: f.Value})
		}
	}
	if !discard && s.collect != nil {
		body = append(body, plan.TransformStmt{
			Transform: func(v any) any { return s.result(v.([]T)) },
			Source:    f.Value,
			Target:    f.Value,
		})
	}
	body = append(body, plan.AssignBoolStmt{Value: true, Target: f.Success})

	f.Add(
		plan.SavePositionStmt{Target: entry},
		plan.BlockStmt{Label: done, Block: block(body...)},
	)
	return f
}

func (s *sequence[T, R]) CanSeek() bool {
	_, ok := seekable(s.parsers[0])
	return ok
}

func (s *sequence[T, R]) ExpectedChars() []rune {
	return seekThrough{s.parsers[0]}.ExpectedChars()
}

func (s *sequence[T, R]) SkipWhitespace() bool {
	return seekThrough{s.parsers[0]}.SkipWhitespace()
}

func appendValue[T any](list, elem any) any {
	return append(list.([]T), as[T](elem))
}
