package fluent

import (
	"github.com/dhamidi/parsekit/plan"
)

type excluding[T any] struct {
	seekThrough
	parser     Parser[T]
	exclusions []Parser[any]
}

// Excluding matches what p matches unless one of exclusions also matches
// where p's match starts, after any white space p skipped. A longer keyword
// can be excluded from a shorter pattern this way.
func Excluding[T any](p Parser[T], exclusions ...Parser[any]) Parser[T] {
	mustParser(p, "Excluding")
	for _, q := range exclusions {
		mustParser(q, "Excluding")
	}
	return &excluding[T]{seekThrough: seekThrough{p}, parser: p, exclusions: exclusions}
}

func (e *excluding[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(e)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	if !e.parser.Parse(ctx, result) {
		return false
	}
	end := sc.Cursor.Position()
	sc.Cursor.ResetPosition(entry)
	sc.Cursor.AdvanceTo(result.Start)
	start := sc.Cursor.Position()

	var ignored ParseResult[any]
	for _, q := range e.exclusions {
		sc.Cursor.ResetPosition(start)
		if q.Parse(ctx, &ignored) {
			sc.Cursor.ResetPosition(entry)
			return false
		}
	}
	sc.Cursor.ResetPosition(end)
	return true
}

func (e *excluding[T]) Compile(ctx *plan.Context) plan.Fragment {
	discard := ctx.DiscardResult
	f := ctx.NewFragment(false)
	entry, start, end := ctx.DeclarePosition(), ctx.DeclarePosition(), ctx.DeclarePosition()
	done := ctx.NextLabel()

	c := build(ctx, e.parser, discard)
	body := []plan.Stmt{
		plan.IfStmt{Cond: c.Success, Else: block(plan.BreakStmt{Label: done})},
		plan.SavePositionStmt{Target: end},
		plan.ResetPositionStmt{Source: entry},
		plan.SeekStmt{Offset: c.Start},
		plan.SavePositionStmt{Target: start},
	}
	for _, q := range e.exclusions {
		x := build(ctx, q, true)
		body = append(body, plan.ResetPositionStmt{Source: start})
		body = append(body, x.Stmts...)
		body = append(body, plan.IfStmt{Cond: x.Success, Then: block(
			plan.ResetPositionStmt{Source: entry},
			plan.BreakStmt{Label: done},
		)})
	}
	body = append(body, plan.ResetPositionStmt{Source: end})
	body = append(body, succeed(f, c, discard)...)

	f.Add(plan.SavePositionStmt{Target: entry})
	f.Add(c.Stmts...)
	f.Add(plan.BlockStmt{Label: done, Block: block(body...)})
	return f
}
