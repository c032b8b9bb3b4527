package fluent

import (
	"fmt"

	"github.com/dhamidi/parsekit/plan"
	"github.com/tliron/commonlog"
)

// Compiled is a parser that runs the plan its source parser was compiled
// into. It gives the same results as the source parser and is safe to use
// from several goroutines.
type Compiled[T any] struct {
	source  Parser[T]
	program *plan.Program
}

// Compile flattens p into a plan and lowers it. Parsers that are not
// Compilable are called from the plan as they are.
func Compile[T any](p Parser[T]) (*Compiled[T], error) {
	if isNil(p) {
		return nil, fmt.Errorf("compile: %w", ErrNilParser)
	}

	ctx := plan.NewContext()
	pl, err := ctx.Plan(name(p), func() plan.Fragment {
		return build(ctx, p, false)
	})
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	program, err := plan.Lower(pl)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	log := commonlog.GetLogger("parsekit.fluent")
	log.Debugf("compiled %s into %d funcs, %d statements", pl.Main.Name, len(pl.Funcs), plan.Count(pl))
	return &Compiled[T]{source: p, program: program}, nil
}

// MustCompile is like Compile but panics if p cannot be compiled.
func MustCompile[T any](p Parser[T]) *Compiled[T] {
	c, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return c
}

func name(p any) string {
	if s, ok := p.(fmt.Stringer); ok {
		return s.String()
	}
	return "main"
}

func (c *Compiled[T]) Plan() *plan.Plan {
	return c.program.Plan()
}

func (c *Compiled[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(c)

	out := c.program.Run(ctx)
	if !out.Matched {
		return false
	}
	result.Set(out.Start, out.End, as[T](out.Value))
	return true
}

// Compile inlines the source parser when a compiled parser is part of a
// larger tree.
func (c *Compiled[T]) Compile(ctx *plan.Context) plan.Fragment {
	return build(ctx, c.source, ctx.DiscardResult)
}

func (c *Compiled[T]) CanSeek() bool {
	return seekThrough{c.source}.CanSeek()
}

func (c *Compiled[T]) ExpectedChars() []rune {
	return seekThrough{c.source}.ExpectedChars()
}

func (c *Compiled[T]) SkipWhitespace() bool {
	return seekThrough{c.source}.SkipWhitespace()
}
