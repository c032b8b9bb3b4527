package fluent

import (
	"fmt"

	"github.com/dhamidi/parsekit/plan"
)

// Deferred is a parser that is bound after it is created. It is how
// recursive grammars refer to rules that are not built yet. Bind must be
// called before the parser is used and before any parse starts.
type Deferred[T any] struct {
	name   string
	parser Parser[T]
}

func NewDeferred[T any](name string) *Deferred[T] {
	return &Deferred[T]{name: name}
}

// Recursive creates a parser that can refer to itself through the argument
// of fn.
func Recursive[T any](name string, fn func(self Parser[T]) Parser[T]) Parser[T] {
	d := NewDeferred[T](name)
	d.Bind(fn(d))
	return d
}

// Bind sets the parser d stands for. It panics if d is already bound.
func (d *Deferred[T]) Bind(p Parser[T]) {
	mustParser(p, "Deferred "+d.name)
	if d.parser != nil {
		panic(fmt.Errorf("%s: %w", d.name, ErrAlreadyBound))
	}
	d.parser = p
}

func (d *Deferred[T]) Name() string {
	return d.name
}

func (d *Deferred[T]) Bound() bool {
	return d.parser != nil
}

func (d *Deferred[T]) String() string {
	return d.name
}

func (d *Deferred[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	if d.parser == nil {
		panic(fmt.Errorf("%s: %w", d.name, ErrUnbound))
	}
	ctx.EnterParser(d)
	ctx.Enter(d)
	defer ctx.Exit(d)

	return d.parser.Parse(ctx, result)
}

// Compile plans the bound parser as a function of its own, so that every
// reference to d, including the ones inside the bound parser, calls it.
func (d *Deferred[T]) Compile(ctx *plan.Context) plan.Fragment {
	f := ctx.NewFragment(false)
	if d.parser == nil {
		ctx.Fail(fmt.Errorf("%s: %w", d.name, ErrUnbound))
		return f
	}

	fn := ctx.Func(d, d.name, func() plan.Fragment {
		return build(ctx, d.parser, false)
	})
	f.Add(plan.CallStmt{
		Func:    fn.Index,
		Success: f.Success,
		Value:   f.Value,
		Start:   f.Start,
		End:     f.End,
	})
	return f
}
