// Package fluent implements parser combinators: small parsers for literals,
// numbers and strings that are composed into recursive-descent parsers by
// sequencing, alternation, repetition, exclusion and transformation.
//
// Every combinator can be run in two ways. Parse interprets the tree
// directly against a ParseContext. Compile flattens the tree into a
// plan.Plan once and returns a parser that runs the lowered plan; both give
// the same outcome for every input.
//
// A combinator that fails leaves the cursor where it found it. A combinator
// that succeeds leaves the cursor at the end of the span it reports.
package fluent

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/dhamidi/parsekit/plan"
)

var (
	ErrNilParser    = errors.New("nil parser")
	ErrInvalidCount = errors.New("invalid repetition count")
	ErrEmptyText    = errors.New("empty text literal")
	ErrAlreadyBound = errors.New("deferred parser already bound")
	ErrUnbound      = errors.New("deferred parser used before it was bound")
)

// Parser recognizes a T at the cursor of ctx. It reports whether it matched;
// result is only meaningful when it did.
type Parser[T any] interface {
	Parse(ctx *ParseContext, result *ParseResult[T]) bool
}

// ParseResult is the outcome of a successful parse: the span [Start, End) of
// the input and the value built from it.
type ParseResult[T any] struct {
	Start int
	End   int
	Value T
}

func (r *ParseResult[T]) Set(start, end int, value T) {
	r.Start = start
	r.End = end
	r.Value = value
}

// Seekable is implemented by parsers that know which runes they can start
// with. OneOf uses it to jump to the alternatives that can match instead of
// trying each in turn.
type Seekable interface {
	// CanSeek reports whether ExpectedChars is a complete list.
	CanSeek() bool
	// ExpectedChars lists every rune the parser can start with, after white
	// space is skipped when SkipWhitespace is true.
	ExpectedChars() []rune
	SkipWhitespace() bool
}

// Compilable is implemented by parsers that can contribute statements to a
// plan. Parsers that don't are called from the plan through an InvokeStmt.
type Compilable interface {
	Compile(ctx *plan.Context) plan.Fragment
}

// Parse runs p over input from its first character.
func Parse[T any](p Parser[T], input string, opts ...Option) (ParseResult[T], bool) {
	var result ParseResult[T]
	ok := p.Parse(NewParseContext(input, opts...), &result)
	return result, ok
}

// as converts a plan value back to T. Plans store nothing for the zero value
// of interface and pointer types.
func as[T any](v any) T {
	if v == nil {
		var zero T
		return zero
	}
	return v.(T)
}

// build compiles p as a child of the combinator being compiled. When discard
// is set the caller ignores the child's value.
func build[T any](ctx *plan.Context, p Parser[T], discard bool) plan.Fragment {
	prev := ctx.DiscardResult
	ctx.DiscardResult = discard
	defer func() { ctx.DiscardResult = prev }()

	if c, ok := p.(Compilable); ok {
		return c.Compile(ctx)
	}
	return invoke(ctx, p)
}

func invoke[T any](ctx *plan.Context, p Parser[T]) plan.Fragment {
	f := ctx.NewFragment(false)
	f.Add(plan.InvokeStmt{
		Name: fmt.Sprintf("%T", p),
		Invoke: func(env plan.Env) (any, int, int, bool) {
			var r ParseResult[T]
			if !p.Parse(env.(*ParseContext), &r) {
				return nil, 0, 0, false
			}
			return r.Value, r.Start, r.End, true
		},
		Success: f.Success,
		Value:   f.Value,
		Start:   f.Start,
		End:     f.End,
	})
	return f
}

// succeed copies the outcome of child into f and marks f as matched.
func succeed(f, child plan.Fragment, discard bool) []plan.Stmt {
	stmts := []plan.Stmt{
		plan.AssignBoolStmt{Value: true, Target: f.Success},
		plan.CopyIntStmt{Source: child.Start, Target: f.Start},
		plan.CopyIntStmt{Source: child.End, Target: f.End},
	}
	if !discard {
		stmts = append(stmts, plan.CopyValueStmt{Source: child.Value, Target: f.Value})
	}
	return stmts
}

func block(stmts ...plan.Stmt) plan.Block {
	return plan.Block{Stmts: stmts}
}

func mustParser(p any, combinator string) {
	if isNil(p) {
		panic(fmt.Errorf("%s: %w", combinator, ErrNilParser))
	}
}

func isNil(p any) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Func, reflect.Map, reflect.Slice:
		return v.IsNil()
	}
	return false
}

func seekable(p any) (Seekable, bool) {
	s, ok := p.(Seekable)
	if !ok || !s.CanSeek() {
		return nil, false
	}
	return s, true
}

// seekThrough makes a wrapper seekable exactly when the parser it wraps is.
type seekThrough struct {
	child any
}

func (s seekThrough) CanSeek() bool {
	_, ok := seekable(s.child)
	return ok
}

func (s seekThrough) ExpectedChars() []rune {
	if c, ok := seekable(s.child); ok {
		return c.ExpectedChars()
	}
	return nil
}

func (s seekThrough) SkipWhitespace() bool {
	if c, ok := seekable(s.child); ok {
		return c.SkipWhitespace()
	}
	return false
}
