package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/parsekit/fluent"
	"github.com/dhamidi/parsekit/scanner"
	"golang.org/x/exp/ebnf"
)

// IsLexical reports whether name is a lexical production. As in
// golang.org/x/exp/ebnf, lexical productions start with a lower case letter.
// They match without skipping white space between their parts.
func IsLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}

type nodes = fluent.Parser[[]*Node]

// builder turns the productions of an ebnf.Grammar into parsers. Every
// production becomes a fluent.Deferred so productions can refer to each
// other in any order.
type builder struct {
	source ebnf.Grammar
	rules  map[string]*fluent.Deferred[*Node]
}

func newBuilder(source ebnf.Grammar) *builder {
	b := &builder{
		source: source,
		rules:  make(map[string]*fluent.Deferred[*Node], len(source)),
	}
	for name := range source {
		b.rules[name] = fluent.NewDeferred[*Node](name)
	}
	return b
}

func (b *builder) build() error {
	names := make([]string, 0, len(b.source))
	for name := range b.source {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		prod := b.source[name]
		lexical := IsLexical(name)
		body, err := b.expr(prod.Expr, lexical)
		if err != nil {
			return fmt.Errorf("production %s: %w", name, err)
		}

		kind := name
		if lexical {
			b.rules[name].Bind(fluent.ThenSpan(body, func(_ []*Node, span scanner.Span) *Node {
				return NewTerminal(kind, span)
			}))
			continue
		}
		b.rules[name].Bind(fluent.ThenSpan(body, func(children []*Node, span scanner.Span) *Node {
			return NewNonTerminal(kind, span, children...)
		}))
	}
	return nil
}

func (b *builder) expr(expr ebnf.Expression, lexical bool) (nodes, error) {
	switch e := expr.(type) {
	case nil:
		return fluent.Empty[[]*Node](), nil

	case *ebnf.Token:
		if e.String == "" {
			return fluent.Empty[[]*Node](), nil
		}
		return token(fluent.Text(e.String, b.literalOptions(lexical)...), strconv.Quote(e.String), lexical), nil

	case *ebnf.Range:
		lo, err := rangeBound(e.Begin)
		if err != nil {
			return nil, err
		}
		hi, err := rangeBound(e.End)
		if err != nil {
			return nil, err
		}
		kind := fmt.Sprintf("%q … %q", e.Begin.String, e.End.String)
		return token(fluent.Range(lo, hi, b.literalOptions(lexical)...), kind, lexical), nil

	case ebnf.Sequence:
		parts, err := b.exprs(e, lexical)
		if err != nil {
			return nil, err
		}
		return fluent.Then(fluent.Sequence(parts...), flatten), nil

	case ebnf.Alternative:
		parts, err := b.exprs(e, lexical)
		if err != nil {
			return nil, err
		}
		return fluent.OneOf(parts...), nil

	case *ebnf.Group:
		return b.expr(e.Body, lexical)

	case *ebnf.Option:
		body, err := b.expr(e.Body, lexical)
		if err != nil {
			return nil, err
		}
		return fluent.ZeroOrOne(body), nil

	case *ebnf.Repetition:
		body, err := b.expr(e.Body, lexical)
		if err != nil {
			return nil, err
		}
		return fluent.Then(fluent.ZeroOrMany(body), flatten), nil

	case *ebnf.Name:
		return b.name(e, lexical)

	case *ebnf.Bad:
		return nil, fmt.Errorf("%s: bad expression", e.Pos())
	}
	return nil, fmt.Errorf("unsupported expression %T", expr)
}

func (b *builder) exprs(list []ebnf.Expression, lexical bool) ([]nodes, error) {
	parts := make([]nodes, len(list))
	for i, x := range list {
		p, err := b.expr(x, lexical)
		if err != nil {
			return nil, err
		}
		parts[i] = p
	}
	return parts, nil
}

func (b *builder) literalOptions(lexical bool) []fluent.LiteralOption {
	if lexical {
		return []fluent.LiteralOption{fluent.WithoutWhiteSpace()}
	}
	return nil
}

// token wraps a literal. Inside lexical productions the parts of a token
// are not kept.
func token[T any](p fluent.Parser[T], kind string, lexical bool) nodes {
	if lexical {
		return fluent.Then(p, func(T) []*Node { return nil })
	}
	return fluent.ThenSpan(p, func(_ T, span scanner.Span) []*Node {
		return []*Node{NewTerminal(kind, span)}
	})
}

func (b *builder) name(e *ebnf.Name, lexical bool) (nodes, error) {
	rule, ok := b.rules[e.String]
	if !ok {
		return nil, fmt.Errorf("%s: undefined production %s", e.Pos(), e.String)
	}
	var p fluent.Parser[*Node] = rule
	if !lexical && IsLexical(e.String) {
		p = fluent.SkipWhiteSpace(p)
	}
	return fluent.Then(p, func(n *Node) []*Node { return []*Node{n} }), nil
}

func rangeBound(t *ebnf.Token) (rune, error) {
	ch, size := utf8.DecodeRuneInString(t.String)
	if size == 0 || size != len(t.String) {
		return 0, fmt.Errorf("%s: range bound %q is not a single character", t.Pos(), t.String)
	}
	return ch, nil
}

func flatten(groups [][]*Node) []*Node {
	var out []*Node
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// checkLeftRecursion reports productions that can reach themselves without
// consuming input. Parsing them would never terminate.
func checkLeftRecursion(source ebnf.Grammar) error {
	nullable := nullableProductions(source)

	edges := make(map[string][]string, len(source))
	names := make([]string, 0, len(source))
	for name, prod := range source {
		names = append(names, name)
		edges[name] = leadingNames(prod.Expr, nullable, nil)
	}
	sort.Strings(names)

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(source))
	var path []string
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			i := len(path) - 1
			for path[i] != name {
				i--
			}
			cycle := append(append([]string{}, path[i:]...), name)
			return fmt.Errorf("%w: %s", ErrLeftRecursion, strings.Join(cycle, " -> "))
		case done:
			return nil
		}
		state[name] = visiting
		path = append(path, name)
		for _, next := range edges[name] {
			if _, ok := source[next]; !ok {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

func nullableProductions(source ebnf.Grammar) map[string]bool {
	nullable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for name, prod := range source {
			if !nullable[name] && isNullable(prod.Expr, nullable) {
				nullable[name] = true
				changed = true
			}
		}
	}
	return nullable
}

func isNullable(expr ebnf.Expression, nullable map[string]bool) bool {
	switch e := expr.(type) {
	case nil:
		return true
	case *ebnf.Token:
		return e.String == ""
	case *ebnf.Name:
		return nullable[e.String]
	case ebnf.Sequence:
		for _, x := range e {
			if !isNullable(x, nullable) {
				return false
			}
		}
		return true
	case ebnf.Alternative:
		for _, x := range e {
			if isNullable(x, nullable) {
				return true
			}
		}
		return false
	case *ebnf.Group:
		return isNullable(e.Body, nullable)
	case *ebnf.Option, *ebnf.Repetition:
		return true
	}
	return false
}

// leadingNames appends the productions expr can call before it consumes
// anything.
func leadingNames(expr ebnf.Expression, nullable map[string]bool, out []string) []string {
	switch e := expr.(type) {
	case *ebnf.Name:
		return append(out, e.String)
	case ebnf.Sequence:
		for _, x := range e {
			out = leadingNames(x, nullable, out)
			if !isNullable(x, nullable) {
				break
			}
		}
	case ebnf.Alternative:
		for _, x := range e {
			out = leadingNames(x, nullable, out)
		}
	case *ebnf.Group:
		return leadingNames(e.Body, nullable, out)
	case *ebnf.Option:
		return leadingNames(e.Body, nullable, out)
	case *ebnf.Repetition:
		return leadingNames(e.Body, nullable, out)
	}
	return out
}
