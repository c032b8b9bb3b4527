// Package grammar builds parsers from EBNF grammars.
//
// Grammars are read with golang.org/x/exp/ebnf. Every production becomes a
// fluent parser that produces a concrete syntax tree of Nodes. Productions
// whose names start with a lower case letter are lexical: they match without
// skipping white space and produce a single terminal node. The other
// productions skip white space before their tokens and produce a node with
// one child per token and production they matched.
package grammar

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dhamidi/parsekit/fluent"
	"github.com/dhamidi/parsekit/plan"
	"github.com/dhamidi/parsekit/scanner"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"
)

// Mode selects how a grammar runs its parsers.
type Mode int

const (
	// Compiled runs the flattened plan of the start production.
	Compiled Mode = iota
	// Interpreted walks the parser tree directly.
	Interpreted
)

func (m Mode) String() string {
	switch m {
	case Compiled:
		return "compiled"
	case Interpreted:
		return "interpreted"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode returns the Mode called s.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "compiled":
		return Compiled, nil
	case "interpreted":
		return Interpreted, nil
	}
	return 0, fmt.Errorf("unknown mode %q (want compiled or interpreted)", s)
}

// Option configures a Grammar.
type Option func(*Grammar)

// WithLogger sets the logger used while building and parsing.
func WithLogger(log commonlog.Logger) Option {
	return func(g *Grammar) {
		g.log = log
	}
}

// Grammar is an EBNF grammar turned into parsers. It is safe for concurrent
// use once built.
type Grammar struct {
	filename string
	source   ebnf.Grammar
	start    string
	rules    map[string]*fluent.Deferred[*Node]
	tokens   []tokenRule
	compiled *fluent.Compiled[*Node]
	log      commonlog.Logger
}

// Load reads and builds the grammar in filename.
func Load(filename, start string, opts ...Option) (*Grammar, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	return Compile(filename, bytes.NewReader(data), start, opts...)
}

// Compile parses the grammar in src and builds it. If start is not empty the
// grammar is verified from that production and compiled into a plan.
func Compile(filename string, src io.Reader, start string, opts ...Option) (*Grammar, error) {
	source, err := ebnf.Parse(filename, src)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	g, err := New(source, start, opts...)
	if err != nil {
		return nil, err
	}
	g.filename = filename
	return g, nil
}

// New builds a grammar that was already parsed.
func New(source ebnf.Grammar, start string, opts ...Option) (*Grammar, error) {
	g := &Grammar{
		source: source,
		start:  start,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = commonlog.GetLogger("parsekit.grammar")
	}

	if start != "" {
		if _, ok := source[start]; !ok {
			return nil, fmt.Errorf("verify grammar: %s: %w", start, ErrUnknownProduction)
		}
		if err := ebnf.Verify(source, start); err != nil {
			return nil, fmt.Errorf("verify grammar: %w", err)
		}
	}
	if err := checkLeftRecursion(source); err != nil {
		return nil, fmt.Errorf("verify grammar: %w", err)
	}

	b := newBuilder(source)
	if err := b.build(); err != nil {
		return nil, fmt.Errorf("build grammar: %w", err)
	}
	g.rules = b.rules
	g.tokens = b.tokenRules()

	if start != "" {
		compiled, err := fluent.Compile[*Node](g.rules[start])
		if err != nil {
			return nil, fmt.Errorf("build grammar: %w", err)
		}
		g.compiled = compiled
	}

	g.log.Debugf("built grammar with %d productions, %d tokens, start %q", len(source), len(g.tokens), start)
	return g, nil
}

func (g *Grammar) Filename() string {
	return g.filename
}

func (g *Grammar) Start() string {
	return g.start
}

func (g *Grammar) Source() ebnf.Grammar {
	return g.source
}

// Productions returns the names of all productions, sorted.
func (g *Grammar) Productions() []string {
	names := make([]string, 0, len(g.source))
	for name := range g.source {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rule returns the parser for the production called name.
func (g *Grammar) Rule(name string) (fluent.Parser[*Node], bool) {
	rule, ok := g.rules[name]
	if !ok {
		return nil, false
	}
	return rule, true
}

// Plan returns the compiled plan of the start production, or nil if the
// grammar has none.
func (g *Grammar) Plan() *plan.Plan {
	if g.compiled == nil {
		return nil
	}
	return g.compiled.Plan()
}

// Parse matches input against the start production. Only white space may
// follow the match. On failure the error is a *SyntaxError.
func (g *Grammar) Parse(filename, input string, mode Mode) (*Node, error) {
	if g.start == "" {
		return nil, ErrNoStart
	}

	var p fluent.Parser[*Node] = g.rules[g.start]
	if mode == Compiled {
		p = g.compiled
	}

	ctx := fluent.NewParseContext(input, fluent.WithLogger(g.log))
	var result fluent.ParseResult[*Node]
	stop := 0
	if p.Parse(ctx, &result) {
		sc := ctx.Scanner()
		sc.SkipWhiteSpace()
		if sc.Cursor.Eof() {
			return result.Value, nil
		}
		stop = sc.Cursor.Offset()
	}

	err := g.syntaxError(filename, input, stop)
	g.log.Debugf("%s", err)
	return nil, err
}

// syntaxError locates the furthest offset the start production reached. It
// walks the parser tree so the error is the same in both modes.
func (g *Grammar) syntaxError(filename, input string, stop int) *SyntaxError {
	furthest := stop
	production := ""
	track := func(p any, ctx *fluent.ParseContext) {
		offset := ctx.Scanner().Cursor.Offset()
		if offset > furthest {
			furthest = offset
			production = ""
		}
		if d, ok := p.(*fluent.Deferred[*Node]); ok && offset == furthest {
			production = d.Name()
		}
	}

	ctx := fluent.NewParseContext(input, fluent.WithOnEnterParser(track), fluent.WithLogger(g.log))
	var result fluent.ParseResult[*Node]
	g.rules[g.start].Parse(ctx, &result)

	sc := scanner.New(input)
	sc.Cursor.ResetPosition(scanner.Resolve(input, furthest))
	sc.SkipWhiteSpace()
	pos := sc.Cursor.Position()

	return &SyntaxError{
		File:       filename,
		Pos:        pos,
		Production: production,
		Found:      describe(input, pos.Offset),
	}
}
