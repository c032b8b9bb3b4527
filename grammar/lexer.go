package grammar

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/dhamidi/parsekit/fluent"
	"github.com/dhamidi/parsekit/scanner"
	"golang.org/x/exp/ebnf"
)

// Token is a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	File     string
	Position scanner.Position
}

func (t Token) String() string {
	pos := t.Position.String()
	if t.File != "" {
		pos = t.File + ":" + pos
	}
	return fmt.Sprintf("%s %s %q", pos, t.Kind, t.Literal)
}

type tokenRule struct {
	kind   string
	parser fluent.Parser[scanner.Span]
}

// tokenRules returns the token kinds of the grammar: the literals used by
// non-lexical productions, followed by the lexical productions they refer
// to. If no lexical production is referred to, every lexical production is a
// token. Literals come first so keywords win ties against identifiers.
func (b *builder) tokenRules() []tokenRule {
	literals := map[string]bool{}
	names := map[string]bool{}
	for name, prod := range b.source {
		if IsLexical(name) {
			continue
		}
		collectTokens(prod.Expr, literals, names)
	}
	if len(names) == 0 {
		for name := range b.source {
			if IsLexical(name) {
				names[name] = true
			}
		}
	}

	var rules []tokenRule
	for _, lit := range sortedKeys(literals) {
		rules = append(rules, tokenRule{
			kind:   strconv.Quote(lit),
			parser: fluent.Capture(fluent.Text(lit, fluent.WithoutWhiteSpace())),
		})
	}
	for _, name := range sortedKeys(names) {
		rule, ok := b.rules[name]
		if !ok {
			continue
		}
		rules = append(rules, tokenRule{kind: name, parser: fluent.Capture[*Node](rule)})
	}
	return rules
}

func collectTokens(expr ebnf.Expression, literals, names map[string]bool) {
	switch e := expr.(type) {
	case *ebnf.Token:
		if e.String != "" {
			literals[e.String] = true
		}
	case *ebnf.Name:
		if IsLexical(e.String) {
			names[e.String] = true
		}
	case ebnf.Sequence:
		for _, x := range e {
			collectTokens(x, literals, names)
		}
	case ebnf.Alternative:
		for _, x := range e {
			collectTokens(x, literals, names)
		}
	case *ebnf.Group:
		collectTokens(e.Body, literals, names)
	case *ebnf.Option:
		collectTokens(e.Body, literals, names)
	case *ebnf.Repetition:
		collectTokens(e.Body, literals, names)
	}
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lexer splits input into the tokens of a grammar.
type Lexer struct {
	filename string
	rules    []tokenRule
	ctx      *fluent.ParseContext
}

// NewLexer creates a lexer over input.
func (g *Grammar) NewLexer(filename, input string) *Lexer {
	return &Lexer{
		filename: filename,
		rules:    g.tokens,
		ctx:      fluent.NewParseContext(input, fluent.WithLogger(g.log)),
	}
}

// TokenKinds returns the kinds NextToken can return, besides EOF and ERROR.
func (g *Grammar) TokenKinds() []string {
	kinds := make([]string, len(g.tokens))
	for i, rule := range g.tokens {
		kinds[i] = rule.kind
	}
	return kinds
}

// NextToken returns the longest token at the current position. When several
// token kinds match the same length, the first one wins. White space that no
// token matches is skipped. A character that starts no token is returned as
// a single ERROR token. At the end of the input NextToken returns an EOF
// token and io.EOF.
func (l *Lexer) NextToken() (Token, error) {
	sc := l.ctx.Scanner()
	for {
		start := sc.Cursor.Position()
		if sc.Cursor.Eof() {
			return Token{Kind: "EOF", File: l.filename, Position: start}, io.EOF
		}

		best, bestLen := -1, 0
		var r fluent.ParseResult[scanner.Span]
		for i, rule := range l.rules {
			if !rule.parser.Parse(l.ctx, &r) {
				continue
			}
			if n := r.End - start.Offset; n > bestLen {
				best, bestLen = i, n
			}
			sc.Cursor.ResetPosition(start)
		}

		if best >= 0 {
			l.rules[best].parser.Parse(l.ctx, &r)
			return Token{
				Kind:     l.rules[best].kind,
				Literal:  r.Value.String(),
				File:     l.filename,
				Position: start,
			}, nil
		}

		if sc.SkipWhiteSpace() {
			continue
		}

		ch := sc.Cursor.Current()
		sc.Cursor.Advance()
		return Token{
			Kind:     "ERROR",
			Literal:  string(ch),
			File:     l.filename,
			Position: start,
		}, nil
	}
}

// Tokenize returns all tokens up to the end of the input.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}
