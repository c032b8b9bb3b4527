package grammar

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const arithmetic = `
Expr   = Term { ( "+" | "-" ) Term } .
Term   = number | "(" Expr ")" .
number = digit { digit } .
digit  = "0" … "9" .
`

const statements = `
Program = { Stmt } .
Stmt    = "if" ident | ident "=" number .
ident   = letter { letter | digit } .
number  = digit { digit } .
letter  = "a" … "z" .
digit   = "0" … "9" .
`

func mustCompile(t *testing.T, src, start string) *Grammar {
	t.Helper()
	g, err := Compile("test.ebnf", strings.NewReader(src), start)
	if err != nil {
		t.Fatalf("compile grammar: %v", err)
	}
	return g
}

// dump prints a tree as nested lists. Terminals from lexical productions
// print as kind(text), literal tokens print as themselves.
func dump(n *Node) string {
	if n.IsTerminal() {
		if strings.HasPrefix(n.Kind, `"`) {
			return n.Kind
		}
		return n.Kind + "(" + n.Text() + ")"
	}
	parts := []string{n.Kind}
	for _, child := range n.Children {
		parts = append(parts, dump(child))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func TestParseModes(t *testing.T) {
	g := mustCompile(t, arithmetic, "Expr")

	tests := []struct {
		input string
		want  string
	}{
		{"1", "(Expr (Term number(1)))"},
		{" 12+3 ", `(Expr (Term number(12)) "+" (Term number(3)))`},
		{"1 + (2 - 3)", `(Expr (Term number(1)) "+" (Term "(" (Expr (Term number(2)) "-" (Term number(3))) ")"))`},
		{"((7))", `(Expr (Term "(" (Expr (Term "(" (Expr (Term number(7))) ")")) ")"))`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			interpreted, err := g.Parse("input", tt.input, Interpreted)
			if err != nil {
				t.Fatalf("Parse(interpreted) error = %v", err)
			}
			compiled, err := g.Parse("input", tt.input, Compiled)
			if err != nil {
				t.Fatalf("Parse(compiled) error = %v", err)
			}

			if got := dump(interpreted); got != tt.want {
				t.Errorf("tree = %s, want %s", got, tt.want)
			}
			if diff := cmp.Diff(interpreted, compiled); diff != "" {
				t.Errorf("compiled tree differs (-interpreted +compiled):\n%s", diff)
			}
		})
	}
}

func TestNodeSpans(t *testing.T) {
	g := mustCompile(t, arithmetic, "Expr")

	root, err := g.Parse("input", " 12+3 ", Compiled)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if root.Span.Start != 1 || root.Span.End != 5 {
		t.Errorf("root span = [%d, %d), want [1, 5)", root.Span.Start, root.Span.End)
	}

	var numbers []string
	root.Walk(func(n *Node) bool {
		if n.Kind == "number" {
			numbers = append(numbers, n.Text())
		}
		return true
	})
	if diff := cmp.Diff([]string{"12", "3"}, numbers); diff != "" {
		t.Errorf("numbers mismatch (-want +got):\n%s", diff)
	}
}

func TestLexicalProductionsKeepWhiteSpace(t *testing.T) {
	g := mustCompile(t, arithmetic, "Expr")

	for _, mode := range []Mode{Interpreted, Compiled} {
		t.Run(mode.String(), func(t *testing.T) {
			_, err := g.Parse("input", "1 2", mode)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
			if se.Pos.Line != 1 || se.Pos.Column != 3 {
				t.Errorf("error position = %s, want 1:3", se.Pos)
			}
			if se.Found != "'2'" {
				t.Errorf("Found = %s, want '2'", se.Found)
			}
		})
	}
}

func TestSyntaxError(t *testing.T) {
	g := mustCompile(t, arithmetic, "Expr")

	tests := []struct {
		input      string
		line, col  int
		production string
		found      string
	}{
		{"1 + (2 - )", 1, 10, "digit", "')'"},
		{"(1", 1, 3, "digit", "end of input"},
		{"1 +\n  x", 2, 3, "digit", "'x'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var errs []string
			for _, mode := range []Mode{Interpreted, Compiled} {
				_, err := g.Parse("input.txt", tt.input, mode)
				var se *SyntaxError
				if !errors.As(err, &se) {
					t.Fatalf("Parse(%s) error = %v, want *SyntaxError", mode, err)
				}
				if se.Pos.Line != tt.line || se.Pos.Column != tt.col {
					t.Errorf("Parse(%s) position = %s, want %d:%d", mode, se.Pos, tt.line, tt.col)
				}
				if se.Production != tt.production {
					t.Errorf("Parse(%s) production = %q, want %q", mode, se.Production, tt.production)
				}
				if se.Found != tt.found {
					t.Errorf("Parse(%s) found = %s, want %s", mode, se.Found, tt.found)
				}
				errs = append(errs, err.Error())
			}
			if errs[0] != errs[1] {
				t.Errorf("errors differ between modes: %q and %q", errs[0], errs[1])
			}
			if !strings.HasPrefix(errs[0], "input.txt:") {
				t.Errorf("error = %q, want file name prefix", errs[0])
			}
		})
	}
}

func TestLeftRecursionIsRejected(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"direct", `A = A "x" | "y" .`},
		{"through nullable prefix", `A = [ "z" ] B . B = A "x" | "w" .`},
		{"through repetition", `A = { "z" } A | "w" .`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile("test.ebnf", strings.NewReader(tt.src), "A")
			if !errors.Is(err, ErrLeftRecursion) {
				t.Errorf("Compile() error = %v, want %v", err, ErrLeftRecursion)
			}
		})
	}

	if _, err := Compile("test.ebnf", strings.NewReader(`A = "x" A | "y" .`), "A"); err != nil {
		t.Errorf("right recursion: Compile() error = %v", err)
	}
}

func TestGrammarErrors(t *testing.T) {
	if _, err := Compile("bad.ebnf", strings.NewReader(`A = "x"`), ""); err == nil || !strings.Contains(err.Error(), "parse grammar") {
		t.Errorf("unterminated production: error = %v, want parse grammar error", err)
	}
	if _, err := Compile("test.ebnf", strings.NewReader(arithmetic), "Missing"); !errors.Is(err, ErrUnknownProduction) {
		t.Errorf("unknown start: error = %v, want %v", err, ErrUnknownProduction)
	}
	if _, err := Compile("test.ebnf", strings.NewReader(`A = B .`), "A"); err == nil {
		t.Error("undefined production: expected an error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.ebnf"), "A"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want %v", err, os.ErrNotExist)
	}

	g := mustCompile(t, arithmetic, "")
	if _, err := g.Parse("input", "1", Compiled); !errors.Is(err, ErrNoStart) {
		t.Errorf("Parse() without start error = %v, want %v", err, ErrNoStart)
	}
	if g.Plan() != nil {
		t.Error("Plan() without start should be nil")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arith.ebnf")
	if err := os.WriteFile(path, []byte(arithmetic), 0o644); err != nil {
		t.Fatal(err)
	}

	g, err := Load(path, "Expr")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.Filename() != path {
		t.Errorf("Filename() = %q, want %q", g.Filename(), path)
	}
	if g.Start() != "Expr" {
		t.Errorf("Start() = %q, want Expr", g.Start())
	}
	if diff := cmp.Diff([]string{"Expr", "Term", "digit", "number"}, g.Productions()); diff != "" {
		t.Errorf("Productions() mismatch (-want +got):\n%s", diff)
	}
	if _, ok := g.Rule("number"); !ok {
		t.Error("Rule(number) not found")
	}
	if _, ok := g.Rule("nope"); ok {
		t.Error("Rule(nope) found")
	}

	p := g.Plan()
	if p == nil {
		t.Fatal("Plan() = nil")
	}
	// main plus one func per production
	if len(p.Funcs) != 5 {
		t.Errorf("len(Plan().Funcs) = %d, want 5", len(p.Funcs))
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{Compiled, Interpreted} {
		got, err := ParseMode(mode.String())
		if err != nil || got != mode {
			t.Errorf("ParseMode(%q) = %v, %v, want %v", mode.String(), got, err, mode)
		}
	}
	if _, err := ParseMode("jit"); err == nil {
		t.Error("ParseMode(jit) expected an error")
	}
}

func TestLexer(t *testing.T) {
	g := mustCompile(t, statements, "Program")

	if diff := cmp.Diff([]string{`"="`, `"if"`, "ident", "number"}, g.TokenKinds()); diff != "" {
		t.Errorf("TokenKinds() mismatch (-want +got):\n%s", diff)
	}

	lx := g.NewLexer("in.txt", "if iffy = 42 ?")
	tokens, err := lx.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	type tok struct {
		Kind, Literal string
		Column        int
	}
	var got []tok
	for _, tk := range tokens {
		got = append(got, tok{tk.Kind, tk.Literal, tk.Position.Column})
	}
	want := []tok{
		{`"if"`, "if", 1},
		{"ident", "iffy", 4},
		{`"="`, "=", 9},
		{"number", "42", 11},
		{"ERROR", "?", 14},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	eof, err := lx.NextToken()
	if err != io.EOF || eof.Kind != "EOF" {
		t.Errorf("NextToken() at end = %v, %v, want EOF token and io.EOF", eof, err)
	}
	if got := tokens[1].String(); got != `in.txt:1:4 ident "iffy"` {
		t.Errorf("String() = %s", got)
	}
}

func TestLexerPositionsAcrossLines(t *testing.T) {
	g := mustCompile(t, statements, "Program")

	tokens, err := g.NewLexer("", "a = 1\n  b = 22").Tokenize()
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	last := tokens[len(tokens)-1]
	if last.Literal != "22" || last.Position.Line != 2 || last.Position.Column != 7 {
		t.Errorf("last token = %v, want 22 at 2:7", last)
	}
}

func TestCache(t *testing.T) {
	cache, err := NewCache(4)
	if err != nil {
		t.Fatal(err)
	}

	first, err := cache.Load("a.ebnf", []byte(arithmetic), "Expr")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	again, err := cache.Load("a.ebnf", []byte(arithmetic), "Expr")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if first != again {
		t.Error("Load() built the same grammar twice")
	}

	copied, err := cache.Load("b.ebnf", []byte(arithmetic), "Expr")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if copied == first {
		t.Error("Load() of another file with the same source returned the cached grammar")
	}
	if copied.Filename() != "b.ebnf" {
		t.Errorf("Filename() = %q, want b.ebnf", copied.Filename())
	}

	other, err := cache.Load("a.ebnf", []byte(arithmetic), "Term")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if other == first {
		t.Error("Load() with another start returned the cached grammar")
	}
	if cache.Len() != 3 {
		t.Errorf("Len() = %d, want 3", cache.Len())
	}

	if _, err := cache.Load("bad.ebnf", []byte(`A = B .`), "A"); err == nil {
		t.Error("Load(bad) expected an error")
	}
	if cache.Len() != 3 {
		t.Errorf("Len() after failed load = %d, want 3", cache.Len())
	}

	cache.Purge()
	if cache.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", cache.Len())
	}
}
