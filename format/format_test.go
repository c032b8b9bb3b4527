package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dhamidi/parsekit/grammar"
	"github.com/google/go-cmp/cmp"
)

const sums = `
Sum    = number { "+" number } .
number = "0" … "9" .
`

func parse(t *testing.T, input string) *grammar.Node {
	t.Helper()
	g, err := grammar.Compile("sums.ebnf", strings.NewReader(sums), "Sum")
	if err != nil {
		t.Fatalf("compile grammar: %v", err)
	}
	node, err := g.Parse("input", input, grammar.Compiled)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return node
}

func TestTreeEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTreeEncoder(&buf).Encode(parse(t, "1+\n 2")); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := `Sum @1:1
  number "1" @1:1
  "+" "+" @1:2
  number "2" @2:2
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONEncoder(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONEncoder(&buf).Encode(parse(t, "1 + 2")); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var got jsonNode
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}

	if got.Kind != "Sum" || got.Text != nil {
		t.Errorf("root = %s (text %v), want Sum without text", got.Kind, got.Text)
	}
	if got.Span.End != (jsonPosition{Offset: 5, Line: 1, Column: 6}) {
		t.Errorf("root end = %+v, want offset 5 at 1:6", got.Span.End)
	}

	var kinds, texts []string
	for _, child := range got.Children {
		kinds = append(kinds, child.Kind)
		if child.Text != nil {
			texts = append(texts, *child.Text)
		}
	}
	if diff := cmp.Diff([]string{"number", `"+"`, "number"}, kinds); diff != "" {
		t.Errorf("child kinds mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", "+", "2"}, texts); diff != "" {
		t.Errorf("child texts mismatch (-want +got):\n%s", diff)
	}
}

func TestLineEncoder(t *testing.T) {
	tokens := []grammar.Token{
		{Kind: "number", Literal: "1"},
		{Kind: `"+"`, Literal: "+"},
		{Kind: "ERROR", Literal: "\t"},
	}
	tokens[0].Position.Line, tokens[0].Position.Column = 1, 1
	tokens[1].Position.Line, tokens[1].Position.Column = 1, 2
	tokens[2].Position.Line, tokens[2].Position.Column = 2, 1

	text, err := NewLineEncoder(nil).MarshalText(tokens)
	if err != nil {
		t.Fatalf("MarshalText() error = %v", err)
	}
	want := "1:1\tnumber\t\"1\"\n1:2\t\"+\"\t\"+\"\n2:1\tERROR\t\"\\t\"\n"
	if got := string(text); got != want {
		t.Errorf("MarshalText() = %q, want %q", got, want)
	}
}

func TestNewEncoder(t *testing.T) {
	for _, name := range Formats {
		if _, err := NewEncoder(name, &bytes.Buffer{}); err != nil {
			t.Errorf("NewEncoder(%q) error = %v", name, err)
		}
	}
	if _, err := NewEncoder("xml", &bytes.Buffer{}); err == nil {
		t.Error("NewEncoder(xml) expected an error")
	}
}
