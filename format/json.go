package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/parsekit/grammar"
	"github.com/dhamidi/parsekit/scanner"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(node *grammar.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	text = append(text, '\n')
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText(node *grammar.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(node), "", "  ")
}

type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     jsonSpan    `json:"span"`
	Text     *string     `json:"text,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

func positionToJSON(p scanner.Position) jsonPosition {
	return jsonPosition{Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func nodeToJSON(n *grammar.Node) *jsonNode {
	jn := &jsonNode{
		Kind: n.Kind,
		Span: jsonSpan{
			Start: positionToJSON(n.Span.StartPosition()),
			End:   positionToJSON(n.Span.EndPosition()),
		},
	}

	if n.IsTerminal() {
		text := n.Text()
		jn.Text = &text
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child)
		}
	}

	return jn
}
