package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/parsekit/grammar"
)

// TreeEncoder writes a tree one node per line, indented by depth. Terminals
// are followed by their quoted text.
type TreeEncoder struct {
	w      io.Writer
	indent string
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w, indent: "  "}
}

func (e *TreeEncoder) Encode(node *grammar.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(node *grammar.Node) ([]byte, error) {
	var sb strings.Builder
	e.write(&sb, node, 0)
	return []byte(sb.String()), nil
}

func (e *TreeEncoder) write(sb *strings.Builder, n *grammar.Node, depth int) {
	sb.WriteString(strings.Repeat(e.indent, depth))
	start := n.Span.StartPosition()
	if n.IsTerminal() {
		fmt.Fprintf(sb, "%s %q @%s\n", n.Kind, n.Text(), start)
		return
	}
	fmt.Fprintf(sb, "%s @%s\n", n.Kind, start)
	for _, child := range n.Children {
		e.write(sb, child, depth+1)
	}
}
