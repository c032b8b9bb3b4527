package format

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/parsekit/grammar"
)

// LineEncoder writes tokens one per line as tab separated position, kind and
// quoted literal.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tokens []grammar.Token) error {
	text, err := e.MarshalText(tokens)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(tokens []grammar.Token) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&sb, "%d:%d\t%s\t%s\n",
			tok.Position.Line,
			tok.Position.Column,
			tok.Kind,
			strconv.Quote(tok.Literal),
		)
	}
	return []byte(sb.String()), nil
}
