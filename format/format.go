// Package format writes syntax trees and tokens produced by grammars.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/parsekit/grammar"
)

// Encoder writes one syntax tree per call to Encode.
type Encoder interface {
	Encode(node *grammar.Node) error
	MarshalText(node *grammar.Node) ([]byte, error)
}

// Formats lists the names accepted by NewEncoder.
var Formats = []string{"json", "tree"}

// NewEncoder returns the encoder called name writing to w.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q (want one of %v)", name, Formats)
}
