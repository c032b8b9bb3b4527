package grammar

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dhamidi/parsekit/scanner"
)

var (
	// ErrLeftRecursion is returned for grammars with a production that can
	// reach itself without consuming input.
	ErrLeftRecursion = errors.New("left recursive production")

	// ErrNoStart is returned when parsing with a grammar that was built
	// without a start production.
	ErrNoStart = errors.New("no start production")

	// ErrUnknownProduction is returned for start productions the grammar
	// does not define.
	ErrUnknownProduction = errors.New("unknown production")
)

// SyntaxError reports where an input stopped matching a grammar.
type SyntaxError struct {
	File       string
	Pos        scanner.Position
	Production string // Innermost production tried at Pos, if known
	Found      string
}

func (e *SyntaxError) Error() string {
	loc := e.Pos.String()
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	if e.Production != "" {
		return fmt.Sprintf("%s: syntax error in %s: unexpected %s", loc, e.Production, e.Found)
	}
	return fmt.Sprintf("%s: syntax error: unexpected %s", loc, e.Found)
}

func describe(input string, offset int) string {
	if offset >= len(input) {
		return "end of input"
	}
	ch, _ := utf8.DecodeRuneInString(input[offset:])
	return strconv.QuoteRune(ch)
}
