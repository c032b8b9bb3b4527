package fluent

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/dhamidi/parsekit/plan"
	"github.com/dhamidi/parsekit/scanner"
)

type literalOptions struct {
	skipWhiteSpace bool
	escapes        string
}

// LiteralOption configures a literal parser.
type LiteralOption func(*literalOptions)

// WithoutWhiteSpace makes a literal match at the cursor instead of skipping
// white space first.
func WithoutWhiteSpace() LiteralOption {
	return func(o *literalOptions) {
		o.skipWhiteSpace = false
	}
}

// WithEscapes accepts a backslash followed by any of chars in String.
func WithEscapes(chars string) LiteralOption {
	return func(o *literalOptions) {
		o.escapes = chars
	}
}

func newLiteralOptions(opts []LiteralOption) literalOptions {
	o := literalOptions{skipWhiteSpace: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// literal is a parser backed by a single scanner primitive. The interpreter
// and plans share the same match function.
type literal[T any] struct {
	name  string
	skip  bool
	match func(s *scanner.Scanner) (T, bool)
	chars []rune
}

func (l *literal[T]) String() string {
	return l.name
}

func (l *literal[T]) Parse(ctx *ParseContext, result *ParseResult[T]) bool {
	ctx.EnterParser(l)

	sc := ctx.Scanner()
	entry := sc.Cursor.Position()
	if l.skip {
		sc.SkipWhiteSpace()
	}
	start := sc.Cursor.Offset()
	v, ok := l.match(sc)
	if !ok {
		sc.Cursor.ResetPosition(entry)
		return false
	}
	result.Set(start, sc.Cursor.Offset(), v)
	return true
}

func (l *literal[T]) Compile(ctx *plan.Context) plan.Fragment {
	f := ctx.NewFragment(false)
	match := l.match
	f.Add(plan.MatchStmt{
		Name:           l.name,
		SkipWhiteSpace: l.skip,
		Match: func(s *scanner.Scanner) (any, bool) {
			v, ok := match(s)
			return v, ok
		},
		Success: f.Success,
		Value:   f.Value,
		Start:   f.Start,
		End:     f.End,
	})
	return f
}

func (l *literal[T]) CanSeek() bool {
	return len(l.chars) > 0
}

func (l *literal[T]) ExpectedChars() []rune {
	return l.chars
}

func (l *literal[T]) SkipWhitespace() bool {
	return l.skip
}

// Text matches s exactly.
func Text(s string, opts ...LiteralOption) Parser[string] {
	if s == "" {
		panic(fmt.Errorf("Text: %w", ErrEmptyText))
	}
	o := newLiteralOptions(opts)
	first, _ := utf8.DecodeRuneInString(s)
	return &literal[string]{
		name: strconv.Quote(s),
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (string, bool) {
			return s, sc.ReadText(s)
		},
		chars: []rune{first},
	}
}

// Char matches the rune ch.
func Char(ch rune, opts ...LiteralOption) Parser[rune] {
	o := newLiteralOptions(opts)
	return &literal[rune]{
		name: strconv.QuoteRune(ch),
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (rune, bool) {
			return ch, sc.ReadChar(ch)
		},
		chars: []rune{ch},
	}
}

// maxSeekRange is the widest rune range that is listed in a dispatch table.
const maxSeekRange = 256

// Range matches one rune between lo and hi inclusive.
func Range(lo, hi rune, opts ...LiteralOption) Parser[rune] {
	o := newLiteralOptions(opts)
	var chars []rune
	if hi >= lo && hi-lo < maxSeekRange {
		for ch := lo; ch <= hi; ch++ {
			chars = append(chars, ch)
		}
	}
	return &literal[rune]{
		name: fmt.Sprintf("%q…%q", lo, hi),
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (rune, bool) {
			ch := sc.Cursor.Current()
			if ch == scanner.EOF || ch < lo || ch > hi {
				return 0, false
			}
			sc.Cursor.Advance()
			return ch, true
		},
		chars: chars,
	}
}

var numberChars = []rune("0123456789+-")

// Integer matches an optionally signed run of digits. Values that do not fit
// an int64 do not match.
func Integer(opts ...LiteralOption) Parser[int64] {
	o := newLiteralOptions(opts)
	return &literal[int64]{
		name: "integer",
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (int64, bool) {
			if !sc.ReadInteger() {
				return 0, false
			}
			n, err := strconv.ParseInt(sc.Token().String(), 10, 64)
			return n, err == nil
		},
		chars: numberChars,
	}
}

// Decimal matches an optionally signed number with an optional fraction.
func Decimal(opts ...LiteralOption) Parser[float64] {
	o := newLiteralOptions(opts)
	return &literal[float64]{
		name: "decimal",
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (float64, bool) {
			if !sc.ReadDecimal() {
				return 0, false
			}
			n, err := strconv.ParseFloat(sc.Token().String(), 64)
			return n, err == nil
		},
		chars: numberChars,
	}
}

// String matches a quoted string and yields the text between the quotes,
// with escape sequences left as written.
func String(quotes scanner.Quotes, opts ...LiteralOption) Parser[scanner.Span] {
	o := newLiteralOptions(opts)
	escapes := o.escapes
	return &literal[scanner.Span]{
		name: "string",
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (scanner.Span, bool) {
			if !sc.ReadQuotedString(quotes, escapes) {
				return scanner.Span{}, false
			}
			return sc.Token(), true
		},
		chars: quotes.Chars(),
	}
}

// Pattern matches one or more runes satisfying pred.
func Pattern(pred func(rune) bool, opts ...LiteralOption) Parser[scanner.Span] {
	if pred == nil {
		panic(fmt.Errorf("Pattern: %w", ErrNilParser))
	}
	o := newLiteralOptions(opts)
	return &literal[scanner.Span]{
		name: "pattern",
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (scanner.Span, bool) {
			if !sc.ReadWhile(pred) {
				return scanner.Span{}, false
			}
			return sc.Token(), true
		},
	}
}

// Identifier matches a letter, '_' or '$' followed by letters, digits, '_'
// or '$'. Identifiers may start with any Unicode letter, so they are not
// seekable.
func Identifier(opts ...LiteralOption) Parser[scanner.Span] {
	o := newLiteralOptions(opts)
	return &literal[scanner.Span]{
		name: "identifier",
		skip: o.skipWhiteSpace,
		match: func(sc *scanner.Scanner) (scanner.Span, bool) {
			if !sc.ReadIdentifier() {
				return scanner.Span{}, false
			}
			return sc.Token(), true
		},
	}
}
