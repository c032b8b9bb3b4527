package fluent

import (
	"github.com/dhamidi/parsekit/scanner"
	"github.com/tliron/commonlog"
)

// Option configures a ParseContext.
type Option func(*ParseContext)

// WithOnEnterParser registers a function that is called every time a parser
// starts matching.
func WithOnEnterParser(fn func(p any, ctx *ParseContext)) Option {
	return func(c *ParseContext) {
		c.onEnter = fn
	}
}

// WithLogger sets the logger that reports left recursion.
func WithLogger(log commonlog.Logger) Option {
	return func(c *ParseContext) {
		c.log = log
	}
}

type entered struct {
	parser any
	offset int
}

// ParseContext is the state of one parse call: the scanner over the input
// and the parsers that are currently being entered.
type ParseContext struct {
	scanner        *scanner.Scanner
	onEnter        func(p any, ctx *ParseContext)
	log            commonlog.Logger
	stack          []entered
	leftRecursions int
}

func NewParseContext(input string, opts ...Option) *ParseContext {
	c := &ParseContext{
		scanner: scanner.New(input),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = commonlog.GetLogger("parsekit.fluent")
	}
	return c
}

func (c *ParseContext) Scanner() *scanner.Scanner {
	return c.scanner
}

// EnterParser is called by every parser before it starts matching.
func (c *ParseContext) EnterParser(p any) {
	if c.onEnter != nil {
		c.onEnter(p, c)
	}
}

// Enter records that p is being entered at the current offset. It reports
// whether p was already being entered at the same offset, which means the
// grammar is left recursive there and will not terminate. p must be
// comparable.
func (c *ParseContext) Enter(p any) bool {
	offset := c.scanner.Cursor.Offset()
	recursive := false
	for i := len(c.stack) - 1; i >= 0 && c.stack[i].offset == offset; i-- {
		if c.stack[i].parser == p {
			recursive = true
			break
		}
	}
	c.stack = append(c.stack, entered{parser: p, offset: offset})
	if recursive {
		c.leftRecursions++
		c.log.Debugf("left recursion into %v at %s", p, c.scanner.Cursor.Position())
	}
	return recursive
}

// Exit removes the most recent entry of p.
func (c *ParseContext) Exit(p any) {
	for i := len(c.stack) - 1; i >= 0; i-- {
		if c.stack[i].parser == p {
			c.stack = append(c.stack[:i], c.stack[i+1:]...)
			return
		}
	}
}

// Depth returns the number of parsers currently entered.
func (c *ParseContext) Depth() int {
	return len(c.stack)
}

// LeftRecursions returns how many times Enter detected left recursion.
func (c *ParseContext) LeftRecursions() int {
	return c.leftRecursions
}
