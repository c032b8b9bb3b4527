// Package scanner provides positioned, backtrackable reading over an
// in-memory text buffer.
//
// A Cursor owns the buffer and the current Position. A Scanner builds
// recognizers on top of it. Every Read method either succeeds and advances
// the cursor past the recognized text, or fails and leaves the cursor where
// it was.
package scanner

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// EOF is returned by Current and PeekNext when the cursor is past the end of
// the buffer.
const EOF rune = -1

// Position is a location in the buffer. Line and Column are 1-based.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Start is the position of the first character of any buffer.
var Start = Position{Offset: 0, Line: 1, Column: 1}

// Resolve computes the line and column of offset in buffer.
func Resolve(buffer string, offset int) Position {
	if offset > len(buffer) {
		offset = len(buffer)
	}
	pos := Start
	for i, ch := range buffer {
		if i >= offset {
			break
		}
		if ch == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	pos.Offset = offset
	return pos
}

// Span is a view over a buffer. It never copies the text.
type Span struct {
	Buffer string
	Start  int
	End    int
}

func NewSpan(buffer string, start, end int) Span {
	return Span{Buffer: buffer, Start: start, End: end}
}

func (s Span) Len() int {
	return s.End - s.Start
}

func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

func (s Span) String() string {
	if s.IsEmpty() {
		return ""
	}
	return s.Buffer[s.Start:s.End]
}

// StartPosition resolves the line and column of the first character.
func (s Span) StartPosition() Position {
	return Resolve(s.Buffer, s.Start)
}

// EndPosition resolves the line and column just past the last character.
func (s Span) EndPosition() Position {
	return Resolve(s.Buffer, s.End)
}

// Cursor reads runes from an immutable buffer and tracks the current position.
type Cursor struct {
	buffer  string
	pos     Position
	current rune
	width   int
}

func NewCursor(buffer string) *Cursor {
	c := &Cursor{
		buffer: buffer,
		pos:    Start,
	}
	c.decode()
	return c
}

func (c *Cursor) decode() {
	if c.pos.Offset >= len(c.buffer) {
		c.current = EOF
		c.width = 0
		return
	}
	c.current, c.width = utf8.DecodeRuneInString(c.buffer[c.pos.Offset:])
}

func (c *Cursor) Buffer() string {
	return c.buffer
}

func (c *Cursor) Position() Position {
	return c.pos
}

func (c *Cursor) Offset() int {
	return c.pos.Offset
}

func (c *Cursor) Eof() bool {
	return c.pos.Offset >= len(c.buffer)
}

// Current returns the rune under the cursor, or EOF.
func (c *Cursor) Current() rune {
	return c.current
}

// PeekNext returns the rune after the current one, or EOF.
func (c *Cursor) PeekNext() rune {
	next := c.pos.Offset + c.width
	if next >= len(c.buffer) {
		return EOF
	}
	r, _ := utf8.DecodeRuneInString(c.buffer[next:])
	return r
}

// Advance moves past the current rune.
func (c *Cursor) Advance() {
	if c.current == EOF {
		return
	}
	c.pos.Offset += c.width
	if c.current == '\n' {
		c.pos.Line++
		c.pos.Column = 1
	} else {
		c.pos.Column++
	}
	c.decode()
}

// AdvanceN moves past n runes, stopping at the end of the buffer.
func (c *Cursor) AdvanceN(n int) {
	for i := 0; i < n && c.current != EOF; i++ {
		c.Advance()
	}
}

// AdvanceTo moves forward until the offset is at least target. It never moves
// backwards.
func (c *Cursor) AdvanceTo(target int) {
	for c.pos.Offset < target && c.current != EOF {
		c.Advance()
	}
}

// ResetPosition moves the cursor to a previously observed position.
func (c *Cursor) ResetPosition(p Position) {
	if p == c.pos {
		return
	}
	c.pos = p
	c.decode()
}

// Match reports whether the remaining buffer starts with s. It does not move
// the cursor.
func (c *Cursor) Match(s string) bool {
	return strings.HasPrefix(c.buffer[c.pos.Offset:], s)
}
