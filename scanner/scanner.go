package scanner

import (
	"strings"
	"unicode"
)

// Quotes selects which quote characters may delimit a string.
type Quotes int

const (
	SingleOrDouble Quotes = iota
	Single
	Double
)

func (q Quotes) allows(ch rune) bool {
	switch q {
	case Single:
		return ch == '\''
	case Double:
		return ch == '"'
	default:
		return ch == '\'' || ch == '"'
	}
}

// Chars returns the opening quote characters q accepts.
func (q Quotes) Chars() []rune {
	switch q {
	case Single:
		return []rune{'\''}
	case Double:
		return []rune{'"'}
	default:
		return []rune{'\'', '"'}
	}
}

// shortEscapes are the characters accepted after a backslash on their own.
const shortEscapes = "\\'\"0abfnrtv"

// Scanner recognizes primitive tokens at the cursor.
type Scanner struct {
	Cursor *Cursor
	token  Span
}

func New(buffer string) *Scanner {
	return &Scanner{Cursor: NewCursor(buffer)}
}

func (s *Scanner) Buffer() string {
	return s.Cursor.buffer
}

// Token returns the span recognized by the last successful Read call.
func (s *Scanner) Token() Span {
	return s.token
}

func (s *Scanner) setToken(start int) {
	s.token = Span{Buffer: s.Cursor.buffer, Start: start, End: s.Cursor.pos.Offset}
}

// SkipWhiteSpace advances past white space. It reports whether anything was
// skipped.
func (s *Scanner) SkipWhiteSpace() bool {
	start := s.Cursor.pos.Offset
	for isWhiteSpace(s.Cursor.current) {
		s.Cursor.Advance()
	}
	return s.Cursor.pos.Offset > start
}

func isWhiteSpace(ch rune) bool {
	switch ch {
	case ' ', '\t', '\r', '\n':
		return true
	case EOF:
		return false
	}
	return unicode.IsSpace(ch)
}

// ReadText matches text exactly.
func (s *Scanner) ReadText(text string) bool {
	if text == "" || !s.Cursor.Match(text) {
		return false
	}
	start := s.Cursor.pos.Offset
	s.Cursor.AdvanceTo(start + len(text))
	s.setToken(start)
	return true
}

// ReadChar matches a single rune.
func (s *Scanner) ReadChar(ch rune) bool {
	if ch == EOF || s.Cursor.current != ch {
		return false
	}
	start := s.Cursor.pos.Offset
	s.Cursor.Advance()
	s.setToken(start)
	return true
}

// ReadWhile consumes the longest non-empty run of runes satisfying pred.
func (s *Scanner) ReadWhile(pred func(rune) bool) bool {
	start := s.Cursor.pos.Offset
	for s.Cursor.current != EOF && pred(s.Cursor.current) {
		s.Cursor.Advance()
	}
	if s.Cursor.pos.Offset == start {
		return false
	}
	s.setToken(start)
	return true
}

// ReadIdentifier reads a letter, '_' or '$' followed by letters, digits, '_'
// or '$'.
func (s *Scanner) ReadIdentifier() bool {
	if !IsIdentifierStart(s.Cursor.current) {
		return false
	}
	start := s.Cursor.pos.Offset
	s.Cursor.Advance()
	for IsIdentifierPart(s.Cursor.current) {
		s.Cursor.Advance()
	}
	s.setToken(start)
	return true
}

func IsIdentifierStart(ch rune) bool {
	return ch == '_' || ch == '$' || unicode.IsLetter(ch)
}

func IsIdentifierPart(ch rune) bool {
	return IsIdentifierStart(ch) || unicode.IsDigit(ch)
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch rune) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func (s *Scanner) readSign() {
	if s.Cursor.current == '-' || s.Cursor.current == '+' {
		s.Cursor.Advance()
	}
}

func (s *Scanner) readDigits() int {
	n := 0
	for isDigit(s.Cursor.current) {
		s.Cursor.Advance()
		n++
	}
	return n
}

// ReadInteger reads an optional sign followed by one or more digits.
func (s *Scanner) ReadInteger() bool {
	start := s.Cursor.pos
	s.readSign()
	if s.readDigits() == 0 {
		s.Cursor.ResetPosition(start)
		return false
	}
	s.setToken(start.Offset)
	return true
}

// ReadDecimal reads an integer optionally followed by '.' and one or more
// digits. A '.' not followed by a digit is left unread.
func (s *Scanner) ReadDecimal() bool {
	start := s.Cursor.pos
	s.readSign()
	if s.readDigits() == 0 {
		s.Cursor.ResetPosition(start)
		return false
	}
	if s.Cursor.current == '.' && isDigit(s.Cursor.PeekNext()) {
		s.Cursor.Advance()
		s.readDigits()
	}
	s.setToken(start.Offset)
	return true
}

// ReadEscapedString reads a single or double quoted string. See
// ReadQuotedString.
func (s *Scanner) ReadEscapedString(extraEscapeChars string) bool {
	return s.ReadQuotedString(SingleOrDouble, extraEscapeChars)
}

func (s *Scanner) ReadSingleQuotedString() bool {
	return s.ReadQuotedString(Single, "")
}

func (s *Scanner) ReadDoubleQuotedString() bool {
	return s.ReadQuotedString(Double, "")
}

// ReadQuotedString reads a string delimited by one of the allowed quotes,
// closed by the same quote. Escape sequences are validated but not expanded:
// \\ \' \" \0 \a \b \f \n \r \t \v, \uXXXX, \xXX and a backslash followed by
// any rune in extraEscapeChars. The token is the text between the quotes.
func (s *Scanner) ReadQuotedString(quotes Quotes, extraEscapeChars string) bool {
	quote := s.Cursor.current
	if !quotes.allows(quote) {
		return false
	}
	start := s.Cursor.pos
	s.Cursor.Advance()
	contentStart := s.Cursor.pos.Offset

	for {
		switch ch := s.Cursor.current; ch {
		case EOF:
			s.Cursor.ResetPosition(start)
			return false
		case quote:
			s.token = Span{Buffer: s.Cursor.buffer, Start: contentStart, End: s.Cursor.pos.Offset}
			s.Cursor.Advance()
			return true
		case '\\':
			s.Cursor.Advance()
			if !s.readEscape(extraEscapeChars) {
				s.Cursor.ResetPosition(start)
				return false
			}
		default:
			s.Cursor.Advance()
		}
	}
}

// readEscape validates the escape sequence following a backslash.
func (s *Scanner) readEscape(extra string) bool {
	ch := s.Cursor.current
	switch {
	case ch == EOF:
		return false
	case strings.ContainsRune(shortEscapes, ch), strings.ContainsRune(extra, ch):
		s.Cursor.Advance()
		return true
	case ch == 'u':
		s.Cursor.Advance()
		return s.readHex(4)
	case ch == 'x':
		s.Cursor.Advance()
		return s.readHex(2)
	}
	return false
}

func (s *Scanner) readHex(n int) bool {
	for i := 0; i < n; i++ {
		if !isHexDigit(s.Cursor.current) {
			return false
		}
		s.Cursor.Advance()
	}
	return true
}
