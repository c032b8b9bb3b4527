package scanner

import (
	"testing"
)

func TestCursorNewCursor(t *testing.T) {
	c := NewCursor("abc")
	pos := c.Position()

	if pos.Line != 1 {
		t.Errorf("Line = %d, want %d", pos.Line, 1)
	}
	if pos.Column != 1 {
		t.Errorf("Column = %d, want %d", pos.Column, 1)
	}
	if pos.Offset != 0 {
		t.Errorf("Offset = %d, want %d", pos.Offset, 0)
	}
	if c.Current() != 'a' {
		t.Errorf("Current = %q, want %q", c.Current(), 'a')
	}
	if c.PeekNext() != 'b' {
		t.Errorf("PeekNext = %q, want %q", c.PeekNext(), 'b')
	}
}

func TestCursorLinesAndColumns(t *testing.T) {
	c := NewCursor("ab\ncd")
	c.AdvanceN(4)

	want := Position{Offset: 4, Line: 2, Column: 2}
	if got := c.Position(); got != want {
		t.Errorf("Position = %+v, want %+v", got, want)
	}
	if got := Resolve("ab\ncd", 4); got != want {
		t.Errorf("Resolve = %+v, want %+v", got, want)
	}
}

func TestCursorMultiByte(t *testing.T) {
	c := NewCursor("é€x")
	c.Advance()
	if c.Offset() != 2 {
		t.Errorf("Offset = %d, want %d", c.Offset(), 2)
	}
	if c.Current() != '€' {
		t.Errorf("Current = %q, want %q", c.Current(), '€')
	}
	c.Advance()
	if c.Position().Column != 3 {
		t.Errorf("Column = %d, want %d", c.Position().Column, 3)
	}
}

func TestCursorResetPosition(t *testing.T) {
	c := NewCursor("hello\nworld")
	c.AdvanceN(3)
	saved := c.Position()
	c.AdvanceN(5)
	c.ResetPosition(saved)

	if c.Position() != saved {
		t.Errorf("Position = %+v, want %+v", c.Position(), saved)
	}
	if c.Current() != 'l' {
		t.Errorf("Current = %q, want %q", c.Current(), 'l')
	}
}

func TestCursorEof(t *testing.T) {
	c := NewCursor("a")
	c.Advance()
	if !c.Eof() {
		t.Error("expected Eof")
	}
	if c.Current() != EOF {
		t.Errorf("Current = %q, want EOF", c.Current())
	}
	c.Advance()
	if c.Offset() != 1 {
		t.Errorf("Offset = %d, want %d", c.Offset(), 1)
	}
}

func TestScannerReadText(t *testing.T) {
	s := New("foo bar")
	if !s.ReadText("foo") {
		t.Fatal("ReadText(foo) failed")
	}
	if s.Cursor.Offset() != 3 {
		t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), 3)
	}
	if tok := s.Token(); tok.Start != 0 || tok.End != 3 {
		t.Errorf("Token = [%d,%d), want [0,3)", tok.Start, tok.End)
	}

	if s.ReadText("bar") {
		t.Error("ReadText(bar) should fail before white space is skipped")
	}
	if s.Cursor.Offset() != 3 {
		t.Errorf("Offset after failure = %d, want %d", s.Cursor.Offset(), 3)
	}

	s.SkipWhiteSpace()
	if !s.ReadText("bar") {
		t.Error("ReadText(bar) failed after SkipWhiteSpace")
	}
}

func TestScannerReadTextIsCaseSensitive(t *testing.T) {
	s := New("Foo")
	if s.ReadText("foo") {
		t.Error("ReadText should be case sensitive")
	}
	if s.Cursor.Offset() != 0 {
		t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), 0)
	}
}

func TestScannerSkipWhiteSpace(t *testing.T) {
	s := New(" \t\r\n x")
	if !s.SkipWhiteSpace() {
		t.Error("SkipWhiteSpace returned false")
	}
	if s.Cursor.Current() != 'x' {
		t.Errorf("Current = %q, want %q", s.Cursor.Current(), 'x')
	}
	if s.SkipWhiteSpace() {
		t.Error("SkipWhiteSpace returned true with nothing to skip")
	}
}

func TestScannerReadInteger(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		token string
	}{
		{"123", true, "123"},
		{"-42abc", true, "-42"},
		{"+7", true, "+7"},
		{"abc", false, ""},
		{"-", false, ""},
		{"12.5", true, "12"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			ok := s.ReadInteger()
			if ok != tt.ok {
				t.Fatalf("ReadInteger = %v, want %v", ok, tt.ok)
			}
			if !ok {
				if s.Cursor.Offset() != 0 {
					t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), 0)
				}
				return
			}
			if got := s.Token().String(); got != tt.token {
				t.Errorf("Token = %q, want %q", got, tt.token)
			}
		})
	}
}

func TestScannerReadDecimal(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		token string
	}{
		{"123", true, "123"},
		{"12.5", true, "12.5"},
		{"-0.25x", true, "-0.25"},
		{"12.", true, "12"},
		{".5", false, ""},
		{"+", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			ok := s.ReadDecimal()
			if ok != tt.ok {
				t.Fatalf("ReadDecimal = %v, want %v", ok, tt.ok)
			}
			if !ok {
				if s.Cursor.Offset() != 0 {
					t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), 0)
				}
				return
			}
			if got := s.Token().String(); got != tt.token {
				t.Errorf("Token = %q, want %q", got, tt.token)
			}
		})
	}
}

func TestScannerReadIdentifier(t *testing.T) {
	s := New("_foo$1 bar")
	if !s.ReadIdentifier() {
		t.Fatal("ReadIdentifier failed")
	}
	if got := s.Token().String(); got != "_foo$1" {
		t.Errorf("Token = %q, want %q", got, "_foo$1")
	}

	s = New("1abc")
	if s.ReadIdentifier() {
		t.Error("ReadIdentifier should not accept a leading digit")
	}
}

func TestScannerReadWhile(t *testing.T) {
	s := New("aaab")
	if !s.ReadWhile(func(ch rune) bool { return ch == 'a' }) {
		t.Fatal("ReadWhile failed")
	}
	if got := s.Token().String(); got != "aaa" {
		t.Errorf("Token = %q, want %q", got, "aaa")
	}
	if s.ReadWhile(func(ch rune) bool { return ch == 'a' }) {
		t.Error("ReadWhile should fail on an empty run")
	}
}

func TestScannerShouldNotReadEscapedStringWithoutMatchingQuotes(t *testing.T) {
	tests := []string{
		"Lorem ipsum",
		"'Lorem ipsum",
		"Lorem ipsum'",
		"\"Lorem ipsum",
		"Lorem ipsum\"",
		"'Lorem ipsum\"",
		"\"Lorem ipsum'",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			s := New(input)
			if s.ReadEscapedString("") {
				t.Errorf("ReadEscapedString(%q) succeeded", input)
			}
			if s.Cursor.Offset() != 0 {
				t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), 0)
			}
		})
	}
}

func TestScannerShouldReadEscapedStringWithMatchingQuotes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"'Lorem ipsum'", "Lorem ipsum"},
		{"\"Lorem ipsum\"", "Lorem ipsum"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			if !s.ReadEscapedString("") {
				t.Fatalf("ReadEscapedString(%q) failed", tt.input)
			}
			if got := s.Token().String(); got != tt.want {
				t.Errorf("Token = %q, want %q", got, tt.want)
			}
			if s.Cursor.Offset() != len(tt.input) {
				t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), len(tt.input))
			}
		})
	}
}

func TestScannerShouldReadStringWithEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"'Lorem \\n ipsum'", "Lorem \\n ipsum"},
		{"\"Lorem \\n ipsum\"", "Lorem \\n ipsum"},
		{"\"Lo\\trem \\n ipsum\"", "Lo\\trem \\n ipsum"},
		{"'Lorem \\u1234 ipsum'", "Lorem \\u1234 ipsum"},
		{"'Lorem \\xabcd ipsum'", "Lorem \\xabcd ipsum"},
		{"'it\\'s'", "it\\'s"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			if !s.ReadEscapedString("") {
				t.Fatalf("ReadEscapedString(%q) failed", tt.input)
			}
			if got := s.Token().String(); got != tt.want {
				t.Errorf("Token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestScannerShouldNotReadStringWithInvalidEscapes(t *testing.T) {
	tests := []string{
		"'Lorem \\w ipsum'",
		"'Lorem \\u12 ipsum'",
		"'Lorem \\xg ipsum'",
		"'Lorem \\",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			s := New(input)
			if s.ReadEscapedString("") {
				t.Errorf("ReadEscapedString(%q) succeeded", input)
			}
			if s.Cursor.Offset() != 0 {
				t.Errorf("Offset = %d, want %d", s.Cursor.Offset(), 0)
			}
		})
	}
}

func TestScannerExtraEscapeChars(t *testing.T) {
	s := New(`'a\wb'`)
	if !s.ReadEscapedString("w") {
		t.Error("ReadEscapedString with extra escape char failed")
	}
}

func TestScannerQuoteSelection(t *testing.T) {
	if New(`"x"`).ReadSingleQuotedString() {
		t.Error("ReadSingleQuotedString accepted double quotes")
	}
	if New(`'x'`).ReadDoubleQuotedString() {
		t.Error("ReadDoubleQuotedString accepted single quotes")
	}
	if !New(`'x'`).ReadSingleQuotedString() {
		t.Error("ReadSingleQuotedString rejected single quotes")
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`\t\\`, "\t\\"},
		{`é`, "é"},
		{`\x41BC`, "ABC"},
		{`it\'s`, "it's"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Unescape(tt.input); got != tt.want {
				t.Errorf("Unescape(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSpan(t *testing.T) {
	span := NewSpan("hello\nworld", 6, 11)
	if span.String() != "world" {
		t.Errorf("String = %q, want %q", span.String(), "world")
	}
	if span.Len() != 5 {
		t.Errorf("Len = %d, want %d", span.Len(), 5)
	}
	if got := span.StartPosition(); got.Line != 2 || got.Column != 1 {
		t.Errorf("StartPosition = %v, want 2:1", got)
	}
}
