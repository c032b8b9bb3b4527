package scanner

import (
	"strconv"
	"strings"
)

// Unescape expands the escape sequences of a string read by
// ReadQuotedString. Unknown escapes keep the escaped rune.
func Unescape(text string) string {
	if !strings.ContainsRune(text, '\\') {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch != '\\' || i+1 >= len(text) {
			sb.WriteByte(ch)
			continue
		}
		i++
		switch text[i] {
		case '0':
			sb.WriteByte(0)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'v':
			sb.WriteByte('\v')
		case 'u':
			if r, ok := parseHex(text, i+1, 4); ok {
				sb.WriteRune(rune(r))
				i += 4
			} else {
				sb.WriteByte('u')
			}
		case 'x':
			if r, ok := parseHex(text, i+1, 2); ok {
				sb.WriteRune(rune(r))
				i += 2
			} else {
				sb.WriteByte('x')
			}
		default:
			sb.WriteByte(text[i])
		}
	}

	return sb.String()
}

func parseHex(text string, at, n int) (uint64, bool) {
	if at+n > len(text) {
		return 0, false
	}
	v, err := strconv.ParseUint(text[at:at+n], 16, 32)
	if err != nil {
		return 0, false
	}
	return v, true
}
