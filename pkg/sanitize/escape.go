package sanitize

import "strings"

// DecodeEscapes reverses literal backslash escape sequences that survive
// when an HTML body has been transported as a JSON-encoded string value.
// Recognized sequences are \n, \r, \t, \" and \\; any other backslash is
// passed through unchanged.
func DecodeEscapes(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			sb.WriteByte(s[i])
			continue
		}
		switch s[i+1] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case '"':
			sb.WriteByte('"')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte(s[i])
			continue
		}
		i++
	}

	return sb.String()
}
