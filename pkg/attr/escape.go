package attr

import "strings"

// Escape escapes text for inclusion in HTML content and quoted attribute
// values.
func Escape(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// EscapeComment escapes text for inclusion inside an HTML comment.
func EscapeComment(s string) string {
	if !strings.ContainsAny(s, "<>") {
		return s
	}

	var buf strings.Builder
	buf.Grow(len(s) + 8)

	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}
