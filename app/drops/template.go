package drops

import (
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
	paramSep   = '|'
)

// walkTemplate scans s for template delimiters, starting at depth 0. "{{"
// raises the depth and "}}" lowers it; depth is never clamped. sep is called
// with the index of every "|" seen at depth 0.
//
// With stopOnClose set, the scan ends at the first "}}" that takes the depth
// below 0 and its index is returned: this is the closing delimiter of the
// invocation whose parameters start at s[0]. Otherwise, or when no such
// delimiter exists, walkTemplate returns -1.
func walkTemplate(s string, stopOnClose bool, sep func(i int)) int {
	depth := 0
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], openDelim):
			depth++
			i += len(openDelim)
		case strings.HasPrefix(s[i:], closeDelim):
			depth--
			if stopOnClose && depth < 0 {
				return i
			}
			i += len(closeDelim)
		default:
			if s[i] == paramSep && depth == 0 && sep != nil {
				sep(i)
			}
			i++
		}
	}
	return -1
}

// ParseParams splits the parameter portion of one template invocation into
// named parameters. Separators inside nested invocations stay part of the
// enclosing value. Segments without "=" (positional parameters) are
// discarded, and a repeated key keeps its last value.
func ParseParams(blob string) Params {
	params := make(Params)
	if blob == "" {
		return params
	}

	start := 0
	walkTemplate(blob, false, func(i int) {
		addParam(params, blob[start:i])
		start = i + 1
	})
	addParam(params, blob[start:])

	return params
}

func addParam(params Params, segment string) {
	key, value, ok := strings.Cut(segment, "=")
	if !ok {
		return
	}
	params[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
}

// stripTemplates removes every template invocation from s, nested ones
// included. An unterminated invocation swallows the rest of s.
func stripTemplates(s string) string {
	var b strings.Builder
	for {
		open := strings.Index(s, openDelim)
		if open < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:open])

		body := s[open+len(openDelim):]
		end := walkTemplate(body, true, nil)
		if end < 0 {
			return b.String()
		}
		s = body[end+len(closeDelim):]
	}
}
