package judge

import (
	"encoding/json"
	"strings"
)

// Normalize canonicalizes program output before comparison so incidental
// formatting differences (whitespace, quote style, array literal spacing) do
// not flip a verdict. It is purely textual: no numeric tolerance, no
// set-equality for order-independent answers.
//
// Bracketed text is parsed as JSON (after swapping single quotes for double
// quotes) and re-serialized canonically, so "[1, 2]" and "[1,2]" converge
// while "[1,2]" and "[\"1\",\"2\"]" stay distinct. If the parse fails the
// fallback strips all whitespace and swaps quotes. Everything else has runs
// of whitespace collapsed to a single space.
func Normalize(s string) string {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		candidate := strings.ReplaceAll(trimmed, "'", `"`)

		var parsed interface{}
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			if out, err := json.Marshal(parsed); err == nil {
				return string(out)
			}
		}

		return stripAllWhitespace(candidate)
	}

	return collapseWhitespace(trimmed)
}

func stripAllWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
