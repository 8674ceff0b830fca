// Package sanitize normalizes untrusted free text before it is stored or
// re-displayed. The normalization is lossy: runes that are neither ASCII nor
// alphabetic are dropped, which removes most symbols and emoji outright.
package sanitize

import (
	"strings"
	"unicode"
)

// maxLength matches the storage bound for item names.
const maxLength = 200

// escapes are the entity substitutions applied to unsafe characters.
var escapes = map[rune]string{
	'<':  "&lt;",
	'>':  "&gt;",
	'&':  "&amp;",
	'"':  "&quot;",
	'\'': "&#x27;",
	'/':  "&#x2F;",
}

// entityNames are the entities this package produces. An ampersand that
// already begins one of them is passed through untouched, which keeps
// Sanitize idempotent over its own output.
var entityNames = []string{"&lt;", "&gt;", "&amp;", "&quot;", "&#x27;", "&#x2F;"}

// Sanitize trims surrounding whitespace, entity-escapes the characters
// < > & " ' /, drops runes that are neither ASCII nor alphabetic, and
// truncates the result to 200 characters.
func Sanitize(input string) string {
	runes := []rune(strings.TrimSpace(input))

	var b strings.Builder
	b.Grow(len(runes))
	for i, r := range runes {
		if r > unicode.MaxASCII && !unicode.IsLetter(r) {
			continue
		}
		if r == '&' && beginsEntity(runes[i:]) {
			b.WriteRune(r)
			continue
		}
		if esc, ok := escapes[r]; ok {
			b.WriteString(esc)
			continue
		}
		b.WriteRune(r)
	}

	out := []rune(b.String())
	if len(out) > maxLength {
		out = out[:maxLength]
		out = trimSplitEntity(out)
		out = []rune(strings.TrimRight(string(out), " \t\n"))
	}
	return string(out)
}

// trimSplitEntity drops a trailing fragment of an entity left behind when
// the length cap cuts one mid-way. A dangling "&#" is not a recognizable
// entity and would be re-escaped on a later pass.
func trimSplitEntity(rs []rune) []rune {
	// A fragment is a proper prefix of an entity, so at most 5 runes.
	start := len(rs) - 5
	if start < 0 {
		start = 0
	}
	for i := len(rs) - 1; i >= start; i-- {
		if rs[i] != '&' {
			continue
		}
		tail := string(rs[i:])
		for _, e := range entityNames {
			if len(tail) < len(e) && strings.HasPrefix(e, tail) {
				return rs[:i]
			}
		}
		return rs
	}
	return rs
}

// beginsEntity reports whether rs starts with one of the entities Sanitize
// itself produces.
func beginsEntity(rs []rune) bool {
	s := string(rs)
	for _, e := range entityNames {
		if strings.HasPrefix(s, e) {
			return true
		}
	}
	return false
}
