// Package slug строит URL-идентификаторы документов из заголовков.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback используется, когда в заголовке нет ни одного допустимого символа
const Fallback = "document"

var lower = cases.Lower(language.Und)

// Make приводит заголовок к нижнему регистру, снимает диакритику и заменяет
// каждую серию символов вне [a-z0-9] одним дефисом.
func Make(title string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		lower.String(title),
	)
	if err != nil {
		folded = strings.ToLower(title)
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	s := strings.TrimRight(b.String(), "-")
	if s == "" {
		return Fallback
	}
	return s
}

func WithSuffix(base, suffix string) string {
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}
