package importer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug normalizes a header name for matching: accents stripped,
// lowercased, separators collapsed to a single underscore, everything
// else dropped. "Código Artículo" and "codigo-articulo" both slug to
// "codigo_articulo".
func Slug(header string) string {
	s, _, err := transform.String(deaccent, header)
	if err != nil {
		s = header
	}
	s = strings.ToLower(s)

	var b strings.Builder
	lastUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '-', r == '_', unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}
