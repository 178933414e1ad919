package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ArtistKey derives the canonical artist key from a display name: case-folded,
// diacritics stripped, runs of non-alphanumerics collapsed to a single dash.
func ArtistKey(name string) string {
	folded := strings.ToLower(strings.TrimSpace(name))
	if plain, _, err := transform.String(stripMarks, folded); err == nil {
		folded = plain
	}

	var b strings.Builder
	b.Grow(len(folded))
	dash := false
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
