package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var accentStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeName strips accents so player names match across the salary file,
// the standings export, and lineup strings, which do not agree on diacritics.
func NormalizeName(name string) string {
	out, _, err := transform.String(accentStripper, name)
	if err != nil {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(out)
}
