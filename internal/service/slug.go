package service

import (
	"strings"
	"unicode"
)

// translit maps the non-ASCII letters that show up in Azerbaijani titles to
// ASCII equivalents. The table is fixed: anything outside it that is not
// alphanumeric collapses into a hyphen.
var translit = map[rune]rune{
	'ə': 'e', 'Ə': 'e',
	'ı': 'i', 'İ': 'i',
	'ğ': 'g', 'Ğ': 'g',
	'ş': 's', 'Ş': 's',
	'ç': 'c', 'Ç': 'c',
	'ö': 'o', 'Ö': 'o',
	'ü': 'u', 'Ü': 'u',
}

// Slugify derives a URL-safe identifier from a title: transliterate the fixed
// letter table, lowercase, collapse runs of everything else to single
// hyphens, and trim leading/trailing hyphens.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	pendingHyphen := false
	for _, r := range title {
		// Transliterate before lowercasing: ToLower('İ') would otherwise
		// produce a combining mark the table cannot match.
		if mapped, ok := translit[r]; ok {
			r = mapped
		}
		r = unicode.ToLower(r)
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
