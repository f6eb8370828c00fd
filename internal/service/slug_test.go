package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"Simple title", "Hello World", "hello-world"},
		{"Azerbaijani letters", "Xəbər: İşıq!", "xeber-isiq"},
		{"Uppercase transliteration", "ŞƏKİ ÇÖLÜ", "seki-colu"},
		{"Dotless i", "Qırmızı", "qirmizi"},
		{"Punctuation runs collapse", "Hello -- World!!!", "hello-world"},
		{"Leading and trailing separators", "  --Hello--  ", "hello"},
		{"Digits survive", "Top 10 xəbər 2026", "top-10-xeber-2026"},
		{"Already a slug", "hello-world", "hello-world"},
		{"Empty title", "", ""},
		{"Only punctuation", "?!...", ""},
		{"Unmapped non-ASCII collapses", "café au lait", "caf-au-lait"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.title))
		})
	}
}
