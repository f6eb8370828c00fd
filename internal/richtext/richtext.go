// Package richtext normalizes post bodies into plain text for search
// matching. Bodies arrive in two representations: an HTML string, or a
// structured rich-text document (a JSON object of content blocks) serialized
// into the same field. Both flatten to tag-free, whitespace-collapsed text.
package richtext

import (
	"encoding/json"
	"html"
	"strings"
)

// blockDocument is the structured rich-text shape: an ordered list of content
// blocks, each carrying its text (directly or under items).
type blockDocument struct {
	Blocks []struct {
		Data struct {
			Text  string   `json:"text"`
			Items []string `json:"items"`
		} `json:"data"`
	} `json:"blocks"`
}

// PlainText returns the searchable plain-text projection of a post body.
func PlainText(content string) string {
	if text, ok := flattenBlocks(content); ok {
		return text
	}
	return StripHTML(content)
}

// StripHTML removes markup from an HTML fragment, decodes entities, and
// collapses whitespace runs to single spaces.
func StripHTML(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return collapseSpaces(html.UnescapeString(b.String()))
}

// flattenBlocks tries to parse content as a structured rich-text document and
// concatenates the text of each block with single spaces. The second return
// is false when content is not a block document.
func flattenBlocks(content string) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "{") {
		return "", false
	}
	var doc blockDocument
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil || len(doc.Blocks) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(doc.Blocks))
	for _, block := range doc.Blocks {
		if t := StripHTML(block.Data.Text); t != "" {
			parts = append(parts, t)
		}
		for _, item := range block.Data.Items {
			if t := StripHTML(item); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, " "), true
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
