package provider

import (
	"html"
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded title to plain text: entities
// are unescaped, tags stripped and whitespace collapsed.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// uid builds the globally unique record key "{kind}.{instance}.{item}".
func uid(kind, instance, item string) string {
	return kind + "." + instance + "." + item
}
