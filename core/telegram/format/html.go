package format

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes user-provided text for Telegram HTML parse mode.
// Only &, < and > are significant for Telegram's HTML subset.
func EscapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}

// Bold wraps text in HTML bold tags, escaping the content.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Italic wraps text in HTML italic tags, escaping the content.
func Italic(text string) string {
	return "<i>" + EscapeHTML(text) + "</i>"
}
