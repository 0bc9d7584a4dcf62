// Package markdown converts the markdown subset used by discovery reports
// into an HTML fragment.
//
// The supported subset is small on purpose: h1–h4 headings, bold, italic,
// inline and fenced code, links, flat ordered/unordered lists, pipe tables,
// horizontal rules and paragraphs. Anything else degrades to escaped text.
// Conversion never fails.
package markdown

import "strings"

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape replaces &, < and > with their HTML entities. Quotes are left as-is.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Convert renders src as an HTML fragment.
func Convert(src string) string {
	text := strings.ReplaceAll(src, "\r\n", "\n")
	text = FormatInline(Escape(text))
	return Render(Assemble(Tokenize(text)))
}
