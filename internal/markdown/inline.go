package markdown

import (
	"regexp"
	"strings"
)

var (
	boldPattern       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	fencedCodePattern = regexp.MustCompile("```([^`]*?)```")
	inlineCodePattern = regexp.MustCompile("`([^`]+?)`")
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
)

// FormatInline applies the inline substitutions to already escaped text.
// Order matters: bold runs before italic so "**x**" is never read as
// emphasis, and fenced code runs before inline code.
func FormatInline(text string) string {
	text = boldPattern.ReplaceAllString(text, "<strong>$1</strong>")
	text = emphasize(text)
	text = fencedCodePattern.ReplaceAllString(text, "<pre><code>$1</code></pre>")
	text = inlineCodePattern.ReplaceAllString(text, "<code>$1</code>")
	text = linkPattern.ReplaceAllString(text, `<a href="$2">$1</a>`)
	return text
}

// emphasize wraps *text* spans in <em>. An opening star must not follow
// another star, the closing star must not be followed by one, and the span
// may not cross a newline or contain a star. A "* " bullet at the start of
// a line is a list marker and never opens emphasis.
func emphasize(text string) string {
	if !strings.Contains(text, "*") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	lineStart := 0
	for i := 0; i < len(text); {
		c := text[i]
		if c == '\n' {
			b.WriteByte(c)
			i++
			lineStart = i
			continue
		}
		if c != '*' || (i > 0 && text[i-1] == '*') || isBulletStar(text, lineStart, i) {
			b.WriteByte(c)
			i++
			continue
		}

		end := closingStar(text, i+1)
		if end < 0 {
			b.WriteByte(c)
			i++
			continue
		}

		b.WriteString("<em>")
		b.WriteString(text[i+1 : end])
		b.WriteString("</em>")
		i = end + 1
	}

	return b.String()
}

// closingStar returns the index of the star that closes a span whose content
// starts at start, or -1 when there is none.
func closingStar(text string, start int) int {
	j := start
	for j < len(text) && text[j] != '*' && text[j] != '\n' {
		j++
	}
	if j == start || j >= len(text) || text[j] != '*' {
		return -1
	}
	if j+1 < len(text) && text[j+1] == '*' {
		return -1
	}
	return j
}

func isBulletStar(text string, lineStart, i int) bool {
	if i+1 >= len(text) || text[i+1] != ' ' {
		return false
	}
	return strings.TrimLeft(text[lineStart:i], " \t") == ""
}
