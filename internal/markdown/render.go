package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

var blankRunPattern = regexp.MustCompile(`\n\s*\n\s*\n+`)

// Render serializes blocks to an HTML fragment.
func Render(blocks []Block) string {
	var lines []string
	for _, b := range blocks {
		lines = append(lines, blockHTML(b)...)
	}
	html := blankRunPattern.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.Trim(html, "\n")
}

func blockHTML(b Block) []string {
	switch b.Kind {
	case BlockHeading:
		n := strconv.Itoa(b.Level)
		return []string{"<h" + n + ">" + b.Text + "</h" + n + ">"}
	case BlockParagraph:
		return []string{"<p>" + b.Text + "</p>"}
	case BlockList:
		return listHTML(b.List)
	case BlockTable:
		return b.Table.HTML()
	case BlockRule:
		return []string{"<hr>"}
	case BlockRaw:
		return b.Lines
	default:
		return []string{""}
	}
}

func listHTML(l *List) []string {
	tag := "ul"
	if l.Ordered {
		tag = "ol"
	}
	lines := make([]string, 0, len(l.Items)+2)
	lines = append(lines, "<"+tag+">")
	for _, item := range l.Items {
		lines = append(lines, "<li>"+item+"</li>")
	}
	return append(lines, "</"+tag+">")
}
