package markdown

import (
	"regexp"
	"strings"
)

// Kind tags a classified line.
type Kind int

const (
	KindPlain Kind = iota
	KindBlank
	KindHeading
	KindListItem
	KindTable
	KindRule
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindBlank:
		return "blank"
	case KindHeading:
		return "heading"
	case KindListItem:
		return "list_item"
	case KindTable:
		return "table"
	case KindRule:
		return "rule"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// Token is one classified line, or a run of lines for tables and code.
type Token struct {
	Kind    Kind
	Level   int  // heading level
	Ordered bool // list item kind
	Text    string
	Table   *Table
	Lines   []string // raw lines, emitted verbatim
}

const (
	codeOpen  = "<pre><code>"
	codeClose = "</code></pre>"
)

var (
	headingPattern   = regexp.MustCompile(`^(#{1,4}) (.*)$`)
	unorderedPattern = regexp.MustCompile(`^\s*[-*+] (.*)$`)
	orderedPattern   = regexp.MustCompile(`^\s*\d+\. (.*)$`)
)

// Tokenize classifies inline-formatted text line by line. Tables are
// recognized before list items so pipes and dashes inside a table never
// read as list markers or rules.
func Tokenize(text string) []Token {
	lines := strings.Split(text, "\n")
	tokens := make([]Token, 0, len(lines))

	for i := 0; i < len(lines); {
		line := lines[i]

		if n := rawBlockLen(lines, i); n > 0 {
			tokens = append(tokens, Token{Kind: KindRaw, Lines: lines[i : i+n]})
			i += n
			continue
		}

		if line == "---" {
			tokens = append(tokens, Token{Kind: KindRule})
			i++
			continue
		}

		if m := headingPattern.FindStringSubmatch(line); m != nil {
			tokens = append(tokens, Token{Kind: KindHeading, Level: len(m[1]), Text: m[2]})
			i++
			continue
		}

		if table, n, ok := parseTable(lines, i); ok {
			tokens = append(tokens, Token{Kind: KindTable, Table: table})
			i += n
			continue
		}

		tokens = append(tokens, classifyLine(line))
		i++
	}

	return tokens
}

func classifyLine(line string) Token {
	if m := unorderedPattern.FindStringSubmatch(line); m != nil {
		return Token{Kind: KindListItem, Text: strings.TrimSpace(m[1])}
	}
	if m := orderedPattern.FindStringSubmatch(line); m != nil {
		return Token{Kind: KindListItem, Ordered: true, Text: strings.TrimSpace(m[1])}
	}
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Token{Kind: KindBlank}
	}
	// Lines that already open with markup pass through and end any paragraph.
	if strings.HasPrefix(trimmed, "<") {
		return Token{Kind: KindRaw, Lines: []string{trimmed}}
	}
	return Token{Kind: KindPlain, Text: trimmed}
}

// rawBlockLen returns how many lines starting at i belong to a fenced code
// block produced by FormatInline, or 0 when lines[i] does not start one.
func rawBlockLen(lines []string, i int) int {
	line := lines[i]
	open := strings.LastIndex(line, codeOpen)
	if open < 0 {
		return 0
	}
	if strings.Contains(line[open:], codeClose) {
		if strings.HasPrefix(strings.TrimSpace(line), codeOpen) {
			return 1
		}
		return 0
	}
	for j := i + 1; j < len(lines); j++ {
		if strings.Contains(lines[j], codeClose) {
			return j - i + 1
		}
	}
	return len(lines) - i
}
