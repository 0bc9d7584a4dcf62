package markdown

import (
	"regexp"
	"strings"
)

var separatorPattern = regexp.MustCompile(`^\|[\s\-:|]+\|$`)

// Table is a parsed pipe table. Every row has exactly len(Headers) cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

// isTableCandidate reports whether a trimmed line may be a table header.
// Lines with '+' are ASCII art boxes and long dash runs are separators.
func isTableCandidate(line string) bool {
	return strings.Count(line, "|") >= 3 &&
		!strings.Contains(line, "+") &&
		strings.Count(line, "-") < 10
}

func isSeparatorLine(line string) bool {
	return strings.HasPrefix(line, "|") &&
		strings.HasSuffix(line, "|") &&
		strings.Count(line, "-") >= 3 &&
		separatorPattern.MatchString(line)
}

func isTableRow(line string) bool {
	return line != "" && strings.Count(line, "|") >= 3
}

// parseTable parses the table whose header is lines[start]. It returns the
// number of lines consumed, or ok=false when the block is not a table.
func parseTable(lines []string, start int) (table *Table, consumed int, ok bool) {
	if start+2 >= len(lines) {
		return nil, 0, false
	}
	header := strings.TrimSpace(lines[start])
	if !isTableCandidate(header) ||
		!isSeparatorLine(strings.TrimSpace(lines[start+1])) ||
		!isTableRow(strings.TrimSpace(lines[start+2])) {
		return nil, 0, false
	}

	end := start
	for end < len(lines) && isTableRow(strings.TrimSpace(lines[end])) {
		end++
	}
	// Header, separator and one data row must all be table rows; a narrow
	// separator such as "|---|" ends the run early.
	if end-start < 3 {
		return nil, 0, false
	}

	table = &Table{Headers: splitCells(header)}
	for _, line := range lines[start+2 : end] {
		table.Rows = append(table.Rows, fitCells(splitCells(strings.TrimSpace(line)), len(table.Headers)))
	}
	return table, end - start, true
}

// splitCells strips the outer pipes of a row and splits it into trimmed cells.
func splitCells(line string) []string {
	inner := strings.TrimSpace(strings.Trim(line, "|"))
	parts := strings.Split(inner, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// fitCells pads or truncates cells to width.
func fitCells(cells []string, width int) []string {
	if len(cells) >= width {
		return cells[:width]
	}
	padded := make([]string, width)
	copy(padded, cells)
	return padded
}

// HTML returns the table markup, one tag per line.
func (t *Table) HTML() []string {
	lines := make([]string, 0, 8+len(t.Headers)+len(t.Rows)*(len(t.Headers)+2))
	lines = append(lines, "<table>", "<thead>", "<tr>")
	for _, h := range t.Headers {
		lines = append(lines, "<th>"+h+"</th>")
	}
	lines = append(lines, "</tr>", "</thead>", "<tbody>")
	for _, row := range t.Rows {
		lines = append(lines, "<tr>")
		for _, cell := range row {
			lines = append(lines, "<td>"+cell+"</td>")
		}
		lines = append(lines, "</tr>")
	}
	lines = append(lines, "</tbody>", "</table>")
	return lines
}
