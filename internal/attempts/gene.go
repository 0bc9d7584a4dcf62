package attempts

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var (
	reportGenePattern = regexp.MustCompile(`report_([A-Z0-9]+)_`)

	fileGenePatterns = []*regexp.Regexp{
		regexp.MustCompile(`([A-Z][A-Z0-9]{2,8})_`),
		regexp.MustCompile(`([A-Z]{3,8})_`),
	}

	// Prefixes of generated files that are never gene symbols.
	prefixStopWords = map[string]bool{
		"TOP": true, "ALL": true, "CELL": true, "IMAGE": true, "DATA": true,
		"RESULT": true, "ANALYSIS": true, "FIGURE": true, "TABLE": true,
		"PLOT": true, "GRAPH": true, "CHART": true, "SUMMARY": true,
	}

	// Upper-case filename tokens that look like genes but are not.
	fileStopWords = map[string]bool{"JUMP": true, "RESEARCH": true, "PROBLEM": true, "VERIFIED": true}
)

// geneName guesses the gene an attempt studies. In order: the report file
// name (report_GENE_description.md), the most common prefix of its CSV and
// PNG files, an upper-case token in any file name, and finally Gene_<n>.
func geneName(dir string) string {
	for _, report := range reportFiles(dir) {
		if m := reportGenePattern.FindStringSubmatch(filepath.Base(report)); m != nil {
			return m[1]
		}
	}

	if gene := geneFromFilePrefixes(dir); gene != "" {
		return gene
	}

	if entries, err := os.ReadDir(dir); err == nil {
		for _, entry := range entries {
			for _, pattern := range fileGenePatterns {
				m := pattern.FindStringSubmatch(entry.Name())
				if m != nil && !fileStopWords[m[1]] {
					return m[1]
				}
			}
		}
	}

	return "Gene_" + strings.TrimPrefix(filepath.Base(dir), attemptPrefix)
}

// geneFromFilePrefixes returns the most frequent upper-cased file prefix
// (text before the first underscore) among CSV and PNG files below dir.
// Ties go to the prefix seen first.
func geneFromFilePrefixes(dir string) string {
	counts := map[string]int{}
	var order []string

	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		lower := strings.ToLower(d.Name())
		if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".png") {
			return nil
		}

		base := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		prefix, _, _ := strings.Cut(base, "_")
		n := len([]rune(prefix))
		if n < 2 || n > 10 || !isAlnum(prefix) {
			return nil
		}
		prefix = strings.ToUpper(prefix)
		if prefixStopWords[prefix] {
			return nil
		}
		if counts[prefix] == 0 {
			order = append(order, prefix)
		}
		counts[prefix]++
		return nil
	})

	best := ""
	for _, prefix := range order {
		if best == "" || counts[prefix] > counts[best] {
			best = prefix
		}
	}
	return best
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
