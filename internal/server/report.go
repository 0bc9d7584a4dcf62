package server

import (
	"bytes"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/salmonumbrella/jumpviz/internal/markdown"
)

type reportPageData struct {
	Title    string
	Filename string
	Body     template.HTML
}

// handleMarkdown renders a report under the content root as a full page.
func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	full, ok := s.resolveReport(r.URL.Path)
	if !ok {
		http.Error(w, "Markdown file not found", http.StatusNotFound)
		return
	}

	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.Error(w, "Markdown file not found", http.StatusNotFound)
			return
		}
		writeError(w, err, "Error rendering markdown")
		return
	}

	page, err := RenderReportPage(filepath.Base(full), string(data))
	if err != nil {
		writeError(w, err, "Error rendering markdown")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	setCORS(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// resolveReport maps a URL path to a file inside the content root.
func (s *Server) resolveReport(urlPath string) (string, bool) {
	rel := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if rel == "" || strings.ContainsRune(rel, 0) {
		return "", false
	}
	root := s.attempts.ContentRoot()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if inside, err := filepath.Rel(root, full); err != nil || inside == ".." || strings.HasPrefix(inside, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}

// RenderReportPage converts report markdown to HTML and wraps it in the
// report page.
func RenderReportPage(filename, source string) ([]byte, error) {
	var buf bytes.Buffer
	err := reportPage.Execute(&buf, reportPageData{
		Title:    ReportTitle(filename),
		Filename: filename,
		Body:     template.HTML(markdown.Convert(source)), //nolint:gosec // Convert escapes its input
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportTitle turns "report_TP53_morphology.md" into
// "Report Tp53 Morphology".
func ReportTitle(filename string) string {
	name := strings.ReplaceAll(filename, "_", " ")
	name = strings.ReplaceAll(name, ".md", "")
	return cases.Title(language.English).String(name)
}
