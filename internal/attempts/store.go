// Package attempts scans attempt bundles: directories named attempt_* that
// hold one generated research report and its figures and tables.
package attempts

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

const attemptPrefix = "attempt_"

var (
	figureKeywords = []string{"comprehensive", "single", "cell", "segmentation", "composite", "comparison"}
	fileExtensions = []string{".png", ".jpg", ".md", ".csv", ".json"}
)

// Store reads attempts from a data directory. It holds no state beyond its
// paths; every call rescans the filesystem.
type Store struct {
	dataDir string
	root    string
}

var _ api.Attempts = (*Store)(nil)

// New returns a Store for the attempts under dataDir. Report and figure
// paths are reported relative to root, the parent of dataDir.
func New(dataDir, root string) *Store {
	return &Store{dataDir: dataDir, root: root}
}

// ContentRoot returns the directory report and figure paths are relative to.
func (s *Store) ContentRoot() string {
	return s.root
}

// ListAttempts returns every attempt bundle sorted by directory name.
func (s *Store) ListAttempts(ctx context.Context) ([]api.Attempt, error) {
	dirs, err := s.attemptDirs()
	if err != nil {
		return nil, err
	}

	attempts := make([]api.Attempt, 0, len(dirs))
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		id := filepath.Base(dir)
		num := strings.TrimPrefix(id, attemptPrefix)
		report := findReport(dir)
		content, readable := readReport(dir, report)

		var hypothesis *string
		if readable {
			hypothesis = researchHypothesis(content)
		}
		scores := defaultScores()
		if readable {
			scores = qualityScores(content)
		}

		figures, err := s.findFigures(dir)
		if err != nil {
			return nil, err
		}

		attempts = append(attempts, api.Attempt{
			ID:                   id,
			Name:                 "Attempt " + num,
			Gene:                 geneName(dir),
			ReportPath:           report,
			ComprehensiveFigures: figures,
			AttemptNumber:        num,
			ResearchHypothesis:   hypothesis,
			Scores:               scores,
		})
	}

	return attempts, nil
}

// GetAttempt returns details for the attempt directory named id.
func (s *Store) GetAttempt(ctx context.Context, id string) (*api.AttemptDetails, error) {
	dir, err := s.attemptDir(id)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	figures, err := s.findFigures(dir)
	if err != nil {
		return nil, err
	}

	report := findReport(dir)
	var summary *string
	if content, ok := readReport(dir, report); ok {
		summary = reportSummary(content)
	}

	files, err := listFiles(dir)
	if err != nil {
		files = []string{}
	}

	return &api.AttemptDetails{
		ID:                   id,
		Gene:                 geneName(dir),
		ReportPath:           report,
		ComprehensiveFigures: figures,
		Summary:              summary,
		Files:                files,
	}, nil
}

// FileStats lists the relevant files of an attempt with size and mtime.
func (s *Store) FileStats(ctx context.Context, id string) ([]api.FileStat, error) {
	dir, err := s.attemptDir(id)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading attempt %s: %w", id, err)
	}

	stats := []api.FileStat{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isRelevantFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		stats = append(stats, api.FileStat{Name: entry.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return stats, nil
}

func (s *Store) attemptDirs() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dataDir, attemptPrefix+"*"))
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", s.dataDir, err)
	}

	dirs := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.IsDir() {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

func (s *Store) attemptDir(id string) (string, error) {
	if !api.ValidID(id) {
		return "", api.ValidationError{Message: fmt.Sprintf("invalid attempt id %q", id)}
	}
	dir := filepath.Join(s.dataDir, id)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", api.NotFoundError{Message: fmt.Sprintf("Attempt %s not found", id)}
	}
	return dir, nil
}

// findFigures walks dir for evidence figures: PNG files whose name mentions
// one of the figure keywords. Paths are slash-separated and relative to the
// content root.
func (s *Store) findFigures(dir string) ([]string, error) {
	figures := []string{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, ".png") || !containsAny(name, figureKeywords) {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		figures = append(figures, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning figures in %s: %w", dir, err)
	}
	sort.Strings(figures)
	return figures, nil
}

// findReport returns the base name of the first report_*.md in dir.
func findReport(dir string) *string {
	reports := reportFiles(dir)
	if len(reports) == 0 {
		return nil
	}
	name := filepath.Base(reports[0])
	return &name
}

func reportFiles(dir string) []string {
	matches, err := filepath.Glob(filepath.Join(dir, "report_*.md"))
	if err != nil {
		return nil
	}
	sort.Strings(matches)
	return matches
}

func readReport(dir string, report *string) (string, bool) {
	if report == nil {
		return "", false
	}
	data, err := os.ReadFile(filepath.Join(dir, *report))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	files := []string{}
	for _, entry := range entries {
		if isRelevantFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isRelevantFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, ext := range fileExtensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
