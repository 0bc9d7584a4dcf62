package attempts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// newFixture builds <root>/results with two attempts and returns a store.
func newFixture(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	data := filepath.Join(root, "results")

	writeFile(t, filepath.Join(data, "attempt_1", "report_TP53_morphology.md"), `# TP53 Investigation

## Research Hypothesis
Loss of **TP53** alters nuclear morphology in U2OS cells.

## Executive Summary
We observe a significant effect (p < 0.01).
Nuclear area increases.

Figure 2 shows validation.
## Methods
ignored
`)
	writeFile(t, filepath.Join(data, "attempt_1", "TP53_comprehensive_panel.png"), "png")
	writeFile(t, filepath.Join(data, "attempt_1", "figs", "TP53_single_cell.png"), "png")
	writeFile(t, filepath.Join(data, "attempt_1", "TP53_stats.csv"), "a,b")
	writeFile(t, filepath.Join(data, "attempt_1", "notes.txt"), "skip")
	writeFile(t, filepath.Join(data, "attempt_1", ".hidden.md"), "skip")

	writeFile(t, filepath.Join(data, "attempt_2", "plot_overview.png"), "png")
	writeFile(t, filepath.Join(data, "attempt_2", "result_table.csv"), "x")

	writeFile(t, filepath.Join(data, "attempt_notadir"), "file")

	return New(data, root), root
}

func TestListAttempts(t *testing.T) {
	store, _ := newFixture(t)

	attempts, err := store.ListAttempts(context.Background())
	if err != nil {
		t.Fatalf("ListAttempts() error = %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts, got %d", len(attempts))
	}

	first := attempts[0]
	if first.ID != "attempt_1" || first.Name != "Attempt 1" || first.AttemptNumber != "1" {
		t.Fatalf("unexpected identity: %+v", first)
	}
	if first.Gene != "TP53" {
		t.Fatalf("expected gene TP53, got %q", first.Gene)
	}
	if first.ReportPath == nil || *first.ReportPath != "report_TP53_morphology.md" {
		t.Fatalf("unexpected report path: %v", first.ReportPath)
	}
	wantFigures := []string{
		"results/attempt_1/TP53_comprehensive_panel.png",
		"results/attempt_1/figs/TP53_single_cell.png",
	}
	if !reflect.DeepEqual(first.ComprehensiveFigures, wantFigures) {
		t.Fatalf("figures = %v, want %v", first.ComprehensiveFigures, wantFigures)
	}
	if first.ResearchHypothesis == nil || *first.ResearchHypothesis != "Loss of TP53 alters nuclear morphology in U2OS cells." {
		t.Fatalf("unexpected hypothesis: %v", first.ResearchHypothesis)
	}

	second := attempts[1]
	if second.Gene != "Gene_2" {
		t.Fatalf("expected fallback gene, got %q", second.Gene)
	}
	if second.ReportPath != nil || second.ResearchHypothesis != nil {
		t.Fatalf("expected no report, got %+v", second)
	}
	if second.Scores != defaultScores() {
		t.Fatalf("expected default scores, got %+v", second.Scores)
	}
	if len(second.ComprehensiveFigures) != 0 {
		t.Fatalf("expected no figures, got %v", second.ComprehensiveFigures)
	}
}

func TestListAttemptsCanceled(t *testing.T) {
	store, _ := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.ListAttempts(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGetAttempt(t *testing.T) {
	store, _ := newFixture(t)

	details, err := store.GetAttempt(context.Background(), "attempt_1")
	if err != nil {
		t.Fatalf("GetAttempt() error = %v", err)
	}
	if details.Summary == nil || *details.Summary != "We observe a significant effect (p < 0.01). Nuclear area increases. Figure 2 shows validation." {
		t.Fatalf("unexpected summary: %v", details.Summary)
	}
	wantFiles := []string{"TP53_comprehensive_panel.png", "TP53_stats.csv", "report_TP53_morphology.md"}
	if !reflect.DeepEqual(details.Files, wantFiles) {
		t.Fatalf("files = %v, want %v", details.Files, wantFiles)
	}
}

func TestGetAttemptErrors(t *testing.T) {
	store, _ := newFixture(t)

	_, err := store.GetAttempt(context.Background(), "attempt_9")
	var notFound api.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}

	_, err = store.GetAttempt(context.Background(), "../secrets")
	var invalid api.ValidationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	_, err = store.GetAttempt(context.Background(), "attempt_notadir")
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError for plain file, got %v", err)
	}
}

func TestFileStats(t *testing.T) {
	store, _ := newFixture(t)

	stats, err := store.FileStats(context.Background(), "attempt_1")
	if err != nil {
		t.Fatalf("FileStats() error = %v", err)
	}
	if len(stats) != 3 {
		t.Fatalf("expected 3 files, got %d: %+v", len(stats), stats)
	}
	for _, st := range stats {
		if st.Name == "TP53_stats.csv" && st.Size != 3 {
			t.Fatalf("expected size 3, got %d", st.Size)
		}
		if st.ModTime.IsZero() {
			t.Fatalf("expected mod time for %s", st.Name)
		}
	}
}
