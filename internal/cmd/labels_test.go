package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

const sampleLabels = `{"attemptId":"attempt_1","geneName":"TP53","timestamp":"2026-01-02T03:04:05Z","quality":"good","confidence":4}`

func TestLabelsSaveShowList(t *testing.T) {
	e := newCLIEnv(t)

	out, _, err := e.run(t, sampleLabels, "labels", "save", "-o", "json")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	var saved map[string]interface{}
	if err := json.Unmarshal([]byte(out), &saved); err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if saved["success"] != true || saved["attemptId"] != "attempt_1" {
		t.Fatalf("unexpected save result %v", saved)
	}

	path := filepath.Join(e.root, "human_labels", "labels_attempt_1.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("label file not written: %v", err)
	}
	if !strings.Contains(string(data), `"confidence": 4`) {
		t.Fatalf("number not kept as written:\n%s", data)
	}

	out, _, err = e.run(t, "", "labels", "show", "attempt_1", "-o", "text")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "quality: good\n") || !strings.Contains(out, "confidence: 4\n") {
		t.Fatalf("unexpected show output:\n%s", out)
	}

	out, _, err = e.run(t, "", "labels", "list", "-o", "text")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "ATTEMPT") {
		t.Fatalf("unexpected list output %q", out)
	}
	if !strings.Contains(lines[1], "attempt_1") || !strings.Contains(lines[1], "TP53") || !strings.Contains(lines[1], "ago") {
		t.Fatalf("unexpected row %q", lines[1])
	}

	out, _, err = e.run(t, "", "labels", "list", "-o", "json")
	if err != nil {
		t.Fatalf("list json: %v", err)
	}
	var all map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(out), &all); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if all["attempt_1"]["quality"] != "good" {
		t.Fatalf("unexpected labels %v", all)
	}
}

func TestLabelsSaveFromFile(t *testing.T) {
	e := newCLIEnv(t)
	src := filepath.Join(e.root, "labels.json")
	writeTestFile(t, src, `{"attemptId":"attempt_2","quality":"poor"}`)

	out, _, err := e.run(t, "", "--labels-dir", filepath.Join(e.root, "custom"), "labels", "save", src, "-o", "text")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if out != "Saved labels for attempt_2\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(e.root, "custom", "labels_attempt_2.json")); err != nil {
		t.Fatalf("expected file in --labels-dir: %v", err)
	}
}

func TestLabelsSaveInvalid(t *testing.T) {
	e := newCLIEnv(t)

	inputs := []string{`[1,2]`, `null`, `{"quality":"good"}`, `{"attemptId":"../x"}`, `not json`}
	for _, input := range inputs {
		_, _, err := e.run(t, input, "labels", "save", "-")
		var invalid api.ValidationError
		if !errors.As(err, &invalid) {
			t.Fatalf("input %s: expected ValidationError, got %v", input, err)
		}
	}
}

func TestLabelsShowMissing(t *testing.T) {
	e := newCLIEnv(t)

	_, _, err := e.run(t, "", "labels", "show", "attempt_1")
	var notFound api.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestLabelsClear(t *testing.T) {
	e := newCLIEnv(t)
	if _, _, err := e.run(t, sampleLabels, "labels", "save"); err != nil {
		t.Fatalf("save: %v", err)
	}
	dir := filepath.Join(e.root, "human_labels")

	_, errOut, err := e.run(t, "no\n", "labels", "clear", "-o", "text")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.Contains(errOut, "Aborted.") {
		t.Fatalf("expected abort, got %q", errOut)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("labels removed without confirmation: %v", err)
	}

	out, _, err := e.run(t, "yes\n", "labels", "clear", "-o", "text")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if out != "All labels cleared.\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected labels dir removed, got %v", err)
	}

	out, _, err = e.run(t, "", "labels", "clear", "--yes", "-o", "json")
	if err != nil {
		t.Fatalf("clear of missing dir: %v", err)
	}
	if !strings.Contains(out, "All labels cleared successfully") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestLabelsStats(t *testing.T) {
	e := newCLIEnv(t)
	dir := filepath.Join(e.root, "human_labels")
	writeTestFile(t, filepath.Join(dir, "labels_attempt_1.json"), `{"attemptId":"attempt_1","quality":"good"}`)
	writeTestFile(t, filepath.Join(dir, "labels_attempt_2.json"), `{"attemptId":"attempt_2","quality":"good"}`)
	writeTestFile(t, filepath.Join(dir, "labels_attempt_3.json"), `{"attemptId":"attempt_3","quality":"poor","notes":""}`)
	writeTestFile(t, filepath.Join(dir, "broken.json"), `{`)

	out, errOut, err := e.run(t, "", "labels", "stats", "-o", "text")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := "Analyzed 3 files\n" +
		strings.Repeat("=", 50) + "\n" +
		"\nQUALITY Distribution:\n" +
		strings.Repeat("-", 30) + "\n" +
		"  good            :   2 ( 66.7%)\n" +
		"  poor            :   1 ( 33.3%)\n" +
		"  Total responses: 3\n"
	if out != want {
		t.Fatalf("stats output:\n%s\nwant:\n%s", out, want)
	}
	if !strings.Contains(errOut, "broken.json") {
		t.Fatalf("expected broken file notice, got %q", errOut)
	}

	out, _, err = e.run(t, "", "labels", "stats", "--bars", "-o", "text")
	if err != nil {
		t.Fatalf("stats --bars: %v", err)
	}
	if !strings.Contains(out, "( 66.7%) "+strings.Repeat("#", 13)+"\n") {
		t.Fatalf("expected bars, got:\n%s", out)
	}

	out, _, err = e.run(t, "", "labels", "stats", "-o", "json")
	if err != nil {
		t.Fatalf("stats json: %v", err)
	}
	var report struct {
		Files  int    `json:"files"`
		Dir    string `json:"dir"`
		Fields []struct {
			Field string `json:"field"`
			Total int    `json:"total"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("parse: %v\n%s", err, out)
	}
	if report.Files != 3 || report.Dir != dir || len(report.Fields) != 1 || report.Fields[0].Total != 3 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestLabelsStatsEmptyDir(t *testing.T) {
	e := newCLIEnv(t)
	empty := filepath.Join(e.root, "empty")
	if err := os.MkdirAll(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	out, errOut, err := e.run(t, "", "labels", "stats", "--dir", empty, "-o", "text")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if out != "" || !strings.Contains(errOut, "No label files found") {
		t.Fatalf("unexpected output %q / %q", out, errOut)
	}

	if _, _, err := e.run(t, "", "labels", "stats", "--dir", filepath.Join(e.root, "nope")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
