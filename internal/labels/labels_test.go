package labels

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

func TestSaveAndGetLabels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "human_labels")
	store := New(dir)

	rec := api.LabelRecord{"attemptId": "attempt_1", "quality": "good <b>", "rank": 3}
	if err := store.SaveLabels(rec); err != nil {
		t.Fatalf("SaveLabels() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "labels_attempt_1.json"))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"quality\": \"good <b>\"") {
		t.Fatalf("expected indented, unescaped JSON, got:\n%s", data)
	}

	got, err := store.GetLabels("attempt_1")
	if err != nil {
		t.Fatalf("GetLabels() error = %v", err)
	}
	if got["quality"] != "good <b>" || got.AttemptID() != "attempt_1" {
		t.Fatalf("unexpected record: %v", got)
	}
	if n, ok := got["rank"].(interface{ String() string }); !ok || n.String() != "3" {
		t.Fatalf("expected number kept as written, got %#v", got["rank"])
	}
}

func TestSaveLabelsValidation(t *testing.T) {
	store := New(t.TempDir())

	for _, rec := range []api.LabelRecord{
		{},
		{"attemptId": 7},
		{"attemptId": "../escape"},
	} {
		var invalid api.ValidationError
		if err := store.SaveLabels(rec); !errors.As(err, &invalid) {
			t.Fatalf("SaveLabels(%v) expected ValidationError, got %v", rec, err)
		}
	}
}

func TestSaveLabelsStoresTrimmedID(t *testing.T) {
	store := New(t.TempDir())
	rec := api.LabelRecord{"attemptId": "  attempt_4 ", "quality": "good"}
	if err := store.SaveLabels(rec); err != nil {
		t.Fatalf("SaveLabels: %v", err)
	}
	if rec["attemptId"] != "  attempt_4 " {
		t.Fatalf("caller's record modified: %v", rec)
	}

	got, err := store.GetLabels("attempt_4")
	if err != nil {
		t.Fatalf("GetLabels: %v", err)
	}
	if got["attemptId"] != "attempt_4" || got["quality"] != "good" {
		t.Fatalf("unexpected stored record %v", got)
	}
}

func TestAllLabels(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	var bad []string
	store.OnError = func(name string, err error) { bad = append(bad, name) }

	for _, id := range []string{"attempt_1", "attempt_2"} {
		if err := store.SaveLabels(api.LabelRecord{"attemptId": id, "verdict": "yes"}); err != nil {
			t.Fatalf("SaveLabels: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "labels_broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	all, err := store.AllLabels()
	if err != nil {
		t.Fatalf("AllLabels() error = %v", err)
	}
	if len(all) != 2 || all["attempt_2"]["verdict"] != "yes" {
		t.Fatalf("unexpected labels: %v", all)
	}
	if len(bad) != 1 || bad[0] != "labels_broken.json" {
		t.Fatalf("expected broken file to be reported, got %v", bad)
	}
}

func TestAllLabelsMissingDir(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "missing"))
	all, err := store.AllLabels()
	if err != nil || len(all) != 0 {
		t.Fatalf("expected empty map, got %v, %v", all, err)
	}
}

func TestClearLabels(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "human_labels")
	store := New(dir)
	if err := store.SaveLabels(api.LabelRecord{"attemptId": "attempt_1"}); err != nil {
		t.Fatal(err)
	}

	if err := store.ClearLabels(); err != nil {
		t.Fatalf("ClearLabels() error = %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected directory removed, stat err = %v", err)
	}
	if err := store.ClearLabels(); err != nil {
		t.Fatalf("second ClearLabels() error = %v", err)
	}

	var notFound api.NotFoundError
	if _, err := store.GetLabels("attempt_1"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDistributions(t *testing.T) {
	records := []api.LabelRecord{
		{"attemptId": "a1", "geneName": "TP53", "timestamp": "t", "quality": "good", "novel": true},
		{"attemptId": "a2", "quality": "bad", "novel": false, "notes": ""},
		{"attemptId": "a3", "quality": "bad", "novel": nil, "notes": "null"},
		{"attemptId": "a4", "quality": "good"},
		{"attemptId": "a5", "quality": "great"},
	}

	report := Distributions(records)
	if report.Files != 5 {
		t.Fatalf("expected 5 files, got %d", report.Files)
	}
	if len(report.Fields) != 2 {
		t.Fatalf("expected novel and quality, got %+v", report.Fields)
	}

	novel := report.Fields[0]
	if novel.Field != "novel" || novel.Total != 2 {
		t.Fatalf("unexpected novel distribution: %+v", novel)
	}
	if novel.Values[0].Value != "true" || novel.Values[1].Value != "false" {
		t.Fatalf("unexpected novel values: %+v", novel.Values)
	}

	quality := report.Fields[1]
	want := []ValueCount{
		{Value: "good", Count: 2, Percent: 40},
		{Value: "bad", Count: 2, Percent: 40},
		{Value: "great", Count: 1, Percent: 20},
	}
	if quality.Total != 5 || len(quality.Values) != len(want) {
		t.Fatalf("unexpected quality distribution: %+v", quality)
	}
	for i, w := range want {
		if quality.Values[i] != w {
			t.Fatalf("value %d = %+v, want %+v", i, quality.Values[i], w)
		}
	}
}

func TestRender(t *testing.T) {
	report := Report{
		Files: 3,
		Fields: []FieldDistribution{{
			Field: "quality",
			Total: 3,
			Values: []ValueCount{
				{Value: "good", Count: 2, Percent: 200.0 / 3},
				{Value: "bad", Count: 1, Percent: 100.0 / 3},
			},
		}},
	}

	var buf bytes.Buffer
	if err := Render(&buf, report, false); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "Analyzed 3 files\n" +
		strings.Repeat("=", 50) + "\n" +
		"\nQUALITY Distribution:\n" +
		strings.Repeat("-", 30) + "\n" +
		"  good            :   2 ( 66.7%)\n" +
		"  bad             :   1 ( 33.3%)\n" +
		"  Total responses: 3\n"
	if buf.String() != want {
		t.Fatalf("Render() =\n%q\nwant\n%q", buf.String(), want)
	}

	buf.Reset()
	if err := Render(&buf, report, true); err != nil {
		t.Fatalf("Render(bars) error = %v", err)
	}
	if !strings.Contains(buf.String(), "( 66.7%) "+strings.Repeat("#", 13)+"\n") {
		t.Fatalf("expected bar column, got:\n%s", buf.String())
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"labels_a.json": `{"attemptId":"a","quality":"good"}`,
		"extra.json":    `{"quality":"bad"}`,
		"broken.json":   `[1,2]`,
		"readme.txt":    `ignored`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var failed []string
	records, err := LoadDir(dir, func(name string, err error) { failed = append(failed, name) })
	if err != nil {
		t.Fatalf("LoadDir() error = %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if len(failed) != 1 || failed[0] != "broken.json" {
		t.Fatalf("expected broken.json reported, got %v", failed)
	}
}
