package labels

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

// Fields that identify a record and are never tallied.
var skippedFields = map[string]bool{
	api.FieldAttemptID: true,
	api.FieldGeneName:  true,
	api.FieldTimestamp: true,
}

// ValueCount is one value of a field with its share of the field's answers.
type ValueCount struct {
	Value   string  `json:"value" yaml:"value"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// FieldDistribution tallies the answers given for one field.
type FieldDistribution struct {
	Field  string       `json:"field" yaml:"field"`
	Total  int          `json:"total" yaml:"total"`
	Values []ValueCount `json:"values" yaml:"values"`
}

// Report is the distribution of every labelled field across a set of files.
type Report struct {
	Files  int                 `json:"files" yaml:"files"`
	Fields []FieldDistribution `json:"fields" yaml:"fields"`
}

// LoadDir decodes every *.json file in dir in name order. Files that fail to
// decode are passed to onErr and skipped.
func LoadDir(dir string, onErr func(name string, err error)) ([]api.LabelRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading labels directory: %w", err)
	}

	var records []api.LabelRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		rec, err := readRecord(filepath.Join(dir, entry.Name()))
		if err != nil {
			if onErr != nil {
				onErr(entry.Name(), err)
			}
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Distributions counts, for each field other than the identifying ones, how
// often each non-empty value occurs. Values are ordered by count, ties by
// first appearance.
func Distributions(records []api.LabelRecord) Report {
	type tally struct {
		counts map[string]int
		order  []string
	}
	tallies := map[string]*tally{}

	for _, rec := range records {
		// Map iteration is random; visit keys in order so first appearance
		// is stable across runs.
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, field := range keys {
			if skippedFields[field] {
				continue
			}
			value, ok := displayValue(rec[field])
			if !ok {
				continue
			}
			t := tallies[field]
			if t == nil {
				t = &tally{counts: map[string]int{}}
				tallies[field] = t
			}
			if t.counts[value] == 0 {
				t.order = append(t.order, value)
			}
			t.counts[value]++
		}
	}

	fields := make([]string, 0, len(tallies))
	for f := range tallies {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	report := Report{Files: len(records), Fields: make([]FieldDistribution, 0, len(fields))}
	for _, field := range fields {
		t := tallies[field]
		dist := FieldDistribution{Field: field}
		for _, v := range t.order {
			dist.Total += t.counts[v]
		}
		for _, v := range t.order {
			n := t.counts[v]
			dist.Values = append(dist.Values, ValueCount{
				Value:   v,
				Count:   n,
				Percent: float64(n) / float64(dist.Total) * 100,
			})
		}
		sort.SliceStable(dist.Values, func(i, j int) bool {
			return dist.Values[i].Count > dist.Values[j].Count
		})
		report.Fields = append(report.Fields, dist)
	}
	return report
}

// displayValue renders a label value for counting. Null, empty and the
// literal string "null" mean "no answer".
func displayValue(v interface{}) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		if val == "" || val == "null" {
			return "", false
		}
		return val, true
	case json.Number:
		return val.String(), true
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val), true
		}
		return string(data), true
	}
}

const barWidth = 20

// Render writes report in the plain-text layout reviewers are used to. With
// bars set, each value line ends in a bar scaled to its percentage.
func Render(w io.Writer, report Report, bars bool) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Analyzed %d files\n", report.Files)
	b.WriteString(strings.Repeat("=", 50) + "\n")

	for _, field := range report.Fields {
		fmt.Fprintf(&b, "\n%s Distribution:\n", strings.ToUpper(field.Field))
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, v := range field.Values {
			fmt.Fprintf(&b, "  %-15s : %3d (%5.1f%%)", v.Value, v.Count, v.Percent)
			if bars {
				b.WriteString(" " + strings.Repeat("#", int(math.Round(v.Percent*barWidth/100))))
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "  Total responses: %d\n", field.Total)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
