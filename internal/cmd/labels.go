package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/jumpviz/internal/api"
	"github.com/salmonumbrella/jumpviz/internal/labels"
	"github.com/salmonumbrella/jumpviz/internal/output"
)

var (
	statsBars bool
	statsDir  string
)

// labelSummary is one row of `labels list`.
type labelSummary struct {
	AttemptID string `json:"attemptId" yaml:"attemptId"`
	Gene      string `json:"geneName,omitempty" yaml:"geneName,omitempty"`
	Fields    int    `json:"fields" yaml:"fields"`
	Saved     string `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

type labelSummaries struct {
	rows    []labelSummary
	records map[string]api.LabelRecord
}

func (l labelSummaries) Table() output.Table {
	t := output.Table{Headers: []string{"ATTEMPT", "GENE", "FIELDS", "SAVED"}}
	for _, row := range l.rows {
		saved := row.Saved
		if ts, ok := l.records[row.AttemptID].Timestamp(); ok {
			saved = humanize.Time(ts)
		}
		t.AddRow(row.AttemptID, row.Gene, row.Fields, saved)
	}
	return t
}

func (l labelSummaries) RenderText(w io.Writer) error {
	return renderTable(w, l.Table())
}

// distributionReport adds the --bars choice to a labels.Report.
type distributionReport struct {
	labels.Report `yaml:",inline"`
	Dir           string `json:"dir" yaml:"dir"`
	bars          bool
}

func (r distributionReport) RenderText(w io.Writer) error {
	return labels.Render(w, r.Report, r.bars)
}

var labelsCmd = &cobra.Command{
	Use:     "labels",
	Aliases: []string{"label"},
	Short:   "Manage human review labels",
	Long: `Manage the labels reviewers record in the visualizer.

Labels are stored as labels_<attemptId>.json in the labels directory
(default: human_labels next to the data directory).

Examples:
  jumpviz labels list
  jumpviz labels show attempt_3 -o json
  jumpviz labels save labels.json
  jumpviz labels stats --bars
  jumpviz labels clear --yes`,
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved labels",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		all, err := labelsStore(cmd).AllLabels()
		if err != nil {
			return fmt.Errorf("failed to load labels: %w", err)
		}
		if structuredOutputRequested() {
			return printStructured(ctx, all)
		}
		if len(all) == 0 {
			printNotice(ctx, "No labels saved yet.")
			return nil
		}
		return printStructured(ctx, summarizeLabels(all))
	},
}

var labelsShowCmd = &cobra.Command{
	Use:   "show <attemptId>",
	Short: "Show the labels saved for an attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := labelsStore(cmd).GetLabels(args[0])
		if err != nil {
			return err
		}
		return printStructured(commandContext(cmd), rec)
	},
}

var labelsSaveCmd = &cobra.Command{
	Use:   "save [file|-]",
	Short: "Save a label record from a JSON file or stdin",
	Long: `Save a label record. The record is a JSON object with a string
attemptId; any other fields are stored as given.

Examples:
  jumpviz labels save labels.json
  echo '{"attemptId":"attempt_1","quality":"good"}' | jumpviz labels save`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		source, err := sourceArg(args, stdinFromContext(ctx))
		if err != nil {
			return err
		}
		data, err := readInput(source, stdinFromContext(ctx))
		if err != nil {
			return err
		}
		rec, err := parseLabelRecord(data)
		if err != nil {
			return err
		}
		if err := labelsStore(cmd).SaveLabels(rec); err != nil {
			return err
		}

		if structuredOutputRequested() {
			return printStructured(ctx, map[string]interface{}{
				"success":   true,
				"message":   "Labels saved successfully",
				"attemptId": rec.AttemptID(),
			})
		}
		fmt.Fprintf(stdoutFromContext(ctx), "Saved labels for %s\n", rec.AttemptID())
		return nil
	},
}

var labelsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved labels",
	Long: `Remove the labels directory and every label in it.

This cannot be undone. Use --yes to skip the confirmation prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		dir := currentWorkspace().labelsDir

		if !output.YesFromContext(ctx) {
			errOut := stderrFromContext(ctx)
			fmt.Fprintf(errOut, "Are you sure you want to delete all labels in %s? This cannot be undone.\n", dir)
			fmt.Fprint(errOut, "Type 'yes' to confirm: ")
			reader := bufio.NewReader(stdinFromContext(ctx))
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(confirm) != "yes" {
				fmt.Fprintln(errOut, "Aborted.")
				return nil
			}
		}

		if err := labelsStore(cmd).ClearLabels(); err != nil {
			return err
		}

		if structuredOutputRequested() {
			return printStructured(ctx, map[string]interface{}{
				"success": true,
				"message": "All labels cleared successfully",
			})
		}
		fmt.Fprintln(stdoutFromContext(ctx), "All labels cleared.")
		return nil
	},
}

var labelsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how often each label value was chosen",
	Long: `Summarize every .json file in the labels directory into per-field
value distributions.

Examples:
  jumpviz labels stats
  jumpviz labels stats --bars
  jumpviz labels stats --dir ./exported_labels -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		dir := firstNonEmpty(flagValue(cmd, "dir", statsDir), currentWorkspace().labelsDir)

		records, err := labels.LoadDir(dir, func(name string, err error) {
			printNotice(ctx, fmt.Sprintf("Error reading %s: %v", name, err))
		})
		if err != nil {
			return err
		}
		if len(records) == 0 && !structuredOutputRequested() {
			printNotice(ctx, "No label files found in "+dir)
			return nil
		}

		return printStructured(ctx, distributionReport{
			Report: labels.Distributions(records),
			Dir:    dir,
			bars:   statsBars,
		})
	},
}

func init() {
	labelsStatsCmd.Flags().BoolVar(&statsBars, "bars", false, "Draw a bar for each value")
	labelsStatsCmd.Flags().StringVar(&statsDir, "dir", "", "Directory of label files (default: the labels directory)")

	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsShowCmd)
	labelsCmd.AddCommand(labelsSaveCmd)
	labelsCmd.AddCommand(labelsClearCmd)
	labelsCmd.AddCommand(labelsStatsCmd)

	rootCmd.AddCommand(labelsCmd)
}

func labelsStore(cmd *cobra.Command) api.Labels {
	ctx := commandContext(cmd)
	return newLabelsStore(currentWorkspace().labelsDir, func(name string, err error) {
		printNotice(ctx, fmt.Sprintf("Skipping %s: %v", name, err))
	})
}

// parseLabelRecord decodes a JSON object, keeping numbers as written.
func parseLabelRecord(data []byte) (api.LabelRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var rec api.LabelRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, api.ValidationError{Message: fmt.Sprintf("invalid label record: %v", err)}
	}
	if rec == nil {
		return nil, api.ValidationError{Message: "label record must be a JSON object"}
	}
	return rec, nil
}

func summarizeLabels(all map[string]api.LabelRecord) labelSummaries {
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	summaries := labelSummaries{records: all}
	for _, id := range ids {
		rec := all[id]
		row := labelSummary{AttemptID: id}
		row.Gene, _ = rec[api.FieldGeneName].(string)
		row.Saved, _ = rec[api.FieldTimestamp].(string)
		for field := range rec {
			switch field {
			case api.FieldAttemptID, api.FieldGeneName, api.FieldTimestamp:
			default:
				row.Fields++
			}
		}
		summaries.rows = append(summaries.rows, row)
	}
	return summaries
}
