package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/salmonumbrella/jumpviz/internal/api"
	"github.com/salmonumbrella/jumpviz/internal/output"
)

const hypothesisWidth = 60

// attemptList renders as a table in text mode.
type attemptList []api.Attempt

func (l attemptList) Table() output.Table {
	t := output.Table{Headers: []string{"ID", "GENE", "OVERALL", "REPORT", "HYPOTHESIS"}}
	for _, a := range l {
		t.AddRow(a.ID, a.Gene, a.Scores.Overall, a.ReportPath, truncateString(deref(a.ResearchHypothesis), hypothesisWidth))
	}
	return t
}

func (l attemptList) RenderText(w io.Writer) error {
	return renderTable(w, l.Table())
}

// fileList shows sizes and ages the way ls -lh would.
type fileList []api.FileStat

func (l fileList) Table() output.Table {
	t := output.Table{Headers: []string{"NAME", "SIZE", "MODIFIED"}}
	for _, f := range l {
		t.AddRow(f.Name, humanize.Bytes(uint64(f.Size)), humanize.Time(f.ModTime))
	}
	return t
}

func (l fileList) RenderText(w io.Writer) error {
	return renderTable(w, l.Table())
}

var attemptsCmd = &cobra.Command{
	Use:     "attempts",
	Aliases: []string{"attempt"},
	Short:   "Inspect discovery attempts",
	Long: `Inspect the attempt_* bundles under the data directory.

These commands return the same data the review server's API does.

Examples:
  jumpviz attempts list
  jumpviz attempts list --result-sort-by scores.overall --result-desc
  jumpviz attempts show attempt_3 -o json
  jumpviz attempts files attempt_3`,
}

var attemptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List attempts with gene, report and scores",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		list, err := attemptsStore().ListAttempts(ctx)
		if err != nil {
			return fmt.Errorf("failed to list attempts: %w", err)
		}
		if len(list) == 0 && !structuredOutputRequested() {
			printNotice(ctx, "No attempts found in "+currentWorkspace().dataDir)
			return nil
		}
		return printStructured(ctx, attemptList(list))
	},
}

var attemptsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show report, figures, summary and files of an attempt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		details, err := attemptsStore().GetAttempt(ctx, args[0])
		if err != nil {
			return err
		}
		return printStructured(ctx, details)
	},
}

var attemptsFilesCmd = &cobra.Command{
	Use:   "files <id>",
	Short: "List an attempt's files with sizes and modification times",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		files, err := attemptsStore().FileStats(ctx, args[0])
		if err != nil {
			return err
		}
		return printStructured(ctx, fileList(files))
	},
}

func init() {
	attemptsCmd.AddCommand(attemptsListCmd)
	attemptsCmd.AddCommand(attemptsShowCmd)
	attemptsCmd.AddCommand(attemptsFilesCmd)

	rootCmd.AddCommand(attemptsCmd)
}

func attemptsStore() api.Attempts {
	w := currentWorkspace()
	return newAttemptsStore(w.dataDir, w.contentRoot())
}

func renderTable(w io.Writer, t output.Table) error {
	return output.NewPrinter(w, output.FormatTable).Print(context.Background(), t)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncateString shortens s to maxLen runes, marking the cut with "...".
func truncateString(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
