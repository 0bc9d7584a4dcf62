package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/salmonumbrella/jumpviz/internal/markdown"
	"github.com/salmonumbrella/jumpviz/internal/server"
	"github.com/spf13/cobra"
)

var (
	renderPage  bool
	renderTitle string
)

// renderedReport is the structured form of a render result.
type renderedReport struct {
	Source string `json:"source" yaml:"source"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`
	HTML   string `json:"html" yaml:"html"`
}

var renderCmd = &cobra.Command{
	Use:   "render [file.md|-]",
	Short: "Render a markdown report to HTML",
	Long: `Render a markdown report with the same converter the server uses.

Prints the HTML fragment by default, or the complete report page with
--page. Reads stdin when the file is "-" or omitted and input is piped.

Examples:
  jumpviz render results/attempt_1/report_TP53_morphology.md
  cat report.md | jumpviz render --page > report.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().BoolVar(&renderPage, "page", false, "Wrap the fragment in the full report page")
	renderCmd.Flags().StringVar(&renderTitle, "title", "", "File name used for the page title (default: the input file name)")

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	source, err := sourceArg(args, stdinFromContext(ctx))
	if err != nil {
		return err
	}
	data, err := readInput(source, stdinFromContext(ctx))
	if err != nil {
		return err
	}

	result := renderedReport{Source: source}
	if renderPage {
		name := renderTitle
		if name == "" {
			name = filepath.Base(source)
			if source == "-" {
				name = "report.md"
			}
		}
		page, err := server.RenderReportPage(name, string(data))
		if err != nil {
			return fmt.Errorf("failed to render report page: %w", err)
		}
		result.Title = server.ReportTitle(name)
		result.HTML = string(page)
	} else {
		result.HTML = markdown.Convert(string(data))
	}

	if structuredOutputRequested() {
		return printStructured(ctx, result)
	}

	out := stdoutFromContext(ctx)
	if _, err := fmt.Fprint(out, result.HTML); err != nil {
		return err
	}
	if !renderPage {
		_, err = fmt.Fprintln(out)
	}
	return err
}
