package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/salmonumbrella/jumpviz/internal/output"
)

// commandContext returns the command's context, or the root context when a
// command runs without going through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	if rootCmd.Context() != nil {
		return rootCmd.Context()
	}
	return context.Background()
}

func structuredOutputRequested() bool {
	return output.IsStructured(GetOutputFormat())
}

// printStructured prints data in the selected format, honoring --query and
// the --result-* options carried by ctx.
func printStructured(ctx context.Context, data interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	printer := output.NewPrinter(stdoutFromContext(ctx), GetOutputFormat())
	return printer.Print(ctx, data)
}

// printNotice writes a status line to stderr unless --quiet is set.
func printNotice(ctx context.Context, msg string) {
	if output.QuietFromContext(ctx) {
		return
	}
	_, _ = stderrFromContext(ctx).Write([]byte(msg + "\n"))
}
