package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/salmonumbrella/jumpviz/internal/output"
)

// withTestContext installs buffers and an output format on the root
// command's context for tests that call helpers directly.
func withTestContext(t *testing.T, format output.Format, yes bool) (*bytes.Buffer, *bytes.Buffer, func()) {
	t.Helper()
	in := &bytes.Buffer{}
	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}

	prevCtx := rootCmd.Context()
	ctx := withIO(context.Background(), in, out, errBuf)
	ctx = output.WithFormat(ctx, format)
	ctx = output.WithYes(ctx, yes)
	ctx = output.WithQuiet(ctx, true)
	rootCmd.SetContext(ctx)

	prevType := outputType
	prevFmt := outputFmt
	outputType = format
	outputFmt = string(format)

	return out, errBuf, func() {
		outputType = prevType
		outputFmt = prevFmt
		rootCmd.SetContext(prevCtx)
	}
}
