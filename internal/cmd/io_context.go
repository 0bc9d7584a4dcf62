package cmd

import (
	"context"
	"io"
	"os"
)

type ioKey struct{}

// ioState holds the streams a command reads from and writes to.
type ioState struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func withIO(ctx context.Context, in io.Reader, out, err io.Writer) context.Context {
	return context.WithValue(ctx, ioKey{}, ioState{in: in, out: out, err: err})
}

// streams returns the streams stored in ctx with the process streams
// filling any gaps.
func streams(ctx context.Context) ioState {
	s := ioState{in: os.Stdin, out: os.Stdout, err: os.Stderr}
	if ctx == nil {
		return s
	}
	v, ok := ctx.Value(ioKey{}).(ioState)
	if !ok {
		return s
	}
	if v.in != nil {
		s.in = v.in
	}
	if v.out != nil {
		s.out = v.out
	}
	if v.err != nil {
		s.err = v.err
	}
	return s
}

func stdinFromContext(ctx context.Context) io.Reader  { return streams(ctx).in }
func stdoutFromContext(ctx context.Context) io.Writer { return streams(ctx).out }
func stderrFromContext(ctx context.Context) io.Writer { return streams(ctx).err }
