package cmd

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/salmonumbrella/jumpviz/internal/output"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	defer SetVersionInfo(origVersion, origCommit, origDate)

	SetVersionInfo("1.2.3", "abc123", "2026-01-01")

	if version != "1.2.3" || commit != "abc123" || date != "2026-01-01" {
		t.Fatalf("unexpected version info %s %s %s", version, commit, date)
	}
	if rootCmd.Version != "1.2.3" {
		t.Fatalf("root version = %q", rootCmd.Version)
	}
	if got := versionTemplate(); got != "jumpviz version 1.2.3 (commit: abc123, built: 2026-01-01)\n" {
		t.Fatalf("unexpected template %q", got)
	}
}

func TestVersionFlag(t *testing.T) {
	e := newCLIEnv(t)
	origVersion, origCommit, origDate := version, commit, date
	defer SetVersionInfo(origVersion, origCommit, origDate)
	SetVersionInfo("0.4.0", "deadbee", "2026-10-01")

	out, _, err := e.run(t, "", "--version")
	if err != nil {
		t.Fatalf("--version: %v", err)
	}
	if !strings.HasPrefix(out, "jumpviz version 0.4.0") {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestGetOutputFormat(t *testing.T) {
	prevType, prevFmt := outputType, outputFmt
	defer func() { outputType, outputFmt = prevType, prevFmt }()

	outputType, outputFmt = output.FormatJSON, "text"
	if GetOutputFormat() != output.FormatJSON || GetOutputFormatString() != "json" {
		t.Fatal("expected parsed type to win")
	}

	outputType, outputFmt = "", "yaml"
	if GetOutputFormat() != output.FormatYAML || GetOutputFormatString() != "yaml" {
		t.Fatal("expected raw flag value to be parsed")
	}

	outputType, outputFmt = "", "xml"
	if GetOutputFormat() != output.FormatText {
		t.Fatal("expected text fallback for an invalid value")
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) || isTerminal(nil) {
		t.Fatal("expected false for non-file writers")
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if isTerminal(f) {
		t.Fatal("expected false for a regular file")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"serve", "render", "attempts list", "attempts show", "attempts files",
		"labels list", "labels show", "labels save", "labels clear", "labels stats",
		"auth set-token", "auth status", "auth clear", "config show", "config set", "config unset", "config keys"}
	for _, path := range want {
		cmd, _, err := rootCmd.Find(strings.Fields(path))
		if err != nil || cmd.CommandPath() != "jumpviz "+path {
			t.Fatalf("command %q not registered (found %v, %v)", path, cmd, err)
		}
	}
}
