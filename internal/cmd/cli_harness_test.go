package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/salmonumbrella/jumpviz/internal/secrets"
)

// cliEnv is an isolated workspace for running the root command in tests.
type cliEnv struct {
	root    string // parent of the data directory
	dataDir string
	cfgPath string
	env     map[string]string
	store   secrets.Store
}

// newCLIEnv builds <root>/results with one attempt, an empty config file,
// an in-memory keyring and a fake environment. State is restored on cleanup.
func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	restore := snapshotCLIState()
	t.Cleanup(restore)

	root := t.TempDir()
	e := &cliEnv{
		root:    root,
		dataDir: filepath.Join(root, "results"),
		cfgPath: filepath.Join(root, "config.yaml"),
		env:     map[string]string{},
		store:   secrets.NewKeyringStore(keyring.NewArrayKeyring(nil)),
	}

	writeTestFile(t, e.cfgPath, "")
	writeTestFile(t, filepath.Join(e.dataDir, "attempt_1", "report_TP53_morphology.md"), `# TP53 Morphology

## Research Hypothesis
Loss of TP53 alters nuclear morphology in U2OS cells.

## Executive Summary
Nuclei grow larger (p < 0.01).
`)
	writeTestFile(t, filepath.Join(e.dataDir, "attempt_1", "TP53_comprehensive_panel.png"), "png")
	writeTestFile(t, filepath.Join(e.dataDir, "attempt_1", "TP53_stats.csv"), "gene,area\nTP53,12\n")
	writeTestFile(t, filepath.Join(e.dataDir, "attempt_2", "KRAS_single_cell.png"), "png")
	writeTestFile(t, filepath.Join(e.dataDir, "attempt_2", "KRAS_counts.csv"), "x")

	prevEnvGet := envGet
	envGet = func(key string) string { return e.env[key] }
	prevOpen := openSecretsStore
	openSecretsStore = func() (secrets.Store, error) { return e.store, nil }
	t.Cleanup(func() {
		envGet = prevEnvGet
		openSecretsStore = prevOpen
	})
	return e
}

// run executes the root command with --config and --data-dir prepended.
func (e *cliEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetCommandState(rootCmd)
	ws = nil

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	in := strings.NewReader(stdin)

	rootCmd.SetOut(out)
	rootCmd.SetErr(errBuf)
	rootCmd.SetIn(in)
	rootCmd.SetContext(withIO(context.Background(), in, out, errBuf))

	full := append([]string{"--config", e.cfgPath, "--data-dir", e.dataDir}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), errBuf.String(), err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func snapshotCLIState() func() {
	prevOutputFmt := outputFmt
	prevOutputType := outputType
	prevDebug := debug
	prevConfig := configFile
	prevQueryExpr := queryExpr
	prevQueryFile := queryFile
	prevErrorFmt := errorFmt
	prevQuiet := quietFlag
	prevYes := yesFlag
	prevResultLimit := resultLimit
	prevResultSort := resultSort
	prevResultDesc := resultDesc
	prevDataDir := dataDirFlag
	prevLabelsDir := labelsDirFlag
	prevWS := ws

	prevOut := rootCmd.OutOrStdout()
	prevErr := rootCmd.ErrOrStderr()
	prevIn := rootCmd.InOrStdin()
	prevCtx := rootCmd.Context()

	return func() {
		resetCommandState(rootCmd)

		outputFmt = prevOutputFmt
		outputType = prevOutputType
		debug = prevDebug
		configFile = prevConfig
		queryExpr = prevQueryExpr
		queryFile = prevQueryFile
		errorFmt = prevErrorFmt
		quietFlag = prevQuiet
		yesFlag = prevYes
		resultLimit = prevResultLimit
		resultSort = prevResultSort
		resultDesc = prevResultDesc
		dataDirFlag = prevDataDir
		labelsDirFlag = prevLabelsDir
		ws = prevWS

		rootCmd.SetOut(prevOut)
		rootCmd.SetErr(prevErr)
		rootCmd.SetIn(prevIn)
		rootCmd.SetContext(prevCtx)
		rootCmd.SetArgs(nil)
	}
}

// resetCommandState returns every flag of cmd and its subcommands to its
// default and drops contexts left behind by earlier runs.
func resetCommandState(cmd *cobra.Command) {
	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(cmd.Flags())
	reset(cmd.PersistentFlags())
	for _, sub := range cmd.Commands() {
		sub.SetContext(nil) //nolint:staticcheck // cobra re-inherits the root context when nil
		resetCommandState(sub)
	}
}

func TestCLIHarnessAttemptsListJSON(t *testing.T) {
	e := newCLIEnv(t)

	out, errOut, err := e.run(t, "", "attempts", "list", "--output", "json", "--query", "[.[] | .gene]")
	if err != nil {
		t.Fatalf("execute: %v (stderr %q)", err, errOut)
	}
	if strings.TrimSpace(out) != `["TP53","KRAS"]` {
		t.Fatalf("unexpected output %q", out)
	}
	if errOut != "" {
		t.Fatalf("expected empty stderr, got %q", errOut)
	}
}

func TestCLIHarnessDefaultsToJSONWhenPiped(t *testing.T) {
	e := newCLIEnv(t)

	out, _, err := e.run(t, "", "attempts", "show", "attempt_2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "{") || !strings.Contains(out, `"gene": "KRAS"`) {
		t.Fatalf("expected JSON details, got %q", out)
	}
}

func TestCLIHarnessConfigOutputFormat(t *testing.T) {
	e := newCLIEnv(t)
	writeTestFile(t, e.cfgPath, "output_format: yaml\n")

	out, _, err := e.run(t, "", "attempts", "show", "attempt_2")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "gene: KRAS") {
		t.Fatalf("expected YAML output, got %q", out)
	}
}

func TestCLIHarnessRejectsBadFlags(t *testing.T) {
	e := newCLIEnv(t)

	if _, _, err := e.run(t, "", "attempts", "list", "-o", "xml"); err == nil {
		t.Fatal("expected error for unknown output format")
	}
	if _, _, err := e.run(t, "", "attempts", "list", "--error-format", "xml"); err == nil {
		t.Fatal("expected error for unknown error format")
	}
	_, _, err := e.run(t, "", "attempts", "list", "--query", ".", "--query-file", "q.jq")
	if err == nil || !strings.Contains(err.Error(), "only one of") {
		t.Fatalf("expected query conflict error, got %v", err)
	}
}

func TestCLIHarnessQueryFile(t *testing.T) {
	e := newCLIEnv(t)
	queryPath := filepath.Join(e.root, "ids.jq")
	writeTestFile(t, queryPath, ".[].id\n")

	out, _, err := e.run(t, "", "attempts", "list", "-o", "json", "--query-file", queryPath)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "\"attempt_1\"\n\"attempt_2\"\n" {
		t.Fatalf("unexpected output %q", out)
	}
}
