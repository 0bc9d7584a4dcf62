package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/salmonumbrella/jumpviz/internal/config"
	"github.com/spf13/cobra"
)

const (
	envDataDir     = "JUMPVIZ_DATA_DIR"
	envLabelsDir   = "JUMPVIZ_LABELS_DIR"
	envReviewToken = "JUMPVIZ_REVIEW_TOKEN"

	// reviewTokenKey names the review token in the secrets store.
	reviewTokenKey = "review"
)

// workspace is the resolved data layout for one invocation.
type workspace struct {
	cfg       *config.Config
	dataDir   string
	labelsDir string
}

// contentRoot is the directory report and figure paths are relative to.
func (w *workspace) contentRoot() string {
	return config.ContentRoot(w.dataDir)
}

// loadConfigFromFlag loads config from --config if provided, otherwise from default path.
func loadConfigFromFlag() (*config.Config, error) {
	if strings.TrimSpace(configFile) != "" {
		return config.Load(configFile)
	}
	return config.ReadConfig()
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if cmd.Flags().Changed(name) {
		return true
	}
	return cmd.InheritedFlags().Changed(name)
}

// resolveWorkspace resolves directories with precedence flag > env > config > default.
func resolveWorkspace(cmd *cobra.Command, cfg *config.Config) *workspace {
	if cfg == nil {
		cfg = &config.Config{}
	}
	w := &workspace{cfg: cfg}

	w.dataDir = firstNonEmpty(flagValue(cmd, "data-dir", dataDirFlag), envGet(envDataDir))
	if w.dataDir == "" {
		w.dataDir = cfg.ResolvedDataDir()
	}

	w.labelsDir = firstNonEmpty(flagValue(cmd, "labels-dir", labelsDirFlag), envGet(envLabelsDir))
	if w.labelsDir == "" {
		if strings.TrimSpace(cfg.LabelsDir) != "" {
			w.labelsDir = cfg.ResolvedLabelsDir()
		} else {
			// Follow a data dir given on the command line or in the environment.
			w.labelsDir = filepath.Join(config.ContentRoot(w.dataDir), "human_labels")
		}
	}
	return w
}

// currentWorkspace returns the resolved workspace, falling back to defaults
// when a command runs without the root pre-run (as in unit tests).
func currentWorkspace() *workspace {
	if ws != nil {
		return ws
	}
	return resolveWorkspace(nil, nil)
}

// resolveReviewToken resolves the write token with precedence:
// flag > env > keyring > config. An empty result disables the check.
func resolveReviewToken(cmd *cobra.Command, flagToken string, cfg *config.Config) string {
	if token := flagValue(cmd, "token", flagToken); token != "" {
		return token
	}
	if token := strings.TrimSpace(envGet(envReviewToken)); token != "" {
		return token
	}
	if store, err := openSecretsStore(); err == nil {
		if tok, err := store.GetToken(reviewTokenKey); err == nil && strings.TrimSpace(tok.Value) != "" {
			return strings.TrimSpace(tok.Value)
		}
	}
	if cfg != nil {
		return strings.TrimSpace(cfg.ReviewToken)
	}
	return ""
}

// flagValue returns value only when the flag was set explicitly.
func flagValue(cmd *cobra.Command, name, value string) string {
	if !flagChanged(cmd, name) {
		return ""
	}
	return strings.TrimSpace(value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// newLogger returns the text logger used by the server, at debug level with --debug.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func formatConfigLoadError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("load config: %w", err)
}
