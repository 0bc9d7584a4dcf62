package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/salmonumbrella/jumpviz/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort      int
	serveStaticDir string
	serveAddr      string
	serveToken     string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the review server",
	Long: `Run the HTTP server behind the discovery visualizer.

The server exposes attempts and labels under /api/, renders markdown
reports as HTML pages, and serves the visualizer's static files.
Label writes require the review token when one is configured
(--token, JUMPVIZ_REVIEW_TOKEN, 'jumpviz auth set-token' or config).

Examples:
  jumpviz serve
  jumpviz serve --port 8080 --static-dir ./web
  jumpviz serve --addr 127.0.0.1 --data-dir ./results`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default: config port or 9876)")
	serveCmd.Flags().StringVar(&serveStaticDir, "static-dir", "", "Directory with the visualizer's static files (default: config static_dir or .)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Host address to bind (default: all interfaces)")
	serveCmd.Flags().StringVar(&serveToken, "token", "", "Review token required for label writes")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	w := currentWorkspace()

	port := w.cfg.ResolvedPort()
	if flagChanged(cmd, "port") {
		if servePort <= 0 || servePort > 65535 {
			return fmt.Errorf("invalid --port %d", servePort)
		}
		port = servePort
	}
	staticDir := firstNonEmpty(flagValue(cmd, "static-dir", serveStaticDir), w.cfg.StaticDir, ".")

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger(stderrFromContext(ctx))
	store := newLabelsStore(w.labelsDir, func(name string, err error) {
		logger.Warn("skipping unreadable label file", slog.String("file", name), slog.Any("err", err))
	})

	token := resolveReviewToken(cmd, serveToken, w.cfg)
	if token == "" {
		logger.Debug("review token not set; label writes are open")
	}

	srv := server.New(newAttemptsStore(w.dataDir, w.contentRoot()), store, server.Options{
		Addr:        strings.TrimSpace(serveAddr),
		Port:        port,
		StaticDir:   staticDir,
		ReviewToken: token,
		Logger:      logger.With(slog.String("component", "server")),
		Out:         stdoutFromContext(ctx),
	})
	logger.Debug("resolved workspace",
		slog.String("data_dir", w.dataDir),
		slog.String("labels_dir", w.labelsDir),
		slog.String("static_dir", staticDir))

	if err := startServer(ctx, srv); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
