// Package server serves the discovery visualizer: the attempts and labels
// JSON API, rendered markdown reports, and the static front end.
package server

import (
	"context"
	"crypto/subtle"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/salmonumbrella/jumpviz/internal/api"
)

//go:embed templates/report.html
var reportPageTemplate string

var reportPage = template.Must(template.New("report").Parse(reportPageTemplate))

// LandingPage is the front end file "/" redirects to.
const LandingPage = "jump_discovery_visualizer.html"

// TokenHeader carries the review token on label writes.
const TokenHeader = "X-Review-Token"

const maxLabelBody = 1 << 20

// Options configures a Server.
type Options struct {
	Addr        string // host to bind; empty listens on all interfaces
	Port        int
	StaticDir   string
	ReviewToken string
	Logger      *slog.Logger
	Out         io.Writer // receives the startup banner
}

// Server is the review HTTP server.
type Server struct {
	attempts  api.Attempts
	labels    api.Labels
	addr      string
	port      int
	staticDir string
	token     string
	logger    *slog.Logger
	out       io.Writer
	handler   http.Handler
}

// New creates a server backed by the given stores.
func New(attempts api.Attempts, labels api.Labels, opts Options) *Server {
	s := &Server{
		attempts:  attempts,
		labels:    labels,
		addr:      opts.Addr,
		port:      opts.Port,
		staticDir: opts.StaticDir,
		token:     opts.ReviewToken,
		logger:    opts.Logger,
		out:       opts.Out,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.out == nil {
		s.out = io.Discard
	}
	if s.staticDir == "" {
		s.staticDir = "."
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/attempts", s.handleAttempts)
	mux.HandleFunc("GET /api/attempt/{id}", s.handleAttemptDetails)
	mux.HandleFunc("GET /api/labels", s.handleLabels)
	mux.HandleFunc("POST /api/save_labels", s.requireToken(s.handleSaveLabels))
	mux.HandleFunc("POST /api/clear_labels", s.requireToken(s.handleClearLabels))
	mux.HandleFunc("/", s.handleFallback)

	s.handler = s.logRequests(mux)
	return s
}

// Handler returns the server's root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on the configured port and serves until ctx is canceled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(s.addr, strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is canceled.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(s.out, "Starting JUMP Discovery Visualizer server on port %d\n", port)
	fmt.Fprintf(s.out, "Visit: http://localhost:%d/%s\n", port, LandingPage)
	fmt.Fprintln(s.out, "Press Ctrl+C to stop the server")
	s.logger.Info("server listening", slog.Int("port", port), slog.String("static_dir", s.staticDir))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			_ = server.Close()
		}
		fmt.Fprintln(s.out, "Server stopped.")
		s.logger.Info("server stopped")
		return nil
	}
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	attempts, err := s.attempts.ListAttempts(r.Context())
	if err != nil {
		s.logger.Error("listing attempts", slog.String("error", err.Error()))
		writeError(w, err, "Error loading attempts")
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (s *Server) handleAttemptDetails(w http.ResponseWriter, r *http.Request) {
	details, err := s.attempts.GetAttempt(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Error loading attempt details")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleLabels(w http.ResponseWriter, r *http.Request) {
	labels, err := s.labels.AllLabels()
	if err != nil {
		writeError(w, err, "Error loading labels")
		return
	}
	writeJSON(w, http.StatusOK, labels)
}

func (s *Server) handleSaveLabels(w http.ResponseWriter, r *http.Request) {
	rec, err := decodeLabels(http.MaxBytesReader(w, r.Body, maxLabelBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if !errors.As(err, &tooLarge) {
			err = api.ValidationError{Message: err.Error()}
		}
		writeError(w, err, "Error saving labels")
		return
	}
	if err := s.labels.SaveLabels(rec); err != nil {
		writeError(w, err, "Error saving labels")
		return
	}
	s.logger.Info("labels saved", slog.String("attempt", rec.AttemptID()))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Labels saved successfully",
	})
}

func (s *Server) handleClearLabels(w http.ResponseWriter, r *http.Request) {
	if err := s.labels.ClearLabels(); err != nil {
		writeError(w, err, "Error clearing labels")
		return
	}
	s.logger.Info("labels cleared")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "All labels cleared successfully",
	})
}

// handleFallback covers everything the API patterns do not: markdown
// reports, CORS preflight, unknown POSTs and static files.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		setCORS(w)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodHead:
	default:
		http.Error(w, "Endpoint not found", http.StatusNotFound)
		return
	}

	if strings.HasSuffix(r.URL.Path, ".md") {
		s.handleMarkdown(w, r)
		return
	}

	if r.URL.Path == "/" {
		if _, err := os.Stat(filepath.Join(s.staticDir, LandingPage)); err == nil {
			http.Redirect(w, r, "/"+LandingPage, http.StatusFound)
			return
		}
	}
	http.FileServer(http.Dir(s.staticDir)).ServeHTTP(w, r)
}

// requireToken rejects requests without the configured review token. With
// no token configured every request passes.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" {
			got := r.Header.Get(TokenHeader)
			if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
				s.logger.Warn("rejected label write", slog.String("path", r.URL.Path), slog.String("remote", r.RemoteAddr))
				writeError(w, api.AuthenticationError{Message: "missing or invalid review token"}, "")
				return
			}
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
