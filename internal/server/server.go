// Package server exposes verification runs over HTTP as server-sent event streams.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/OluwafemiOlasupo/resume-verifier/internal/config"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/document"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/logger"
	"github.com/OluwafemiOlasupo/resume-verifier/internal/model"
)

const (
	healthMessage   = "Resume Verifier API is running"
	shutdownTimeout = 10 * time.Second
	// multipartOverhead is the allowance for form boundaries and part headers
	multipartOverhead = 1 << 20
)

// Runner starts a verification and streams its events
type Runner interface {
	Run(ctx context.Context, doc []byte, filename string) <-chan model.Event
}

// Server is the verification HTTP API
type Server struct {
	cfg      config.ServerConfig
	verifier Runner
	logger   *zap.Logger
	handler  http.Handler
}

// New creates a server. Zero config values fall back to the defaults.
func New(cfg config.ServerConfig, verifier Runner, log *zap.Logger) *Server {
	d := config.DefaultConfig().Server
	if cfg.Addr == "" {
		cfg.Addr = d.Addr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = d.PingInterval
	}

	s := &Server{cfg: cfg, verifier: verifier, logger: logger.OrNop(log)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/verify", s.handleVerify)

	s.handler = s.logRequest(cors(mux))
	return s
}

// Handler returns the root handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type healthResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Success: true, Message: healthMessage})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes
	tooLarge := fmt.Sprintf("File too large. Max %s.", humanBytes(limit))

	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: tooLarge})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "No file provided"})
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	f, header, err := r.FormFile("file")
	if err != nil || header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "No file provided"})
		return
	}
	defer f.Close()

	if !document.Supported(header.Filename) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: fmt.Sprintf(
			"Unsupported file type: .%s. Allowed: %s", document.Ext(header.Filename), strings.Join(document.Formats(), ", "),
		)})
		return
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Could not read upload"})
		return
	}
	if int64(len(data)) > limit {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: tooLarge})
		return
	}

	s.stream(w, r, s.verifier.Run(r.Context(), data, header.Filename))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func humanBytes(n int64) string {
	const mib = 1 << 20
	if n%mib == 0 {
		return fmt.Sprintf("%dMB", n/mib)
	}
	return fmt.Sprintf("%d bytes", n)
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "*")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
