// Package server exposes the qforms tool interface over HTTP.
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/njchilds90/qforms"
	"github.com/njchilds90/qforms/internal/config"
)

const shutdownTimeout = 5 * time.Second

// Server serves a qforms.Tools over HTTP.
type Server struct {
	cfg     config.ServerConfig
	tools   *qforms.Tools
	log     *zap.Logger
	metrics *metrics
	router  *httprouter.Router
}

// New wires the routes for tools.
func New(cfg config.ServerConfig, tools *qforms.Tools, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		tools:   tools,
		log:     log,
		metrics: newMetrics(),
		router:  httprouter.New(),
	}
	s.router.POST("/tool", s.handleTool)
	s.router.GET("/schema", s.handleSchema)
	s.router.GET("/health", s.handleHealth)
	s.router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	s.router.PanicHandler = s.handlePanic
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on cfg.Addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.GetReadHeaderTimeout(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("qforms tool server listening", zap.String("addr", s.cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("qforms tool server stopped")
	return nil
}

// writeJSON encodes v before writing the header. Encoding failures are
// answered with 500.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req qforms.ToolRequest
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	start := time.Now()
	resp := s.tools.Handle(r.Context(), req)
	s.metrics.observe(req.Tool, resp.Error != "", time.Since(start).Seconds())
	s.log.Debug("tool call",
		zap.String("tool", req.Tool),
		zap.Duration("took", time.Since(start)),
		zap.String("error", resp.Error))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, qforms.ToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handlePanic(w http.ResponseWriter, r *http.Request, rec interface{}) {
	s.log.Error("panic in handler",
		zap.String("path", r.URL.Path),
		zap.Any("panic", rec),
		zap.ByteString("stack", debug.Stack()))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
