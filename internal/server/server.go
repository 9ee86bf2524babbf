package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"effects-studio/internal/logger"
	"effects-studio/internal/studio"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Server exposes the studio over HTTP. One server holds one studio,
// so requests share a working session the way an interactive client
// expects.
type Server struct {
	studio     *studio.Studio
	logger     logger.Logger
	router     *chi.Mux
	httpServer *http.Server
}

func NewServer(st *studio.Studio, log logger.Logger) *Server {
	r := chi.NewRouter()

	s := &Server{
		studio: st,
		logger: log,
		router: r,
	}

	cfg := st.Config()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", s.studio.Recorder().Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/models", s.handleModels)
		r.Post("/models/{id}/load", s.handleModelLoad)
		r.Post("/effects", s.handleEffects)
		r.Post("/preview", s.handlePreview)
		r.Post("/background", s.handleBackground)
	})
}

// Start serves requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Server", "listening", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Server", "shutting down", nil)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// Router exposes the mux for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("HTTP", "request served", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(started).Milliseconds(),
			})
		})
	}
}
