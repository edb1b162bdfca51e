// Package server exposes the level API and server-side play sessions over
// HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/SeamusWaldron/sokodle/internal/logging"
	"github.com/SeamusWaldron/sokodle/internal/metrics"
	"github.com/SeamusWaldron/sokodle/internal/session"
	"github.com/SeamusWaldron/sokodle/internal/storage"
)

// Deps are the collaborators a Server needs. Logger and Metrics may be nil.
type Deps struct {
	DB       *storage.DB
	Sessions session.Store
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
	// ShareURL is appended to share text when set.
	ShareURL string
}

// Server handles the HTTP API.
type Server struct {
	dailyLevels *storage.DailyLevelRepository
	attempts    *storage.AttemptRepository
	userLevels  *storage.UserLevelRepository
	sessions    session.Store
	metrics     *metrics.Metrics
	logger      *slog.Logger
	shareURL    string

	// locks serializes requests on the same play session.
	locks sync.Map
}

// New creates a server from its dependencies.
func New(deps Deps) *Server {
	s := &Server{
		dailyLevels: storage.NewDailyLevelRepository(deps.DB),
		attempts:    storage.NewAttemptRepository(deps.DB),
		userLevels:  storage.NewUserLevelRepository(deps.DB),
		sessions:    deps.Sessions,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		shareURL:    deps.ShareURL,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore()
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/daily-level", s.handleDailyLevel)
		r.Post("/attempt", s.handleAttempt)
		r.Get("/user-levels", s.handleUserLevels)
		r.Get("/user-level", s.handleUserLevel)
		r.Post("/submit-level", s.handleSubmitLevel)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/move", s.handleMove)
				r.Post("/undo", s.handleUndo)
				r.Post("/restart", s.handleRestart)
			})
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down,
// waiting up to shutdownTimeout for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) lock(id string) func() {
	v, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
