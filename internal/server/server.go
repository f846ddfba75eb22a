// Package server exposes the slang collection, streaming search and scene
// snapshots over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/ppiankov/slangspace/internal/model"
	"github.com/ppiankov/slangspace/internal/source"
)

// Collection is the saved slang store
type Collection interface {
	List(ctx context.Context) ([]model.SlangTerm, error)
	Get(ctx context.Context, term string) (*model.SlangTerm, error)
	Save(ctx context.Context, st *model.SlangTerm) (bool, error)
}

// Searcher resolves new terms
type Searcher interface {
	Search(ctx context.Context, term string, emit func(source.Event)) (*source.Result, error)
	Cached(term string) (*model.SlangTerm, bool)
}

// Server serves the HTTP API
type Server struct {
	cfg      *model.Config
	slangs   Collection
	searcher Searcher
	log      *zap.Logger
}

// New creates a server. cfg supplies the layout used for scene snapshots
// and the allowed CORS origins.
func New(cfg *model.Config, slangs Collection, searcher Searcher, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, slangs: slangs, searcher: searcher, log: log}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(requestLogger(s.log))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	router.Get("/health", s.handleHealth)

	router.Route("/api", func(r chi.Router) {
		r.Get("/slangs", s.handleList)
		r.Get("/slang/{term}/stream", s.handleStream)
		r.Post("/slang/save", s.handleSave)
		r.Get("/scene", s.handleScene)
	})

	router.NotFound(s.handleNotFound)
	router.MethodNotAllowed(s.handleNotFound)

	return router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("HTTP Request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", chimiddleware.GetReqID(r.Context())),
			)
		})
	}
}
