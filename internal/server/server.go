// Package server exposes a document store and the exporters over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /version
//	GET    /api/documents                      list summaries
//	POST   /api/documents                      create from {name, document}
//	GET    /api/documents/{id}                 record as JSON, ?format=yaml for the bare document
//	PUT    /api/documents/{id}                 replace; a non-zero version must match
//	DELETE /api/documents/{id}
//	GET    /api/documents/{id}/render/{format} svg, png or dot
//	POST   /api/render/{format}                render a posted document
//
// Errors are JSON objects {"error": {"code", "message"}} with a status
// derived from the error code.
package server

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/canvaskit/pkg/buildinfo"
	"github.com/matzehuels/canvaskit/pkg/cache"
	"github.com/matzehuels/canvaskit/pkg/diagram"
	"github.com/matzehuels/canvaskit/pkg/render"
	"github.com/matzehuels/canvaskit/pkg/store"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 10 << 20

// Options configure a Server.
type Options struct {
	Store store.Store
	// Cache holds rendered exports. Nil disables caching.
	Cache cache.Cache
	Keyer cache.Keyer
	// CacheTTL is the lifetime of cached exports; zero keeps them until
	// evicted.
	CacheTTL time.Duration
	// Canvas configures the canvases documents are loaded onto for
	// rendering.
	Canvas diagram.Options
	Render []render.Option
	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	store    store.Store
	cache    cache.Cache
	keyer    cache.Keyer
	cacheTTL time.Duration
	canvas   diagram.Options
	render   []render.Option
	logger   *log.Logger
	router   chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	s := &Server{
		store:    opts.Store,
		cache:    opts.Cache,
		keyer:    opts.Keyer,
		cacheTTL: opts.CacheTTL,
		canvas:   opts.Canvas,
		render:   opts.Render,
		logger:   opts.Logger,
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.keyer == nil {
		s.keyer = cache.NewDefaultKeyer()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.canvas.Logger = s.logger.WithPrefix("canvas")
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, buildinfo.Get())
	})
	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", s.listDocuments)
			r.Post("/", s.createDocument)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getDocument)
				r.Put("/", s.putDocument)
				r.Delete("/", s.deleteDocument)
				r.Get("/render/{format}", s.renderStored)
			})
		})
		r.Post("/render/{format}", s.renderPosted)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
