// Package web serves the payoff dashboard and its JSON API.
package web

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"options-dashboard/internal/config"
	"options-dashboard/internal/logging"
	"options-dashboard/internal/payoff"
	"options-dashboard/internal/quote"
)

const shutdownTimeout = 5 * time.Second

// Server is the dashboard HTTP server.
type Server struct {
	cfg    config.ServerConfig
	engine payoff.Engine
	quotes *quote.Service
	logger zerolog.Logger
	mux    *http.ServeMux
}

// NewServer wires the dashboard routes.
func NewServer(cfg config.ServerConfig, engine payoff.Engine, quotes *quote.Service, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		engine: engine,
		quotes: quotes,
		logger: logging.WithOperation(logger, "web"),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/quote", s.handleQuote)
	s.mux.HandleFunc("GET /api/payoff", s.handlePayoff)
	s.mux.HandleFunc("GET /health", s.handleHealth)

	return s
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.mux)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve runs the server on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Dashboard listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info().Msg("Shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := newRequestID()
		logger := s.logger.With().Str("request_id", id).Logger()

		ctx := logging.WithRequestID(logging.WithLogger(r.Context(), logger), id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		rec.Header().Set("X-Request-ID", id)

		next.ServeHTTP(rec, r.WithContext(ctx))

		logging.LogRequest(logger, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b[:])
}
