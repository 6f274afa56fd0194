// Package server exposes the recommender over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/feature"
)

// Recommender is what the handlers need; *engine.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, userID string, answers *core.UserAnswers, k *int) ([]core.ScoredCity, error)
	NextCity(ctx context.Context, userID string, answers *core.UserAnswers) (core.ScoredCity, error)
	RecordSwipe(ctx context.Context, userID, cityID string, liked bool) error
	Favorites(ctx context.Context, userID string) ([]core.CityRecord, error)
	SaveProfile(ctx context.Context, userID string, answers *core.UserAnswers) error
	Metadata() *feature.Metadata
	Health(ctx context.Context) error
}

type Server struct {
	rec     Recommender
	metrics *Metrics
	router  *gin.Engine

	addr            string
	shutdownTimeout time.Duration
}

type Option func(*Server)

func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// New builds the router. mode is a gin mode (debug, release, test); empty
// leaves the global gin mode alone.
func New(rec Recommender, mode string, opts ...Option) *Server {
	if mode != "" {
		gin.SetMode(mode)
	}
	s := &Server{
		rec:             rec,
		metrics:         NewMetrics(),
		addr:            ":8080",
		shutdownTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLog())
	r.Use(s.metrics.Middleware())
	s.registerRoutes(r)
	s.router = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Metrics() *Metrics { return s.metrics }

// Run serves until ctx is cancelled, then drains in-flight requests for up
// to the shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", s.shutdownTimeout).Msg("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
