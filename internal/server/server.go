// Package server exposes protocol inspection and the live session over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/ccview/internal/observability"
	"github.com/danmuck/ccview/internal/plugins"
	"github.com/danmuck/ccview/internal/session"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Name        string
	Addr        string
	CorsOrigins []string
	Registry    *plugins.Registry
	// Protocol is the registry name used when a request names none.
	Protocol string
	// Session is optional. Without it the session routes answer 503.
	Session *session.Session
	// Token, when set, is required as a bearer token by POST /api/send.
	Token string
}

type Server struct {
	name     string
	addr     string
	protocol string
	registry *plugins.Registry
	session  *session.Session
	token    string
	router   *gin.Engine
	appeared time.Time
}

func New(opts Options) *Server {
	observability.RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization", observability.RequestIDHeader},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	registry := opts.Registry
	if registry == nil {
		registry = plugins.Default()
	}
	name := opts.Name
	if name == "" {
		name = "ccview"
	}
	s := &Server{
		name:     name,
		addr:     opts.Addr,
		protocol: opts.Protocol,
		registry: registry,
		session:  opts.Session,
		token:    opts.Token,
		router:   r,
		appeared: time.Now(),
	}
	s.RegisterRoutes()
	return s
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("http_listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Str("addr", s.addr).Msg("http_stopped")
	return nil
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
