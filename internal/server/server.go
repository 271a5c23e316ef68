// Package server exposes the colour and festival utilities over HTTP for the
// browser frontend.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/jmylchreest/skytint/internal/artwork"
	"github.com/jmylchreest/skytint/internal/festival"
	"github.com/jmylchreest/skytint/internal/logging"
)

// ArtworkService produces artwork for matched festivals.
type ArtworkService interface {
	ForFestivals(ctx context.Context, festivals []festival.Festival, city string) ([]*artwork.Artwork, error)
}

// Options configures a Server.
type Options struct {
	Matcher *festival.Matcher

	// Artwork enables POST /api/artwork when set.
	Artwork ArtworkService

	// ArtworkPerMin limits artwork requests per client. Zero disables the
	// limit.
	ArtworkPerMin int

	// AllowOrigins lists CORS origins. Empty allows any origin.
	AllowOrigins []string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	Logger hclog.Logger
}

// Server is the skytint HTTP API.
type Server struct {
	echo    *echo.Echo
	matcher *festival.Matcher
	artwork ArtworkService
	opts    Options
	log     hclog.Logger
}

// New builds the echo instance with routes and middleware.
func New(opts Options) *Server {
	log := logging.OrDiscard(opts.Logger).Named("server")

	matcher := opts.Matcher
	if matcher == nil {
		table, err := festival.DefaultTable()
		if err != nil {
			log.Error("built-in festival table unavailable", "error", err)
			table = festival.Table{}
		}
		matcher = festival.NewMatcher(table)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: opts.AllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	s := &Server{
		echo:    e,
		matcher: matcher,
		artwork: opts.Artwork,
		opts:    opts,
		log:     log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.echo.GET("/healthz", s.health)

	api := s.echo.Group("/api")
	api.GET("/on-colour", s.onColour)
	api.GET("/on-color", s.onColour)
	api.GET("/festivals", s.festivals)
	api.POST("/theme", s.theme)

	if s.artwork != nil {
		var mw []echo.MiddlewareFunc
		if s.opts.ArtworkPerMin > 0 {
			mw = append(mw, artworkRateLimiter(s.opts.ArtworkPerMin))
		}
		api.POST("/artwork", s.generateArtwork, mw...)
	}
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.echo,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.opts.ShutdownTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

func requestLogger(log hclog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
				"latency", v.Latency,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}

			if v.Status >= http.StatusInternalServerError {
				log.Error("request completed", args...)
				return nil
			}
			log.Debug("request completed", args...)
			return nil
		},
	})
}

func artworkRateLimiter(perMinute int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60.0),
		Burst:     perMinute,
		ExpiresIn: time.Minute,
	})
	return middleware.RateLimiter(store)
}
