// Package server exposes a SQLite node store over HTTP.
//
// The node API:
//
//	PUT    /api/nodes/:id   create a child of id        -> {"id": n}
//	DELETE /api/nodes/:id   delete id and its subtree   -> {}
//	GET    /api/nodes/0     list every node             -> [[id, parent], ...]
//
// Id 0 is the root. Failures answer 500 with an empty object.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"

	"github.com/roach88/treegrid/internal/store"
)

type Config struct {
	Logger  *slog.Logger
	Store   *store.Store
	Scope   int64
	Bind    string
	Metrics bool
}

type Server struct {
	echo   *echo.Echo
	httpd  *http.Server
	store  *store.Store
	scope  int64
	logger *slog.Logger
}

func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scope := config.Scope
	if scope == 0 {
		scope = store.DefaultScope
	}

	e := echo.New()
	srv := &Server{
		echo:   e,
		store:  config.Store,
		scope:  scope,
		logger: logger.With("scope", scope),
	}

	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		// promhttp compresses its own output
		Skipper: func(c echo.Context) bool { return c.Path() == "/metrics" },
	}))
	e.HTTPErrorHandler = srv.errorHandler

	e.GET("/_health", srv.HandleHealthCheck)
	e.PUT("/api/nodes/:id", srv.HandleCreate)
	e.DELETE("/api/nodes/:id", srv.HandleDelete)
	e.GET("/api/nodes/:id", srv.HandleList)
	e.GET("/api/grid", srv.HandleGrid)
	if config.Metrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return srv
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv.logger.Info("starting server", "bind", ln.Addr().String())

	errc := make(chan error, 1)
	go func() {
		errc <- srv.httpd.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		if err := srv.Shutdown(); err != nil {
			return err
		}
		srv.logger.Info("graceful shutdown complete")
		return nil
	}
}

// Run listens on the configured bind address and serves until ctx ends.
func (srv *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", srv.httpd.Addr)
	if err != nil {
		return err
	}
	return srv.Serve(ctx, ln)
}

func (srv *Server) Shutdown() error {
	srv.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}
