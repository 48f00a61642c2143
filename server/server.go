package server

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"english_analyzer/analyzer"
	"english_analyzer/config"
)

//go:embed web
var embeddedStatic embed.FS

type Server struct {
	agent    *analyzer.Agent
	cfg      *config.Manager
	logger   *slog.Logger
	staticFS http.Handler
	engine   *gin.Engine
}

func New(agent *analyzer.Agent, cfg *config.Manager, logger *slog.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("analyzer agent required")
	}
	if cfg == nil {
		return nil, errors.New("config manager required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	if cfg.Get().Server.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		agent:    agent,
		cfg:      cfg,
		logger:   logger,
		staticFS: http.FileServer(http.FS(sub)),
		engine:   gin.New(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.engine.Use(recovery(s.logger))
	s.engine.Use(requestID())
	s.engine.Use(corsMiddleware(s.cfg.Get().Server.CORSOrigins))
	s.engine.Use(metricsMiddleware())
	s.engine.Use(accessLog(s.logger))
}

func (s *Server) setupRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	api.POST("/analyze", s.handleAnalyze)
	api.GET("/config", s.handleConfigGet)
	api.POST("/config", requireJSON(), s.handleConfigUpdate)

	s.engine.NoRoute(s.staticHandler)
}

// Routes returns the HTTP handler for all endpoints.
func (s *Server) Routes() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down web server")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) staticHandler(c *gin.Context) {
	upath := c.Request.URL.Path
	if strings.HasPrefix(upath, "/api/") || c.Request.Method != http.MethodGet {
		c.JSON(http.StatusNotFound, errorResp{Success: false, Error: "not found"})
		return
	}
	// fall back to index.html for unknown paths
	if upath == "/" || !strings.Contains(upath, ".") {
		c.Request.URL.Path = "/"
	}
	s.staticFS.ServeHTTP(c.Writer, c.Request)
}
