// Package server exposes the cutting engine over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"github.com/piwi3910/PlateCut/internal/model"
	"github.com/piwi3910/PlateCut/internal/project"
)

// Options configures a Server.
type Options struct {
	// Defaults fill in the settings of requests that omit them.
	Defaults model.Settings
	// Templates are served read-only under /api/v1/templates.
	Templates model.TemplateStore
	// Store persists results saved with save_as. Nil disables the results API.
	Store *project.ResultStore
	// Timeout bounds a single calculation. Zero means no limit.
	Timeout time.Duration
}

// Server is the HTTP surface of the engine.
type Server struct {
	opts   Options
	router *gin.Engine
}

func New(opts Options) *Server {
	s := &Server{opts: opts, router: gin.New()}
	s.router.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

// Handler returns the routed http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api/v1")
	api.POST("/calculate", s.handleCalculate)
	api.POST("/compare", s.handleCompare)
	api.POST("/verify", s.handleVerify)
	api.POST("/estimate", s.handleEstimate)
	api.GET("/templates", s.handleListTemplates)
	api.GET("/templates/:name", s.handleGetTemplate)

	if s.opts.Store != nil {
		api.GET("/results", s.handleListResults)
		api.GET("/results/:id", s.handleGetResult)
		api.GET("/results/:id/chart", s.handleResultChart)
		api.DELETE("/results/:id", s.handleDeleteResult)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		klog.Infof("PlateCut server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		klog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			klog.Errorf("%s %s -> %d (%s) %s", c.Request.Method, c.Request.URL.Path, status, time.Since(start), c.Errors.String())
			return
		}
		klog.V(2).Infof("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
