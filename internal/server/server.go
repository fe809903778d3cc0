// Package server exposes the orchestration pipeline over HTTP: the chat
// ingress plus read-only session and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zulandar/switchboard/internal/orchestrator"
)

// StartOpts holds configuration for the HTTP server.
type StartOpts struct {
	Orchestrator *orchestrator.Orchestrator
	Port         int
	Out          io.Writer
}

// Start launches the HTTP server. It blocks until ctx is cancelled, then
// shuts down gracefully.
func Start(ctx context.Context, opts StartOpts) error {
	if opts.Orchestrator == nil {
		return fmt.Errorf("server: orchestrator is required")
	}
	if opts.Port <= 0 {
		opts.Port = 8080
	}

	router := NewRouter(opts.Orchestrator)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", opts.Port),
		Handler: router,
	}

	// Graceful shutdown on context cancellation.
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if opts.Out != nil {
		fmt.Fprintf(opts.Out, "Switchboard listening on http://localhost:%d\n", opts.Port)
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// NewRouter builds the Gin engine with all routes registered.
func NewRouter(orch *orchestrator.Orchestrator) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", handleHealthz())
	router.POST("/chat", handleChat(orch))
	router.GET("/sessions", handleSessionList(orch))
	router.GET("/sessions/:id", handleSessionDetail(orch))
	router.GET("/metrics", handleMetrics(orch))

	return router
}
