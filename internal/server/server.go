// Copyright 2024 Designetica Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server exposes the generation pipeline, the Figma adapter and the
// component registry over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/designetica/designetica/internal/config"
	"github.com/designetica/designetica/internal/health"
	"github.com/designetica/designetica/internal/oauth"
	"github.com/designetica/designetica/internal/pipeline"
	"github.com/designetica/designetica/internal/registry"
	"github.com/designetica/designetica/internal/resilience"
)

const (
	// CorrelationHeader carries the request correlation id
	CorrelationHeader = "X-Correlation-ID"

	correlationKey  = "correlationId"
	shutdownTimeout = 10 * time.Second
)

// Dependencies are the collaborators the routes are wired to.
type Dependencies struct {
	Config   *config.Config
	Pipeline *pipeline.Service
	Registry *registry.Store
	OAuth    *oauth.Flow
	Health   *health.Manager
	Logger   *zap.Logger
}

// Server is the HTTP API.
type Server struct {
	cfg      *config.Config
	pipeline *pipeline.Service
	registry *registry.Store
	oauth    *oauth.Flow
	health   *health.Manager
	errors   *resilience.ErrorHandler
	logger   *zap.Logger
	router   *gin.Engine
}

// New builds the router.
func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      deps.Config,
		pipeline: deps.Pipeline,
		registry: deps.Registry,
		oauth:    deps.OAuth,
		health:   deps.Health,
		errors:   resilience.NewErrorHandler(logger),
		logger:   logger,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.correlationID(), s.requestLogger(), cors())
	s.registerRoutes(router)
	s.router = router
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/health", s.healthCheck)
		api.POST("/generate-wireframe", s.generateWireframe)

		api.GET("/figmaOAuthStart", s.figmaOAuthStart)
		api.GET("/figmaOAuthCallback", s.figmaOAuthCallback)
		api.GET("/figmaOAuthStatus", s.figmaOAuthStatus)
		api.GET("/figmaOAuthDiagnostics", s.figmaOAuthDiagnostics)

		api.POST("/figma/components", s.figmaComponents)
		api.POST("/figma/import", s.figmaImport)

		api.GET("/components", s.listComponents)
		api.GET("/components/:id", s.getComponent)
		api.DELETE("/components/:id", s.deleteComponent)
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured port until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) correlationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(CorrelationHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(correlationKey, id)
		c.Header(CorrelationHeader, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		s.logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("correlation_id", c.GetString(correlationKey)))
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+CorrelationHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	result := s.health.Check(c.Request.Context())
	c.JSON(health.StatusCode(result.Status), result)
}

// fail writes a ServiceError, or a classified wrapper of err, as JSON.
func (s *Server) fail(c *gin.Context, err error) {
	s.errors.AbortWithError(c, err, c.GetString(correlationKey))
}
