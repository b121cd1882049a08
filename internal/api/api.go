// Package api provides the HTTP server that fronts the aggregation layer.
// Handlers stay thin: parameter parsing and status mapping only; all data
// access goes through the services.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"opshub/internal/config"
	"opshub/internal/gateway"
	"opshub/internal/logging"
	"opshub/internal/services"

	v1 "opshub/internal/api/v1"
)

type Server struct {
	cfg        *config.Config
	httpServer *http.Server
	registry   *gateway.Registry
}

func New(cfg *config.Config, doorloopSvc *services.DoorloopService, connecteamSvc *services.ConnecteamService, registry *gateway.Registry) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestIDMiddleware())

	handlers := v1.NewAPIHandlers(doorloopSvc, connecteamSvc)
	handlers.RegisterRoutes(router.Group("/api/v1"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": registry.Stats(),
		})
	})

	return &Server{
		cfg:      cfg,
		registry: registry,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.APIPort),
			Handler:      router,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	logging.Info("API server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}
