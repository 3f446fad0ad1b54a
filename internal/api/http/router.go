package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ozzus/prime-checker/internal/api/http/middleware"
)

type RouterConfig struct {
	Debug bool
	Prod  bool
}

func NewRouter(
	cfg RouterConfig,
	log *slog.Logger,
	primeController *PrimeController,
	healthController *HealthController,
) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recovery(log, cfg.Debug, MessageInternal),
		middleware.SecureHeaders(middleware.SecureConfig{Debug: cfg.Debug, Prod: cfg.Prod}),
	)

	router.POST("/check", primeController.Check)

	router.GET("/health", healthController.Health)
	router.GET("/status", healthController.Status)
	router.GET("/ready", healthController.Ready)
	router.GET("/info", healthController.Info)
	router.GET("/version", healthController.Version)

	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not found")
	})
	router.NoMethod(func(c *gin.Context) {
		respondError(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	return router
}
